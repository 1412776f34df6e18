package league

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Forecaster turns the latest ratings into win probabilities for the next
// two rounds of a schedule.
type Forecaster struct {
	cfg Config
}

func NewForecaster(cfg Config) *Forecaster {
	return &Forecaster{cfg: cfg}
}

// LatestRatings picks, for each team, the rating recorded at its highest
// played round. Teams without history (promoted clubs) get the initial rating.
func (f *Forecaster) LatestRatings(history []RatingEntry, teams []string) map[string]float64 {
	type latest struct {
		round  int
		rating float64
	}
	found := make(map[string]latest)
	for _, e := range history {
		if e.IsForecast {
			continue
		}
		// first entry wins on a repeated round
		if cur, ok := found[e.Team]; !ok || e.Round > cur.round {
			found[e.Team] = latest{round: e.Round, rating: e.Rating}
		}
	}

	ratings := make(map[string]float64, len(teams))
	for _, t := range teams {
		if l, ok := found[t]; ok {
			ratings[t] = l.rating
		} else {
			ratings[t] = f.cfg.InitialRating
		}
	}
	return ratings
}

// Window returns the two smallest distinct rounds in fixtures. It returns
// fewer when the schedule has fewer rounds.
func Window(fixtures []Fixture) []int {
	seen := make(map[int]struct{})
	for _, fx := range fixtures {
		seen[fx.Round] = struct{}{}
	}
	rounds := make([]int, 0, len(seen))
	for r := range seen {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)
	if len(rounds) > 2 {
		rounds = rounds[:2]
	}
	return rounds
}

// ForecastAll predicts every fixture inside the forecast window, emitting a
// home-perspective row followed by an away-perspective row per fixture.
func (f *Forecaster) ForecastAll(fixtures []Fixture, history []RatingEntry) []ForecastEntry {
	ratings := f.LatestRatings(history, FixtureTeams(fixtures))
	window := inWindow(fixtures, Window(fixtures))

	rows := make([]ForecastEntry, 0, 2*len(window))
	for _, fx := range window {
		home, away := f.probabilities(ratings, fx)
		rows = append(rows,
			ForecastEntry{
				Date: fx.Date, Round: fx.Round, HomeTeam: fx.HomeTeam, AwayTeam: fx.AwayTeam,
				HomeWinProbability: home, AwayWinProbability: away,
				Team: fx.HomeTeam, Opponent: fx.AwayTeam,
				WinProbability: home, OpponentWinProbability: 100 - home,
			},
			ForecastEntry{
				Date: fx.Date, Round: fx.Round, HomeTeam: fx.HomeTeam, AwayTeam: fx.AwayTeam,
				HomeWinProbability: home, AwayWinProbability: away,
				Team: fx.AwayTeam, Opponent: fx.HomeTeam,
				WinProbability: away, OpponentWinProbability: 100 - away,
			},
		)
	}
	return rows
}

// ForecastTeam predicts the next two rounds of a single club, counted from
// that club's own earliest fixture. ratings must already hold current values;
// missing clubs fall back to the initial rating.
func (f *Forecaster) ForecastTeam(fixtures []Fixture, ratings map[string]float64, team string) []ForecastEntry {
	var own []Fixture
	for _, fx := range fixtures {
		if fx.HomeTeam == team || fx.AwayTeam == team {
			own = append(own, fx)
		}
	}
	if len(own) == 0 {
		return nil
	}
	sort.SliceStable(own, func(i, j int) bool { return own[i].Round < own[j].Round })
	first := own[0].Round

	var rows []ForecastEntry
	for _, fx := range own {
		if fx.Round != first && fx.Round != first+1 {
			continue
		}
		home, away := f.probabilities(ratings, fx)
		row := ForecastEntry{
			Date: fx.Date, Round: fx.Round, HomeTeam: fx.HomeTeam, AwayTeam: fx.AwayTeam,
			HomeWinProbability: home, AwayWinProbability: away,
			Team: team,
		}
		if team == fx.HomeTeam {
			row.Opponent, row.WinProbability = fx.AwayTeam, home
		} else {
			row.Opponent, row.WinProbability = fx.HomeTeam, away
		}
		row.OpponentWinProbability = 100 - row.WinProbability
		rows = append(rows, row)
	}
	return rows
}

func (f *Forecaster) probabilities(ratings map[string]float64, fx Fixture) (home, away int) {
	homeRating, ok := ratings[fx.HomeTeam]
	if !ok {
		homeRating = f.cfg.InitialRating
	}
	awayRating, ok := ratings[fx.AwayTeam]
	if !ok {
		awayRating = f.cfg.InitialRating
	}
	p := WinProbability(homeRating+f.cfg.HomeAdvantage, awayRating, f.cfg.Scaling)
	home = Percent(p)
	return home, 100 - home
}

// Percent converts a probability to a whole percent, rounding half to even
// (0.505 -> 50, 0.515 -> 52). NaN maps to 0 and the result is clamped to
// 0..100.
func Percent(p float64) int {
	switch {
	case math.IsNaN(p) || p <= 0:
		return 0
	case p >= 1:
		return 100
	}
	return int(decimal.NewFromFloat(p).Mul(decimal.NewFromInt(100)).RoundBank(0).IntPart())
}

func inWindow(fixtures []Fixture, rounds []int) []Fixture {
	keep := make(map[int]bool, len(rounds))
	for _, r := range rounds {
		keep[r] = true
	}
	out := make([]Fixture, 0, len(fixtures))
	for _, fx := range fixtures {
		if keep[fx.Round] {
			out = append(out, fx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].Date < out[j].Date
	})
	return out
}

// FixtureTeams returns the sorted set of clubs in a schedule.
func FixtureTeams(fixtures []Fixture) []string {
	seen := make(map[string]struct{})
	for _, fx := range fixtures {
		seen[fx.HomeTeam] = struct{}{}
		seen[fx.AwayTeam] = struct{}{}
	}
	return sortedKeys(seen)
}
