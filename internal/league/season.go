package league

import "sort"

// Analyzer replays a season's results to build Elo histories.
type Analyzer struct {
	cfg Config
}

func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// AnalyzeTeam replays every match team played in, in round order, and returns
// team's rating after each of them. Ratings of the other clubs only move
// through their games against team, and are seeded at the initial rating.
func (a *Analyzer) AnalyzeTeam(matches []Match, team string) []RatingEntry {
	played := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.Involves(team) {
			played = append(played, m)
		}
	}
	sort.SliceStable(played, func(i, j int) bool {
		return played[i].Round < played[j].Round
	})

	ratings := make(map[string]float64)
	history := make([]RatingEntry, 0, len(played))
	for _, m := range played {
		a.replay(ratings, m)
		history = append(history, RatingEntry{
			Round:  m.Round,
			Team:   team,
			Rating: ratings[team],
		})
	}
	return history
}

// replay applies one result to ratings. The home bonus is only used to
// compute the expectation and never ends up in the stored value.
func (a *Analyzer) replay(ratings map[string]float64, m Match) {
	for _, t := range []string{m.HomeTeam, m.AwayTeam} {
		if _, ok := ratings[t]; !ok {
			ratings[t] = a.cfg.InitialRating
		}
	}

	home := ratings[m.HomeTeam] + a.cfg.HomeAdvantage
	away := ratings[m.AwayTeam]

	newHome, newAway := UpdateElo(home, away, MatchResult(m.HomeScore, m.AwayScore), a.cfg.KFactor, a.cfg.Scaling)
	ratings[m.HomeTeam] = newHome - a.cfg.HomeAdvantage
	ratings[m.AwayTeam] = newAway
}

// AnalyzeAllTeams concatenates the histories of every club found in matches,
// in alphabetical order.
func (a *Analyzer) AnalyzeAllTeams(matches []Match) []RatingEntry {
	var all []RatingEntry
	for _, team := range Teams(matches) {
		all = append(all, a.AnalyzeTeam(matches, team)...)
	}
	return all
}

// Teams returns the sorted set of clubs appearing on either side of matches.
func Teams(matches []Match) []string {
	seen := make(map[string]struct{})
	for _, m := range matches {
		seen[m.HomeTeam] = struct{}{}
		seen[m.AwayTeam] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
