package league

// Config holds the rating constants shared by the analyzer and the forecaster.
type Config struct {
	Scaling       float64 `yaml:"scaling"`
	KFactor       float64 `yaml:"k_factor"`
	InitialRating float64 `yaml:"initial_rating"`
	HomeAdvantage float64 `yaml:"home_advantage"`
}

// DefaultConfig returns the constants used for the 2024/25 Premier League run.
func DefaultConfig() Config {
	return Config{
		Scaling:       300,
		KFactor:       32,
		InitialRating: 1500,
		HomeAdvantage: 100,
	}
}

// Match is a played fixture with its final score.
type Match struct {
	Round     int
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
}

// Involves reports whether team played in the match.
func (m Match) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// Fixture is an upcoming match without a score.
type Fixture struct {
	Round    int
	Date     string
	HomeTeam string
	AwayTeam string
}

// RatingEntry is one team's rating after a round it played in.
type RatingEntry struct {
	Round      int     `json:"round"`
	Team       string  `json:"team"`
	Rating     float64 `json:"elo_score"`
	IsForecast bool    `json:"is_forecast"`
}

// ForecastEntry is one fixture seen from one team's side. Probabilities are
// whole percents.
type ForecastEntry struct {
	Date                   string `json:"date"`
	Round                  int    `json:"round"`
	HomeTeam               string `json:"home_team"`
	AwayTeam               string `json:"away_team"`
	HomeWinProbability     int    `json:"home_win_probability"`
	AwayWinProbability     int    `json:"away_win_probability"`
	Team                   string `json:"team"`
	Opponent               string `json:"opponent"`
	WinProbability         int    `json:"win_probability"`
	OpponentWinProbability int    `json:"opponent_win_probability"`
}

// StandingsEntry holds the league table info for one team.
type StandingsEntry struct {
	Team         string `json:"team"`
	Played       int    `json:"played"`
	Wins         int    `json:"wins"`
	Draws        int    `json:"draws"`
	Losses       int    `json:"losses"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
	Points       int    `json:"points"`
}
