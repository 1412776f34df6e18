package tabular

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/utakatalp/epl-metrics/internal/league"
)

// ParseMatches reads round, home_team, away_team, home_score, away_score.
func ParseMatches(r io.Reader) ([]league.Match, error) {
	t, err := readTable(r, "round", "home_team", "away_team", "home_score", "away_score")
	if err != nil {
		return nil, err
	}

	matches := make([]league.Match, 0, len(t.records))
	for i, rec := range t.records {
		var m league.Match
		var errs [3]error
		m.Round, errs[0] = parseInt(t.get(rec, "round"))
		m.HomeScore, errs[1] = parseInt(t.get(rec, "home_score"))
		m.AwayScore, errs[2] = parseInt(t.get(rec, "away_score"))
		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
		m.HomeTeam = t.get(rec, "home_team")
		m.AwayTeam = t.get(rec, "away_team")
		matches = append(matches, m)
	}
	return matches, nil
}

func ReadMatches(path string) ([]league.Match, error) {
	return readFile(path, ParseMatches)
}

// ParseFixtures reads round, date, home_team, away_team.
func ParseFixtures(r io.Reader) ([]league.Fixture, error) {
	t, err := readTable(r, "round", "date", "home_team", "away_team")
	if err != nil {
		return nil, err
	}

	fixtures := make([]league.Fixture, 0, len(t.records))
	for i, rec := range t.records {
		round, err := parseInt(t.get(rec, "round"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		fixtures = append(fixtures, league.Fixture{
			Round:    round,
			Date:     t.get(rec, "date"),
			HomeTeam: t.get(rec, "home_team"),
			AwayTeam: t.get(rec, "away_team"),
		})
	}
	return fixtures, nil
}

func ReadFixtures(path string) ([]league.Fixture, error) {
	return readFile(path, ParseFixtures)
}

var historyHeader = []string{"round", "elo_score", "is_forecast", "team"}

func WriteRatingHistoryTo(w io.Writer, entries []league.RatingEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Round),
			formatFloat(e.Rating),
			formatBool(e.IsForecast),
			e.Team,
		})
	}
	return writeRecords(w, historyHeader, rows)
}

func WriteRatingHistory(path string, entries []league.RatingEntry) error {
	return writeFile(path, func(w io.Writer) error { return WriteRatingHistoryTo(w, entries) })
}

// ParseRatingHistory reads a rating snapshot written by WriteRatingHistory.
func ParseRatingHistory(r io.Reader) ([]league.RatingEntry, error) {
	t, err := readTable(r, historyHeader...)
	if err != nil {
		return nil, err
	}

	entries := make([]league.RatingEntry, 0, len(t.records))
	for i, rec := range t.records {
		round, err := parseInt(t.get(rec, "round"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rating, err := strconv.ParseFloat(t.get(rec, "elo_score"), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: elo_score: %w", i+2, err)
		}
		if math.IsNaN(rating) || math.IsInf(rating, 0) {
			return nil, fmt.Errorf("row %d: elo_score: %w: %q", i+2, ErrNonFinite, t.get(rec, "elo_score"))
		}
		forecast, err := strconv.ParseBool(t.get(rec, "is_forecast"))
		if err != nil {
			return nil, fmt.Errorf("row %d: is_forecast: %w", i+2, err)
		}
		entries = append(entries, league.RatingEntry{
			Round:      round,
			Team:       t.get(rec, "team"),
			Rating:     rating,
			IsForecast: forecast,
		})
	}
	return entries, nil
}

func ReadRatingHistory(path string) ([]league.RatingEntry, error) {
	return readFile(path, ParseRatingHistory)
}

var forecastHeader = []string{
	"date", "round", "home_team", "away_team",
	"home_win_probability", "away_win_probability",
	"team", "opponent", "win_probability", "opponent_win_probability",
}

// FormatPercent renders a whole percent the way the forecast file stores it.
func FormatPercent(p int) string {
	return strconv.Itoa(p) + "%"
}

func WriteForecastTo(w io.Writer, rows []league.ForecastEntry) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Date,
			strconv.Itoa(r.Round),
			r.HomeTeam,
			r.AwayTeam,
			FormatPercent(r.HomeWinProbability),
			FormatPercent(r.AwayWinProbability),
			r.Team,
			r.Opponent,
			FormatPercent(r.WinProbability),
			FormatPercent(r.OpponentWinProbability),
		})
	}
	return writeRecords(w, forecastHeader, out)
}

func WriteForecast(path string, rows []league.ForecastEntry) error {
	return writeFile(path, func(w io.Writer) error { return WriteForecastTo(w, rows) })
}

var standingsHeader = []string{"team", "played", "wins", "draws", "losses", "goals_for", "goals_against", "goal_diff", "points"}

func WriteStandingsTo(w io.Writer, table []league.StandingsEntry) error {
	rows := make([][]string, 0, len(table))
	for _, e := range table {
		rows = append(rows, []string{
			e.Team,
			strconv.Itoa(e.Played),
			strconv.Itoa(e.Wins),
			strconv.Itoa(e.Draws),
			strconv.Itoa(e.Losses),
			strconv.Itoa(e.GoalsFor),
			strconv.Itoa(e.GoalsAgainst),
			strconv.Itoa(e.GoalDiff),
			strconv.Itoa(e.Points),
		})
	}
	return writeRecords(w, standingsHeader, rows)
}

func WriteStandings(path string, table []league.StandingsEntry) error {
	return writeFile(path, func(w io.Writer) error { return WriteStandingsTo(w, table) })
}
