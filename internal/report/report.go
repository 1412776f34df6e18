// Package report collects the artifacts of one batch run so they can be
// written to disk, stored in Postgres and served over HTTP.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/epl-metrics/internal/league"
	"github.com/utakatalp/epl-metrics/internal/players"
)

// TopN is the size of the per-position top file.
const TopN = 3

type Report struct {
	RunID       uuid.UUID
	GeneratedAt time.Time
	Elo         league.Config

	Matches   []league.Match
	History   []league.RatingEntry
	Forecast  []league.ForecastEntry
	Standings []league.StandingsEntry
	Positions []PositionReport
}

// PositionReport is the ranking output of one scorer.
type PositionReport struct {
	Position players.Position    `json:"position"`
	Name     string              `json:"name"`
	Columns  []string            `json:"columns"`
	Top      []players.RankedRow `json:"top"`
	All      []players.RankedRow `json:"all"`
}

func New(elo league.Config) *Report {
	return &Report{
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
		Elo:         elo,
	}
}

// AddSeason replays matches into the rating history and the standings.
func (r *Report) AddSeason(matches []league.Match) {
	r.Matches = matches
	r.History = league.NewAnalyzer(r.Elo).AnalyzeAllTeams(matches)
	r.Standings = league.CalculateTable(matches)
	logrus.WithFields(logrus.Fields{
		"matches": len(matches),
		"entries": len(r.History),
	}).Info("rating history computed")
}

// AddForecast predicts the next two rounds of fixtures from the current
// history. It can run without AddSeason when the history was loaded from a
// snapshot.
func (r *Report) AddForecast(fixtures []league.Fixture) {
	r.Forecast = league.NewForecaster(r.Elo).ForecastAll(fixtures, r.History)
	logrus.WithFields(logrus.Fields{
		"window": league.Window(fixtures),
		"rows":   len(r.Forecast),
	}).Info("win probabilities forecast")
}

// AddPlayers ranks every position. A position whose pipeline fails is left
// out and its error is returned alongside the others.
func (r *Report) AddPlayers(table []players.Player) error {
	var errs []error
	r.Positions = r.Positions[:0]
	for _, s := range players.Scorers() {
		pr, err := rankPosition(s, table)
		if err != nil {
			logrus.WithError(err).WithField("position", s.Position()).Warn("skipping position")
			errs = append(errs, err)
			continue
		}
		r.Positions = append(r.Positions, pr)
		logrus.WithFields(logrus.Fields{
			"position": s.Position(),
			"players":  len(pr.All),
		}).Info("players ranked")
	}
	return errors.Join(errs...)
}

func rankPosition(s players.Scorer, table []players.Player) (PositionReport, error) {
	ranking, err := players.Rank(s, table)
	if err != nil {
		return PositionReport{}, err
	}
	columns := s.ReportColumns()
	all, err := ranking.AllRanked(columns)
	if err != nil {
		return PositionReport{}, fmt.Errorf("%s ranking: %w", s.Name(), err)
	}
	top, err := players.Project(ranking.TopN(TopN), columns)
	if err != nil {
		return PositionReport{}, fmt.Errorf("%s top %d: %w", s.Name(), TopN, err)
	}
	return PositionReport{
		Position: s.Position(),
		Name:     s.Name(),
		Columns:  columns,
		Top:      top,
		All:      all,
	}, nil
}

// Teams lists the clubs with a rating history, alphabetically.
func (r *Report) Teams() []string {
	var teams []string
	for _, e := range r.History {
		if len(teams) == 0 || teams[len(teams)-1] != e.Team {
			teams = append(teams, e.Team)
		}
	}
	return teams
}

func (r *Report) TeamHistory(team string) []league.RatingEntry {
	var out []league.RatingEntry
	for _, e := range r.History {
		if e.Team == team {
			out = append(out, e)
		}
	}
	return out
}

// TeamResults returns the played matches of team in round order.
func (r *Report) TeamResults(team string) []league.Match {
	var out []league.Match
	for _, m := range r.Matches {
		if m.Involves(team) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}

func (r *Report) TeamForecast(team string) []league.ForecastEntry {
	var out []league.ForecastEntry
	for _, f := range r.Forecast {
		if f.Team == team {
			out = append(out, f)
		}
	}
	return out
}

// Position finds a ranked position by tag or name ("DF" or "defender").
func (r *Report) Position(position string) (*PositionReport, bool) {
	s, ok := players.ScorerFor(position)
	if !ok {
		return nil, false
	}
	for i := range r.Positions {
		if r.Positions[i].Position == s.Position() {
			return &r.Positions[i], true
		}
	}
	return nil, false
}
