package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utakatalp/epl-metrics/internal/config"
	"github.com/utakatalp/epl-metrics/internal/league"
	"github.com/utakatalp/epl-metrics/internal/report"
	"github.com/utakatalp/epl-metrics/internal/tabular"
)

const (
	matchesCSV = "round,home_team,away_team,home_score,away_score\n" +
		"1,Arsenal FC,Everton FC,2,0\n" +
		"2,Everton FC,Chelsea FC,1,1\n"
	scheduleCSV = "round,date,home_team,away_team\n" +
		"1,2025-08-16,Chelsea FC,Arsenal FC\n" +
		"2,2025-08-23,Arsenal FC,Everton FC\n"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// testPaths lays out a data and output directory. Empty bodies leave the
// file out.
func testPaths(t *testing.T, matches, schedule string) config.PathsConfig {
	t.Helper()
	dir := t.TempDir()
	p := config.PathsConfig{
		DataDir:   filepath.Join(dir, "data"),
		OutputDir: filepath.Join(dir, "outputs"),
		Matches:   "matches.csv",
		Schedule:  "schedule.csv",
		Players:   "players.csv",
	}
	require.NoError(t, os.MkdirAll(p.DataDir, 0o755))
	if matches != "" {
		require.NoError(t, os.WriteFile(p.MatchesPath(), []byte(matches), 0o644))
	}
	if schedule != "" {
		require.NoError(t, os.WriteFile(p.SchedulePath(), []byte(schedule), 0o644))
	}
	return p
}

type fakeSnapshot struct {
	history []league.RatingEntry
	err     error
	calls   int
}

func (f *fakeSnapshot) load(context.Context) ([]league.RatingEntry, error) {
	f.calls++
	return f.history, f.err
}

func snapshotHistory() []league.RatingEntry {
	return []league.RatingEntry{
		{Round: 38, Team: "Arsenal FC", Rating: 1620},
		{Round: 38, Team: "Chelsea FC", Rating: 1560},
	}
}

func TestPrepareEloFromMatches(t *testing.T) {
	paths := testPaths(t, matchesCSV, scheduleCSV)
	stored := &fakeSnapshot{history: snapshotHistory()}
	rep := report.New(league.DefaultConfig())

	prepareElo(context.Background(), paths, rep, stored.load, quietLog())

	assert.Zero(t, stored.calls)
	assert.Equal(t, []string{"Arsenal FC", "Chelsea FC", "Everton FC"}, rep.Teams())
	assert.Len(t, rep.Standings, 3)
	assert.Len(t, rep.Forecast, 4)
}

func TestPrepareEloUsesPreviousCSVSnapshot(t *testing.T) {
	paths := testPaths(t, "", scheduleCSV)
	require.NoError(t, tabular.WriteRatingHistory(paths.Output(report.HistoryFile), snapshotHistory()))
	stored := &fakeSnapshot{history: []league.RatingEntry{{Round: 1, Team: "Arsenal FC", Rating: 1400}}}
	rep := report.New(league.DefaultConfig())

	prepareElo(context.Background(), paths, rep, stored.load, quietLog())

	assert.Zero(t, stored.calls, "csv snapshot wins over the store")
	assert.Equal(t, snapshotHistory(), rep.History)
	assert.Nil(t, rep.Standings)
	require.NotEmpty(t, rep.Forecast)
	// Chelsea 1560+100 at home against Arsenal 1620
	assert.Equal(t, "Chelsea FC", rep.Forecast[0].Team)
	assert.Equal(t, league.Percent(league.WinProbability(1660, 1620, 300)), rep.Forecast[0].WinProbability)
}

func TestPrepareEloFallsBackToStore(t *testing.T) {
	tests := []struct {
		name     string
		snapshot string // body of the csv snapshot, empty for none
	}{
		{name: "no csv snapshot"},
		{name: "corrupt csv snapshot", snapshot: "round,elo_score,is_forecast,team\n38,NaN,False,Arsenal FC\n"},
		{name: "snapshot without header", snapshot: "38,1620,False,Arsenal FC\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := testPaths(t, "", scheduleCSV)
			if tt.snapshot != "" {
				require.NoError(t, os.MkdirAll(paths.OutputDir, 0o755))
				require.NoError(t, os.WriteFile(paths.Output(report.HistoryFile), []byte(tt.snapshot), 0o644))
			}
			stored := &fakeSnapshot{history: snapshotHistory()}
			rep := report.New(league.DefaultConfig())

			require.NotPanics(t, func() {
				prepareElo(context.Background(), paths, rep, stored.load, quietLog())
			})
			assert.Equal(t, 1, stored.calls)
			assert.Equal(t, snapshotHistory(), rep.History)
			assert.Len(t, rep.Forecast, 4)
		})
	}
}

func TestPrepareEloWithoutAnyHistory(t *testing.T) {
	paths := testPaths(t, "", scheduleCSV)
	stored := &fakeSnapshot{err: errors.New("connection refused")}
	rep := report.New(league.DefaultConfig())

	prepareElo(context.Background(), paths, rep, stored.load, quietLog())

	assert.Equal(t, 1, stored.calls)
	assert.Empty(t, rep.History)
	// every club starts from the initial rating, only the home bonus separates them
	require.Len(t, rep.Forecast, 4)
	want := league.Percent(league.WinProbability(1600, 1500, 300))
	assert.Equal(t, want, rep.Forecast[0].HomeWinProbability)
}

func TestPrepareEloNoStoreConfigured(t *testing.T) {
	paths := testPaths(t, "", "")
	rep := report.New(league.DefaultConfig())

	prepareElo(context.Background(), paths, rep, postgresSnapshot(config.PostgresConfig{}), quietLog())

	assert.Nil(t, rep.History)
	assert.Nil(t, rep.Forecast)
}

func TestPrepareEloMissingScheduleSkipsForecastOnly(t *testing.T) {
	paths := testPaths(t, matchesCSV, "")
	rep := report.New(league.DefaultConfig())

	prepareElo(context.Background(), paths, rep, nil, quietLog())

	assert.Len(t, rep.History, 4)
	assert.NotEmpty(t, rep.Standings)
	assert.Nil(t, rep.Forecast)
}

func TestPreparePlayersMissingFile(t *testing.T) {
	paths := testPaths(t, matchesCSV, scheduleCSV)
	rep := report.New(league.DefaultConfig())

	preparePlayers(paths, rep, quietLog())
	assert.Empty(t, rep.Positions)
}

func TestPrintTeam(t *testing.T) {
	paths := testPaths(t, matchesCSV, scheduleCSV)
	cfg := config.Default()
	cfg.Paths = paths
	rep := report.New(cfg.Elo)
	prepareElo(context.Background(), paths, rep, nil, quietLog())

	var buf bytes.Buffer
	printTeam(&buf, cfg, rep, "Arsenal FC")
	out := buf.String()
	assert.Contains(t, out, "Arsenal FC Elo rating trend")
	assert.Contains(t, out, "Arsenal FC 2 - 0 Everton FC")
	assert.Contains(t, out, "Chelsea FC vs Arsenal FC")

	buf.Reset()
	printTeam(&buf, cfg, rep, "Hull City AFC")
	assert.Contains(t, buf.String(), `No Elo data found for "Hull City AFC".`)
}
