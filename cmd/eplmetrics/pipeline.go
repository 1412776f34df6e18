package main

import (
	"context"
	"errors"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/epl-metrics/internal/config"
	"github.com/utakatalp/epl-metrics/internal/league"
	"github.com/utakatalp/epl-metrics/internal/report"
	"github.com/utakatalp/epl-metrics/internal/store"
	"github.com/utakatalp/epl-metrics/internal/tabular"
)

// snapshotLoader returns the rating history of an earlier run.
type snapshotLoader func(ctx context.Context) ([]league.RatingEntry, error)

// postgresSnapshot loads the latest stored run. It is nil when no DSN is set.
func postgresSnapshot(cfg config.PostgresConfig) snapshotLoader {
	if cfg.DSN == "" {
		return nil
	}
	return func(ctx context.Context) ([]league.RatingEntry, error) {
		sctx, cancel := store.Timeout(ctx, cfg.Timeout)
		defer cancel()
		s, err := store.NewStore(sctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.LatestRatingHistory(sctx)
	}
}

// prepareElo builds the rating history and the forecast. A missing input only
// skips the part that depends on it.
func prepareElo(ctx context.Context, paths config.PathsConfig, rep *report.Report, fallback snapshotLoader, log *logrus.Entry) {
	matches, err := tabular.ReadMatches(paths.MatchesPath())
	if err != nil {
		log.WithError(err).Warn("match results unavailable, skipping rating history")
		rep.History = loadSnapshot(ctx, paths, fallback, log)
	} else {
		rep.AddSeason(matches)
	}

	fixtures, err := tabular.ReadFixtures(paths.SchedulePath())
	if err != nil {
		log.WithError(err).Warn("schedule unavailable, skipping forecast")
		return
	}
	rep.AddForecast(fixtures)
}

// loadSnapshot falls back to the history of a previous run, first from the
// output directory and then from fallback.
func loadSnapshot(ctx context.Context, paths config.PathsConfig, fallback snapshotLoader, log *logrus.Entry) []league.RatingEntry {
	path := paths.Output(report.HistoryFile)
	history, err := tabular.ReadRatingHistory(path)
	if err == nil {
		log.WithField("path", path).Info("using previous rating snapshot")
		return history
	}
	if !errors.Is(err, os.ErrNotExist) {
		log.WithError(err).Warn("previous rating snapshot unreadable")
	}
	if fallback == nil {
		return nil
	}

	history, err = fallback(ctx)
	if err != nil {
		log.WithError(err).Warn("loading stored rating snapshot")
		return nil
	}
	if len(history) > 0 {
		log.Info("using stored rating snapshot")
	}
	return history
}

func preparePlayers(paths config.PathsConfig, rep *report.Report, log *logrus.Entry) {
	table, err := tabular.ReadPlayers(paths.PlayersPath())
	if err != nil {
		log.WithError(err).Warn("player statistics unavailable, skipping rankings")
		return
	}
	if err := rep.AddPlayers(table); err != nil {
		log.WithError(err).Warn("some positions were not ranked")
	}
}
