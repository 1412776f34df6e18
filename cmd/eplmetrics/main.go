package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/epl-metrics/internal/api"
	"github.com/utakatalp/epl-metrics/internal/config"
	"github.com/utakatalp/epl-metrics/internal/league"
	"github.com/utakatalp/epl-metrics/internal/logging"
	"github.com/utakatalp/epl-metrics/internal/report"
	"github.com/utakatalp/epl-metrics/internal/store"
	"github.com/utakatalp/epl-metrics/internal/tabular"
)

func main() {
	var (
		configPath string
		envPath    string
		team       string
		serve      bool
		standings  bool
	)
	flag.StringVar(&configPath, "config", os.Getenv("EPL_CONFIG"), "Path to YAML config (can be set via EPL_CONFIG env var)")
	flag.StringVar(&envPath, "env", ".env", "Optional .env file")
	flag.StringVar(&team, "team", "", "Print the rating trend and next fixtures of one team")
	flag.BoolVar(&standings, "standings", false, "Print the league table")
	flag.BoolVar(&serve, "serve", false, "Serve the results over HTTP after the run")
	flag.Parse()

	if err := config.LoadDotEnv(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logging.Setup(cfg.Logging, "eplmetrics")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := report.New(cfg.Elo)
	log = log.WithField("run_id", rep.RunID)

	prepareElo(ctx, cfg.Paths, rep, postgresSnapshot(cfg.Postgres), log)
	preparePlayers(cfg.Paths, rep, log)

	if err := rep.WriteCSV(cfg.Paths); err != nil {
		log.WithError(err).Fatal("writing artifacts")
	}
	persist(ctx, cfg, rep, log)

	if standings {
		if err := league.PrintTable(os.Stdout, "League table", rep.Standings); err != nil {
			log.WithError(err).Warn("printing standings")
		}
	}
	if team != "" {
		printTeam(os.Stdout, cfg, rep, team)
	}

	if serve {
		if err := api.NewServer(rep).Run(ctx, cfg.Server.Addr, cfg.Server.ReadHeaderTimeout); err != nil {
			log.WithError(err).Fatal("lookup API stopped")
		}
	}
}

func persist(ctx context.Context, cfg *config.Config, rep *report.Report, log *logrus.Entry) {
	if cfg.Postgres.DSN == "" {
		return
	}
	sctx, cancel := store.Timeout(ctx, cfg.Postgres.Timeout)
	defer cancel()

	s, err := store.NewStore(sctx, cfg.Postgres.DSN)
	if err != nil {
		log.WithError(err).Error("postgres unavailable, snapshot kept on disk only")
		return
	}
	defer s.Close()

	if err := s.Migrate(sctx); err != nil {
		log.WithError(err).Error("migrating postgres")
		return
	}
	if err := s.SaveReport(sctx, rep); err != nil {
		log.WithError(err).Error("storing snapshot")
		return
	}
	if cfg.Postgres.KeepRuns > 0 {
		n, err := s.PruneRuns(sctx, cfg.Postgres.KeepRuns)
		if err != nil {
			log.WithError(err).Warn("pruning old runs")
			return
		}
		log.WithField("deleted", n).Debug("old runs pruned")
	}
}

func printTeam(w io.Writer, cfg *config.Config, rep *report.Report, team string) {
	history := rep.TeamHistory(team)
	if len(history) == 0 {
		fmt.Fprintf(w, "No Elo data found for %q.\n", team)
		return
	}

	fmt.Fprintf(w, "%s Elo rating trend\n", team)
	for _, e := range history {
		fmt.Fprintf(w, "  round %2d  %7.1f\n", e.Round, e.Rating)
	}
	if results := rep.TeamResults(team); len(results) > 0 {
		fmt.Fprintln(w, "Results")
		for _, m := range results {
			fmt.Fprintf(w, "  round %2d  %s\n", m.Round, m.ScoreLine())
		}
	}

	fixtures, err := tabular.ReadFixtures(cfg.Paths.SchedulePath())
	if err != nil {
		return
	}
	f := league.NewForecaster(cfg.Elo)
	ratings := f.LatestRatings(rep.History, league.FixtureTeams(fixtures))
	rows := f.ForecastTeam(fixtures, ratings, team)
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, "Win probability forecast")
	for _, r := range rows {
		fmt.Fprintf(w, "  %s round %d: %s vs %s  %s %s / %s %s\n",
			r.Date, r.Round, r.HomeTeam, r.AwayTeam,
			r.Team, tabular.FormatPercent(r.WinProbability),
			r.Opponent, tabular.FormatPercent(r.OpponentWinProbability))
	}
}
