package report

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/utakatalp/epl-metrics/internal/config"
	"github.com/utakatalp/epl-metrics/internal/tabular"
)

const (
	HistoryFile   = "elo_history_all.csv"
	ForecastFile  = "win_probability_forecast.csv"
	StandingsFile = "standings.csv"
)

func TopFile(p PositionReport) string {
	return fmt.Sprintf("top_%s_players.csv", strings.ToLower(string(p.Position)))
}

func AllFile(p PositionReport) string {
	return fmt.Sprintf("all_%s_players.csv", strings.ToLower(string(p.Position)))
}

// WriteCSV writes every artifact the report holds into the output directory.
// Sections that were never computed are skipped.
func (r *Report) WriteCSV(paths config.PathsConfig) error {
	var written []string

	if r.History != nil {
		if err := tabular.WriteRatingHistory(paths.Output(HistoryFile), r.History); err != nil {
			return err
		}
		written = append(written, HistoryFile)
	}
	if r.Standings != nil {
		if err := tabular.WriteStandings(paths.Output(StandingsFile), r.Standings); err != nil {
			return err
		}
		written = append(written, StandingsFile)
	}
	if r.Forecast != nil {
		if err := tabular.WriteForecast(paths.Output(ForecastFile), r.Forecast); err != nil {
			return err
		}
		written = append(written, ForecastFile)
	}
	for _, p := range r.Positions {
		if err := tabular.WriteRanking(paths.Output(TopFile(p)), p.Top, p.Columns, false); err != nil {
			return err
		}
		if err := tabular.WriteRanking(paths.Output(AllFile(p)), p.All, p.Columns, true); err != nil {
			return err
		}
		written = append(written, TopFile(p), AllFile(p))
	}

	logrus.WithFields(logrus.Fields{
		"dir":   paths.OutputDir,
		"files": written,
	}).Info("artifacts written")
	return nil
}
