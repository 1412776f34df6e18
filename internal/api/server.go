// Package api serves a finished report to chart renderers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/epl-metrics/internal/report"
	"github.com/utakatalp/epl-metrics/internal/tabular"
)

type Server struct {
	report *report.Report
}

func NewServer(r *report.Report) *Server {
	return &Server{report: r}
}

// Router returns the read-only lookup routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/teams", s.handleTeams).Methods(http.MethodGet)
	r.HandleFunc("/teams/{team}/ratings", s.handleRatings).Methods(http.MethodGet)
	r.HandleFunc("/teams/{team}/forecast", s.handleForecast).Methods(http.MethodGet)
	r.HandleFunc("/standings", s.handleStandings).Methods(http.MethodGet)
	r.HandleFunc("/positions/{position}/top", s.handleTop).Methods(http.MethodGet)
	r.HandleFunc("/positions/{position}/ranking", s.handleRanking).Methods(http.MethodGet)
	r.Use(logRequests)
	return r
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string, readHeaderTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logrus.WithField("addr", addr).Info("lookup API listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"run_id":       s.report.RunID,
		"generated_at": s.report.GeneratedAt,
	})
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.report.Teams())
}

func (s *Server) handleRatings(w http.ResponseWriter, r *http.Request) {
	history := s.report.TeamHistory(mux.Vars(r)["team"])
	if len(history) == 0 {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type forecastRow struct {
	Date                   string `json:"date"`
	Round                  int    `json:"round"`
	HomeTeam               string `json:"home_team"`
	AwayTeam               string `json:"away_team"`
	HomeWinProbability     string `json:"home_win_probability"`
	AwayWinProbability     string `json:"away_win_probability"`
	Team                   string `json:"team"`
	Opponent               string `json:"opponent"`
	WinProbability         string `json:"win_probability"`
	OpponentWinProbability string `json:"opponent_win_probability"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	entries := s.report.TeamForecast(mux.Vars(r)["team"])
	if len(entries) == 0 {
		notFound(w)
		return
	}
	rows := make([]forecastRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, forecastRow{
			Date:                   e.Date,
			Round:                  e.Round,
			HomeTeam:               e.HomeTeam,
			AwayTeam:               e.AwayTeam,
			HomeWinProbability:     tabular.FormatPercent(e.HomeWinProbability),
			AwayWinProbability:     tabular.FormatPercent(e.AwayWinProbability),
			Team:                   e.Team,
			Opponent:               e.Opponent,
			WinProbability:         tabular.FormatPercent(e.WinProbability),
			OpponentWinProbability: tabular.FormatPercent(e.OpponentWinProbability),
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	if len(s.report.Standings) == 0 {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, s.report.Standings)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	p, ok := s.report.Position(mux.Vars(r)["position"])
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, p.Top)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	p, ok := s.report.Position(mux.Vars(r)["position"])
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, p.All)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "no data found"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("encoding response")
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"elapsed": time.Since(start),
		}).Debug("request served")
	})
}
