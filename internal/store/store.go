package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/utakatalp/epl-metrics/internal/league"
	"github.com/utakatalp/epl-metrics/internal/players"
	"github.com/utakatalp/epl-metrics/internal/report"
)

// Store wraps a Postgres connection and keeps one flat snapshot per run.
type Store struct {
	DB *sql.DB
}

// NewStore opens a Postgres connection using the given connection string.
func NewStore(ctx context.Context, connStr string) (*Store, error) {
	if connStr == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	logrus.Debug("postgres connection established")
	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Migrate creates the snapshot tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
		    id             UUID PRIMARY KEY,
		    generated_at   TIMESTAMPTZ      NOT NULL,
		    scaling        DOUBLE PRECISION NOT NULL,
		    k_factor       DOUBLE PRECISION NOT NULL,
		    initial_rating DOUBLE PRECISION NOT NULL,
		    home_advantage DOUBLE PRECISION NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rating_history (
		    run_id      UUID    NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		    seq         INT     NOT NULL,
		    round       INT     NOT NULL,
		    team        TEXT    NOT NULL,
		    elo_score   DOUBLE PRECISION NOT NULL,
		    is_forecast BOOLEAN NOT NULL DEFAULT FALSE,
		    PRIMARY KEY (run_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS forecasts (
		    run_id                   UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		    seq                      INT  NOT NULL,
		    match_date               TEXT NOT NULL,
		    round                    INT  NOT NULL,
		    home_team                TEXT NOT NULL,
		    away_team                TEXT NOT NULL,
		    home_win_probability     INT  NOT NULL,
		    away_win_probability     INT  NOT NULL,
		    team                     TEXT NOT NULL,
		    opponent                 TEXT NOT NULL,
		    win_probability          INT  NOT NULL,
		    opponent_win_probability INT  NOT NULL,
		    PRIMARY KEY (run_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS player_rankings (
		    run_id   UUID  NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		    position TEXT  NOT NULL,
		    rank     INT   NOT NULL,
		    player   TEXT  NOT NULL,
		    score    DOUBLE PRECISION NOT NULL,
		    features JSONB NOT NULL,
		    PRIMARY KEY (run_id, position, rank)
		);`,
	}
	for _, q := range queries {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
	}
	return nil
}

// SaveReport writes the report as a new run in a single transaction.
func (s *Store) SaveReport(ctx context.Context, r *report.Report) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin SaveReport tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, generated_at, scaling, k_factor, initial_rating, home_advantage)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.RunID, r.GeneratedAt, r.Elo.Scaling, r.Elo.KFactor, r.Elo.InitialRating, r.Elo.HomeAdvantage,
	); err != nil {
		return fmt.Errorf("inserting run %s: %w", r.RunID, err)
	}

	if err := saveHistory(ctx, tx, r.RunID, r.History); err != nil {
		return err
	}
	if err := saveForecast(ctx, tx, r.RunID, r.Forecast); err != nil {
		return err
	}
	for _, p := range r.Positions {
		if err := saveRanking(ctx, tx, r.RunID, p); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit SaveReport tx: %w", err)
	}
	logrus.WithField("run_id", r.RunID).Info("snapshot stored in postgres")
	return nil
}

func saveHistory(ctx context.Context, tx *sql.Tx, runID uuid.UUID, history []league.RatingEntry) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rating_history (run_id, seq, round, team, elo_score, is_forecast)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range history {
		if _, err := stmt.ExecContext(ctx, runID, i, e.Round, e.Team, e.Rating, e.IsForecast); err != nil {
			return fmt.Errorf("inserting history for %s round %d: %w", e.Team, e.Round, err)
		}
	}
	return nil
}

func saveForecast(ctx context.Context, tx *sql.Tx, runID uuid.UUID, rows []league.ForecastEntry) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecasts (run_id, seq, match_date, round, home_team, away_team,
		    home_win_probability, away_win_probability, team, opponent,
		    win_probability, opponent_win_probability)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`)
	if err != nil {
		return fmt.Errorf("preparing forecast insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range rows {
		if _, err := stmt.ExecContext(ctx, runID, i, f.Date, f.Round, f.HomeTeam, f.AwayTeam,
			f.HomeWinProbability, f.AwayWinProbability, f.Team, f.Opponent,
			f.WinProbability, f.OpponentWinProbability,
		); err != nil {
			return fmt.Errorf("inserting forecast %s vs %s: %w", f.HomeTeam, f.AwayTeam, err)
		}
	}
	return nil
}

func saveRanking(ctx context.Context, tx *sql.Tx, runID uuid.UUID, p report.PositionReport) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_rankings (run_id, position, rank, player, score, features)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("preparing ranking insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range p.All {
		features, err := featuresJSON(row)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, runID, string(p.Position), row.Rank, row.Player, row.Values["score"], string(features)); err != nil {
			return fmt.Errorf("inserting %s ranking for %s: %w", p.Position, row.Player, err)
		}
	}
	return nil
}

// featuresJSON encodes the normalized features of a ranked row, leaving out
// the score which has its own column.
func featuresJSON(row players.RankedRow) ([]byte, error) {
	features := make(map[string]float64, len(row.Values))
	for k, v := range row.Values {
		if k != "score" {
			features[k] = v
		}
	}
	b, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("encoding features for %s: %w", row.Player, err)
	}
	return b, nil
}

// LatestRatingHistory loads the rating history of the most recent run. It
// returns an empty history when no run has been stored yet.
func (s *Store) LatestRatingHistory(ctx context.Context) ([]league.RatingEntry, error) {
	const q = `
	SELECT h.round, h.team, h.elo_score, h.is_forecast
	FROM rating_history h
	JOIN (SELECT id FROM runs ORDER BY generated_at DESC LIMIT 1) latest ON latest.id = h.run_id
	ORDER BY h.seq
	`
	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying rating history: %w", err)
	}
	defer rows.Close()

	var history []league.RatingEntry
	for rows.Next() {
		var e league.RatingEntry
		if err := rows.Scan(&e.Round, &e.Team, &e.Rating, &e.IsForecast); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}
	return history, nil
}

// PruneRuns deletes all but the newest keep runs.
func (s *Store) PruneRuns(ctx context.Context, keep int) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
		DELETE FROM runs
		WHERE id NOT IN (SELECT id FROM runs ORDER BY generated_at DESC LIMIT $1)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	return res.RowsAffected()
}

// Timeout bounds every store call made by the batch run.
func Timeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(ctx, d)
}
