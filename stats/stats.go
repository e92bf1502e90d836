// Package stats records completed conversations for the admin /stats report.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"qabot/core/logger"
)

// FlowCount is one row of the usage report.
type FlowCount struct {
	Flow  string `db:"flow"`
	Count int64  `db:"count"`
}

// DayCount is one day of activity for a single flow.
type DayCount struct {
	Day   time.Time `db:"day"`
	Count int64     `db:"count"`
}

// Store persists and aggregates flow completions.
type Store interface {
	Completed(ctx context.Context, flow string, userID int64)
	Totals(ctx context.Context) ([]FlowCount, error)
	Daily(ctx context.Context, flow string) ([]DayCount, error)
	Enabled() bool
}

// New returns a Postgres-backed store, or a no-op store when db is nil.
func New(db *sqlx.DB) Store {
	if db == nil {
		return noopStore{}
	}
	return &pgStore{db: db}
}

type pgStore struct {
	db *sqlx.DB
}

// Completed inserts a usage event. Failures are logged and swallowed so a
// database hiccup never breaks a conversation.
func (s *pgStore) Completed(ctx context.Context, flow string, userID int64) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_events (flow, user_id, completed_at) VALUES ($1, $2, now())`,
		flow, userID,
	)
	if err != nil {
		logger.SVCStats.Warn("usage.insert_failed",
			slog.String("flow", flow),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.SVCStats.Debug("usage.recorded",
		slog.String("flow", flow),
		slog.Int64("user_id", userID),
	)
}

// Totals returns completion counts per flow, most used first.
func (s *pgStore) Totals(ctx context.Context) ([]FlowCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rows []FlowCount
	err := s.db.SelectContext(ctx, &rows,
		`SELECT flow, COUNT(*) AS count FROM usage_events GROUP BY flow ORDER BY count DESC, flow`)
	if err != nil {
		return nil, fmt.Errorf("stats: totals query failed: %w", err)
	}
	return rows, nil
}

// Daily returns per-day completion counts for one flow over the last week.
func (s *pgStore) Daily(ctx context.Context, flow string) ([]DayCount, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rows []DayCount
	err := s.db.SelectContext(ctx, &rows,
		`SELECT date_trunc('day', completed_at) AS day, COUNT(*) AS count
		 FROM usage_events
		 WHERE flow = $1 AND completed_at >= now() - interval '7 days'
		 GROUP BY day ORDER BY day`,
		flow,
	)
	if err != nil {
		return nil, fmt.Errorf("stats: daily query failed: %w", err)
	}
	return rows, nil
}

func (s *pgStore) Enabled() bool { return true }

type noopStore struct{}

func (noopStore) Completed(context.Context, string, int64) {}
func (noopStore) Totals(context.Context) ([]FlowCount, error) {
	return nil, nil
}
func (noopStore) Daily(context.Context, string) ([]DayCount, error) {
	return nil, nil
}
func (noopStore) Enabled() bool { return false }
