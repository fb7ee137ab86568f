package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/crypto_gap_board/internal/domain"
)

// DefaultJournalDSN keeps the journal in memory for the life of the process.
const DefaultJournalDSN = "file:gapjournal?mode=memory&cache=shared"

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLiteJournal(dsn string) (*SQLiteJournal, error) {
	if dsn == "" {
		dsn = DefaultJournalDSN
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// An in-memory database lives as long as its last connection.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	journal := &SQLiteJournal{db: db}
	if err := journal.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return journal, nil
}

func (s *SQLiteJournal) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS gap_observations (
			id TEXT PRIMARY KEY,
			pair TEXT NOT NULL,
			symbol TEXT NOT NULL,
			percent_gap REAL NOT NULL,
			absolute_gap REAL NOT NULL,
			reference_price REAL NOT NULL,
			comparison_price REAL NOT NULL,
			reference_best REAL NOT NULL DEFAULT 0,
			comparison_best REAL NOT NULL DEFAULT 0,
			min_depth REAL NOT NULL DEFAULT 0,
			observed_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_gap_observations_symbol ON gap_observations(symbol, observed_at);`,
		`CREATE INDEX IF NOT EXISTS idx_gap_observations_observed_at ON gap_observations(observed_at);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}

func (s *SQLiteJournal) SaveGap(ctx context.Context, obs *domain.GapObservation) error {
	query := `INSERT INTO gap_observations (id, pair, symbol, percent_gap, absolute_gap, reference_price, comparison_price, reference_best, comparison_best, min_depth, observed_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		obs.ID, obs.Pair, obs.Symbol, obs.PercentGap, obs.AbsoluteGap,
		obs.ReferencePrice, obs.ComparisonPrice, obs.ReferenceBest, obs.ComparisonBest, obs.MinDepth, obs.ObservedAt.UTC())
	return err
}

// ListGaps returns the newest rows first. An empty symbol lists all symbols.
func (s *SQLiteJournal) ListGaps(ctx context.Context, symbol string, limit int) ([]*domain.GapObservation, error) {
	query := `SELECT id, pair, symbol, percent_gap, absolute_gap, reference_price, comparison_price, reference_best, comparison_best, min_depth, observed_at
			  FROM gap_observations WHERE (? = '' OR symbol = ?) ORDER BY observed_at DESC, rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, symbol, symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.GapObservation
	for rows.Next() {
		var o domain.GapObservation
		if err := rows.Scan(&o.ID, &o.Pair, &o.Symbol, &o.PercentGap, &o.AbsoluteGap,
			&o.ReferencePrice, &o.ComparisonPrice, &o.ReferenceBest, &o.ComparisonBest, &o.MinDepth, &o.ObservedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *SQLiteJournal) PruneGaps(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM gap_observations WHERE observed_at < ?", olderThan.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
