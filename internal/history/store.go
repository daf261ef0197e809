// Package history persists completed screening runs so past analyses can be
// listed and re-exported. The pipeline itself never writes here; the caller
// records results after a run completes.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type Entry struct {
	ID              string    `db:"id" json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	Assignor        string    `db:"assignor" json:"pemberi_tugas"`
	Address         string    `db:"address" json:"alamat"`
	Summary         string    `db:"summary" json:"summary"`
	ClientSentiment string    `db:"client_sentiment" json:"client_sentiment"`
	CandidateCount  int       `db:"candidate_count" json:"candidate_count"`
	ResultJSON      string    `db:"result_json" json:"-"`
}

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id               TEXT PRIMARY KEY,
	created_at       TEXT NOT NULL,
	assignor         TEXT NOT NULL DEFAULT '',
	address          TEXT NOT NULL DEFAULT '',
	summary          TEXT NOT NULL DEFAULT '',
	client_sentiment TEXT NOT NULL DEFAULT '',
	candidate_count  INTEGER NOT NULL DEFAULT 0,
	result_json      TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS analyses_created_at ON analyses (created_at DESC);
`

type Store struct {
	db *sqlx.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save records one completed analysis. A missing ID or timestamp is filled in.
func (s *Store) Save(ctx context.Context, e Entry) (Entry, error) {
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO analyses
		(id, created_at, assignor, address, summary, client_sentiment, candidate_count, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		e.Assignor,
		e.Address,
		e.Summary,
		e.ClientSentiment,
		e.CandidateCount,
		e.ResultJSON,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("save analysis: %w", err)
	}
	return e, nil
}

// List returns entries newest first, capped at limit (default 50).
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, assignor, address, summary, client_sentiment, candidate_count, result_json
		FROM analyses ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var createdAt string
		if err := rows.Scan(&e.ID, &createdAt, &e.Assignor, &e.Address, &e.Summary, &e.ClientSentiment, &e.CandidateCount, &e.ResultJSON); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Entry, bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, assignor, address, summary, client_sentiment, candidate_count, result_json
		FROM analyses WHERE id = ?`, id)
	if err != nil {
		return Entry{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return Entry{}, false, rows.Err()
	}
	var e Entry
	var createdAt string
	if err := rows.Scan(&e.ID, &createdAt, &e.Assignor, &e.Address, &e.Summary, &e.ClientSentiment, &e.CandidateCount, &e.ResultJSON); err != nil {
		return Entry{}, false, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return e, true, nil
}

// Clear deletes all recorded analyses.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analyses`)
	return err
}
