package screening

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type NeighborStore interface {
	FindNeighbors(ctx context.Context, lat, lon, radiusM float64, limit int) ([]CandidateRecord, error)
}

// neighborQuery computes geography distance from the request point to every
// stored assignment and keeps records within the radius. distance > 0 excludes
// the record for the request itself; longitude <> 0 guards against rows whose
// position was never set.
const neighborQuery = `
WITH q AS (SELECT ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography AS pt)
SELECT
    t.pemberi_tugas,
    t.jenis_objek_text,
    t.cabang_text,
    t.divisi,
    t.tahun_kontrak,
    t.alamat_lokasi,
    t.keterangan,
    t.kepemilikan,
    t.dokumen_kepemilikan,
    t.tujuan_penugasan_text,
    ST_Distance(t.geog, q.pt) AS distance_m
FROM objek_penilaian t, q
WHERE ST_DWithin(t.geog, q.pt, $3)
  AND t.longitude <> 0
  AND ST_Distance(t.geog, q.pt) > 0
ORDER BY distance_m
LIMIT $4`

// PostgresStore runs the proximity query against the firm's PostGIS-backed
// assignment table. Read-only; the connection pool is shared across runs.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func OpenPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) FindNeighbors(ctx context.Context, lat, lon, radiusM float64, limit int) ([]CandidateRecord, error) {
	if limit <= 0 {
		limit = DefaultMaxNeighbors
	}
	records := []CandidateRecord{}
	if err := s.db.SelectContext(ctx, &records, neighborQuery, lon, lat, radiusM, limit); err != nil {
		return nil, fmt.Errorf("neighbor query: %w", err)
	}
	return records, nil
}

// clampNeighbors re-enforces the store contract on whatever implementation is
// injected: no self-matches, no unset positions past the SQL guard, hard cap.
func clampNeighbors(records []CandidateRecord, max int) []CandidateRecord {
	if max <= 0 {
		max = DefaultMaxNeighbors
	}
	out := make([]CandidateRecord, 0, len(records))
	for _, r := range records {
		if r.DistanceM <= 0 {
			continue
		}
		out = append(out, r)
		if len(out) == max {
			break
		}
	}
	return out
}
