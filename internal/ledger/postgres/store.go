package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mhornak/faceclock/internal/ledger"
)

// Store implements ledger.Store on a PostgreSQL pool.
type Store struct {
	pool *Pool
}

// NewStore creates a PostgreSQL-backed attendance store.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

// FindForDay returns the record for (identity, day), or nil when none exists.
func (s *Store) FindForDay(ctx context.Context, identity, day string) (*ledger.Record, error) {
	row := s.pool.db.QueryRowContext(ctx,
		`SELECT identity, day, punch_in, punch_out, created_at
		 FROM attendance WHERE identity = $1 AND day = $2`,
		identity, day)

	rec, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	return rec, nil
}

// Insert creates a new record; the unique constraint rejects duplicates.
func (s *Store) Insert(ctx context.Context, rec ledger.Record) error {
	_, err := s.pool.db.ExecContext(ctx,
		`INSERT INTO attendance (identity, day, punch_in, punch_out, created_at)
		 VALUES ($1, $2, $3, NULL, $4)`,
		rec.Identity, rec.Day, rec.PunchIn, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting attendance record: %w", err)
	}
	return nil
}

// ClosePunch sets punch-out on the open record. The WHERE clause keeps the
// update idempotent at the database level: an already-closed record
// matches zero rows.
func (s *Store) ClosePunch(ctx context.Context, identity, day string, punchOut time.Time) error {
	res, err := s.pool.db.ExecContext(ctx,
		`UPDATE attendance SET punch_out = $3
		 WHERE identity = $1 AND day = $2 AND punch_out IS NULL`,
		identity, day, punchOut)
	if err != nil {
		return fmt.Errorf("closing attendance record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no open record for %s on %s", identity, day)
	}
	return nil
}

// ListDay returns every record for a calendar day.
func (s *Store) ListDay(ctx context.Context, day string) ([]ledger.Record, error) {
	return s.queryRecords(ctx,
		`SELECT identity, day, punch_in, punch_out, created_at
		 FROM attendance WHERE day = $1 ORDER BY punch_in`,
		day)
}

// ListIdentityRange returns records for an identity with fromDay <= day < toDay.
func (s *Store) ListIdentityRange(ctx context.Context, identity, fromDay, toDay string) ([]ledger.Record, error) {
	return s.queryRecords(ctx,
		`SELECT identity, day, punch_in, punch_out, created_at
		 FROM attendance WHERE identity = $1 AND day >= $2 AND day < $3
		 ORDER BY day, punch_in`,
		identity, fromDay, toDay)
}

// Identities returns the distinct identities in the ledger.
func (s *Store) Identities(ctx context.Context) ([]string, error) {
	rows, err := s.pool.db.QueryContext(ctx,
		`SELECT DISTINCT identity FROM attendance ORDER BY identity`)
	if err != nil {
		return nil, fmt.Errorf("querying identities: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning identity: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating identities: %w", err)
	}
	return names, nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]ledger.Record, error) {
	rows, err := s.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	defer rows.Close()

	var recs []ledger.Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning attendance record: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attendance records: %w", err)
	}
	return recs, nil
}

// scanRecord reads one attendance row. The day column is CHAR(10) and
// comes back space-padded on some drivers, so it is trimmed.
func scanRecord(scan func(...any) error) (*ledger.Record, error) {
	var rec ledger.Record
	var punchOut sql.NullTime
	if err := scan(&rec.Identity, &rec.Day, &rec.PunchIn, &punchOut, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Day = strings.TrimSpace(rec.Day)
	if punchOut.Valid {
		out := punchOut.Time
		rec.PunchOut = &out
	}
	return &rec, nil
}
