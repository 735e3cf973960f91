package ledger

import (
	"context"
	"fmt"
	"time"
)

// Store persists attendance records. Implementations must enforce
// uniqueness on (identity, day); the ledger serializes its own
// check-then-transition sequence, so stores only need single-statement
// consistency.
type Store interface {
	// FindForDay returns the record for (identity, day), or nil when none exists.
	FindForDay(ctx context.Context, identity, day string) (*Record, error)
	// Insert creates a new record. Fails when (identity, day) already exists.
	Insert(ctx context.Context, rec Record) error
	// ClosePunch sets punch-out on the open record for (identity, day).
	// A record that is missing or already closed is left untouched.
	ClosePunch(ctx context.Context, identity, day string, punchOut time.Time) error
	// ListDay returns every record for a calendar day.
	ListDay(ctx context.Context, day string) ([]Record, error)
	// ListIdentityRange returns records for an identity with fromDay <= day < toDay.
	ListIdentityRange(ctx context.Context, identity, fromDay, toDay string) ([]Record, error)
	// Identities returns every identity that appears in the ledger.
	Identities(ctx context.Context) ([]string, error)
}

// PersistenceError wraps a store failure. The ledger's in-memory view
// stays consistent when one occurs: the failed write did not apply.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
