// Package memory provides an in-memory ledger store. It backs tests and
// DB-less single-node runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mhornak/faceclock/internal/ledger"
)

// Store is a mutex-guarded map implementation of ledger.Store.
type Store struct {
	mu      sync.RWMutex
	records map[string]*ledger.Record // key: identity + "\x00" + day

	// Error injection for tests.
	FindError   error
	InsertError error
	CloseError  error
	ListError   error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*ledger.Record),
	}
}

func key(identity, day string) string {
	return identity + "\x00" + day
}

// FindForDay returns a copy of the record for (identity, day), or nil.
func (s *Store) FindForDay(ctx context.Context, identity, day string) (*ledger.Record, error) {
	if s.FindError != nil {
		return nil, s.FindError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key(identity, day)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// Insert creates a new record; duplicates for the same (identity, day) fail.
func (s *Store) Insert(ctx context.Context, rec ledger.Record) error {
	if s.InsertError != nil {
		return s.InsertError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(rec.Identity, rec.Day)
	if _, ok := s.records[k]; ok {
		return fmt.Errorf("record already exists for %s on %s", rec.Identity, rec.Day)
	}
	s.records[k] = &rec
	return nil
}

// ClosePunch sets punch-out on the open record for (identity, day).
func (s *Store) ClosePunch(ctx context.Context, identity, day string, punchOut time.Time) error {
	if s.CloseError != nil {
		return s.CloseError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key(identity, day)]
	if !ok {
		return fmt.Errorf("no record for %s on %s", identity, day)
	}
	if rec.PunchOut != nil {
		return fmt.Errorf("record for %s on %s is already closed", identity, day)
	}
	out := punchOut
	rec.PunchOut = &out
	return nil
}

// ListDay returns copies of every record for a calendar day.
func (s *Store) ListDay(ctx context.Context, day string) ([]ledger.Record, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []ledger.Record
	for _, rec := range s.records {
		if rec.Day == day {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

// ListIdentityRange returns copies of one identity's records with
// fromDay <= day < toDay. Day strings compare lexicographically because of
// the fixed format.
func (s *Store) ListIdentityRange(ctx context.Context, identity, fromDay, toDay string) ([]ledger.Record, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []ledger.Record
	for _, rec := range s.records {
		if rec.Identity == identity && rec.Day >= fromDay && rec.Day < toDay {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

// Identities returns the distinct identities in the store, sorted.
func (s *Store) Identities(ctx context.Context) ([]string, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, rec := range s.records {
		seen[rec.Identity] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
