// Package ledger derives daily punch-in/punch-out attendance state from
// recognition events. Per identity and calendar day the state machine is
//
//	NoRecord -> OpenPunchIn -> Closed
//
// with every further event on a closed day being a reported no-op.
package ledger

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Ledger owns the attendance records behind a Store. A single mutex makes
// the check-then-transition sequence in RecordEvent atomic; request rates
// are low (one person in front of a camera), so simplicity wins over
// per-identity locking.
type Ledger struct {
	mu    sync.Mutex
	store Store
	loc   *time.Location
}

// New creates a ledger. The location fixes the timezone that calendar
// days are derived in; it must be the same for the whole process so day
// boundaries never depend on ambient locale. A nil location means UTC.
func New(store Store, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{store: store, loc: loc}
}

// Day formats a timestamp as the calendar day it falls on in the ledger's
// timezone.
func (l *Ledger) Day(t time.Time) string {
	return t.In(l.loc).Format(DayFormat)
}

// Location returns the timezone the ledger derives calendar days in.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// RecordEvent applies one successful recognition at the given timestamp
// and reports which transition happened. The returned record reflects the
// state after the transition.
//
// The wall clock is trusted: a punch-out earlier than its punch-in is
// still recorded (the caller chose the timestamps), it just yields a
// negative duration.
func (l *Ledger) RecordEvent(ctx context.Context, identity string, now time.Time) (Transition, *Record, error) {
	day := l.Day(now)

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.store.FindForDay(ctx, identity, day)
	if err != nil {
		return "", nil, &PersistenceError{Op: "lookup", Err: err}
	}

	switch {
	case existing == nil:
		rec := Record{
			Identity:  identity,
			Day:       day,
			PunchIn:   now,
			CreatedAt: now,
		}
		if err := l.store.Insert(ctx, rec); err != nil {
			return "", nil, &PersistenceError{Op: "punch-in", Err: err}
		}
		return TransitionPunchedIn, &rec, nil

	case !existing.Closed():
		if err := l.store.ClosePunch(ctx, identity, day, now); err != nil {
			return "", nil, &PersistenceError{Op: "punch-out", Err: err}
		}
		out := now
		rec := *existing
		rec.PunchOut = &out
		return TransitionPunchedOut, &rec, nil

	default:
		// Already punched out today; report it, change nothing.
		return TransitionAlreadyComplete, existing, nil
	}
}

// RecordsForDay returns every record for the calendar day the timestamp
// falls on, sorted by punch-in ascending.
func (l *Ledger) RecordsForDay(ctx context.Context, t time.Time) ([]Record, error) {
	recs, err := l.store.ListDay(ctx, l.Day(t))
	if err != nil {
		return nil, &PersistenceError{Op: "list day", Err: err}
	}
	sortByPunchIn(recs)
	return recs, nil
}

// RecordsForIdentity returns one identity's records for a month, sorted
// by punch-in ascending. The identity is resolved with a normalized
// comparison so "jan-novak" finds records stored under "Jan Novák".
func (l *Ledger) RecordsForIdentity(ctx context.Context, identity string, year int, month time.Month) ([]Record, error) {
	resolved, err := l.resolveIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, l.loc)
	to := from.AddDate(0, 1, 0)

	recs, err := l.store.ListIdentityRange(ctx, resolved, from.Format(DayFormat), to.Format(DayFormat))
	if err != nil {
		return nil, &PersistenceError{Op: "list identity", Err: err}
	}
	sortByPunchIn(recs)
	return recs, nil
}

// MonthlySummary aggregates one identity's month: days present, closed
// and still-open days, and total worked time over closed records.
func (l *Ledger) MonthlySummary(ctx context.Context, identity string, year int, month time.Month) (Summary, error) {
	recs, err := l.RecordsForIdentity(ctx, identity, year, month)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{Identity: identity, DaysPresent: len(recs)}
	for _, rec := range recs {
		if d, ok := rec.Duration(); ok {
			sum.CompleteDays++
			sum.TotalWorked += d
		} else {
			sum.IncompleteDays++
		}
	}
	sum.IncompleteDays = sum.DaysPresent - sum.CompleteDays
	return sum, nil
}

// resolveIdentity maps a query name to the stored display form using the
// normalized comparison. An unknown name is returned as-is and simply
// yields no records.
func (l *Ledger) resolveIdentity(ctx context.Context, identity string) (string, error) {
	normalized := NormalizeIdentity(identity)

	known, err := l.store.Identities(ctx)
	if err != nil {
		return "", &PersistenceError{Op: "list identities", Err: err}
	}
	for _, name := range known {
		if NormalizeIdentity(name) == normalized {
			return name, nil
		}
	}
	return identity, nil
}

func sortByPunchIn(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PunchIn.Before(recs[j].PunchIn)
	})
}
