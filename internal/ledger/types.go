package ledger

import "time"

// DayFormat is how calendar days are keyed throughout the ledger.
const DayFormat = "2006-01-02"

// Transition says what a recognition event did to the daily record.
type Transition string

const (
	TransitionPunchedIn       Transition = "punched_in"       // first event of the day, record created
	TransitionPunchedOut      Transition = "punched_out"      // second event, record closed
	TransitionAlreadyComplete Transition = "already_complete" // record already closed, no-op
)

// Record is one identity's attendance for one calendar day. At most one
// record exists per (identity, day).
type Record struct {
	Identity  string     `json:"identity"`
	Day       string     `json:"day"` // DayFormat in the ledger's timezone
	PunchIn   time.Time  `json:"punch_in"`
	PunchOut  *time.Time `json:"punch_out,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Closed reports whether the record has a punch-out.
func (r Record) Closed() bool {
	return r.PunchOut != nil
}

// Duration returns punch-out minus punch-in for a closed record. The
// second return is false while the record is still open. The clock is
// trusted as-is, so a punch-out recorded before the punch-in yields a
// negative duration rather than an error.
func (r Record) Duration() (time.Duration, bool) {
	if r.PunchOut == nil {
		return 0, false
	}
	return r.PunchOut.Sub(r.PunchIn), true
}

// Summary aggregates one identity's attendance over a month.
type Summary struct {
	Identity       string        `json:"identity"`
	DaysPresent    int           `json:"days_present"`
	CompleteDays   int           `json:"complete_days"`
	IncompleteDays int           `json:"incomplete_days"`
	TotalWorked    time.Duration `json:"total_worked"`
}
