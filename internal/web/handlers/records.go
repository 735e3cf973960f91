package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mhornak/faceclock/internal/ledger"
)

// RecordsHandler handles attendance record queries.
type RecordsHandler struct {
	ledger *ledger.Ledger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(led *ledger.Ledger) *RecordsHandler {
	return &RecordsHandler{ledger: led}
}

// Day returns every attendance record for one calendar day.
func (h *RecordsHandler) Day(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	t, err := time.ParseInLocation(ledger.DayFormat, date, h.ledger.Location())
	if err != nil {
		respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	recs, err := h.ledger.RecordsForDay(r.Context(), t)
	if err != nil {
		log.Printf("Failed to list records for %s: %v", sanitizeForLog(date), err)
		respondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"day":     date,
		"records": recs,
	})
}

// Month returns one identity's records for a month.
func (h *RecordsHandler) Month(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	recs, err := h.ledger.RecordsForIdentity(r.Context(), identity, year, month)
	if err != nil {
		h.respondQueryError(w, identity, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identity": identity,
		"year":     year,
		"month":    int(month),
		"records":  recs,
	})
}

// Summary returns one identity's monthly attendance aggregate.
func (h *RecordsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	year, month, ok := parseYearMonth(w, r)
	if !ok {
		return
	}

	sum, err := h.ledger.MonthlySummary(r.Context(), identity, year, month)
	if err != nil {
		h.respondQueryError(w, identity, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"identity":        sum.Identity,
		"year":            year,
		"month":           int(month),
		"days_present":    sum.DaysPresent,
		"complete_days":   sum.CompleteDays,
		"incomplete_days": sum.IncompleteDays,
		"total_worked":    sum.TotalWorked.String(),
	})
}

func (h *RecordsHandler) respondQueryError(w http.ResponseWriter, identity string, err error) {
	var pe *ledger.PersistenceError
	if errors.As(err, &pe) {
		log.Printf("Failed to query records for %s: %v", sanitizeForLog(identity), err)
		respondError(w, http.StatusInternalServerError, "failed to query records")
		return
	}
	respondError(w, http.StatusBadRequest, err.Error())
}

// parseYearMonth reads year and month query parameters, defaulting to the
// current month when both are absent.
func parseYearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" && monthStr == "" {
		now := time.Now()
		return now.Year(), now.Month(), true
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 {
		respondError(w, http.StatusBadRequest, "year must be a positive integer")
		return 0, 0, false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		respondError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return 0, 0, false
	}
	return year, time.Month(month), true
}
