package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRecordsDay(t *testing.T) {
	led, _ := testLedger()
	ctx := context.Background()

	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for _, identity := range []string{"Alice", "Bob"} {
		if _, _, err := led.RecordEvent(ctx, identity, in); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}
		in = in.Add(15 * time.Minute)
	}

	handler := NewRecordsHandler(led)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/day/2026-03-02", nil)
	req = requestWithChiParams(req, map[string]string{"date": "2026-03-02"})
	rec := httptest.NewRecorder()
	handler.Day(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec.Body)
	records := body["records"].([]any)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	first := records[0].(map[string]any)
	if first["identity"] != "Alice" {
		t.Errorf("expected records sorted by punch-in, first is %v", first["identity"])
	}
}

func TestRecordsDayBadDate(t *testing.T) {
	led, _ := testLedger()
	handler := NewRecordsHandler(led)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/day/02-03-2026", nil)
	req = requestWithChiParams(req, map[string]string{"date": "02-03-2026"})
	rec := httptest.NewRecorder()
	handler.Day(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestRecordsMonth(t *testing.T) {
	led, _ := testLedger()
	ctx := context.Background()

	// Two days in March, one in April.
	for _, day := range []int{2, 3} {
		ts := time.Date(2026, 3, day, 9, 0, 0, 0, time.UTC)
		if _, _, err := led.RecordEvent(ctx, "Jan Novák", ts); err != nil {
			t.Fatalf("failed to seed ledger: %v", err)
		}
	}
	if _, _, err := led.RecordEvent(ctx, "Jan Novák", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("failed to seed ledger: %v", err)
	}

	handler := NewRecordsHandler(led)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/jan-novak?year=2026&month=3", nil)
	req = requestWithChiParams(req, map[string]string{"identity": "jan-novak"})
	rec := httptest.NewRecorder()
	handler.Month(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec.Body)
	records := body["records"].([]any)
	if len(records) != 2 {
		t.Errorf("expected 2 march records, got %d", len(records))
	}
}

func TestRecordsMonthBadParams(t *testing.T) {
	led, _ := testLedger()
	handler := NewRecordsHandler(led)

	tests := []struct {
		name  string
		query string
	}{
		{"month out of range", "?year=2026&month=13"},
		{"year missing", "?month=3"},
		{"not numeric", "?year=abc&month=3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/records/alice"+tc.query, nil)
			req = requestWithChiParams(req, map[string]string{"identity": "alice"})
			rec := httptest.NewRecorder()
			handler.Month(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestRecordsSummary(t *testing.T) {
	led, _ := testLedger()
	ctx := context.Background()

	// One complete 8 hour day and one still-open day.
	if _, _, err := led.RecordEvent(ctx, "Alice", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("failed to seed ledger: %v", err)
	}
	if _, _, err := led.RecordEvent(ctx, "Alice", time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("failed to seed ledger: %v", err)
	}
	if _, _, err := led.RecordEvent(ctx, "Alice", time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("failed to seed ledger: %v", err)
	}

	handler := NewRecordsHandler(led)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/Alice/summary?year=2026&month=3", nil)
	req = requestWithChiParams(req, map[string]string{"identity": "Alice"})
	rec := httptest.NewRecorder()
	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec.Body)
	if body["days_present"].(float64) != 2 {
		t.Errorf("expected 2 days present, got %v", body["days_present"])
	}
	if body["complete_days"].(float64) != 1 {
		t.Errorf("expected 1 complete day, got %v", body["complete_days"])
	}
	if body["total_worked"] != "8h0m0s" {
		t.Errorf("expected 8h0m0s worked, got %v", body["total_worked"])
	}
}

func TestRecordsSummaryUnknownIdentity(t *testing.T) {
	led, _ := testLedger()
	handler := NewRecordsHandler(led)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records/nobody/summary?year=2026&month=3", nil)
	req = requestWithChiParams(req, map[string]string{"identity": "nobody"})
	rec := httptest.NewRecorder()
	handler.Summary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec.Body)
	if body["days_present"].(float64) != 0 {
		t.Errorf("expected empty summary, got %v days", body["days_present"])
	}
}
