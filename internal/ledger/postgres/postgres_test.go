//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/mhornak/faceclock/internal/config"
	"github.com/mhornak/faceclock/internal/ledger"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestStore_PunchCycle(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	store := NewStore(pool)

	punchIn := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	// No record yet.
	rec, err := store.FindForDay(ctx, "Alice", "2024-03-15")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no record, got %+v", rec)
	}

	// Punch in.
	if err := store.Insert(ctx, ledger.Record{
		Identity:  "Alice",
		Day:       "2024-03-15",
		PunchIn:   punchIn,
		CreatedAt: punchIn,
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Duplicate insert must hit the unique constraint.
	if err := store.Insert(ctx, ledger.Record{
		Identity:  "Alice",
		Day:       "2024-03-15",
		PunchIn:   punchIn.Add(time.Minute),
		CreatedAt: punchIn.Add(time.Minute),
	}); err == nil {
		t.Fatal("expected unique constraint violation on duplicate insert")
	}

	rec, err = store.FindForDay(ctx, "Alice", "2024-03-15")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec == nil || rec.Closed() {
		t.Fatalf("expected open record, got %+v", rec)
	}
	if !rec.PunchIn.Equal(punchIn) {
		t.Errorf("expected punch-in %v, got %v", punchIn, rec.PunchIn)
	}

	// Punch out.
	punchOut := punchIn.Add(8 * time.Hour)
	if err := store.ClosePunch(ctx, "Alice", "2024-03-15", punchOut); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Closing again matches zero rows.
	if err := store.ClosePunch(ctx, "Alice", "2024-03-15", punchOut.Add(time.Hour)); err == nil {
		t.Fatal("expected error closing an already-closed record")
	}

	rec, err = store.FindForDay(ctx, "Alice", "2024-03-15")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !rec.Closed() || !rec.PunchOut.Equal(punchOut) {
		t.Fatalf("expected record closed at %v, got %+v", punchOut, rec)
	}
}

func TestStore_Queries(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	store := NewStore(pool)

	seed := []struct {
		identity string
		day      string
		hour     int
	}{
		{"Alice", "2024-03-15", 9},
		{"Bob", "2024-03-15", 8},
		{"Alice", "2024-03-16", 10},
		{"Alice", "2024-04-01", 9},
	}
	for _, s := range seed {
		punchIn := time.Date(2024, 3, 15, s.hour, 0, 0, 0, time.UTC)
		if err := store.Insert(ctx, ledger.Record{
			Identity:  s.identity,
			Day:       s.day,
			PunchIn:   punchIn,
			CreatedAt: punchIn,
		}); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}

	day, err := store.ListDay(ctx, "2024-03-15")
	if err != nil {
		t.Fatalf("list day: %v", err)
	}
	if len(day) != 2 {
		t.Fatalf("expected 2 records for the day, got %d", len(day))
	}
	if day[0].Identity != "Bob" {
		t.Errorf("expected Bob first (earlier punch-in), got %s", day[0].Identity)
	}

	march, err := store.ListIdentityRange(ctx, "Alice", "2024-03-01", "2024-04-01")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(march) != 2 {
		t.Fatalf("expected 2 March records for Alice, got %d", len(march))
	}

	names, err := store.Identities(ctx)
	if err != nil {
		t.Fatalf("identities: %v", err)
	}
	if len(names) != 2 || names[0] != "Alice" || names[1] != "Bob" {
		t.Errorf("unexpected identities %v", names)
	}
}
