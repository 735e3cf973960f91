package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mhornak/faceclock/internal/config"
	"github.com/mhornak/faceclock/internal/gallery"
	"github.com/mhornak/faceclock/internal/ledger"
	"github.com/mhornak/faceclock/internal/ledger/mariadb"
	"github.com/mhornak/faceclock/internal/ledger/memory"
	"github.com/mhornak/faceclock/internal/ledger/postgres"
)

// openGallery loads the embedding gallery from the configured path.
// A missing file yields an empty gallery.
func openGallery(cfg *config.Config) (*gallery.Gallery, error) {
	g := gallery.New(cfg.Recognition.Dim)
	if err := g.Load(cfg.Gallery.Path); err != nil {
		return nil, fmt.Errorf("loading gallery from %s: %w", cfg.Gallery.Path, err)
	}
	return g, nil
}

// openStore connects the configured attendance store and runs migrations.
// Without DATABASE_URL an in-memory store is used; records are then lost
// on exit, which is fine for local experiments but nothing else.
func openStore(ctx context.Context, cfg *config.Config) (ledger.Store, func() error, error) {
	if cfg.Database.URL == "" {
		fmt.Println("DATABASE_URL not set, using in-memory attendance store")
		return memory.NewStore(), func() error { return nil }, nil
	}

	switch cfg.Database.Driver {
	case "postgres":
		pool, err := postgres.NewPool(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrating attendance schema: %w", err)
		}
		fmt.Println("Using PostgreSQL attendance store")
		return postgres.NewStore(pool), pool.Close, nil

	case "mysql", "mariadb":
		pool, err := mariadb.NewPool(cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MariaDB: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrating attendance schema: %w", err)
		}
		fmt.Println("Using MariaDB attendance store")
		return mariadb.NewStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (postgres, mysql)", cfg.Database.Driver)
	}
}

// openLedger builds the attendance ledger in the configured timezone.
func openLedger(store ledger.Store, cfg *config.Config) (*ledger.Ledger, error) {
	loc, err := time.LoadLocation(cfg.Clock.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE %q: %w", cfg.Clock.Timezone, err)
	}
	return ledger.New(store, loc), nil
}
