// Command seed-db loads per-user price overrides into PostgreSQL from a
// gzipped JSON export. It runs migrations first, so a fresh database can be
// seeded in one shot.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/lunchbox-orders/internal/pricing"
	"github.com/xenking/lunchbox-orders/internal/storage/postgres"
)

type overrideJSON struct {
	UserID    int64            `json:"userId"`
	ProductID int64            `json:"productId"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Hidden    bool             `json:"hidden,omitempty"`
}

func main() {
	var (
		databaseURL   string
		overridesFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&overridesFile, "overrides-file", "db/seed/overrides.json.gz", "path to gzipped overrides JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, overridesFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, overridesFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	overrides, err := readOverrides(overridesFile)
	if err != nil {
		return errors.Wrap(err, "read overrides")
	}

	slog.Info("upserting overrides", slog.Int("count", len(overrides)))

	repo := postgres.NewOverrideRepository(pool)
	for _, ov := range overrides {
		if err := repo.Upsert(ctx, pricing.Override{
			UserID:    ov.UserID,
			ProductID: ov.ProductID,
			Price:     ov.Price,
			Hidden:    ov.Hidden,
		}); err != nil {
			return errors.Wrapf(err, "upsert override (%d, %d)", ov.UserID, ov.ProductID)
		}
	}

	return nil
}

func readOverrides(path string) ([]overrideJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}
	defer f.Close()

	// Plain JSON exports are accepted too: fall back when the gzip header
	// probe fails.
	var r io.Reader = f
	gz, err := pgzip.NewReader(f)
	switch {
	case err == nil:
		defer gz.Close()
		r = gz
	case errors.Is(err, pgzip.ErrHeader):
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, errors.Wrap(err, "rewind file")
		}
	default:
		return nil, errors.Wrap(err, "open gzip stream")
	}

	var overrides []overrideJSON
	if err := json.NewDecoder(r).Decode(&overrides); err != nil {
		return nil, errors.Wrap(err, "parse overrides JSON")
	}
	return overrides, nil
}
