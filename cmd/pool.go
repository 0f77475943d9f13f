package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trailshed/internal/store"
)

// dbPool creates a pgxpool.Pool for the PostGIS backend.
// Caller is responsible for calling pool.Close().
func dbPool(ctx context.Context) (*pgxpool.Pool, error) {
	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		return nil, eris.New("no database_url configured (set store.database_url or TRAILSHED_STORE_DATABASE_URL)")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, eris.Wrap(err, "create connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "ping database")
	}

	fmt.Println("Connected to database")
	return pool, nil
}

// openLedger opens and migrates the local SQLite run ledger.
// Caller is responsible for calling Close().
func openLedger(ctx context.Context) (*store.SQLiteLedger, error) {
	led, err := store.NewSQLite(cfg.Ledger.Path)
	if err != nil {
		return nil, err
	}
	if err := led.Migrate(ctx); err != nil {
		led.Close() //nolint:errcheck
		return nil, err
	}
	return led, nil
}

// recordRun wraps a pipeline stage with ledger bookkeeping: a running row
// before fn, a complete/failed row after. Ledger write failures are logged,
// never propagated, so the stage result wins.
func recordRun(ctx context.Context, stage string, fn func(ctx context.Context) (int64, string, error)) error {
	led, err := openLedger(ctx)
	if err != nil {
		return eris.Wrapf(err, "%s: open run ledger", stage)
	}
	defer led.Close() //nolint:errcheck

	run, err := led.StartRun(ctx, stage)
	if err != nil {
		return eris.Wrapf(err, "%s: start run", stage)
	}

	rows, detail, ferr := fn(ctx)

	status := store.RunStatusComplete
	if ferr != nil {
		status = store.RunStatusFailed
		detail = ferr.Error()
	}
	if uerr := led.FinishRun(ctx, run.ID, status, rows, detail); uerr != nil {
		zap.L().Warn("failed to record run", zap.String("stage", stage), zap.Error(uerr))
	}
	return ferr
}
