package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/influmetrics/integrations-cli/internal/model"
	"github.com/influmetrics/integrations-cli/internal/store"
)

func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "integrations.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	// Housekeeping: expired stats never serve a cache hit, purge them here
	// so the cache table does not grow without bound.
	if n, err := st.DeleteExpiredStats(ctx); err != nil {
		zap.L().Warn("failed to purge expired stats cache", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("purged expired stats cache", zap.Int("entries", n))
	}
	return st, nil
}

func cacheTTL() time.Duration {
	hours := cfg.Store.CacheTTLHours
	if hours <= 0 {
		hours = 168
	}
	return time.Duration(hours) * time.Hour
}

// trackRun wraps a stage in a run record. Store failures are logged and
// do not fail the stage.
func trackRun(ctx context.Context, st store.Store, stage, source string, fn func() (*model.RunSummary, error)) error {
	run, err := st.CreateRun(ctx, stage, source)
	if err != nil {
		zap.L().Warn("failed to record run", zap.Error(err))
		run = nil
	}
	if run != nil {
		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning); err != nil {
			zap.L().Warn("failed to update run status", zap.Error(err))
		}
	}

	summary, err := fn()
	if run == nil {
		return err
	}

	if err != nil {
		if serr := st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed); serr != nil {
			zap.L().Warn("failed to mark run failed", zap.Error(serr))
		}
		return err
	}
	if serr := st.CompleteRun(ctx, run.ID, summary); serr != nil {
		zap.L().Warn("failed to complete run", zap.Error(serr))
	}
	return nil
}
