package main

import (
	"context"
	"database/sql"

	fxmodules "osrs-tracker/internal/fx"
	"osrs-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runCollector),
	).Run()
}

// runCollector performs one collection pass and shuts the app down.
// Scheduling repeated passes is left to cron or an equivalent.
func runCollector(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	roster *service.RosterService,
	collector *service.Collector,
	db *sql.DB,
	logger zerolog.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				runCtx := context.Background()
				entries := roster.DefaultEntries(runCtx)
				summary := collector.Run(runCtx, entries)

				if summary.Failed > 0 || summary.NotFound > 0 {
					logger.Warn().
						Str("run_id", summary.RunID).
						Int("not_found", summary.NotFound).
						Int("failed", summary.Failed).
						Msg("run completed with skipped entries")
				}

				if err := shutdowner.Shutdown(); err != nil {
					logger.Error().Err(err).Msg("failed to shut down")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}
			return nil
		},
	})
}
