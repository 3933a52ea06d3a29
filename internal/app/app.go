package app

import (
	"context"
	"os"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/mealdesk/mealdesk/internal/domain/cart"
	"github.com/mealdesk/mealdesk/internal/domain/checkout"
	"github.com/mealdesk/mealdesk/internal/domain/user"
	"github.com/mealdesk/mealdesk/internal/repository"
	"github.com/mealdesk/mealdesk/internal/terminal"
	"github.com/mealdesk/mealdesk/pkg/health"
)

// Run creates all dependencies and drives the interactive terminal session
// until it finishes or the context is cancelled. It is the single wiring
// point for the application.
func Run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	lg.Info("Initializing")

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Store connectivity watchdog. The session keeps running while the store
	// is down (the next operation will fail and re-prompt); the watchdog just
	// makes the outage visible in the logs.
	watchdog := health.New()
	watchdog.AddCheck("postgres", cfg.Watchdog.Timeout, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	watchdog.AddCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	watchdog.OnTransition(func(name string, healthy bool, err error) {
		if healthy {
			lg.Info("check recovered", zap.String("check", name))
			return
		}
		lg.Warn("check failing", zap.String("check", name), zap.Error(err))
	})
	watchdog.Start(ctx, cfg.Watchdog.Interval)
	defer watchdog.Stop()

	// Repositories.
	userRepo := repository.NewUserRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	cartStore := repository.NewCartStore(pool)

	// Domain services.
	authService := user.NewService(userRepo, []byte(cfg.PasswordPepper))
	cartEngine := cart.NewEngine(cartStore, catalogRepo)
	coordinator := checkout.NewCoordinator(cartEngine, cartStore)

	// Terminal session on stdin/stdout; logs go through zap, not the prompt
	// stream.
	session := terminal.NewSession(
		terminal.Config{In: os.Stdin, Out: os.Stdout},
		authService,
		catalogRepo,
		cartEngine,
		coordinator,
	)

	lg.Info("Session starting")
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "session")
	}
	lg.Info("Session finished")
	return nil
}
