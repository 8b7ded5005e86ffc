// Package server initializes and runs the application server. It opens
// the database, runs migrations, wires the services, and starts the
// HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/MMaus/listkeeper/internal/logging"
	"github.com/MMaus/listkeeper/internal/server/config"
	"github.com/MMaus/listkeeper/internal/server/httpapi"
	"github.com/MMaus/listkeeper/internal/server/repositories/repomanager"
	"github.com/MMaus/listkeeper/internal/server/services"
	"github.com/MMaus/listkeeper/internal/timex"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	clock := timex.System{}

	userService := services.NewUserService(db, rm, cfg, logger)
	syncService := services.NewSyncService(db, rm, clock, logger)
	taskService := services.NewTaskService(db, rm, clock)
	shoppingService := services.NewShoppingItemService(db, rm, clock)

	server := httpapi.NewServer(cfg.EndpointAddrHTTP, logger,
		userService, syncService, taskService, shoppingService, cfg.SecretKey)

	return &App{config: cfg, logger: logger, db: db, server: server}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
