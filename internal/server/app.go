// Package server wires the eventdrop service together: configuration,
// datastore, file storage, services and the HTTP API, and runs it until
// SIGINT or SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/eventdrop/internal/dbx"
	"github.com/dmitrijs2005/eventdrop/internal/logging"
	"github.com/dmitrijs2005/eventdrop/internal/server/config"
	"github.com/dmitrijs2005/eventdrop/internal/server/httpapi"
	"github.com/dmitrijs2005/eventdrop/internal/server/metrics"
	"github.com/dmitrijs2005/eventdrop/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventdrop/internal/server/services"
	"github.com/dmitrijs2005/eventdrop/internal/server/staging"
	"github.com/dmitrijs2005/eventdrop/internal/server/storage"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler *httpapi.API
}

var openDB = dbx.Open

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	st, err := newStorage(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	maxFileSize, err := c.MaxFileSizeBytes()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	spooler, err := staging.NewSpooler(c.TempDir, maxFileSize)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("temp dir init error: %w", err)
	}

	m := metrics.New()

	es := services.NewEventService(db, rm, st, logger, m)
	us := services.NewUploadService(db, rm, st, logger, m, c.UploadWorkers)

	api := httpapi.New(es, us, spooler, m, logger, httpapi.Options{
		AdminPassword:      c.AdminPassword,
		RedactErrorDetails: c.RedactErrorDetails,
		Ping:               db.PingContext,
		Metrics:            m.Handler(),
	})

	if c.AdminPassword == "" {
		logger.Warn(ctx, "admin password is not set, admin endpoints will reject every request")
	}

	return &App{config: c, logger: logger, db: db, handler: api}, nil
}

// newStorage picks the file storage backend named by the config.
func newStorage(ctx context.Context, c *config.Config, logger logging.Logger) (storage.FileStorage, error) {
	switch c.StorageDriver {
	case config.StorageDriverLocal:
		return storage.NewLocalStorage(c, logger)
	case config.StorageDriverS3:
		return storage.NewS3Storage(ctx, c, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.HTTPAddr, app.handler.Handler(), app.logger, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
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
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
