package app

import (
	"fmt"
	"net/http"

	"partner-portal/internal/config"
	"partner-portal/internal/db"
	portaldomain "partner-portal/internal/domain/portal"
	"partner-portal/internal/notify"
	"partner-portal/internal/repository/inmemory"
	portalrepo "partner-portal/internal/repository/postgres/portal"
	"partner-portal/internal/transport/httpserver"
	"partner-portal/internal/transport/httpserver/handler"
	"partner-portal/pkg/logger"

	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	webhook    *notify.Webhook
	storage    string
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing storage", "driver", cfg.Storage.Driver)
	repo, dbConn, storage, err := openStorage(cfg, log)
	if err != nil {
		return nil, err
	}

	opts := []portaldomain.Option{
		portaldomain.WithPartnerCache(inmemory.NewPartnerCache(), cfg.PartnerTTL),
	}
	webhook := notify.New(cfg.Webhook, log)
	if webhook != nil {
		log.Info("app: webhook notifier enabled")
		opts = append(opts, portaldomain.WithNotifier(webhook))
	}
	portalService := portaldomain.NewService(repo, opts...)

	log.Info("app: initializing router")
	handlers := handler.New(portalService, storage, log)
	router := httpserver.NewRouter(cfg, handlers, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		webhook:    webhook,
		storage:    storage,
	}, nil
}

// openStorage picks the backing once at startup. A postgres connection
// failure falls back to memory only when STORAGE_FALLBACK_MEMORY is set.
func openStorage(cfg config.Config, log logger.Logger) (portaldomain.Repository, *gorm.DB, string, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		return inmemory.NewPortalRepository(), nil, config.StorageDriverMemory, nil
	case config.StorageDriverSQLite:
		dbConn, err := db.NewSQLite(cfg.Storage.SQLitePath, log)
		if err != nil {
			return nil, nil, "", err
		}
		if err := db.Migrate(dbConn); err != nil {
			_ = db.Close(dbConn)
			return nil, nil, "", fmt.Errorf("migrate: %w", err)
		}
		return portalrepo.NewPostgres(dbConn), dbConn, config.StorageDriverSQLite, nil
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err == nil {
		if err = db.Migrate(dbConn); err != nil {
			_ = db.Close(dbConn)
			err = fmt.Errorf("migrate: %w", err)
		}
	}
	if err != nil {
		if !cfg.Storage.FallbackMemory {
			return nil, nil, "", err
		}
		log.Warn("app: postgres unavailable, serving from memory", "err", err)
		return inmemory.NewPortalRepository(), nil, config.StorageDriverMemory, nil
	}
	return portalrepo.NewPostgres(dbConn), dbConn, config.StorageDriverPostgres, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Storage() string {
	return a.storage
}

// Close waits for in-flight webhook deliveries, then releases the database.
func (a *App) Close() error {
	if a.webhook != nil {
		a.webhook.Wait()
	}
	if a.db == nil {
		return nil
	}
	return db.Close(a.db)
}
