package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agency_crm_backend/internal/clients"
	"agency_crm_backend/internal/conversion"
	"agency_crm_backend/internal/email"
	"agency_crm_backend/internal/events"
	"agency_crm_backend/internal/exports"
	apphttp "agency_crm_backend/internal/http"
	"agency_crm_backend/internal/http/router"
	"agency_crm_backend/internal/invoices"
	"agency_crm_backend/internal/leads"
	"agency_crm_backend/internal/memstore"
	"agency_crm_backend/internal/notification"
	"agency_crm_backend/internal/numbering"
	"agency_crm_backend/internal/ports"
	"agency_crm_backend/internal/quotes"
	"agency_crm_backend/internal/repository"
	"agency_crm_backend/internal/scheduler"
	"agency_crm_backend/internal/search"
	"agency_crm_backend/internal/services"
	servicesrepo "agency_crm_backend/internal/services/repository"
	"agency_crm_backend/platform/config"
	"agency_crm_backend/platform/db"
	"agency_crm_backend/platform/logger"
	"agency_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var (
		store       ports.Store
		catalogRepo servicesrepo.Repository
		health      apphttp.HealthChecker
	)
	if cfg.UsesMemoryStore() {
		log.Warn("STORE_DRIVER=memory; data is lost on restart")
		store = memstore.New()
		catalogRepo = servicesrepo.NewMemory()
	} else {
		pool := connectDatabase(ctx, cfg, log)
		defer pool.Close()
		pgStore := repository.New(pool)
		store = pgStore
		health = pgStore
		catalogRepo = servicesrepo.New(pool)
	}

	numbers, closeNumbers := initNumbering(cfg, log)
	if closeNumbers != nil {
		defer closeNumbers()
	}

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	exporter := initExporter(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(notification.NewDispatcher(initSender(cfg, log), initChat(cfg, log)), cfg, log)
	notificationModule.RegisterHandlers(eventBus)
	if queue, closeQueue := initNotificationQueue(cfg, log); queue != nil {
		defer closeQueue()
		notificationModule.SetQueue(queue)
	}

	leadsModule := leads.NewModule(store, eventBus, cfg, val, log)
	clientsModule := clients.NewModule(store, val)
	servicesModule := services.NewModule(catalogRepo, val, log)
	quotesModule := quotes.NewModule(store, numbers, eventBus, cfg, val, log)
	invoicesModule := invoices.NewModule(store, numbers, eventBus, val, log)
	conversionModule := conversion.NewModule(store, numbers, eventBus, cfg, val, log)
	searchModule := search.NewModule(store, val)

	// Wire catalog reader: quotes → services (line items referencing the catalog)
	quotesModule.Service().SetCatalogReader(servicesModule.Service())

	if exporter != nil {
		quotesModule.Service().SetExporter(exporter)
		invoicesModule.Service().SetExporter(exporter)
		conversionModule.Service().SetExporter(exporter)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   health,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			clientsModule,
			servicesModule,
			quotesModule,
			invoicesModule,
			conversionModule,
			searchModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func connectDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) *pgxpool.Pool {
	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, cfg.MigrationsDir)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	log.Info("database connection established")
	return pool
}

// initNumbering returns the number allocator. Without NUMBERING_DRIVER=redis
// numbers come from the store inside the document's own transaction.
func initNumbering(cfg *config.Config, log *logger.Logger) (*numbering.Allocator, func()) {
	if !cfg.UsesRedisNumbering() {
		return numbering.NewAllocator(nil), nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL", "error", err)
		panic("invalid REDIS_URL: " + err.Error())
	}
	client := redis.NewClient(opt)
	log.Info("redis numbering enabled")
	return numbering.NewAllocator(numbering.NewRedisStore(client)), func() {
		_ = client.Close()
	}
}

func initExporter(ctx context.Context, cfg *config.Config, log *logger.Logger) *exports.Exporter {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; document exports disabled")
		return nil
	}

	storage, err := exports.NewMinIOStorage(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure documents bucket", 5, 2*time.Second, func() error {
		return storage.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinIOBucketDocuments())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "documentsBucket", cfg.GetMinIOBucketDocuments())

	return exports.NewExporter(exports.NewRenderer(cfg.GetAgencyName(), cfg.GetSMTPFromEmail()), storage)
}

func initSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP_HOST not configured; emails disabled")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
}

func initChat(cfg *config.Config, log *logger.Logger) notification.ChatPoster {
	if cfg.GetSlackWebhookURL() == "" {
		log.Info("SLACK_WEBHOOK_URL not configured; chat alerts disabled")
		return notification.NoopPoster{}
	}
	return notification.NewSlackWebhook(cfg.GetSlackWebhookURL())
}

func initNotificationQueue(cfg config.RedisConfig, log *logger.Logger) (notification.Queue, func()) {
	if cfg.GetRedisURL() == "" {
		log.Info("REDIS_URL not configured; notifications are sent inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize notification queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
