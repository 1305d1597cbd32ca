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

	"circletel_backend/internal/adapters"
	"circletel_backend/internal/adapters/storage"
	"circletel_backend/internal/catalog"
	catalogcache "circletel_backend/internal/catalog/cache"
	catalogservice "circletel_backend/internal/catalog/service"
	"circletel_backend/internal/email"
	"circletel_backend/internal/events"
	apphttp "circletel_backend/internal/http"
	"circletel_backend/internal/http/router"
	"circletel_backend/internal/notification"
	"circletel_backend/internal/pdf"
	"circletel_backend/internal/quotes"
	quoteservice "circletel_backend/internal/quotes/service"
	"circletel_backend/internal/scheduler"
	"circletel_backend/migrations"
	"circletel_backend/platform/config"
	"circletel_backend/platform/db"
	"circletel_backend/platform/logger"
	"circletel_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

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
	defer pool.Close()
	log.Info("database connection established")

	if cfg.GetRunMigrations() {
		if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	eventBus := events.NewInMemoryBus(log)

	expiryScheduler, closeScheduler := initExpiryScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	packageCache, closeCache := initPackageCache(ctx, cfg, log)
	if closeCache != nil {
		defer closeCache()
	}

	storageSvc := initStorage(ctx, cfg, log)

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(pool, packageCache, val, log)

	catalogReader := adapters.NewCatalogPackageReader(catalogModule.Repository())
	quotesModule := quotes.NewModule(pool, catalogReader, eventBus, val, cfg.GetQuoteValidityDays(), log)
	quotesModule.Service().SetPDFRenderer(pdf.NewGenerator(cfg))
	if expiryScheduler != nil {
		quotesModule.Service().SetExpiryScheduler(expiryScheduler)
	}

	acceptanceProcessor := adapters.NewQuoteAcceptanceProcessor(quotesModule.Service(), storageSvc, cfg.GetMinioBucketQuotePDFs(), log)
	if storageSvc != nil {
		quotesModule.Service().SetPDFArchive(acceptanceProcessor)
	}

	notificationModule := notification.New(initEmailSender(cfg, log), cfg, log)
	notificationModule.SetQuoteAcceptanceProcessor(acceptanceProcessor)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			quotesModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
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

func initExpiryScheduler(cfg config.SchedulerConfig, log *logger.Logger) (quoteservice.ExpiryScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; scheduled quote expiry disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize quote expiry scheduler", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initPackageCache drops listings cached by a previous release before
// serving, since migrations may have changed prices.
func initPackageCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (catalogservice.Cache, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; package cache disabled")
		return nil, nil
	}

	c, err := catalogcache.NewFromURL(cfg.GetRedisURL(), cfg.GetPackageCacheTTL())
	if err != nil {
		log.Error("failed to initialize package cache", "error", err)
		return nil, nil
	}
	if err := c.Flush(ctx); err != nil {
		log.Warn("failed to flush package cache", "error", err)
	}

	return c, func() {
		_ = c.Close()
	}
}

// initStorage returns nil when MinIO is not configured; signed PDFs are
// then emailed but not archived.
func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.StorageService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; signed quote archiving disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketQuotePDFs()
	if err := withRetry(ctx, log, "ensure quote-pdfs bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "quotePDFsBucket", bucket)

	return storageSvc
}

func initEmailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email disabled; quote notifications will not be delivered")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
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
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

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
