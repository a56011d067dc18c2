package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/daap14/eventpass/api"
	"github.com/daap14/eventpass/internal/analytics"
	"github.com/daap14/eventpass/internal/api"
	"github.com/daap14/eventpass/internal/api/middleware"
	"github.com/daap14/eventpass/internal/config"
	"github.com/daap14/eventpass/internal/database"
	"github.com/daap14/eventpass/internal/entry"
	"github.com/daap14/eventpass/internal/export"
	"github.com/daap14/eventpass/internal/registration"
	"github.com/daap14/eventpass/internal/session"
)

const (
	loginBurst          = 5
	exportPerMinute     = 6
	exportBurst         = 3
	limiterSweepEvery   = time.Minute
	limiterIdleAfter    = 10 * time.Minute
	storeConnectTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open registration store", "error", err, "driver", cfg.StoreDriver)
		os.Exit(1)
	}
	defer closeStore()

	sessions := newSessionManager(cfg)
	exporter := newExporter(ctx, cfg, repo)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRate, loginBurst)
	exportLimiter := middleware.NewRateLimiter(exportPerMinute, exportBurst)
	go loginLimiter.Sweep(ctx, limiterSweepEvery, limiterIdleAfter)
	go exportLimiter.Sweep(ctx, limiterSweepEvery, limiterIdleAfter)

	router := api.NewRouter(api.RouterDeps{
		Store:          repo,
		StoreDriver:    cfg.StoreDriver,
		Version:        cfg.Version,
		OpenAPISpec:    specpkg.OpenAPISpec,
		Registrations:  registration.NewService(repo),
		Entries:        entry.NewService(repo),
		Analytics:      analytics.NewService(repo),
		Exporter:       exporter,
		ExportPass:     cfg.ExportPass,
		Sessions:       sessions,
		AllowedOrigins: cfg.AllowedOrigins,
		LoginLimiter:   loginLimiter,
		ExportLimiter:  exportLimiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting eventpass server", "port", cfg.Port, "version", cfg.Version, "driver", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// openStore connects to the configured backend, prepares its schema or
// indexes and returns the repository with a matching close function.
func openStore(ctx context.Context, cfg *config.Config) (registration.Repository, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverMongo:
		store, err := database.NewMongo(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := store.EnsureIndexes(connectCtx, registration.CollectionName, registration.MongoIndexes()); err != nil {
			_ = store.Close(context.Background())
			return nil, nil, err
		}
		closeFn := func() {
			if err := store.Close(context.Background()); err != nil {
				slog.Error("failed to disconnect from mongodb", "error", err)
			}
		}
		return registration.NewMongoRepository(store.Database()), closeFn, nil

	default:
		db, err := database.New(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(connectCtx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return registration.NewPostgresRepository(db.Pool()), db.Close, nil
	}
}

func newSessionManager(cfg *config.Config) *session.Manager {
	secret, isDefault := cfg.ResolvedSessionSecret()
	if isDefault {
		slog.Warn("no SESSION_SECRET or ADMIN_PASSWORD set; admin tokens are signed with the built-in default secret")
	}
	if cfg.AdminUsername == "" || (cfg.AdminPassword == "" && cfg.AdminPassHash == "") {
		slog.Warn("admin credentials not configured; admin login is disabled")
	}

	return session.NewManager(session.Options{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPassHash,
		Secret:       secret,
		MaxAge:       cfg.SessionMaxAge,
		Secure:       cfg.IsProduction(),
	})
}

// newExporter builds the export service with whichever optional sinks are
// configured. A sink that fails to initialize is logged and left out.
func newExporter(ctx context.Context, cfg *config.Config, repo registration.Repository) *export.Service {
	var opts []export.Option

	if cfg.ArchiveEnabled() {
		archiver, err := export.NewS3Archiver(ctx, export.S3Config{
			Bucket:          cfg.ArchiveBucket,
			Endpoint:        cfg.ArchiveEndpoint,
			Region:          cfg.ArchiveRegion,
			AccessKeyID:     cfg.ArchiveAccessKeyID,
			SecretAccessKey: cfg.ArchiveSecretAccessKey,
		})
		if err != nil {
			slog.Warn("export archive disabled", "error", err)
		} else {
			opts = append(opts, export.WithArchiver(archiver))
		}
	}

	if cfg.SheetsEnabled() {
		mirror, err := export.NewSheetsMirror(ctx, cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID)
		if err != nil {
			slog.Warn("google sheets export disabled", "error", err)
		} else {
			opts = append(opts, export.WithMirror(mirror))
		}
	}

	if cfg.ExportPass == "" {
		slog.Warn("EXPORT_PASS not set; spreadsheet downloads are disabled")
	}

	return export.NewService(repo, opts...)
}
