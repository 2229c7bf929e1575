package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/sharinglove/sharinglove-api/api/swagger"
	"github.com/sharinglove/sharinglove-api/internal/handler"
	"github.com/sharinglove/sharinglove-api/internal/repository"
	"github.com/sharinglove/sharinglove-api/internal/router"
	"github.com/sharinglove/sharinglove-api/internal/service"
	"github.com/sharinglove/sharinglove-api/pkg/cache"
	"github.com/sharinglove/sharinglove-api/pkg/config"
	"github.com/sharinglove/sharinglove-api/pkg/database"
	"github.com/sharinglove/sharinglove-api/pkg/export"
	"github.com/sharinglove/sharinglove-api/pkg/logger"
	"github.com/sharinglove/sharinglove-api/pkg/middleware/ratelimit"
	"github.com/sharinglove/sharinglove-api/pkg/storage"
)

// @title Sharing Love API
// @version 1.0.0
// @description Board, session and upload API for the welfare center website
// @BasePath /api
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, post list cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	store, uploadsDir, closeStore, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStore()

	validate := validator.New()
	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, redisClient != nil)

	postRepo := repository.NewPostRepository(db)
	authSvc, err := service.NewAuthService(repository.NewAdminRepository(db), validate, logr, metrics, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	if err != nil {
		return err
	}
	postSvc := service.NewPostService(postRepo, validate, cacheSvc, metrics, logr, cfg.Posts.MaxPinned)
	uploadSvc := service.NewUploadService(store, logr, metrics, service.UploadConfig{
		MaxFiles:        cfg.Upload.MaxFiles,
		MaxImageSize:    cfg.Upload.MaxImageSize,
		MaxDocumentSize: cfg.Upload.MaxDocumentSize,
		ThumbnailSize:   cfg.Upload.ThumbnailSize,
	})
	exportSvc := service.NewExportService(postRepo, logr, export.NewCSVExporter(), export.NewPDFExporter(cfg.Export.PDFFontPath))

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["cache"] = cacheRepo.Ping
	}

	// Every file at its ceiling plus room for multipart framing.
	maxUploadBody := int64(cfg.Upload.MaxFiles)*cfg.Upload.MaxDocumentSize + (1 << 20)

	engine := router.New(router.Options{
		APIPrefix:          cfg.APIPrefix,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		CookieName:         cfg.Session.CookieName,
		EnableDocs:         cfg.Env != config.EnvProduction,
		UploadsDir:         uploadsDir,
		MaxMultipartMemory: 32 << 20,
		Logger:             logr,
		Metrics:            metrics,
		Verifier:           authSvc,
		LoginLimiter:       ratelimit.New(cfg.RateLimit.LoginPerMinute),
		Auth: handler.NewAuthHandler(authSvc, handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
			Domain: cfg.Session.Domain,
		}),
		Posts:   handler.NewPostHandler(postSvc),
		Uploads: handler.NewUploadHandler(uploadSvc, maxUploadBody),
		Exports: handler.NewExportHandler(exportSvc),
		Health:  handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type objectStore interface {
	Put(ctx context.Context, bucket storage.Bucket, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, bucket storage.Bucket, key string) error
}

// openStorage returns the configured object store; uploadsDir is non-empty
// when objects live on local disk and must be served by this process.
func openStorage(ctx context.Context, cfg config.StorageConfig) (store objectStore, uploadsDir string, closeFn func(), err error) {
	switch cfg.Driver {
	case config.StorageDriverGCS:
		gcsStore, err := storage.NewGCSStorage(ctx, cfg.GCSImagesBucket, cfg.GCSDocumentsBucket)
		if err != nil {
			return nil, "", nil, err
		}
		return gcsStore, "", func() { _ = gcsStore.Close() }, nil
	case config.StorageDriverLocal, "":
		local, err := storage.NewLocalStorage(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", nil, err
		}
		return local, local.Dir(), func() {}, nil
	default:
		return nil, "", nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
