package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fanclub-hub/internal/archive"
	"fanclub-hub/internal/config"
	apphttp "fanclub-hub/internal/http"
	"fanclub-hub/internal/service"
	"fanclub-hub/internal/store"
	redisstore "fanclub-hub/internal/store/redis"
	sqlitestore "fanclub-hub/internal/store/sqlite"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Admin.Token) == "" {
		logger.Fatalf("admin token is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recordStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open record store: %v", err)
	}
	defer recordStore.Close()

	activity := service.NewActivityLogger(recordStore)
	accounts := service.NewAccountService(recordStore, activity)
	reports := service.NewReportService(recordStore, service.ReportLimits{})

	var retention *service.Retention
	if cfg.Retention.MaxEntries > 0 {
		archiver, err := buildArchiver(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup archiver: %v", err)
		}
		retention = service.NewRetention(service.RetentionConfig{
			MaxEntries: cfg.Retention.MaxEntries,
			Interval:   time.Duration(cfg.Retention.IntervalMinutes) * time.Minute,
			AllowDrop:  cfg.Retention.AllowDrop,
			Logger:     logger,
		}, recordStore, archiver)
		if err := retention.Start(ctx); err != nil {
			logger.Fatalf("start retention worker: %v", err)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(accounts, reports, cfg.Admin.Token, logger)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	if retention != nil {
		retention.Shutdown()
	}

	logger.Info("bye")
}

func buildStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (store.Store, error) {
	switch cfg.Store.Driver {
	case "redis":
		if cfg.Store.RedisURL == "" {
			return nil, fmt.Errorf("redis url is required for the redis driver")
		}
		st, err := redisstore.Open(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis record store")
		return st, nil
	case "sqlite":
		st, err := sqlitestore.Open(ctx, cfg.Store.SqlitePath)
		if err != nil {
			return nil, err
		}
		logger.Infof("using sqlite record store at %s", cfg.Store.SqlitePath)
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func buildArchiver(ctx context.Context, cfg config.Config, logger *logrus.Logger) (archive.Archiver, error) {
	if cfg.Archive.Bucket == "" {
		// Retention without an archive bucket refuses to start unless
		// dropping is explicitly allowed.
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Archive.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving trimmed activity to s3 bucket %s (region %s)", cfg.Archive.Bucket, cfg.Archive.Region)
	return archive.NewS3Archiver(client, cfg.Archive.Bucket, cfg.Archive.KeyPrefix), nil
}
