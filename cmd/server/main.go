// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"visascope/internal/assess"
	"visascope/internal/common/aws"
	"visascope/internal/common/config"
	"visascope/internal/common/database"
	"visascope/internal/common/logger"
	"visascope/internal/evaluation"
	"visascope/internal/extract"
	"visascope/internal/oracle"
	"visascope/internal/report"
	"visascope/internal/server"
	"visascope/internal/visatype"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting visascope server",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry (optional) ---
	var searchService *evaluation.SearchService
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		searchService = evaluation.NewSearchService(esClient.Client, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Domain wiring ---
	catalog := visatype.NewCatalog(pg.DB, rdb.Client,
		time.Duration(cfg.Evaluation.CatalogCacheTTL)*time.Second, log)

	extractor := extract.NewExtractor(log)
	heuristic := assess.NewHeuristicAssessor(log)

	var oracleAssessor assess.Assessor
	if cfg.Oracle.Enabled {
		oracleClient, err := oracle.NewClient(oracle.Config{
			BaseURL: cfg.Oracle.BaseURL,
			APIKey:  cfg.Oracle.APIKey,
			Timeout: time.Duration(cfg.Oracle.Timeout) * time.Millisecond,
		}, log)
		if err != nil {
			zapLog.Fatal("oracle client init failed", zap.Error(err))
		}
		oracleAssessor = assess.NewOracleAssessor(oracleClient, log)
		zapLog.Info("oracle assessor enabled")
	}

	pipeline := evaluation.NewPipeline(extractor, oracleAssessor, heuristic,
		cfg.Evaluation.RetentionDays, log)

	var indexer evaluation.Indexer
	if searchService != nil {
		indexer = searchService
	}
	store := evaluation.NewStore(pg.DB, indexer, log)

	renderer := report.NewRenderer(cfg.App.Name)

	var notifier *report.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("SES client init failed", zap.Error(err))
		}
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("SNS client init failed", zap.Error(err))
		}
		notifier = report.NewNotifier(cfg.Notifications, sesClient, snsClient, log)
		zapLog.Info("notifications enabled")
	}

	var searchSvc server.SearchService
	if searchService != nil {
		searchSvc = searchService
	}
	var notifySvc server.NotifyService
	if notifier != nil {
		notifySvc = notifier
	}

	handlers := server.NewHandlers(catalog, pipeline, store, searchSvc, renderer,
		notifySvc, cfg.Evaluation.MaxUploadBytes, log)
	srv := server.New(cfg, handlers, log)

	// --- Run until signalled ---
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("graceful shutdown failed", zap.Error(err))
		}
	}

	zapLog.Info("server stopped")
}
