// The worker runs the digest pipeline on a cron schedule: collect regional
// feeds, build regional and global digests, and deliver them to Telegram.
package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"world-digest/internal/config"
	pgRepo "world-digest/internal/infra/adapter/persistence/postgres"
	"world-digest/internal/infra/db"
	"world-digest/internal/infra/fetcher"
	"world-digest/internal/infra/llm"
	"world-digest/internal/infra/notifier"
	"world-digest/internal/infra/scraper"
	workerPkg "world-digest/internal/infra/worker"
	"world-digest/internal/observability/logging"
	pkgconfig "world-digest/internal/pkg/config"
	"world-digest/internal/repository"
	"world-digest/internal/usecase/collect"
	"world-digest/internal/usecase/dedup"
	"world-digest/internal/usecase/deliver"
	digestUC "world-digest/internal/usecase/digest"
)

// llmBackend is the full set of model operations one provider exposes.
type llmBackend interface {
	digestUC.Summarizer
	digestUC.Translator
	digestUC.GlobalSummarizer
}

// pipeline bundles the three stages of one digest cycle.
type pipeline struct {
	collect *collect.Service
	digest  *digestUC.Service
	deliver *deliver.Service

	articleRepo repository.ArticleRepository
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	settings := config.LoadSettings()

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("regions", len(cfg.Regions)),
		slog.Any("delivery_times", cfg.Scheduler.DeliveryTimes))

	database, err := db.Open(settings.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("migrations failed", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.String("cleanup_schedule", workerConfig.CleanupSchedule),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	startMetricsServer(ctx, logger, workerConfig.MetricsPort)
	go db.ReportPoolStats(ctx, database, 30*time.Second)

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	p := setupPipeline(logger, cfg, settings, database)

	startCronWorker(ctx, logger, p, cfg, workerConfig, workerMetrics, healthServer)
}

// setupPipeline wires repositories, fetchers, the LLM backend, and the
// Telegram channel into the three pipeline services.
func setupPipeline(logger *slog.Logger, cfg *config.Config, settings config.Settings, database *sql.DB) *pipeline {
	articleRepo := pgRepo.NewArticleRepo(database)
	digestRepo := pgRepo.NewDigestRepo(database)
	deduplicator := dedup.NewDefault()

	feedFetcher := scraper.NewRSSFetcher(newFeedHTTPClient(), logger)
	collectSvc := collect.NewService(cfg, feedFetcher, articleRepo, deduplicator, logger)

	contentFetcher, contentConfig := setupContentFetcher(logger)

	backend := createLLMBackend(logger, cfg, settings)
	digestSvc := digestUC.NewService(cfg, articleRepo, digestRepo, deduplicator,
		backend, backend, backend, contentFetcher, contentConfig, logger)

	telegramChannel := deliver.NewTelegramChannel(loadTelegramConfig(logger, cfg, settings), logger)
	deliverSvc := deliver.NewService(cfg, []deliver.Channel{telegramChannel}, digestRepo, logger)

	return &pipeline{
		collect:     collectSvc,
		digest:      digestSvc,
		deliver:     deliverSvc,
		articleRepo: articleRepo,
	}
}

// setupContentFetcher loads content enhancement settings and builds the
// readability fetcher when enabled.
func setupContentFetcher(logger *slog.Logger) (digestUC.ContentFetcher, digestUC.ContentFetchConfig) {
	cfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid content fetch configuration, disabling enhancement",
			slog.Any("error", err))
		cfg = fetcher.DefaultConfig()
		cfg.Enabled = false
	}

	usecaseCfg := digestUC.ContentFetchConfig{
		Parallelism: cfg.Parallelism,
		Threshold:   cfg.Threshold,
	}

	if !cfg.Enabled {
		logger.Info("content fetching disabled")
		return nil, usecaseCfg
	}

	logger.Info("content fetching enabled",
		slog.Int("threshold", cfg.Threshold),
		slog.Int("parallelism", cfg.Parallelism),
		slog.Duration("timeout", cfg.Timeout))
	return fetcher.NewReadabilityFetcher(cfg, logger), usecaseCfg
}

// createLLMBackend selects the model provider from LLM_PROVIDER.
func createLLMBackend(logger *slog.Logger, cfg *config.Config, settings config.Settings) llmBackend {
	switch settings.LLMProvider {
	case "openrouter":
		if settings.OpenRouterAPIKey == "" {
			logger.Error("OPENROUTER_API_KEY is required when LLM_PROVIDER=openrouter")
			os.Exit(1)
		}
		logger.Info("using OpenRouter for summarization",
			slog.String("model", cfg.LLM.DefaultModel),
			slog.String("fallback_model", cfg.LLM.FallbackModel))
		return llm.NewOpenRouter(settings.OpenRouterAPIKey, cfg.LLM, logger)
	case "claude":
		if settings.AnthropicAPIKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude")
			os.Exit(1)
		}
		logger.Info("using Claude for summarization", slog.String("model", cfg.LLM.DefaultModel))
		return llm.NewClaude(settings.AnthropicAPIKey, cfg.LLM, logger)
	case "noop":
		logger.Warn("using no-op LLM backend, digests will not be summarized")
		return llm.NewNoOp()
	default:
		logger.Error("invalid LLM_PROVIDER",
			slog.String("provider", settings.LLMProvider),
			slog.String("expected", "openrouter, claude, or noop"))
		os.Exit(1)
		return nil
	}
}

// loadTelegramConfig builds the notifier configuration from secrets and the
// YAML retry settings. Missing credentials disable delivery rather than
// failing startup.
func loadTelegramConfig(logger *slog.Logger, cfg *config.Config, settings config.Settings) notifier.TelegramConfig {
	chatIDs := settings.ChatIDs()
	if settings.TelegramBotToken == "" || len(chatIDs) == 0 {
		logger.Warn("telegram credentials missing, delivery disabled")
		return notifier.TelegramConfig{Enabled: false}
	}

	return notifier.TelegramConfig{
		Enabled:       true,
		BotToken:      settings.TelegramBotToken,
		ChatIDs:       chatIDs,
		RetryAttempts: cfg.Telegram.RetryAttempts,
		RetryDelay:    cfg.Telegram.RetryDelay(),
	}
}

// newFeedHTTPClient returns the shared client for feed polling with TLS 1.2+
// and connection pooling.
func newFeedHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// startCronWorker schedules one digest cycle per configured delivery time
// plus the retention cleanup job, then blocks until shutdown.
func startCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	p *pipeline,
	cfg *config.Config,
	workerConfig *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC",
			slog.String("timezone", cfg.Scheduler.Timezone),
			slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	for _, deliveryTime := range cfg.Scheduler.DeliveryTimes {
		schedule, err := pkgconfig.DeliveryTimeToCron(deliveryTime)
		if err != nil {
			logger.Error("invalid delivery time",
				slog.String("delivery_time", deliveryTime),
				slog.Any("error", err))
			os.Exit(1)
		}
		if _, err := c.AddFunc(schedule, func() {
			runDigestCycle(logger, p, workerConfig.RunTimeout, metrics)
		}); err != nil {
			logger.Error("failed to add cron job", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("digest cycle scheduled",
			slog.String("delivery_time", deliveryTime),
			slog.String("schedule", schedule))
	}

	if _, err := c.AddFunc(workerConfig.CleanupSchedule, func() {
		runCleanup(logger, p.articleRepo, cfg.Scheduler.RetentionDays)
	}); err != nil {
		logger.Error("failed to add cleanup job", slog.Any("error", err))
		os.Exit(1)
	}

	c.Start()
	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("timezone", cfg.Scheduler.Timezone),
		slog.Int("delivery_times", len(cfg.Scheduler.DeliveryTimes)))

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(workerConfig.RunTimeout):
		logger.Warn("running jobs did not finish before shutdown timeout")
	}
	logger.Info("worker stopped")
}

// runDigestCycle executes one collect → digest → deliver cycle with a timeout.
func runDigestCycle(logger *slog.Logger, p *pipeline, timeout time.Duration, metrics *workerPkg.WorkerMetrics) {
	start := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("digest cycle started")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := p.collect.CollectAll(ctx); err != nil {
		// Partial collection still yields digests for healthy regions.
		logger.Warn("collection finished with errors", slog.Any("error", err))
	}

	global, regional, err := p.digest.ProcessAllWithGlobal(ctx)
	if err != nil {
		logger.Error("digest cycle failed", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(start).Seconds())
		return
	}

	if err := p.deliver.Deliver(ctx, global, regional); err != nil {
		logger.Error("delivery finished with errors", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(start).Seconds())
		return
	}

	built := len(regional)
	if global != nil {
		built++
	}
	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(start).Seconds())
	metrics.RecordDigestsBuilt(built)
	metrics.RecordLastSuccess()

	logger.Info("digest cycle completed",
		slog.Int("digests", built),
		slog.Duration("duration", time.Since(start)))
}

// runCleanup deletes raw articles older than the retention window.
func runCleanup(logger *slog.Logger, articles repository.ArticleRepository, retentionDays int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := articles.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error("article cleanup failed", slog.Any("error", err))
		return
	}
	logger.Info("article cleanup completed",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff))
}
