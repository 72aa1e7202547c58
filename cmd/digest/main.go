// The digest command runs pipeline operations once and exits: a full cycle,
// a single region, or a Telegram connectivity check.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"world-digest/internal/config"
	pgRepo "world-digest/internal/infra/adapter/persistence/postgres"
	"world-digest/internal/infra/db"
	"world-digest/internal/infra/fetcher"
	"world-digest/internal/infra/llm"
	"world-digest/internal/infra/notifier"
	"world-digest/internal/infra/scraper"
	"world-digest/internal/observability/logging"
	"world-digest/internal/usecase/collect"
	"world-digest/internal/usecase/dedup"
	"world-digest/internal/usecase/deliver"
	digestUC "world-digest/internal/usecase/digest"
)

const runTimeout = 30 * time.Minute

func main() {
	once := flag.Bool("once", false, "run one full collect→digest→deliver cycle")
	region := flag.String("region", "", "process a single region")
	checkTelegram := flag.Bool("check-telegram", false, "verify the Telegram bot token and exit")
	flag.Parse()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	settings := config.LoadSettings()

	if *checkTelegram {
		runTelegramCheck(logger, settings)
		return
	}

	cfg, err := config.Load("")
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	switch {
	case *region != "":
		runRegion(logger, cfg, settings, *region)
	case *once:
		runOnce(logger, cfg, settings)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func runTelegramCheck(logger *slog.Logger, settings config.Settings) {
	if settings.TelegramBotToken == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is not set")
		os.Exit(1)
	}

	n := notifier.NewTelegramNotifier(notifier.TelegramConfig{
		Enabled:  true,
		BotToken: settings.TelegramBotToken,
		ChatIDs:  settings.ChatIDs(),
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	username, err := n.CheckAuth(ctx)
	if err != nil {
		logger.Error("telegram auth check failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Printf("connected as @%s (%d chats configured)\n", username, len(settings.ChatIDs()))
}

func runRegion(logger *slog.Logger, cfg *config.Config, settings config.Settings, region string) {
	p := buildPipeline(logger, cfg, settings)
	defer p.close()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	stats, err := p.collect.CollectRegion(ctx, region)
	if err != nil {
		logger.Error("collection failed", slog.String("region", region), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("collection completed",
		slog.String("region", region),
		slog.Int("fetched", stats.Fetched),
		slog.Int("stored", stats.Stored))

	d, err := p.digest.ProcessRegion(ctx, region)
	if err != nil {
		logger.Error("digest failed", slog.String("region", region), slog.Any("error", err))
		os.Exit(1)
	}

	if err := p.deliver.DeliverDigest(ctx, d); err != nil {
		logger.Error("delivery failed", slog.String("region", region), slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("region processed", slog.String("region", region), slog.String("digest_id", d.ID))
}

func runOnce(logger *slog.Logger, cfg *config.Config, settings config.Settings) {
	p := buildPipeline(logger, cfg, settings)
	defer p.close()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := p.collect.CollectAll(ctx); err != nil {
		logger.Warn("collection finished with errors", slog.Any("error", err))
	}

	global, regional, err := p.digest.ProcessAllWithGlobal(ctx)
	if err != nil {
		logger.Error("digest cycle failed", slog.Any("error", err))
		os.Exit(1)
	}

	if err := p.deliver.Deliver(ctx, global, regional); err != nil {
		logger.Error("delivery finished with errors", slog.Any("error", err))
		os.Exit(1)
	}

	built := len(regional)
	if global != nil {
		built++
	}
	logger.Info("cycle completed", slog.Int("digests", built))
}

// pipeline bundles the services a one-shot run needs.
type pipeline struct {
	collect *collect.Service
	digest  *digestUC.Service
	deliver *deliver.Service
	close   func()
}

func buildPipeline(logger *slog.Logger, cfg *config.Config, settings config.Settings) *pipeline {
	database, err := db.Open(settings.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("migrations failed", slog.Any("error", err))
		os.Exit(1)
	}

	articleRepo := pgRepo.NewArticleRepo(database)
	digestRepo := pgRepo.NewDigestRepo(database)
	deduplicator := dedup.NewDefault()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
		},
	}
	collectSvc := collect.NewService(cfg, scraper.NewRSSFetcher(httpClient, logger), articleRepo, deduplicator, logger)

	fetchCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("invalid content fetch configuration, disabling enhancement", slog.Any("error", err))
		fetchCfg = fetcher.DefaultConfig()
		fetchCfg.Enabled = false
	}
	var contentFetcher digestUC.ContentFetcher
	if fetchCfg.Enabled {
		contentFetcher = fetcher.NewReadabilityFetcher(fetchCfg, logger)
	}

	backend := createLLMBackend(logger, cfg, settings)
	digestSvc := digestUC.NewService(cfg, articleRepo, digestRepo, deduplicator,
		backend, backend, backend, contentFetcher,
		digestUC.ContentFetchConfig{Parallelism: fetchCfg.Parallelism, Threshold: fetchCfg.Threshold},
		logger)

	telegramConfig := notifier.TelegramConfig{Enabled: false}
	if settings.TelegramBotToken != "" && len(settings.ChatIDs()) > 0 {
		telegramConfig = notifier.TelegramConfig{
			Enabled:       true,
			BotToken:      settings.TelegramBotToken,
			ChatIDs:       settings.ChatIDs(),
			RetryAttempts: cfg.Telegram.RetryAttempts,
			RetryDelay:    cfg.Telegram.RetryDelay(),
		}
	} else {
		logger.Warn("telegram credentials missing, delivery disabled")
	}
	channel := deliver.NewTelegramChannel(telegramConfig, logger)
	deliverSvc := deliver.NewService(cfg, []deliver.Channel{channel}, digestRepo, logger)

	return &pipeline{
		collect: collectSvc,
		digest:  digestSvc,
		deliver: deliverSvc,
		close: func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		},
	}
}

// llmBackend is the full set of model operations one provider exposes.
type llmBackend interface {
	digestUC.Summarizer
	digestUC.Translator
	digestUC.GlobalSummarizer
}

func createLLMBackend(logger *slog.Logger, cfg *config.Config, settings config.Settings) llmBackend {
	switch settings.LLMProvider {
	case "openrouter":
		if settings.OpenRouterAPIKey == "" {
			logger.Error("OPENROUTER_API_KEY is required when LLM_PROVIDER=openrouter")
			os.Exit(1)
		}
		return llm.NewOpenRouter(settings.OpenRouterAPIKey, cfg.LLM, logger)
	case "claude":
		if settings.AnthropicAPIKey == "" {
			logger.Error("ANTHROPIC_API_KEY is required when LLM_PROVIDER=claude")
			os.Exit(1)
		}
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
