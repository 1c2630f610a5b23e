package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chinese-translation-service/internal/config"
	"chinese-translation-service/internal/domain/ports/adapter"
	"chinese-translation-service/internal/domain/ports/repository"
	"chinese-translation-service/internal/infra/adapters/translator"
	pg "chinese-translation-service/internal/infra/db/postgres"
	"chinese-translation-service/internal/infra/dict"
	"chinese-translation-service/internal/infra/logging"
	"chinese-translation-service/internal/infra/metrics"
	"chinese-translation-service/internal/infra/queue"
	red "chinese-translation-service/internal/infra/redis"
	"chinese-translation-service/internal/infra/web"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, stub translator fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema")
	}

	// ---- Repository (with optional Redis result cache) ----
	txm := pg.NewTxManager(pool)
	var repo repository.JobRepository = pg.NewJobRepo(pool)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		repo = pg.NewJobRepoCacheDecorator(repo, redisClient, cfg.Redis.TTL)
		logger.Info().Msg("redis result cache enabled")
	}

	// ---- Translator (Gemini -> OpenAI -> dev stub) ----
	var tr adapter.TranslatorAdapter
	switch {
	case cfg.AI.GeminiKey != "":
		tr, err = translator.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("translator: gemini")
	case cfg.AI.OpenAIKey != "":
		tr, err = translator.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel, cfg.AI.OpenAIBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("translator: openai")
	case cfg.Runtime.Dev:
		tr = translator.NewNoopTranslator()
		logger.Warn().Msg("translator: dev stub (no provider key configured)")
	default:
		logger.Fatal().Msg("no AI provider configured: set ai.gemini_key or ai.openai_key")
	}
	tr = translator.NewLimitedTranslator(tr, cfg.AI.ConcurrentLimit)

	// ---- Dictionary (optional) ----
	var dictionary *dict.Dictionary
	if cfg.Dict.CedictPath != "" {
		dictionary, err = dict.Load(cfg.Dict.CedictPath, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.Dict.CedictPath).Msg("cedict")
		}
	}

	// ---- Queue ----
	limiter := queue.NewRateLimiter(cfg.Queue.RateLimitDelay())
	workerPool := queue.NewPool(cfg.Queue.Workers, logger)
	mgr := queue.NewManager(repo, txm, tr, dictionary, limiter, workerPool, logger)
	mgr.Start()
	logger.Info().
		Int("workers", cfg.Queue.Workers).
		Int("rate_limit_ms", cfg.Queue.RateLimitMS).
		Msg("job queue started")

	// ---- HTTP ----
	streamer := queue.NewStreamer(mgr, repo, logger)
	auth, err := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.APIKey, !cfg.Runtime.Dev, cfg.Admin.SessionTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("admin auth")
	}
	srv := web.NewServer(mgr, streamer, repo, auth, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	mgr.Shutdown(true)
	cancel()
}
