// cmd/assistant/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	calculateemi "loan-assistant/internal/agents/calculate-emi"
	evaluateeligibility "loan-assistant/internal/agents/evaluate-eligibility"
	extractslots "loan-assistant/internal/agents/extract-slots"
	generatereply "loan-assistant/internal/agents/generate-reply"
	resolvemissing "loan-assistant/internal/agents/resolve-missing"
	sanctionletter "loan-assistant/internal/agents/sanction-letter"
	"loan-assistant/internal/api"
	"loan-assistant/internal/audit"
	awsclients "loan-assistant/internal/common/aws"
	"loan-assistant/internal/common/config"
	"loan-assistant/internal/common/database"
	"loan-assistant/internal/common/logger"
	"loan-assistant/internal/common/observability"
	"loan-assistant/internal/fraud"
	"loan-assistant/internal/notify"
	"loan-assistant/internal/orchestrator"
	"loan-assistant/internal/registry"
	"loan-assistant/internal/session"
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

	zapLog.Info("Starting loan assistant...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

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

	var customerRegistry registry.Registry
	if err != nil {
		// Registry data is read-only; the seeded in-memory copy keeps
		// the assistant usable in local and demo environments.
		zapLog.Warn("postgres unavailable, using seeded in-memory registry", zap.Error(err))
		customerRegistry = registry.NewSeededRegistry()
	} else {
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
		customerRegistry = registry.NewPostgresRegistry(pg.GetDB(), log)
	}

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	var sessions session.Store
	if err != nil {
		zapLog.Warn("redis unavailable, sessions held in memory", zap.Error(err))
		sessions = session.NewMemoryStore()
	} else {
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")
		sessions = session.NewRedisStore(redisClient.GetClient(), 24*time.Hour)
	}

	// --- Init Elasticsearch audit trail ---
	var auditor audit.Recorder = audit.NoopRecorder{}
	if cfg.Audit.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 10, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Warn("elasticsearch unavailable, decision audit disabled", zap.Error(err))
		} else {
			zapLog.Info("Elasticsearch connected successfully")
			auditor = audit.NewElasticsearchRecorder(esClient, cfg.Database.Elasticsearch.Index, log)
		}
	}

	// --- Init decision notifications ---
	var notifier notify.Notifier = notify.NoopNotifier{}
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		sesClient, sesErr := awsclients.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		snsClient, snsErr := awsclients.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if sesErr != nil || snsErr != nil {
			zapLog.Warn("aws clients unavailable, notifications disabled",
				zap.NamedError("ses", sesErr), zap.NamedError("sns", snsErr))
		} else {
			notifier = notify.NewAWSNotifier(cfg.Notifications, sesClient, snsClient, log)
		}
	}

	// --- Init reply generation ---
	replyConfig := &generatereply.Config{
		Model:          cfg.GenAI.Model,
		MaxTokens:      cfg.GenAI.MaxTokens,
		Temperature:    0.4,
		Timeout:        time.Duration(cfg.GenAI.Timeout) * time.Millisecond,
		MinReplyLength: 5,
		HistoryWindow:  12,
	}
	var generator generatereply.TextGenerator
	if cfg.GenAI.APIKey != "" {
		generator, err = generatereply.NewOpenAIGenerator(cfg.GenAI.APIKey, replyConfig)
		if err != nil {
			zapLog.Warn("openai client init failed, static prompts only", zap.Error(err))
		}
	} else {
		zapLog.Warn("no genai api key configured, static prompts only")
	}

	// --- Assemble the turn pipeline ---
	screener := fraud.NewBlacklistScreener(log)
	emi := calculateemi.NewHandler(log)

	orch := orchestrator.New(orchestrator.Options{
		Extract: extractslots.NewHandler(&extractslots.Config{
			MinLoanAmount: cfg.Policy.MinLoanAmount,
			MaxLoanAmount: cfg.Policy.MaxLoanAmount,
		}, customerRegistry, log),
		Resolve: resolvemissing.NewHandler(log),
		Evaluate: evaluateeligibility.NewHandler(&evaluateeligibility.Config{
			AnnualRatePercent:   cfg.Policy.AnnualRatePercent,
			RegistrationURL:     cfg.Policy.RegistrationURL,
			DefaultTenureMonths: 60,
		}, customerRegistry, screener, log),
		Reply:    generatereply.NewHandler(replyConfig, generator, log),
		Letter:   sanctionletter.NewHandler(emi, log),
		Sessions: sessions,
		Registry: customerRegistry,
		Auditor:  auditor,
		Notifier: notifier,
		Obs:      obs,
		Logger:   log,

		AnnualRatePercent:   cfg.Policy.AnnualRatePercent,
		DefaultTenureMonths: 60,
	})

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Server.RequestTimeout) * time.Millisecond))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	api.RegisterRoutes(r, api.NewHandler(orch, log))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	zapLog.Info("Loan assistant stopped")
}
