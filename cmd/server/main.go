package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/SufyanAli-7/Genix-AI/config"
	"github.com/SufyanAli-7/Genix-AI/internal/api/rest"
	"github.com/SufyanAli-7/Genix-AI/internal/kafka"
	"github.com/SufyanAli-7/Genix-AI/internal/kafka/producer"
	"github.com/SufyanAli-7/Genix-AI/internal/metrics"
	"github.com/SufyanAli-7/Genix-AI/internal/provider"
	"github.com/SufyanAli-7/Genix-AI/internal/provider/beatoven"
	"github.com/SufyanAli-7/Genix-AI/internal/provider/falai"
	"github.com/SufyanAli-7/Genix-AI/internal/provider/imagerouter"
	"github.com/SufyanAli-7/Genix-AI/internal/provider/openai"
	"github.com/SufyanAli-7/Genix-AI/internal/repository"
	"github.com/SufyanAli-7/Genix-AI/internal/repository/postgres"
	"github.com/SufyanAli-7/Genix-AI/internal/service"
	"github.com/SufyanAli-7/Genix-AI/internal/stripe"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

func main() {
	log := initLogger()

	log.Info("Genix AI service starting up...")

	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT secret is not set, all API requests will be rejected")
	}
	if cfg.Stripe.WebhookSecret == "" {
		log.Warn("Stripe webhook secret is not set")
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	zlog, err := initZapLogger(cfg.App.Env)
	if err != nil {
		log.Fatal("Failed to initialize request logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	pool, err := postgres.NewConnection(ctx, cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Info("Database connection established")

	usageRepo := repository.NewPostgresUsageRepository(pool, log)
	threadRepo := repository.NewPostgresThreadRepository(pool, log)
	mediaRepo := repository.NewPostgresMediaRepository(pool, log)
	baseSubRepo := repository.NewPostgresSubscriptionRepository(pool, log)

	var subRepo repository.SubscriptionRepository = baseSubRepo
	redisCache, err := repository.NewRedisCacheRepository(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if err != nil {
		log.Warn("Failed to initialize Redis cache, continuing without caching: %v", err)
	} else {
		subRepo = repository.NewCachedSubscriptionRepository(baseSubRepo, redisCache, log)
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing Redis connection: %v", err)
			}
		}()
		log.Info("Using cached subscription repository")
	}

	// Events
	var events producer.EventProducer = producer.NopEventProducer{}
	if len(cfg.Kafka.Brokers) > 0 {
		syncProducer, err := kafka.NewSyncProducer(kafka.NewConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			log.Error("Failed to initialize Kafka producer, continuing without event publishing: %v", err)
		} else {
			events = producer.NewKafkaEventProducer(syncProducer, log)
			defer func() {
				if err := events.Close(); err != nil {
					log.Error("Error closing Kafka producer: %v", err)
				}
			}()
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	generationMetrics := metrics.NewGenerationMetrics(registry, log)

	// Providers
	chatClient := openai.NewClient(openai.Config{
		BaseURL: cfg.Providers.Chat.BaseURL,
		APIKey:  cfg.Providers.Chat.APIKey,
		Model:   cfg.Providers.Chat.Model,
	}, log)
	imageClient := imagerouter.NewClient(imagerouter.Config{
		BaseURL: cfg.Providers.Image.BaseURL,
		APIKey:  cfg.Providers.Image.APIKey,
		Model:   cfg.Providers.Image.Model,
	}, log)
	videoClient := falai.NewClient(falai.Config{
		BaseURL: cfg.Providers.Video.BaseURL,
		APIKey:  cfg.Providers.Video.APIKey,
	}, log)
	musicClient := beatoven.NewClient(beatoven.Config{
		BaseURL: cfg.Providers.Music.BaseURL,
		APIKey:  cfg.Providers.Music.APIKey,
	}, log)

	poller := provider.NewPoller(log)
	poller.Observe = func(attempts int) {
		generationMetrics.ObservePollAttempts(float64(attempts))
	}

	// Stripe
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey, log)
	verifier, err := stripe.NewWebhookVerifier(cfg.Stripe.WebhookSecret)
	if err != nil {
		log.Fatal("Failed to initialize Stripe webhook verifier: %v", err)
	}

	// Services
	entitlements := service.NewEntitlementService(usageRepo, subRepo, cfg.Limits.FreeGenerations, log)
	billing := service.NewBillingService(subRepo, events, log)
	library := service.NewLibraryService(threadRepo, mediaRepo, log)
	generation := service.NewGenerationService(service.GenerationDeps{
		Entitlements: entitlements,
		Threads:      threadRepo,
		Media:        mediaRepo,
		Chat:         chatClient,
		Images:       imageClient,
		Videos:       videoClient,
		Music:        musicClient,
		Poller:       poller,
		Events:       events,
		Metrics:      generationMetrics,
		Log:          log,
	})

	// HTTP
	router := rest.SetupRouter(rest.RouterDeps{
		Config:       cfg,
		Registry:     registry,
		Generation:   generation,
		Library:      library,
		Entitlements: entitlements,
		Billing:      billing,
		Verifier:     verifier,
		StripeClient: stripeClient,
		Log:          log,
		ZapLog:       zlog,
	})

	server := rest.NewServer(router, cfg, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.App.ShutdownTimeout)*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	} else {
		log.Info("HTTP server gracefully stopped")
	}

	log.Info("Cleanup finished. Goodbye!")
}

func initLogger() *logger.Logger {
	logLevel := logger.INFO
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = logger.DEBUG
	}
	return logger.New(logLevel)
}

// initZapLogger builds the structured logger used by the request
// decoding helpers.
func initZapLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
