package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jaimeparramilic/lading-odds/internal/application"
	"github.com/jaimeparramilic/lading-odds/internal/application/webhook_handlers"
	"github.com/jaimeparramilic/lading-odds/internal/config"
	apiinfra "github.com/jaimeparramilic/lading-odds/internal/infrastructure/api"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/dedup"
	securitymiddleware "github.com/jaimeparramilic/lading-odds/internal/infrastructure/middleware"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/pubsub"
	"github.com/jaimeparramilic/lading-odds/internal/infrastructure/repository"
	shopifyinfra "github.com/jaimeparramilic/lading-odds/internal/infrastructure/shopify"
	"github.com/jaimeparramilic/lading-odds/internal/ports"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if !cfg.ShopifyConfigured() {
		// The OAuth endpoint reports per-request which settings are missing;
		// the process still starts so health and metrics stay reachable.
		logger.Warn().Interface("settings", cfg.MissingShopifySettings()).Msg("Shopify configuration incomplete")
	}
	if cfg.DebugEndpoints && cfg.Production() {
		logger.Fatal().Msg("DEBUG_ENDPOINTS must not be enabled in production")
	}

	// Webhook audit log: MongoDB when configured, otherwise discarded
	var webhookRepo ports.WebhookEventRepository = repository.NewNoopWebhookRepository()
	if cfg.MongoURI != "" {
		client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer client.Disconnect(context.Background())
		webhookRepo = repository.NewMongoWebhookRepository(client.Database(cfg.MongoDatabase))
		logger.Info().Str("database", cfg.MongoDatabase).Msg("Webhook audit log enabled")
	}

	// Webhook replay guard: Redis when configured, otherwise every delivery
	// is treated as first
	var replayGuard ports.ReplayGuard = dedup.NewNoopReplayGuard()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		replayGuard = dedup.NewRedisReplayGuard(rdb)
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Webhook replay guard enabled")
	}

	// Protocol core
	verifier := shopifyinfra.NewVerifier(cfg.APISecret, cfg.MaxTimestampSkew)
	shopifyClient := shopifyinfra.NewClient(cfg.APIKey, cfg.APISecret, cfg.Scopes, cfg.RedirectURI(), cfg.APIVersion, logger)

	// Application services
	oauthService := application.NewOAuthService(shopifyClient, verifier, cfg.WebhookAddress(), logger)

	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(logger))

	webhookPubSub := pubsub.NewWebhookPubSub(logger)

	// HTTP handlers
	oauthHandler := apiinfra.NewOAuthHandler(cfg, oauthService, verifier, logger)
	webhookHandler := apiinfra.NewWebhookHandler(verifier, webhookRepo, replayGuard, webhookDispatcher, webhookPubSub, logger)
	adminProxy := apiinfra.NewAdminProxy(shopifyClient, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Shopify integration surface
	r.Get("/api/shopify/oauth", oauthHandler.Handle)
	r.Post("/api/shopify/webhooks", webhookHandler.Handle)
	r.Get("/api/shopify/admin/ping", adminProxy.Ping)
	r.Get("/api/shopify/admin/products", adminProxy.Products)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info().Str("port", cfg.Port).Str("redirect_uri", cfg.RedirectURI()).Msg("Starting API server")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
