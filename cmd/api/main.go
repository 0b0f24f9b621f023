package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopmirror/internal/application"
	"shopmirror/internal/application/webhook_handlers"
	"shopmirror/internal/domain"
	"shopmirror/internal/infrastructure/cache"
	"shopmirror/internal/infrastructure/metrics"
	"shopmirror/internal/infrastructure/pubsub"
	"shopmirror/internal/infrastructure/repository"
	shopifyinfra "shopmirror/internal/infrastructure/shopify"
	"shopmirror/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const deliveryDedupeTTL = 48 * time.Hour

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	// Get configuration from environment
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	webhookSecret := os.Getenv("SHOPIFY_WEBHOOK_SECRET")
	if webhookSecret == "" {
		logger.Fatal().Msg("SHOPIFY_WEBHOOK_SECRET environment variable is required")
	}

	syncInterval := application.DefaultSyncInterval
	if raw := os.Getenv("SYNC_INTERVAL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			logger.Fatal().Err(err).Str("value", raw).Msg("Invalid SYNC_INTERVAL")
		}
		syncInterval = parsed
	}

	// Connect to MongoDB
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	db := client.Database(os.Getenv("MONGODB_DATABASE"))

	// Initialize repositories
	tenantRepo := repository.NewMongoTenantRepository(db)
	storeRepo := repository.NewMongoStoreConnectionRepository(db)
	mirrorRepo := repository.NewMongoMirrorRepository(db)
	if err := mirrorRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create mirror indexes")
	}

	// Redis-backed webhook delivery dedupe (optional)
	var deduper ports.DeliveryDeduper
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
		deduper = cache.NewDeliveryCache(redisClient, deliveryDedupeTTL, logger)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, webhook delivery dedupe disabled")
	}

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	// Webhook registration needs API credentials; without them the push
	// path still works for manually configured subscriptions.
	var registrar ports.WebhookRegistrar
	apiKey := os.Getenv("SHOPIFY_API_KEY")
	apiSecret := os.Getenv("SHOPIFY_API_SECRET")
	appURL := os.Getenv("APP_URL")
	if apiKey != "" && apiSecret != "" && appURL != "" {
		registrar = shopifyinfra.NewWebhookManager(apiKey, apiSecret, appURL+"/webhooks/shopify", logger)
	} else {
		logger.Warn().Msg("SHOPIFY_API_KEY/SHOPIFY_API_SECRET/APP_URL not set, webhook registration disabled")
	}

	// Initialize the sync engine
	fetcher := shopifyinfra.NewClient(logger)
	syncService := application.NewSyncService(storeRepo, mirrorRepo, fetcher, registrar, recorder, 0, logger)
	scheduler := application.NewScheduler(tenantRepo, syncService, syncInterval, logger)
	reportingService := application.NewReportingService(mirrorRepo, logger)

	// Initialize webhook ingestion
	webhookDispatcher := application.NewWebhookDispatcher(logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewOrderHandler(mirrorRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewProductHandler(mirrorRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewCustomerHandler(mirrorRepo, logger))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppHandler(storeRepo, logger))

	eventPubSub := pubsub.NewEventPubSub(logger)

	ingestor := application.NewWebhookIngestor(
		shopifyinfra.NewWebhookVerifier(webhookSecret),
		tenantRepo,
		deduper,
		webhookDispatcher,
		eventPubSub,
		recorder,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduler.Run(ctx)

	// Setup router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhooks/shopify", webhookHandler(ingestor, logger))
	r.Post("/sync", manualSyncHandler(tenantRepo, syncService, logger))
	r.Get("/sync/status", syncStatusHandler(storeRepo, logger))
	r.Get("/report", reportHandler(reportingService, logger))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("port", port).Dur("syncInterval", syncInterval).Msg("Starting mirror API server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// webhookHandler converts a webhook HTTP request into an ingestor call and
// maps the outcome to a status: 200 handled or deliberately ignored, 401
// signature mismatch, 500 internal failure.
func webhookHandler(ingestor *application.WebhookIngestor, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to read webhook payload")
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		in := application.InboundWebhook{
			Topic:      r.Header.Get("X-Shopify-Topic"),
			ShopDomain: r.Header.Get("X-Shopify-Shop-Domain"),
			Signature:  r.Header.Get("X-Shopify-Hmac-Sha256"),
			DeliveryID: r.Header.Get("X-Shopify-Webhook-Id"),
			Body:       body,
		}

		if err := ingestor.Ingest(r.Context(), in); err != nil {
			if errors.Is(err, domain.ErrSignatureMismatch) {
				http.Error(w, "Invalid signature", http.StatusUnauthorized)
				return
			}
			logger.Error().Err(err).Str("topic", in.Topic).Msg("Failed to process webhook event")
			http.Error(w, "Failed to process webhook event", http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"received": "true"})
	}
}

// manualSyncHandler runs one tenant's sync cycle immediately and returns
// the receipt.
func manualSyncHandler(tenants ports.TenantRepository, syncService *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" {
			http.Error(w, "X-Tenant-ID header is required", http.StatusBadRequest)
			return
		}

		tenant, err := tenants.GetByID(r.Context(), tenantID)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenantID).Msg("Failed to get tenant")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if tenant == nil {
			http.Error(w, "Tenant not found", http.StatusNotFound)
			return
		}

		receipt, err := syncService.SyncTenant(r.Context(), tenant)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenantID).Msg("Manual sync failed")
			http.Error(w, "Sync failed", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(receipt)
	}
}

// syncStatusHandler reports a tenant's last sync time and webhook state.
func syncStatusHandler(stores ports.StoreConnectionRepository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" {
			http.Error(w, "X-Tenant-ID header is required", http.StatusBadRequest)
			return
		}

		conn, err := stores.GetByTenantID(r.Context(), tenantID)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenantID).Msg("Failed to get store connection")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if conn == nil {
			http.Error(w, "Store not found", http.StatusNotFound)
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"lastSyncAt":         conn.LastSyncAt,
			"webhooksConfigured": conn.WebhooksConfigured,
		})
	}
}

// reportHandler serves aggregate mirror reads for a tenant.
func reportHandler(reporting *application.ReportingService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" {
			http.Error(w, "X-Tenant-ID header is required", http.StatusBadRequest)
			return
		}

		report, err := reporting.Summary(r.Context(), tenantID)
		if err != nil {
			logger.Error().Err(err).Str("tenantId", tenantID).Msg("Failed to build report")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(report)
	}
}
