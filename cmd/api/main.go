// Package main is the entry point for the API server.
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
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nafioutino/xamxam.io-sub000/internal/config"
	"github.com/nafioutino/xamxam.io-sub000/internal/handler"
	"github.com/nafioutino/xamxam.io-sub000/internal/llm"
	"github.com/nafioutino/xamxam.io-sub000/internal/middleware"
	"github.com/nafioutino/xamxam.io-sub000/internal/model"
	"github.com/nafioutino/xamxam.io-sub000/internal/service"
	"github.com/nafioutino/xamxam.io-sub000/internal/social"
	"github.com/nafioutino/xamxam.io-sub000/internal/store"
	"github.com/nafioutino/xamxam.io-sub000/internal/whatsapp"
	"github.com/nafioutino/xamxam.io-sub000/pkg/logger"
	"github.com/nafioutino/xamxam.io-sub000/pkg/tracing"
)

func main() {
	// Load configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "xamxam-api", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to MySQL and migrate the schema
	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Connect to the WhatsApp engine bridge
	bridge, err := whatsapp.Connect(whatsapp.Config{
		URL:      cfg.NATSURL,
		CAFile:   cfg.NATSCAFile,
		CertFile: cfg.NATSCertFile,
		KeyFile:  cfg.NATSKeyFile,
		Token:    cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer bridge.Close()

	// Initialize LLM client
	var llmClient llm.Client
	switch {
	case cfg.DefaultLLM == "openai" && cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewClient(llm.ProviderOpenAI, cfg.OpenAIAPIKey)
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewClient(llm.ProviderAnthropic, cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewClient(llm.ProviderOpenAI, cfg.OpenAIAPIKey)
	}
	if err != nil {
		log.Warn("failed to create LLM client, content generation disabled", zap.Error(err))
		llmClient = nil
	}

	// Configure social publishers
	publishers := map[model.Platform]social.Publisher{}
	if cfg.FacebookPageID != "" && cfg.FacebookAccessToken != "" {
		publishers[model.PlatformMessenger] = &social.FacebookClient{
			BaseURL:     cfg.GraphBaseURL,
			PageID:      cfg.FacebookPageID,
			AccessToken: cfg.FacebookAccessToken,
		}
	}
	if cfg.InstagramUserID != "" && cfg.InstagramAccessToken != "" {
		publishers[model.PlatformInstagram] = &social.InstagramClient{
			BaseURL:     cfg.GraphBaseURL,
			UserID:      cfg.InstagramUserID,
			AccessToken: cfg.InstagramAccessToken,
		}
	}
	if cfg.TikTokAccessToken != "" {
		publishers[model.PlatformTikTok] = &social.TikTokClient{
			BaseURL:     cfg.TikTokBaseURL,
			AccessToken: cfg.TikTokAccessToken,
		}
	}

	// Initialize services
	conversationSvc := service.NewConversationService(db, log)
	messageSvc := service.NewMessageService(db, conversationSvc, bridge, log)
	productSvc := service.NewProductService(db, log)
	channelSvc := service.NewChannelService(db, bridge, log)
	contentSvc := service.NewContentService(db, llmClient, log)
	publishSvc := service.NewPublishService(db, publishers, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db, bridge)
	conversationHandler := handler.NewConversationHandler(conversationSvc, log)
	messageHandler := handler.NewMessageHandler(messageSvc, log)
	productHandler := handler.NewProductHandler(productSvc, log)
	channelHandler := handler.NewChannelHandler(channelSvc, log)
	contentHandler := handler.NewContentHandler(contentSvc, publishSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Conversations
		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)
			r.Post("/", conversationHandler.Create)
			r.Patch("/", conversationHandler.BulkUpdate)
			r.Delete("/", conversationHandler.BulkDelete)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)

				// Messages
				r.Get("/messages", messageHandler.List)
				r.Post("/messages", messageHandler.Send)
			})
		})

		// Products
		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", productHandler.Get)
				r.Patch("/", productHandler.Update)
				r.Delete("/", productHandler.Delete)
			})
		})

		// Channels and WhatsApp pairing
		r.Route("/channels", func(r chi.Router) {
			r.Get("/", channelHandler.List)
			r.Post("/", channelHandler.Connect)
			r.Post("/whatsapp/pair", channelHandler.StartPairing)
			r.Get("/whatsapp/pair/{session}", channelHandler.PairingStream)
		})

		// Content generation and publishing
		r.Post("/content/generate", contentHandler.Generate)
		r.Post("/publish", contentHandler.Publish)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
