package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"parcel-service/internal/adapters/cache"
	"parcel-service/internal/adapters/events"
	"parcel-service/internal/adapters/payment"
	"parcel-service/internal/api"
	"parcel-service/internal/app"
	"parcel-service/internal/config"
	"parcel-service/internal/platform/metrics"
	"parcel-service/internal/ports"
	"parcel-service/internal/services"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (store, Stripe, Redis, Kafka) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}

	// Indexes and tables are created on startup so a fresh database works without dbtool.
	if err := stores.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	gateway, err := newGateway(cfg.PaymentGatewayKey)
	if err != nil {
		log.Fatal(err)
	}

	var historyCache ports.PaymentHistoryCache
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis ping addr=%s: %v", cfg.RedisAddr, err)
		}
		historyCache = cache.NewRedisHistoryCache(redisClient, cfg.HistoryCacheTTL)
		log.Printf("history cache=redis addr=%s ttl=%s", cfg.RedisAddr, cfg.HistoryCacheTTL)
	}

	var publisher ports.EventPublisher = events.NoopPublisher{}
	var kafka *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err = events.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			log.Fatal(err)
		}
		publisher = kafka
		log.Printf("events=kafka brokers=%v", cfg.KafkaBrokers)
	}

	metrics.Register()

	parcelSvc := services.NewParcelService(stores.Parcels, publisher)
	paymentSvc := services.NewPaymentService(gateway, stores.History, historyCache, publisher)
	router := api.NewRouter(parcelSvc, paymentSvc, cfg.CORSOrigin)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Println("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	}

	if kafka != nil {
		if err := kafka.Close(); err != nil {
			log.Printf("kafka close failed: %v", err)
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("redis close failed: %v", err)
		}
	}
	if err := stores.Close(shutdownCtx); err != nil {
		log.Printf("store close failed: %v", err)
	}

	log.Println("server shutdown complete")
}

// newGateway returns the Stripe gateway, or the mock when no key is configured.
func newGateway(key string) (ports.PaymentGateway, error) {
	if key == "" {
		log.Println("PAYMENT_GATEWAY_KEY not set, using mock payment gateway")
		return payment.NewMockGateway(), nil
	}
	return payment.NewStripeGateway(key)
}
