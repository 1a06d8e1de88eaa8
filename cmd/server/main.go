package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ivpenchev/portfolio-tracker/internal/api"
	"github.com/ivpenchev/portfolio-tracker/internal/config"
	"github.com/ivpenchev/portfolio-tracker/internal/database"
	"github.com/ivpenchev/portfolio-tracker/internal/kafka"
	"github.com/ivpenchev/portfolio-tracker/internal/marketdata"
	"github.com/ivpenchev/portfolio-tracker/internal/valuation"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()

	// 1. Database
	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Prune price history beyond the retention horizon; 0 disables
	if months := cfg.Valuation.RetentionMonths; months > 0 {
		cutoff := time.Now().AddDate(0, -months, 0)
		if deleted, err := db.DeletePricePointsOlderThan(ctx, cutoff); err != nil {
			log.Printf("Failed to prune old price points: %v", err)
		} else if deleted > 0 {
			log.Printf("Pruned %d price points older than %s", deleted, cutoff.Format("2006-01-02"))
		}
	}

	// 2. Price cache; the service runs without it if redis is unreachable
	var cache marketdata.Cache
	redisCache := marketdata.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Ping(ctx); err != nil {
		log.Printf("Redis unavailable, running without price cache: %v", err)
	} else {
		cache = redisCache
		defer redisCache.Close()
	}

	// 3. Valuation engine over the database-backed price source
	source := marketdata.NewSource(db, cache, time.Duration(cfg.Valuation.CacheTTLSeconds)*time.Second)
	engine := valuation.NewEngine(db, source, cfg.Valuation.ReferenceCurrency, cfg.Valuation.HistoryMonths)

	// 4. Kafka: price tick ingestion and holding event publishing
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.HoldingsTopic)
	defer producer.Close()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.PriceTopic, cfg.Kafka.GroupID, db)
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	go func() {
		if err := consumer.Start(consumerCtx); err != nil {
			log.Printf("Kafka consumer stopped: %v", err)
		}
	}()

	// 5. HTTP server
	handler := api.NewHandler(db, engine, producer)
	router := api.SetupRoutes(handler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Printf("Received signal: %v. Shutting down gracefully...", sig)

	stopConsumer()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown: %v", err)
	}
	log.Println("Server stopped")
}
