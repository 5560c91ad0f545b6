package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/qudalautt/hub/internal/adapter/handler"
	"github.com/qudalautt/hub/internal/adapter/notifier"
	"github.com/qudalautt/hub/internal/adapter/storage"
	"github.com/qudalautt/hub/internal/clock"
	"github.com/qudalautt/hub/internal/config"
	"github.com/qudalautt/hub/internal/core/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}
	log.Println("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	// Adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb)
	push := notifier.NewOneSignalNotifier(cfg.OneSignalApp, cfg.OneSignalKey, cfg.OneSignalURL)

	// Core services
	clk := clock.NewSystem()
	store := service.NewPendingStore()
	dedup := service.NewDeduplicator()
	toasts := service.NewToastQueue(clk)
	feed := service.NewFeed(mysqlAdapter, redisAdapter, push, store, dedup, toasts, cfg.PollInterval)
	workflow := service.NewWorkflow(mysqlAdapter, mysqlAdapter, store, toasts, clk)

	if err := feed.Start(ctx); err != nil {
		log.Fatalf("failed to start order feed: %v", err)
	}
	log.Printf("order feed started (poll every %s)", cfg.PollInterval)

	// Router
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	httpHandler := handler.NewHTTPHandler(store, toasts, workflow, mysqlAdapter, mysqlAdapter)
	httpHandler.Register(r.PathPrefix("/api/v1").Subrouter())

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	feed.Stop()
	log.Println("order feed stopped")

	toasts.Stop()

	rdb.Close()
	db.Close()
	log.Println("connections closed")
}
