package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/playmatatu/snooker/internal/api"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/migrations"
	"github.com/playmatatu/snooker/internal/redis"
	"github.com/playmatatu/snooker/internal/store"
	"github.com/playmatatu/snooker/internal/ws"
)

func main() {
	// Initialize configuration
	cfg := config.Load()

	tableCfg, err := config.LoadTable(cfg.TableConfigPath)
	if err != nil {
		log.Fatalf("Failed to load table config: %v", err)
	}

	// Initialize match history store
	var hist *store.Store
	if cfg.UsePostgres() {
		if cfg.MigrateOnStart {
			log.Println("↗ Running DB migrations on startup...")
			if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
				log.Fatalf("Failed to run migrations: %v", err)
			}
		}
		hist, err = store.Open(store.DriverPostgres, cfg.DatabaseURL)
	} else {
		log.Printf("[DB] DATABASE_URL not set, using SQLite at %s", cfg.SQLitePath)
		hist, err = store.Open(store.DriverSQLite, cfg.SQLitePath)
	}
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer hist.Close()

	// Redis is optional; without it events go straight to local clients
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(cfg)
		if err != nil {
			log.Printf("[REDIS] Failed to connect, running without redis: %v", err)
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	manager := game.NewTableManager(cfg, tableCfg, rdb, hub, hist)
	manager.Start()
	defer manager.Shutdown()

	ws.StartTableEventSubscriber(ctx, rdb, hub)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, cfg, manager, hub, hist)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting snooker server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
