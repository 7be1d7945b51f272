package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/devbd1/routiner-server/internal/adapters/cache"
	"github.com/devbd1/routiner-server/internal/adapters/completion"
	adapterHTTP "github.com/devbd1/routiner-server/internal/adapters/handler/http"
	"github.com/devbd1/routiner-server/internal/adapters/repository"
	"github.com/devbd1/routiner-server/internal/config"
	"github.com/devbd1/routiner-server/internal/core/domain"
	"github.com/devbd1/routiner-server/internal/core/services"
	"github.com/devbd1/routiner-server/internal/core/workers"
)

func main() {
	startTime := time.Now()

	cfg := config.Load()

	var db *sqlx.DB
	var rdb *redis.Client
	var err error

	if cfg.UseRedis() {
		rdb, err = cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Printf("Redis unavailable, continuing without cache and rate limiting: %v", err)
			rdb = nil
		}
	}

	var habitRepo domain.HabitRepository
	var settingsRepo domain.SettingsRepository

	if cfg.UsePostgres() {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

		log.Println("Connecting to database...")
		db, err = sqlx.Connect("pgx", dsn)
		if err != nil {
			log.Fatalf("Critical: Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		log.Println("Database connected successfully.")

		habitRepo = repository.NewPostgresHabitRepository(db)
		settingsRepo = repository.NewPostgresSettingsRepository(db)
	} else {
		// Document mode: the original whole-collection JSON layout, on
		// redis when available, otherwise on local files.
		var kv repository.KVStore
		if rdb != nil {
			log.Println("Document storage on redis.")
			kv = repository.NewRedisKV(rdb)
		} else {
			log.Printf("Document storage on local files under %s.", cfg.DataDir)
			fileKV, err := repository.NewFileKV(cfg.DataDir)
			if err != nil {
				log.Fatalf("Critical: Failed to initialize file storage: %v", err)
			}
			kv = fileKV
		}
		habitRepo = repository.NewDocumentHabitRepository(kv)
		settingsRepo = repository.NewDocumentSettingsRepository(kv)
	}

	if rdb != nil && cfg.UsePostgres() {
		habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb)
	}

	streakWorker := workers.NewStreakWorker(habitRepo)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	streakWorker.Start(workerCtx)

	habitService := services.NewHabitService(habitRepo, streakWorker)
	settingsService := services.NewSettingsService(settingsRepo)
	statsService := services.NewStatsService(habitRepo)

	completer, err := completion.SelectProvider(completion.Config{
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		OllamaHost:   cfg.OllamaHost,
		Timeout:      cfg.AITimeout,
	})
	if err != nil {
		if errors.Is(err, completion.ErrNoProviderConfigured) {
			log.Println("No AI backend configured; the AI log endpoints will report unavailable.")
		} else {
			log.Fatalf("Critical: AI backend selection failed: %v", err)
		}
	} else {
		log.Printf("AI completions via %s.", completer.Name())
	}
	aiLogService := services.NewAILogService(habitService, settingsService, completer)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler:    adapterHTTP.NewHabitHandler(habitService),
		AILogHandler:    adapterHTTP.NewAILogHandler(aiLogService),
		SettingsHandler: adapterHTTP.NewSettingsHandler(settingsService),
		StatsHandler:    adapterHTTP.NewStatsHandler(statsService),
		DB:              db,
		Redis:           rdb,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // AI generation can wait on the backend
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Routiner server running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}
	stopWorker()

	log.Println("Server stopped gracefully.")
}
