package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"jansevak/backend/internal/ai"
	"jansevak/backend/internal/alerts"
	"jansevak/backend/internal/api/handler"
	"jansevak/backend/internal/config"
	"jansevak/backend/internal/escalation"
	"jansevak/backend/internal/gamification"
	"jansevak/backend/internal/livefeed"
	"jansevak/backend/internal/media"
	"jansevak/backend/internal/moderation"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/notify"
	"jansevak/backend/internal/storage"
	"jansevak/backend/internal/verification"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.Ward{},
		&models.Citizen{},
		&models.Complaint{},
		&models.Verification{},
		&models.UserProfile{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting JanSevak Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	// 1. Infrastructure
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	mediaStore, err := media.NewDiskStore(cfg.MediaDir)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	opsAlerter, err := alerts.NewNotifier(cfg.TelegramToken, cfg.TelegramOpsChat)
	if err != nil {
		log.Printf("Warning: Telegram alerts disabled: %v", err)
	}

	// 2. Core services
	dispatcher := &notify.Dispatcher{
		Sender:          notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		Citizens:        s,
		Alerter:         opsAlerter,
		FromAddress:     cfg.FromAddress,
		OverrideEmail:   cfg.OverrideEmail,
		SeniorOfficials: cfg.SeniorOfficials,
		BaseURL:         cfg.BaseURL,
	}

	provider := ai.NewProvider(ai.Config{
		Name:         cfg.AIProvider,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GrokAPIKey:   cfg.GrokAPIKey,
		Timeout:      config.AnalyzeTimeout,
	})

	ledger := gamification.NewLedger(s)
	gate := moderation.NewGate(s, mediaStore, provider, dispatcher)
	engine := verification.NewEngine(s, ledger, dispatcher)

	feed := livefeed.NewHub()

	machine := escalation.NewMachine(s, ledger, dispatcher, mediaStore)
	machine.EscalateAfter = cfg.EscalationAfter
	machine.Alerter = opsAlerter
	machine.Feed = feed

	// 3. Background goroutines
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go feed.Run()
	go machine.Run(ctx, cfg.SweepInterval)

	// 4. Gin routing
	r := gin.Default()
	r.Static("/media", cfg.MediaDir)

	h := handler.NewHandler(s, gate, engine, machine, ledger, feed, cfg.JWTSecret)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + cfg.HTTPPort,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped.")
}
