// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mihajloslav/fnflx/internal/api/handlers"
	"github.com/mihajloslav/fnflx/internal/api/middleware"
	"github.com/mihajloslav/fnflx/internal/config"
	"github.com/mihajloslav/fnflx/internal/db"
	"github.com/mihajloslav/fnflx/internal/repository"
	"github.com/mihajloslav/fnflx/internal/service"
	"github.com/mihajloslav/fnflx/internal/telegram"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Initialize PostgreSQL
	// ============================================
	postgres, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewRepositories(postgres.Pool)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Telegram Bot Client
	// ============================================
	bot := telegram.NewClient(cfg.BotToken)

	// The bot's identity never changes at runtime; fetch it once so event
	// handling does not pay a getMe round trip per webhook. It also proves
	// the credential before the server accepts traffic.
	startupCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	me, err := bot.GetMe(startupCtx)
	cancel()
	if err != nil {
		log.Fatalf("❌ Failed to verify bot credential: %v", err)
	}
	log.Printf("🤖 Bot authenticated as @%s (ID: %d)", me.Username, me.ID)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config: cfg,
		Repos:  repos,
		Bot:    bot,
		BotID:  me.ID,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"database":  "connected",
			"bot":       "@" + me.Username,
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.POST("/telegram/webhook", middleware.WebhookSecret(cfg.WebhookSecret), h.Webhook.Handle)
		api.POST("/invite", h.Invite.Generate)
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
