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
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/ascmontjoie/club-portal-backend/internal/api/handlers"
	"github.com/ascmontjoie/club-portal-backend/internal/api/middleware"
	"github.com/ascmontjoie/club-portal-backend/internal/config"
	"github.com/ascmontjoie/club-portal-backend/internal/cron"
	"github.com/ascmontjoie/club-portal-backend/internal/db"
	"github.com/ascmontjoie/club-portal-backend/internal/email"
	"github.com/ascmontjoie/club-portal-backend/internal/repository"
	"github.com/ascmontjoie/club-portal-backend/internal/seed"
	"github.com/ascmontjoie/club-portal-backend/internal/service"
	"github.com/ascmontjoie/club-portal-backend/internal/socket"
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
	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	// ============================================
	// Initialize PostgreSQL (pgxpool + sqlx)
	// ============================================
	pgDB, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to create pgx pool: %v", err)
	}
	defer pgDB.Close()

	sqlDB, err := sqlx.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to open sql DB: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("❌ Failed to ping sql DB: %v", err)
	}

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewRepositories(pgDB.Pool, sqlDB)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without session cache)", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			log.Println("⚡ Redis session store enabled")
		}
	}

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		Redis:       redisDB,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(cfg, repos.ApprovalRepo, repos.ProfileRepo, emailSvc, broadcaster)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      getCacheStatus(redisDB),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
			"email":      getEmailStatus(emailSvc),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			// Profile routes
			profiles := protected.Group("/profiles")
			{
				profiles.GET("/me", h.Profile.Me)
				profiles.PUT("/me", h.Profile.UpdateName)
				profiles.PUT("/me/password", h.Profile.ChangePassword)
				profiles.GET("", h.Profile.List)
				profiles.GET("/:id", h.Profile.Get)
				profiles.PATCH("/:id/role", h.Profile.UpdateRole)
				profiles.PATCH("/:id/active", h.Profile.SetActive)
				profiles.DELETE("/:id", h.Profile.Delete)
			}

			// Team routes
			teams := protected.Group("/teams")
			{
				teams.GET("", h.Team.List)
				teams.POST("", h.Team.Create)
				teams.GET("/:id", h.Team.Get)
				teams.PUT("/:id", h.Team.Update)
				teams.PATCH("/:id/coach", h.Team.AssignCoach)
			}

			// Coach assignment (replace full set)
			protected.PUT("/coaches/:coachId/teams", h.Team.SetCoachTeams)

			// Player routes
			players := protected.Group("/players")
			{
				players.GET("", h.Player.List)
				players.POST("", h.Player.Create)
				players.GET("/:id", h.Player.Get)
				players.PUT("/:id", h.Player.Update)
				players.POST("/:id/move", h.Player.Move)
				players.DELETE("/:id", h.Player.Delete)
			}

			// Planning routes
			planning := protected.Group("/planning")
			{
				planning.GET("", h.Planning.List)
				planning.POST("", h.Planning.Create)
				planning.GET("/:id", h.Planning.Get)
				planning.DELETE("/:id", h.Planning.Delete)
				planning.POST("/:id/attendance", h.Planning.RecordAttendance)
				planning.GET("/:id/attendance", h.Planning.GetAttendance)
			}

			// Approval queue routes
			approvals := protected.Group("/approvals")
			{
				approvals.GET("/pending", h.Approval.ListPending)
				approvals.GET("/mine", h.Approval.ListMine)
				approvals.POST("/:id/decide", h.Approval.Decide)
			}

			// Stock routes
			stock := protected.Group("/stock")
			{
				stock.GET("", h.Stock.List)
				stock.POST("", h.Stock.Create)
				stock.GET("/:id", h.Stock.Get)
				stock.PUT("/:id", h.Stock.Update)
				stock.POST("/:id/adjust", h.Stock.Adjust)
				stock.DELETE("/:id", h.Stock.Delete)
			}
		}
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getCacheStatus(redisDB *db.RedisDB) string {
	if redisDB != nil {
		return "connected"
	}
	return "disabled"
}

func getEmailStatus(emailSvc *email.Service) string {
	if emailSvc != nil {
		return "configured"
	}
	return "disabled"
}
