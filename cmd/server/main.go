package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/config"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/database"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/handlers"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/repository"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/security"
	"github.com/Tsujimo-Tohoku/medical-summary-app/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	inviteRepo := repository.NewInviteRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	tokenIssuer := security.NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration)
	authService := service.NewAuthService(userRepo, profileRepo, tokenIssuer, emailService)
	profileService := service.NewProfileService(profileRepo)
	groupService := service.NewGroupService(groupRepo)
	inviteService := service.NewInviteService(inviteRepo, groupRepo, emailService)
	summaryService := service.NewSummaryService(summaryRepo)

	// Initialize handlers
	rateLimiter := security.NewRateLimiter(10, time.Minute)
	middleware := handlers.NewMiddleware(tokenIssuer, rateLimiter)
	authHandler := handlers.NewAuthHandler(authService)
	oauthHandler := handlers.NewOAuthHandler(authService, cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectBaseURL, cfg.AppBaseURL)
	profileHandler := handlers.NewProfileHandler(profileService)
	familyHandler := handlers.NewFamilyHandler(groupService, inviteService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Public routes
	mux.HandleFunc("POST /api/auth/register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /auth/google/start", oauthHandler.Start)
	mux.HandleFunc("GET /auth/google/callback", oauthHandler.Callback)

	// Protected routes
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(profileHandler.GetProfile))
	mux.HandleFunc("PUT /api/profile", middleware.RequireAuth(profileHandler.UpdateProfile))

	mux.HandleFunc("GET /api/family", middleware.RequireAuth(familyHandler.GetMyGroup))
	mux.HandleFunc("POST /api/family", middleware.RequireAuth(familyHandler.CreateGroup))
	mux.HandleFunc("POST /api/family/leave", middleware.RequireAuth(familyHandler.LeaveGroup))
	mux.HandleFunc("POST /api/family/code", middleware.RequireAuth(familyHandler.GenerateCode))
	mux.HandleFunc("GET /api/family/code", middleware.RequireAuth(familyHandler.CodeStatus))
	mux.HandleFunc("POST /api/family/join", middleware.RequireAuth(familyHandler.RedeemCode))

	mux.HandleFunc("GET /api/summaries", middleware.RequireAuth(summaryHandler.ListSummaries))
	mux.HandleFunc("POST /api/summaries", middleware.RequireAuth(summaryHandler.CreateSummary))
	mux.HandleFunc("GET /api/summaries/{id}", middleware.RequireAuth(summaryHandler.GetSummary))
	mux.HandleFunc("POST /api/summaries/{id}/privacy", middleware.RequireAuth(summaryHandler.SetPrivacy))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
