package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goldspin/casino-backend/api/routes"
	"github.com/goldspin/casino-backend/internal/config"
	"github.com/goldspin/casino-backend/internal/handlers"
	mongorepo "github.com/goldspin/casino-backend/internal/repositories/mongodb"
	"github.com/goldspin/casino-backend/internal/services"
	"github.com/goldspin/casino-backend/pkg/mongodb"
	"github.com/goldspin/casino-backend/pkg/redisclient"
	"github.com/goldspin/casino-backend/pkg/smsgateway"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

func main() {
	// .env is optional; real deployments set environment variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	mongoClient, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)

	var redisClient *redis.Client
	if cfg.Jackpot.RateLimitEnabled {
		redisClient, err = redisclient.NewClient(cfg)
		if err != nil {
			// The limiter fails open, so a missing Redis degrades rather than blocks startup.
			slog.Warn("Redis unavailable, rate limiting disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Repositories
	poolRepo := mongorepo.NewPoolRepository(db)
	ticketRepo := mongorepo.NewTicketRepository(db)
	pendingRepo := mongorepo.NewPendingTicketRepository(db)
	countRepo := mongorepo.NewTicketCountRepository(db)
	drawRepo := mongorepo.NewDrawRepository(db)
	winnerRepo := mongorepo.NewWinnerRepository(db)
	walletRepo := mongorepo.NewWalletRepository(db)
	userRepo := mongorepo.NewUserRepository(db)
	blacklistRepo := mongorepo.NewBlacklistRepository(db)
	adminRepo := mongorepo.NewAdminUserRepository(db)

	// SMS gateway
	var smsGw smsgateway.Gateway
	if cfg.SMS.MockSMS {
		smsGw = smsgateway.NewMockGateway()
	} else {
		smsGw = smsgateway.NewHTTPGateway(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.SenderID)
	}

	// Services
	drawGrace := time.Duration(cfg.Jackpot.DrawGraceMinutes) * time.Minute
	poolService := services.NewPoolService(poolRepo)
	ticketService := services.NewTicketService(poolRepo, ticketRepo, pendingRepo, countRepo)
	drawService := services.NewDrawService(poolRepo, ticketRepo, drawRepo, winnerRepo, blacklistRepo, drawGrace)
	walletService := services.NewWalletService(walletRepo, userRepo)
	prizeService := services.NewPrizeService(winnerRepo, userRepo, walletService, smsGw)
	authService := services.NewAuthService(adminRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second)

	// Scheduler
	if cfg.Jackpot.SchedulerEnabled {
		scheduler := services.NewScheduler(poolRepo, drawService, ticketService, prizeService)
		if err := scheduler.Start(); err != nil {
			slog.Error("Failed to start scheduler", "error", err)
			os.Exit(1)
		}
		defer scheduler.Stop()
	}

	// Handlers
	deps := &routes.HandlerDependencies{
		AuthHandler:      handlers.NewAuthHandler(authService),
		PoolHandler:      handlers.NewPoolHandler(poolService),
		DrawHandler:      handlers.NewDrawHandler(drawService, ticketService, prizeService),
		TicketHandler:    handlers.NewTicketHandler(ticketService),
		WalletHandler:    handlers.NewWalletHandler(walletService),
		BlacklistHandler: handlers.NewBlacklistHandler(blacklistRepo),
	}

	router := routes.SetupRouter(cfg, redisClient, deps)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exited")
}

func setupLogger(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
