package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goldspin/casino-backend/internal/config"
	"github.com/goldspin/casino-backend/internal/handlers"
	"github.com/goldspin/casino-backend/internal/middleware"
	"github.com/redis/go-redis/v9"
)

// HandlerDependencies collects the handlers wired in main
type HandlerDependencies struct {
	AuthHandler      *handlers.AuthHandler
	PoolHandler      *handlers.PoolHandler
	DrawHandler      *handlers.DrawHandler
	TicketHandler    *handlers.TicketHandler
	WalletHandler    *handlers.WalletHandler
	BlacklistHandler *handlers.BlacklistHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, redisClient *redis.Client, deps *HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		public.POST("/auth/login", deps.AuthHandler.Login)

		// Pool and draw read models
		public.GET("/pools", deps.PoolHandler.GetPools)
		public.GET("/pools/:id/status", deps.PoolHandler.GetPoolStatus)
		public.GET("/pools/:id/draws", deps.DrawHandler.GetDrawHistory)
		public.GET("/pools/:id/draws/latest", deps.DrawHandler.GetLatestDraw)
		public.GET("/pools/:id/tickets/:userId", deps.TicketHandler.GetTickets)
		public.GET("/pools/:id/tickets/:userId/count", deps.TicketHandler.GetTicketCount)
		public.GET("/pools/:id/tickets/:userId/odds", deps.TicketHandler.GetOdds)
		public.GET("/draws/:id", deps.DrawHandler.GetDraw)
		public.GET("/draws/:id/winners", deps.DrawHandler.GetDrawWinners)
		public.GET("/users/:userId/transactions", deps.WalletHandler.GetTransactions)
		public.GET("/users/:userId/winners", deps.DrawHandler.GetUserWinners)
	}

	// Wager intake, restricted to the wagering core by shared key and rate
	// limited per client
	wagers := router.Group("/api/v1")
	wagers.Use(middleware.ServiceAuthMiddleware(cfg))
	if cfg.Jackpot.RateLimitEnabled && redisClient != nil {
		wagers.Use(middleware.RateLimitMiddleware(redisClient, cfg.Jackpot.RateLimitPerMin, time.Minute))
	}
	wagers.POST("/wagers", deps.TicketHandler.ProcessWager)

	// Admin routes
	admin := router.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg), middleware.RequireAdmin())
	{
		admin.POST("/pools", deps.PoolHandler.CreatePool)
		admin.PUT("/pools/:id/tiers", deps.PoolHandler.UpdateTiers)
		admin.POST("/pools/:id/pause", deps.PoolHandler.PausePool)
		admin.POST("/pools/:id/resume", deps.PoolHandler.ResumePool)
		admin.POST("/pools/:id/draw", deps.DrawHandler.ExecuteDraw)
		admin.POST("/winners/:id/credit", deps.DrawHandler.CreditWinner)

		admin.GET("/blacklist", deps.BlacklistHandler.List)
		admin.POST("/blacklist", deps.BlacklistHandler.Add)
		admin.DELETE("/blacklist/:userId", deps.BlacklistHandler.Remove)
	}

	return router
}
