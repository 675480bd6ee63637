package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/praxislabs/praxis-backend/internal/handlers"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/middleware"
)

type RouterConfig struct {
	Log                 *logger.Logger
	AuthMiddleware      *middleware.AuthMiddleware
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	ProfileHandler      *handlers.ProfileHandler
	OnboardingHandler   *handlers.OnboardingHandler
	SimulationHandler   *handlers.SimulationHandler
	ConversationHandler *handlers.ConversationHandler
	HistoryHandler      *handlers.HistoryHandler
	AllowOrigins        []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Log != nil {
		router.Use(middleware.RequestLogger(cfg.Log))
	}

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	api := router.Group("/api")
	{
		api.POST("/register", cfg.AuthHandler.Register)
		api.POST("/login", cfg.AuthHandler.Login)
		api.POST("/oauth/nonce", cfg.AuthHandler.OAuthNonce)
		api.POST("/oauth/google", cfg.AuthHandler.OAuthGoogle)
	}

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)
	// User
	protected.GET("/user", cfg.UserHandler.GetMe)
	// Profile
	protected.GET("/profile", cfg.ProfileHandler.Get)
	protected.PATCH("/profile", cfg.ProfileHandler.Update)
	// Onboarding
	protected.GET("/onboarding/steps", cfg.OnboardingHandler.Steps)
	protected.POST("/onboarding/complete", cfg.OnboardingHandler.Complete)
	// Simulations
	protected.GET("/simulations", cfg.SimulationHandler.List)
	protected.GET("/simulations/search", cfg.SimulationHandler.Search)
	protected.GET("/simulations/category/:category", cfg.SimulationHandler.ListByCategory)
	protected.GET("/simulations/:sim_id", cfg.SimulationHandler.Get)
	// Conversation
	protected.POST("/conversation/start", cfg.ConversationHandler.Start)
	protected.GET("/conversation", cfg.ConversationHandler.Get)
	protected.POST("/conversation/leave", cfg.ConversationHandler.Leave)
	protected.POST("/conversation/restart", cfg.ConversationHandler.Restart)
	// History
	protected.POST("/sessions", cfg.HistoryHandler.Record)
	protected.GET("/history", cfg.HistoryHandler.List)
	protected.GET("/history/summary", cfg.HistoryHandler.Summary)

	return router
}
