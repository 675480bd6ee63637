package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/praxislabs/praxis-backend/internal/clients/redisstore"
	"github.com/praxislabs/praxis-backend/internal/clients/tavus"
	"github.com/praxislabs/praxis-backend/internal/clients/transport"
	"github.com/praxislabs/praxis-backend/internal/db"
	"github.com/praxislabs/praxis-backend/internal/handlers"
	"github.com/praxislabs/praxis-backend/internal/logger"
	"github.com/praxislabs/praxis-backend/internal/middleware"
	"github.com/praxislabs/praxis-backend/internal/repos"
	"github.com/praxislabs/praxis-backend/internal/server"
	"github.com/praxislabs/praxis-backend/internal/services"
	"github.com/praxislabs/praxis-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	mode := os.Getenv("APP_ENV")
	log, err := logger.New(mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	jwtSecret := utils.GetEnv("JWT_SECRET_KEY", "", log)
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}
	accessTTL := time.Duration(utils.GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 15, log)) * time.Minute
	refreshTTL := time.Duration(utils.GetEnvAsInt("REFRESH_TOKEN_TTL_HOURS", 720, log)) * time.Hour

	// Database
	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Failed to connect to postgres", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	gdb := pg.DB()

	// Repos
	userRepo := repos.NewUserRepo(gdb, log)
	userTokenRepo := repos.NewUserTokenRepo(gdb, log)
	profileRepo := repos.NewProfileRepo(gdb, log)
	simulationRepo := repos.NewSimulationRepo(gdb, log)
	sessionRepo := repos.NewSessionRepo(gdb, log)

	// Clients
	nonceStore, err := redisstore.NewNonceStore(log)
	if err != nil {
		log.Fatal("Failed to connect to redis", "error", err)
	}
	defer nonceStore.Close()
	tavusClient, err := tavus.NewFromEnv(log)
	if err != nil {
		log.Fatal("Failed to configure avatar client", "error", err)
	}
	transportClient := transport.New(log)
	oidcVerifier, err := services.NewOIDCVerifier(&http.Client{Timeout: 10 * time.Second}, utils.GetEnv("GOOGLE_CLIENT_ID", "", log))
	if err != nil {
		log.Fatal("Failed to configure oidc verifier", "error", err)
	}

	// Services
	authService := services.NewAuthService(gdb, log, userRepo, userTokenRepo, nonceStore, oidcVerifier, jwtSecret, accessTTL, refreshTTL)
	sessionGate := services.NewSessionGate(gdb, log, profileRepo)
	profileService := services.NewProfileService(gdb, log, profileRepo)
	onboardingService := services.NewOnboardingService(gdb, log, profileRepo)
	simulationService := services.NewSimulationService(gdb, log, simulationRepo)
	conversationService := services.NewConversationService(log, simulationRepo, tavusClient, transportClient)
	historyService := services.NewHistoryService(gdb, log, sessionRepo)
	userService := services.NewUserService(gdb, log, userRepo)

	// HTTP
	authMiddleware := middleware.NewAuthMiddleware(log, authService)
	router := server.NewRouter(server.RouterConfig{
		Log:                 log,
		AuthMiddleware:      authMiddleware,
		AuthHandler:         handlers.NewAuthHandler(authService, sessionGate),
		UserHandler:         handlers.NewUserHandler(userService),
		ProfileHandler:      handlers.NewProfileHandler(profileService),
		OnboardingHandler:   handlers.NewOnboardingHandler(onboardingService),
		SimulationHandler:   handlers.NewSimulationHandler(simulationService),
		ConversationHandler: handlers.NewConversationHandler(conversationService),
		HistoryHandler:      handlers.NewHistoryHandler(historyService),
		AllowOrigins:        splitOrigins(utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)),
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
