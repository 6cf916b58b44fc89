package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"itoparty/internal/service"
	"itoparty/internal/transport/rest/handler"
	"itoparty/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	GameService    *service.GameService
	PlayerService  *service.PlayerService
	CleanupService *service.CleanupService
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService)
	adminHandler := handler.NewAdminHandler(c.GameService)
	playerHandler := handler.NewPlayerHandler(c.PlayerService)
	cleanupHandler := handler.NewCleanupHandler(c.CleanupService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")

	// Sweeper trigger for the external scheduler (no per-call identity)
	r.HandleFunc("/internal/cleanup", cleanupHandler.Sweep).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Player routes (require player auth)
	playerRoutes := v1.NewRoute().Subrouter()
	playerRoutes.Use(authMW.RequirePlayer)

	playerRoutes.HandleFunc("/player/init", gameHandler.Init).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/enter", gameHandler.Enter).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/start", gameHandler.Start).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/end", gameHandler.End).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/reset", gameHandler.Reset).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/exit", gameHandler.Exit).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/config", gameHandler.GetConfig).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/info", gameHandler.GetInfo).Methods("GET", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/value", gameHandler.GetValue).Methods("GET", "OPTIONS")

	playerRoutes.HandleFunc("/games/{gameId}/topic", adminHandler.UpdateTopic).Methods("PUT", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/kick", adminHandler.Kick).Methods("POST", "OPTIONS")

	playerRoutes.HandleFunc("/games/{gameId}/name", playerHandler.UpdateName).Methods("PUT", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/hint", playerHandler.UpdateHint).Methods("PUT", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/avatar", playerHandler.UpdateAvatar).Methods("PUT", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/submit", playerHandler.Submit).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/withdraw", playerHandler.Withdraw).Methods("POST", "OPTIONS")
	playerRoutes.HandleFunc("/games/{gameId}/heartbeat", playerHandler.Heartbeat).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
