package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"minigames/internal/repository"
	"minigames/internal/service"
	"minigames/internal/transport/rest/handler"
	"minigames/internal/transport/rest/middleware"
	"minigames/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
	StatsRepo      repository.StatsRepo
	WSHub          *ws.Hub
	Log            zerolog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(c.AuthService)
	lobbyHandler := handler.NewLobbyHandler(c.SessionService, c.AuthService)
	statsHandler := handler.NewStatsHandler(c.StatsRepo)
	wsHandler := ws.NewHandler(c.WSHub, c.SessionService, c.AuthService, c.Log)
	authMw := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	v1.HandleFunc("/lobbies/{code}/join", lobbyHandler.Join).Methods("POST", "OPTIONS")
	v1.HandleFunc("/lobbies/{code}", lobbyHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/lobbies/{code}/games", statsHandler.History).Methods("GET", "OPTIONS")
	v1.Handle("/lobbies/{code}",
		authMw.RequireHost(http.HandlerFunc(lobbyHandler.Close))).Methods("DELETE")
	v1.HandleFunc("/games/{gameId}", statsHandler.Get).Methods("GET", "OPTIONS")

	// WebSocket route (token in query param)
	v1.HandleFunc("/ws/lobbies/{code}", wsHandler.LobbyWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
