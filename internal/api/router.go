package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/mcoot/music-roulette/internal/api/handler"
	"github.com/mcoot/music-roulette/internal/api/middleware"
	"github.com/mcoot/music-roulette/internal/api/response"
	"github.com/mcoot/music-roulette/internal/metrics"
	sharedmw "github.com/mcoot/music-roulette/internal/middleware"
	"github.com/mcoot/music-roulette/internal/notify"
	"github.com/mcoot/music-roulette/internal/services/room"
	"github.com/mcoot/music-roulette/internal/web/sse"
)

// RoomLister is the part of the registry the health check needs
type RoomLister interface {
	Count(ctx context.Context) (int, error)
}

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	RoomController *room.Controller
	HubManager     *sse.HubManager
	// Notifier receives every successful mutation
	Notifier notify.Notifier
	// SocketHandler serves /socket when set
	SocketHandler http.Handler
	// Metrics enables /metrics and request instrumentation when set
	Metrics *metrics.Metrics
	// AllowedOrigins configures CORS; empty disables the CORS middleware
	AllowedOrigins []string
	// RateLimiter bounds room requests per client IP; nil disables limiting
	RateLimiter *sharedmw.RateLimiter
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	var observer handler.OpObserver
	if cfg.Metrics != nil {
		observer = cfg.Metrics
	}

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.Notifier, observer, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.RoomController, cfg.HubManager, cfg.Logger)

	// Create middleware
	loggingMiddleware := sharedmw.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	r.Use(recoveryMiddleware)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	if cfg.Metrics != nil {
		api.Use(cfg.Metrics.Middleware)
	}

	// Health check endpoint (not rate limited)
	api.HandleFunc("/health", healthHandler(cfg.RoomController)).Methods(http.MethodGet)

	// Room routes
	rooms := api.PathPrefix("/rooms").Subrouter()
	if cfg.RateLimiter != nil {
		rooms.Use(middleware.RateLimit(cfg.RateLimiter))
	}
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}/join", roomHandler.Join).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/leave", roomHandler.Leave).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/kick", roomHandler.Kick).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/config", roomHandler.UpdateConfig).Methods(http.MethodPost, http.MethodPatch)
	rooms.HandleFunc("/{code}/start", roomHandler.Start).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/submit", roomHandler.Submit).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}/events", eventsHandler.Stream).Methods(http.MethodGet)

	if cfg.SocketHandler != nil {
		r.Handle("/socket", loggingMiddleware(cfg.SocketHandler)).Methods(http.MethodGet)
	}

	// CORS wraps the router so preflights are answered before route matching
	if len(cfg.AllowedOrigins) == 0 {
		return r
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(r)
}

func healthHandler(rooms RoomLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := rooms.Count(r.Context())
		if err != nil {
			handler.WriteError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok", Rooms: n})
	}
}
