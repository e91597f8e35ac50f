package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tsumogiri/riichi-client/internal/api/apierr"
	"github.com/tsumogiri/riichi-client/internal/api/handler"
	"github.com/tsumogiri/riichi-client/internal/middleware"
	"github.com/tsumogiri/riichi-client/internal/services/replay"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger        *slog.Logger
	ReplayService *replay.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	replayHandler := handler.NewReplayHandler(cfg.ReplayService)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Replay routes
	api.HandleFunc("/replays", replayHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/replays/{id}", replayHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/replays/{id}/lines", replayHandler.Lines).Methods(http.MethodGet)
	api.HandleFunc("/replays/{id}", replayHandler.Delete).Methods(http.MethodDelete)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
