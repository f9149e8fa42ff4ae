package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/lucas/territories/internal/config"
	"github.com/lucas/territories/internal/game"
	"github.com/lucas/territories/internal/ws"
)

// NewRouter builds the HTTP router: the health probe, the WebSocket
// upgrade endpoint the lobby admits connections through, the read-only
// games listing, and, when Config.Dev.Enabled, the force-tick and
// unfiltered-state-dump routes.
func NewRouter(lobby *game.Lobby, hub *ws.Hub, cfg *config.Config, log *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()

	h := NewHandler(lobby, hub, cfg, log)

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ws", h.WebSocket)
	mux.HandleFunc("GET /api/games", h.ListGames)

	if cfg.Dev.Enabled {
		mux.HandleFunc("POST /api/dev/tick/{id}", h.ForceTick)
		mux.HandleFunc("GET /api/dev/state/{id}", h.DebugState)
	}

	return corsMiddleware(mux)
}

// corsMiddleware adds permissive CORS headers for development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
