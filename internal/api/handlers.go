package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lucas/territories/internal/config"
	"github.com/lucas/territories/internal/game"
	"github.com/lucas/territories/internal/ws"
)

// Handler wires the HTTP surface to the lobby, the connection hub, and
// the live configuration.
type Handler struct {
	lobby *game.Lobby
	hub   *ws.Hub
	cfg   *config.Config
	log   *zap.SugaredLogger
}

// NewHandler builds a Handler.
func NewHandler(lobby *game.Lobby, hub *ws.Hub, cfg *config.Config, log *zap.SugaredLogger) *Handler {
	return &Handler{lobby: lobby, hub: hub, cfg: cfg, log: log}
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// WebSocket upgrades the connection and hands it to the lobby. There
// is no separate join step: a successful upgrade immediately admits
// the connection to the current pending game.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	ws.ServeWS(h.hub, h.lobby, h.log, w, r)
}

// gameSummary is the wire shape for one row of GET /api/games.
type gameSummary struct {
	ID      uuid.UUID `json:"id"`
	Tick    uint64    `json:"tick"`
	Players int       `json:"players"`
}

// ListGames reports every currently-running game's id, tick, and
// player count. Read-only; no feature behavior hangs off it.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ids := h.lobby.ListGames()
	summaries := make([]gameSummary, 0, len(ids))
	for _, id := range ids {
		runner, ok := h.lobby.Runner(id)
		if !ok {
			continue
		}
		summaries = append(summaries, gameSummary{
			ID:      id,
			Tick:    runner.Tick(),
			Players: runner.PlayerCount(),
		})
	}

	writeJSON(w, http.StatusOK, summaries)
}

// ForceTick advances one game by exactly one tick, bypassing its
// ticker. Dev-only: mounted by NewRouter only when Config.Dev.Enabled.
func (h *Handler) ForceTick(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runnerFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	runner.ForceTick(ctx)

	w.WriteHeader(http.StatusNoContent)
}

// DebugState dumps the full, unfiltered board for one game. Dev-only.
func (h *Handler) DebugState(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.runnerFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	state, ok := runner.DebugState(ctx)
	if !ok {
		http.Error(w, "timed out waiting for game state", http.StatusGatewayTimeout)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) runnerFromPath(w http.ResponseWriter, r *http.Request) (*game.Runner, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return nil, false
	}
	runner, ok := h.lobby.Runner(id)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return nil, false
	}
	return runner, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}
