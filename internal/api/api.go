// Package api is the HTTP surface over the round-resolution engine. It
// validates transport concerns (auth tokens, payload shapes, paging) and
// maps engine results onto status codes; all game rules live below it.
package api

import (
	"net/http"
	"time"

	sessionDb "github.com/vampire-games/vampired/internal/database/session/database"
	"github.com/vampire-games/vampired/internal/engine"
	"github.com/vampire-games/vampired/internal/passcode"
	"github.com/vampire-games/vampired/internal/sse"
)

const timeLayout = time.RFC3339

func New(config *Config, eng *engine.Engine, sessions *sessionDb.DB, hasher *passcode.Hasher, hub *sse.Hub) *Handler {
	return &Handler{
		config:   config,
		engine:   eng,
		sessions: sessions,
		hasher:   hasher,
		hub:      hub,
	}
}

type Handler struct {
	config   *Config
	engine   *engine.Engine
	sessions *sessionDb.DB
	hasher   *passcode.Hasher
	hub      *sse.Hub
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/players", h.handleCreatePlayer)
	mux.HandleFunc("GET /api/players/{playerID}", h.requirePlayer(h.handleGetPlayer))

	mux.HandleFunc("GET /api/games", h.requirePlayer(h.handleListGames))
	mux.HandleFunc("POST /api/games", h.requirePlayer(h.handleCreateGame))
	mux.HandleFunc("GET /api/games/{gameID}", h.requirePlayer(h.handleGetGame))
	mux.HandleFunc("POST /api/games/{gameID}/join", h.requirePlayer(h.handleJoinGame))
	mux.HandleFunc("DELETE /api/games/{gameID}/players/me", h.requirePlayer(h.handleLeaveGame))
	mux.HandleFunc("POST /api/games/{gameID}/start", h.requirePlayer(h.handleStartGame))

	mux.HandleFunc("POST /api/games/{gameID}/round", h.requirePlayer(h.handleStartRound))
	mux.HandleFunc("POST /api/games/{gameID}/round/question", h.requirePlayer(h.handleAssignQuestion))
	mux.HandleFunc("POST /api/games/{gameID}/round/action", h.requirePlayer(h.handleSubmitAction))
	mux.HandleFunc("POST /api/games/{gameID}/round/resolve-night", h.requirePlayer(h.handleResolveNight))
	mux.HandleFunc("POST /api/games/{gameID}/round/discussion", h.requirePlayer(h.handleStartDiscussion))
	mux.HandleFunc("POST /api/games/{gameID}/round/discussion/close", h.requirePlayer(h.handleCloseDiscussion))
	mux.HandleFunc("POST /api/games/{gameID}/round/voting", h.requirePlayer(h.handleStartVoting))
	mux.HandleFunc("POST /api/games/{gameID}/round/vote", h.requirePlayer(h.handleCastVote))
	mux.HandleFunc("POST /api/games/{gameID}/round/execute", h.requirePlayer(h.handleCloseVoting))
	mux.HandleFunc("POST /api/games/{gameID}/advance", h.requirePlayer(h.handleAdvance))

	mux.HandleFunc("GET /api/games/{gameID}/role", h.requirePlayer(h.handleGetRole))
	mux.HandleFunc("GET /api/games/{gameID}/hunter-result", h.requirePlayer(h.handleHunterResult))
	mux.HandleFunc("GET /api/games/{gameID}/events", h.requirePlayer(h.handleEvents))

	return mux
}
