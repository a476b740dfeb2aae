package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vampire-games/vampired/internal/engine"
	"github.com/vampire-games/vampired/internal/game"
	"github.com/vampire-games/vampired/internal/logging"
	"github.com/vampire-games/vampired/internal/sse"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type createGameRequest struct {
	Name           string `json:"name"`
	MaxPlayers     int    `json:"maxPlayers"`
	DiscussionTime int    `json:"discussionTime"`
	VotingTime     int    `json:"votingTime"`
	Passcode       string `json:"passcode"`
}

type joinGameRequest struct {
	Passcode string `json:"passcode"`
}

type joinGameResponse struct {
	Status string           `json:"status"`
	Game   *engine.Snapshot `json:"game,omitempty"`
}

type startGameResponse struct {
	Status string           `json:"status"`
	Game   *engine.Snapshot `json:"game,omitempty"`
}

type listGamesResponse struct {
	Games []engine.Snapshot `json:"games"`
	Skip  int               `json:"skip"`
	Take  int               `json:"take"`
	Total int               `json:"total"`
}

func parseStatus(raw string) (game.Status, bool) {
	switch raw {
	case "", "lobby":
		return game.StatusLobby, true
	case "inprogress":
		return game.StatusInProgress, true
	case "finished":
		return game.StatusFinished, true
	default:
		return 0, false
	}
}

// handleListGames pages over games in a lifecycle state, lobbies by
// default. Paging is clamped so a single request can never dump the
// whole store.
func (h *Handler) handleListGames(w http.ResponseWriter, r *http.Request) {
	status, ok := parseStatus(r.URL.Query().Get("state"))
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown state filter")
		return
	}

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}

	take, err := strconv.Atoi(r.URL.Query().Get("take"))
	if err != nil || take <= 0 {
		take = defaultPageSize
	}
	if take > maxPageSize {
		take = maxPageSize
	}

	snapshots := h.engine.ListByStatus(status)
	total := len(snapshots)

	if skip > total {
		skip = total
	}
	end := skip + take
	if end > total {
		end = total
	}

	respondJSON(w, http.StatusOK, listGamesResponse{
		Games: snapshots[skip:end],
		Skip:  skip,
		Take:  take,
		Total: total,
	})
}

// handleCreateGame creates a lobby and joins the creator as its host in
// the same call.
func (h *Handler) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	opts := game.Options{
		Name:           req.Name,
		HostID:         session.ID,
		MaxPlayers:     req.MaxPlayers,
		DiscussionTime: req.DiscussionTime,
		VotingTime:     req.VotingTime,
	}
	if opts.DiscussionTime <= 0 {
		opts.DiscussionTime = h.config.DiscussionTime
	}
	if opts.VotingTime <= 0 {
		opts.VotingTime = h.config.VotingTime
	}

	if req.Passcode != "" {
		hash, err := h.hasher.Hash(req.Passcode)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		opts.PasscodeHash = hash
	}

	snapshot, err := h.engine.CreateGame(opts, session.Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	logging.FromContext(r.Context()).Named("api").
		Infof("game %s created by %s", snapshot.GameID, session.ID)

	respondJSON(w, http.StatusCreated, snapshot)
}

func (h *Handler) handleGetGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.engine.Game(r.PathValue("gameID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// handleJoinGame verifies the passcode outside the game lock, then asks
// the engine to join. Joining a lobby you are already in reports success
// again without a second seat.
func (h *Handler) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	gameID := r.PathValue("gameID")

	var req joinGameRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	hash, err := h.engine.PasscodeHash(gameID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	passcodeValid := hash == "" || h.hasher.Verify(req.Passcode, hash)

	result, snapshot, err := h.engine.JoinLobby(gameID, session.ID, session.Name, passcodeValid)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := joinGameResponse{Status: result.Status.String()}

	switch result.Status {
	case game.JoinSuccess:
		resp.Game = &snapshot
		h.broadcast(gameID, "PlayerJoined", &snapshot)
		respondJSON(w, http.StatusOK, resp)
	case game.JoinInvalidPasscode:
		respondJSON(w, http.StatusForbidden, resp)
	case game.JoinNotJoinable:
		respondJSON(w, http.StatusConflict, resp)
	default:
		respondJSON(w, http.StatusConflict, resp)
	}
}

// handleLeaveGame removes the caller from a lobby. Leaving a game you
// are not in succeeds quietly.
func (h *Handler) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	gameID := r.PathValue("gameID")

	snapshot, removed, err := h.engine.Leave(gameID, session.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if removed {
		respondJSON(w, http.StatusNoContent, nil)
		return
	}

	h.broadcast(gameID, "PlayerLeft", &snapshot)
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleStartGame(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	gameID := r.PathValue("gameID")

	result, snapshot, err := h.engine.StartGame(gameID, session.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := startGameResponse{Status: result.Status.String()}

	switch result.Status {
	case game.StartSuccess:
		resp.Game = &snapshot
		h.broadcast(gameID, "GameStarted", &snapshot)
		respondJSON(w, http.StatusOK, resp)
	case game.StartHostOnly:
		respondJSON(w, http.StatusForbidden, resp)
	default:
		respondJSON(w, http.StatusConflict, resp)
	}
}

func (h *Handler) broadcast(gameID, name string, snapshot *engine.Snapshot) {
	h.hub.Broadcast(gameID, sse.Event{Name: name, GameID: gameID, Snapshot: snapshot})
}
