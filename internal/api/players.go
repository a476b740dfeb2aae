package api

import (
	"encoding/json"
	"net/http"

	"github.com/vampire-games/vampired/internal/database/session/model"
	"github.com/vampire-games/vampired/internal/logging"
)

type createPlayerRequest struct {
	Name string `json:"name"`
}

type playerResponse struct {
	PlayerID  string `json:"playerId"`
	Name      string `json:"name"`
	Token     string `json:"token,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// handleCreatePlayer issues a fresh player session. The token is returned
// exactly once, here.
func (h *Handler) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "player name is required")
		return
	}

	session := model.NewSession(req.Name)
	if err := h.sessions.Store(session); err != nil {
		logging.FromContext(r.Context()).Named("api").Errorf("store session: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusCreated, playerResponse{
		PlayerID:  session.ID,
		Name:      session.Name,
		Token:     session.Token,
		CreatedAt: session.CreatedAt.Format(timeLayout),
	})
}

func (h *Handler) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	caller, _ := sessionFromContext(r.Context())

	playerID := r.PathValue("playerID")
	if playerID == "me" {
		playerID = caller.ID
	}

	session, err := h.sessions.Fetch(playerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := playerResponse{
		PlayerID:  session.ID,
		Name:      session.Name,
		CreatedAt: session.CreatedAt.Format(timeLayout),
	}
	if session.ID == caller.ID {
		resp.Token = session.Token
	}

	respondJSON(w, http.StatusOK, resp)
}
