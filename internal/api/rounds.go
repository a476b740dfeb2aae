package api

import (
	"encoding/json"
	"net/http"

	"github.com/vampire-games/vampired/internal/engine"
	"github.com/vampire-games/vampired/internal/game"
)

type assignQuestionRequest struct {
	Text string `json:"text"`
}

type submitActionRequest struct {
	SelectedID string `json:"selectedId"`
}

type castVoteRequest struct {
	TargetID string `json:"targetId"`
}

type resolveNightResponse struct {
	KilledID string           `json:"killedId,omitempty"`
	Game     *engine.Snapshot `json:"game"`
}

type executeResponse struct {
	ExecutedID string           `json:"executedId,omitempty"`
	Game       *engine.Snapshot `json:"game"`
}

type advanceResponse struct {
	Ended       bool             `json:"ended"`
	Winner      string           `json:"winner,omitempty"`
	RoundNumber int              `json:"roundNumber"`
	Game        *engine.Snapshot `json:"game"`
}

type hunterResultResponse struct {
	Detected bool `json:"detected"`
}

type roleResponse struct {
	Role string `json:"role"`
}

// requireHost gates the phase-driving endpoints: only the game's host may
// move a game through its phases. Players act through action and vote.
func (h *Handler) requireHost(w http.ResponseWriter, r *http.Request, gameID string) bool {
	session, _ := sessionFromContext(r.Context())

	snapshot, err := h.engine.Game(gameID)
	if err != nil {
		respondDomainError(w, err)
		return false
	}

	if snapshot.HostID != session.ID {
		respondError(w, http.StatusForbidden, "only the host can drive the game")
		return false
	}

	return true
}

func (h *Handler) handleStartRound(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if !h.requireHost(w, r, gameID) {
		return
	}

	snapshot, err := h.engine.StartRound(gameID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.broadcast(gameID, "RoundStarted", &snapshot)
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleAssignQuestion(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if !h.requireHost(w, r, gameID) {
		return
	}

	var req assignQuestionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	_, snapshot, err := h.engine.AssignQuestion(gameID, req.Text)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.broadcast(gameID, "QuestionAssigned", &snapshot)
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleSubmitAction(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	gameID := r.PathValue("gameID")

	var req submitActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	snapshot, err := h.engine.SubmitAction(gameID, session.ID, req.SelectedID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	// No broadcast: submissions stay private until the night resolves.
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleResolveNight(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if !h.requireHost(w, r, gameID) {
		return
	}

	resolution, snapshot, err := h.engine.ResolveNight(gameID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := resolveNightResponse{Game: &snapshot}
	if resolution.KilledID != nil {
		resp.KilledID = *resolution.KilledID
	}

	h.broadcast(gameID, "NightResolved", &snapshot)
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStartDiscussion(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if !h.requireHost(w, r, gameID) {
		return
	}

	snapshot, err := h.engine.StartDiscussion(gameID, 0)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.broadcast(gameID, "DiscussionStarted", &snapshot)
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleCloseDiscussion(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if !h.requireHost(w, r, gameID) {
		return
	}

	snapshot, err := h.engine.CloseDiscussion(gameID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if !h.requireHost(w, r, gameID) {
		return
	}

	snapshot, err := h.engine.StartVoting(gameID, 0)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.broadcast(gameID, "VotingStarted", &snapshot)
	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleCastVote(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	gameID := r.PathValue("gameID")

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	snapshot, err := h.engine.CastVote(gameID, session.ID, req.TargetID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) handleCloseVoting(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if !h.requireHost(w, r, gameID) {
		return
	}

	resolution, snapshot, err := h.engine.CloseVoting(gameID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := executeResponse{Game: &snapshot}
	if resolution.ExecutedID != nil {
		resp.ExecutedID = *resolution.ExecutedID
	}

	h.broadcast(gameID, "VotingClosed", &snapshot)
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameID")
	if !h.requireHost(w, r, gameID) {
		return
	}

	result, snapshot, err := h.engine.Advance(gameID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := advanceResponse{
		Ended:       result.Ended,
		RoundNumber: result.RoundNumber,
		Game:        &snapshot,
	}

	if result.Ended {
		resp.Winner = result.Winner.String()
		h.broadcast(gameID, "GameFinished", &snapshot)
	} else {
		h.broadcast(gameID, "RoundStarted", &snapshot)
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleHunterResult answers with the night's detection for the hunter
// and a random decoy for everyone else; the response shape never reveals
// which one the caller got.
func (h *Handler) handleHunterResult(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	detected, err := h.engine.HunterResult(r.PathValue("gameID"), session.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, hunterResultResponse{Detected: detected})
}

// handleGetRole reveals the caller's own role only.
func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	role, err := h.engine.PlayerRole(r.PathValue("gameID"), session.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if role == game.RoleUnknown {
		respondError(w, http.StatusConflict, "roles are not assigned yet")
		return
	}

	respondJSON(w, http.StatusOK, roleResponse{Role: role.String()})
}
