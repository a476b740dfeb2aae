package api

import (
	"encoding/json"
	"errors"
	"net/http"

	sessionDb "github.com/vampire-games/vampired/internal/database/session/database"
	"github.com/vampire-games/vampired/internal/game"
)

type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// respondDomainError maps the domain's error category onto a status code.
// The wrapped message is already user-safe: domain errors carry rule
// violations, never internals.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.InvalidArgumentErr):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ConflictErr):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.NotFoundErr), errors.Is(err, sessionDb.NotFoundErr):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
