package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sessionDb "github.com/vampire-games/vampired/internal/database/session/database"
	"github.com/vampire-games/vampired/internal/database/session/model"
	"github.com/vampire-games/vampired/internal/logging"
)

type sessionKey struct{}

func sessionFromContext(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(model.Session)
	return s, ok
}

func playerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(r.Header.Get("X-Player-Token"))
}

// requirePlayer resolves the bearer token to a player session and hangs
// it on the request context. The core trusts the id/name pair produced
// here; it never sees the token.
func (h *Handler) requirePlayer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := playerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "player token is required")
			return
		}

		session, err := h.sessions.FetchByToken(token)
		if err != nil {
			if errors.Is(err, sessionDb.NotFoundErr) {
				respondError(w, http.StatusUnauthorized, "unknown player token")
				return
			}
			logging.FromContext(r.Context()).Named("api").Errorf("fetch session: %v", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		session.LastSeen = time.Now().UTC()
		if err := h.sessions.Store(session); err != nil {
			logging.FromContext(r.Context()).Named("api").Errorf("touch session: %v", err)
		}

		ctx := context.WithValue(r.Context(), sessionKey{}, session)
		next(w, r.WithContext(ctx))
	}
}
