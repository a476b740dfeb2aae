package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vampire-games/vampired/internal/logging"
)

// handleEvents streams the game's push events over SSE until the client
// disconnects. Only current players of the game may subscribe.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	gameID := r.PathValue("gameID")

	snapshot, err := h.engine.Game(gameID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	member := false
	for _, player := range snapshot.Players {
		if player.PlayerID == session.ID {
			member = true
			break
		}
	}
	if !member {
		respondError(w, http.StatusForbidden, "only players of the game can subscribe")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := h.hub.Subscribe(gameID, session.ID)
	defer h.hub.Unsubscribe(gameID, ch)

	// Opening event so the client knows the stream is live and has the
	// current state without a second request.
	fmt.Fprint(w, "event: Connected\ndata: ")
	_ = json.NewEncoder(w).Encode(snapshot)
	fmt.Fprint(w, "\n")
	flusher.Flush()

	logger := logging.FromContext(r.Context()).Named("sse")
	logger.Debugf("player %s subscribed to game %s", session.ID, gameID)

	for {
		select {
		case <-r.Context().Done():
			logger.Debugf("player %s disconnected from game %s", session.ID, gameID)
			return
		case event := <-ch:
			fmt.Fprintf(w, "event: %s\ndata: ", event.Name)
			if err := json.NewEncoder(w).Encode(event); err != nil {
				logger.Errorf("encode event: %v", err)
				return
			}
			fmt.Fprint(w, "\n")
			flusher.Flush()
		}
	}
}
