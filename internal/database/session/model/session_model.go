package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is one issued player identity: an opaque bearer token mapped to
// a stable player id and display name.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

func NewSession(name string) Session {
	now := time.Now().UTC()
	return Session{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		LastSeen:  now,
	}
}
