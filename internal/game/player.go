package game

import (
	"fmt"
	"strings"
	"time"
)

type Role uint8

const (
	RoleUnknown Role = iota
	RoleVillager
	RoleVampire
	RoleHunter
)

func (r Role) String() string {
	switch r {
	case RoleVillager:
		return "Villager"
	case RoleVampire:
		return "Vampire"
	case RoleHunter:
		return "Hunter"
	default:
		return "Unknown"
	}
}

// Player is one participant inside a single game. The role stays
// RoleUnknown until the game starts.
type Player struct {
	ID       string
	Name     string
	Role     Role
	Alive    bool
	JoinedAt time.Time
}

func NewPlayer(id, name string) (*Player, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("player id cannot be empty: %w", InvalidArgumentErr)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("player name cannot be empty: %w", InvalidArgumentErr)
	}

	return &Player{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Role:     RoleUnknown,
		Alive:    true,
		JoinedAt: time.Now().UTC(),
	}, nil
}

func (p *Player) AssignRole(role Role) error {
	if role == RoleUnknown {
		return fmt.Errorf("role cannot be unknown: %w", InvalidArgumentErr)
	}
	p.Role = role
	return nil
}

// Kill is idempotent: killing a dead player is a no-op.
func (p *Player) Kill() {
	p.Alive = false
}
