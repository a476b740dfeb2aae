package engine

import (
	"fmt"
	"sync"

	"github.com/vampire-games/vampired/internal/game"
)

var GameNotFoundErr = fmt.Errorf("game not found: %w", game.NotFoundErr)

// Store is a keyed collection of game aggregates. It owns no game logic;
// serialization of mutations is the engine's job.
type Store interface {
	Get(gameID string) (*game.Game, error)
	TryGet(gameID string) (*game.Game, bool)
	Upsert(g *game.Game)
	Remove(gameID string) bool
	GetAll() []*game.Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: map[string]*game.Game{}}
}

type MemoryStore struct {
	mtx   sync.RWMutex
	games map[string]*game.Game
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(gameID string) (*game.Game, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, GameNotFoundErr
	}

	return g, nil
}

func (s *MemoryStore) TryGet(gameID string) (*game.Game, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	g, ok := s.games[gameID]
	return g, ok
}

func (s *MemoryStore) Upsert(g *game.Game) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.games[g.ID] = g
}

func (s *MemoryStore) Remove(gameID string) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.games[gameID]; !ok {
		return false
	}

	delete(s.games, gameID)
	return true
}

// GetAll returns a snapshot copy of the collection; mutating the slice
// does not touch the store.
func (s *MemoryStore) GetAll() []*game.Game {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	games := make([]*game.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}

	return games
}
