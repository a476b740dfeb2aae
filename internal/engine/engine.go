package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vampire-games/vampired/internal/game"
)

func New(store Store) *Engine {
	return &Engine{
		store: store,
		locks: map[string]*sync.Mutex{},
	}
}

// Engine is the concurrency boundary around game aggregates. Every
// mutating call runs as: acquire the game's lock, load, apply one logical
// mutation, upsert, snapshot, release. Locks are created lazily per game
// id and reused; no call ever holds more than one, and no I/O happens
// while one is held.
type Engine struct {
	store Store

	mtx   sync.Mutex
	locks map[string]*sync.Mutex
}

func (e *Engine) gameLock(gameID string) *sync.Mutex {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	lock, ok := e.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[gameID] = lock
	}

	return lock
}

func (e *Engine) withGameLock(gameID string, fn func(g *game.Game) error) (Snapshot, error) {
	if gameID == "" {
		return Snapshot{}, fmt.Errorf("game id cannot be empty: %w", game.InvalidArgumentErr)
	}

	lock := e.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := e.store.Get(gameID)
	if err != nil {
		return Snapshot{}, err
	}

	if err := fn(g); err != nil {
		return Snapshot{}, err
	}

	e.store.Upsert(g)
	return toSnapshot(g), nil
}

// CreateGame builds a game from options and joins the creator as its
// host.
func (e *Engine) CreateGame(opts game.Options, hostName string) (Snapshot, error) {
	g := game.NewGame(opts)

	if opts.HostID != "" {
		if _, err := g.AddPlayer(opts.HostID, hostName); err != nil {
			return Snapshot{}, err
		}
	}

	lock := e.gameLock(g.ID)
	lock.Lock()
	defer lock.Unlock()

	e.store.Upsert(g)
	return toSnapshot(g), nil
}

func (e *Engine) Game(gameID string) (Snapshot, error) {
	if gameID == "" {
		return Snapshot{}, fmt.Errorf("game id cannot be empty: %w", game.InvalidArgumentErr)
	}

	lock := e.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := e.store.Get(gameID)
	if err != nil {
		return Snapshot{}, err
	}

	return toSnapshot(g), nil
}

// ListByStatus snapshots every game in the given lifecycle state, newest
// first.
func (e *Engine) ListByStatus(status game.Status) []Snapshot {
	var snapshots []Snapshot
	for _, g := range e.store.GetAll() {
		if g.Status != status {
			continue
		}

		lock := e.gameLock(g.ID)
		lock.Lock()
		snapshots = append(snapshots, toSnapshot(g))
		lock.Unlock()
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	return snapshots
}

// PasscodeHash returns the stored passcode hash so transport can verify
// a join attempt without holding the game lock during key derivation. The
// hash never changes after creation.
func (e *Engine) PasscodeHash(gameID string) (string, error) {
	var hash string
	_, err := e.withGameLock(gameID, func(g *game.Game) error {
		hash = g.PasscodeHash
		return nil
	})
	return hash, err
}

func (e *Engine) JoinLobby(gameID, playerID, name string, passcodeValid bool) (game.JoinResult, Snapshot, error) {
	var result game.JoinResult
	snapshot, err := e.withGameLock(gameID, func(g *game.Game) error {
		result = g.JoinLobby(playerID, name, passcodeValid)
		return nil
	})
	return result, snapshot, err
}

// Leave removes the player from a lobby; the last player out removes the
// game itself. Reports whether the game was removed. Holds the lock
// directly instead of going through withGameLock: an emptied game must
// not be upserted back after its removal.
func (e *Engine) Leave(gameID, playerID string) (Snapshot, bool, error) {
	if gameID == "" {
		return Snapshot{}, false, fmt.Errorf("game id cannot be empty: %w", game.InvalidArgumentErr)
	}

	lock := e.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	g, err := e.store.Get(gameID)
	if err != nil {
		return Snapshot{}, false, err
	}

	if err := g.RemovePlayer(playerID); err != nil {
		return Snapshot{}, false, err
	}

	if len(g.Players()) == 0 {
		removed := e.store.Remove(g.ID)
		return toSnapshot(g), removed, nil
	}

	e.store.Upsert(g)
	return toSnapshot(g), false, nil
}

func (e *Engine) StartGame(gameID, requestedBy string) (game.StartResult, Snapshot, error) {
	var result game.StartResult
	snapshot, err := e.withGameLock(gameID, func(g *game.Game) error {
		result = g.StartGame(requestedBy)
		return nil
	})
	return result, snapshot, err
}

func (e *Engine) StartRound(gameID string) (Snapshot, error) {
	return e.withGameLock(gameID, func(g *game.Game) error {
		_, err := g.StartRound()
		return err
	})
}

func (e *Engine) AssignQuestion(gameID, text string) (string, Snapshot, error) {
	var question string
	snapshot, err := e.withGameLock(gameID, func(g *game.Game) error {
		var err error
		question, err = g.AssignRoundQuestion(text)
		return err
	})
	return question, snapshot, err
}

func (e *Engine) SubmitAction(gameID, playerID, selectedID string) (Snapshot, error) {
	return e.withGameLock(gameID, func(g *game.Game) error {
		return g.SubmitRoundAction(playerID, selectedID)
	})
}

func (e *Engine) ResolveNight(gameID string) (game.NightResolution, Snapshot, error) {
	var resolution game.NightResolution
	snapshot, err := e.withGameLock(gameID, func(g *game.Game) error {
		var err error
		resolution, err = g.CloseQuestionPhaseAndResolveNight()
		return err
	})
	return resolution, snapshot, err
}

func (e *Engine) StartDiscussion(gameID string, durationSeconds int) (Snapshot, error) {
	return e.withGameLock(gameID, func(g *game.Game) error {
		return g.StartDiscussionPhase(durationSeconds)
	})
}

func (e *Engine) CloseDiscussion(gameID string) (Snapshot, error) {
	return e.withGameLock(gameID, func(g *game.Game) error {
		return g.CloseDiscussionPhase()
	})
}

func (e *Engine) StartVoting(gameID string, durationSeconds int) (Snapshot, error) {
	return e.withGameLock(gameID, func(g *game.Game) error {
		return g.StartVotingPhase(durationSeconds)
	})
}

func (e *Engine) CastVote(gameID, voterID, targetID string) (Snapshot, error) {
	return e.withGameLock(gameID, func(g *game.Game) error {
		return g.CastVote(voterID, targetID)
	})
}

func (e *Engine) CloseVoting(gameID string) (game.VotingResolution, Snapshot, error) {
	var resolution game.VotingResolution
	snapshot, err := e.withGameLock(gameID, func(g *game.Game) error {
		var err error
		resolution, err = g.CloseVotingPhaseAndExecute()
		return err
	})
	return resolution, snapshot, err
}

func (e *Engine) Advance(gameID string) (game.AdvanceResult, Snapshot, error) {
	var result game.AdvanceResult
	snapshot, err := e.withGameLock(gameID, func(g *game.Game) error {
		var err error
		result, err = g.AdvanceToNextRoundOrFinish()
		return err
	})
	return result, snapshot, err
}

// HunterResult never distinguishes callers: the aggregate returns a decoy
// boolean for anyone but the hunter.
func (e *Engine) HunterResult(gameID, requesterID string) (bool, error) {
	var result bool
	_, err := e.withGameLock(gameID, func(g *game.Game) error {
		result = g.PrivateHunterResult(requesterID)
		return nil
	})
	return result, err
}

// PlayerRole reveals the caller's own secret role.
func (e *Engine) PlayerRole(gameID, playerID string) (game.Role, error) {
	var role game.Role
	_, err := e.withGameLock(gameID, func(g *game.Game) error {
		player, err := g.Player(playerID)
		if err != nil {
			return err
		}
		role = player.Role
		return nil
	})
	return role, err
}
