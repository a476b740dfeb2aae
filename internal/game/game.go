package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fastrand"
)

const (
	minPlayersToStart     = 3
	minMaxPlayers         = 2
	DefaultMaxPlayers     = 10
	DefaultDiscussionTime = 60
	DefaultVotingTime     = 60
)

// Threshold below which a villager/hunter execution hands the win to the
// vampires.
const vampireWinAliveBelow = 4

type Status uint8

const (
	StatusLobby Status = iota + 1
	StatusInProgress
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusLobby:
		return "Lobby"
	case StatusInProgress:
		return "InProgress"
	case StatusFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

type Options struct {
	Name           string
	HostID         string
	MaxPlayers     int
	DiscussionTime int
	VotingTime     int
	PasscodeHash   string
}

// Game is the aggregate root: roster, rounds and lifecycle. It carries no
// lock of its own; the engine serializes every mutation per game id.
type Game struct {
	ID             string
	Name           string
	HostID         string
	MaxPlayers     int
	DiscussionTime int
	VotingTime     int
	PasscodeHash   string

	Status     Status
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time

	players []*Player
	rounds  []*Round
}

func NewGame(opts Options) *Game {
	id := uuid.NewString()

	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "Game " + id[:8]
	}

	maxPlayers := opts.MaxPlayers
	if maxPlayers < minMaxPlayers {
		maxPlayers = DefaultMaxPlayers
	}

	discussionTime := opts.DiscussionTime
	if discussionTime <= 0 {
		discussionTime = DefaultDiscussionTime
	}

	votingTime := opts.VotingTime
	if votingTime <= 0 {
		votingTime = DefaultVotingTime
	}

	return &Game{
		ID:             id,
		Name:           name,
		HostID:         opts.HostID,
		MaxPlayers:     maxPlayers,
		DiscussionTime: discussionTime,
		VotingTime:     votingTime,
		PasscodeHash:   opts.PasscodeHash,
		Status:         StatusLobby,
		CreatedAt:      time.Now().UTC(),
	}
}

func (g *Game) PasscodeRequired() bool {
	return g.PasscodeHash != ""
}

// CurrentRoundNumber is 0 while the game sits in the lobby.
func (g *Game) CurrentRoundNumber() int {
	return len(g.rounds)
}

func (g *Game) Players() []*Player {
	return g.players
}

func (g *Game) Rounds() []*Round {
	return g.rounds
}

func (g *Game) Player(playerID string) (*Player, error) {
	for _, player := range g.players {
		if player.ID == playerID {
			return player, nil
		}
	}
	return nil, fmt.Errorf("player %q: %w", playerID, NotFoundErr)
}

func (g *Game) Round(number int) (*Round, error) {
	for _, round := range g.rounds {
		if round.Number == number {
			return round, nil
		}
	}
	return nil, fmt.Errorf("round %d: %w", number, NotFoundErr)
}

func (g *Game) CurrentRound() (*Round, error) {
	if len(g.rounds) == 0 {
		return nil, fmt.Errorf("no round open: %w", NotFoundErr)
	}
	return g.rounds[len(g.rounds)-1], nil
}

func (g *Game) AliveCount() int {
	var n int
	for _, player := range g.players {
		if player.Alive {
			n++
		}
	}
	return n
}

func (g *Game) AddPlayer(playerID, name string) (*Player, error) {
	if err := g.ensureStatus(StatusLobby); err != nil {
		return nil, err
	}

	if len(g.players) >= g.MaxPlayers {
		return nil, fmt.Errorf("game is full: %w", ConflictErr)
	}

	name = strings.TrimSpace(name)
	for _, player := range g.players {
		if player.ID == playerID {
			return nil, fmt.Errorf("player already exists in this game: %w", ConflictErr)
		}
		if strings.EqualFold(player.Name, name) {
			return nil, fmt.Errorf("player name already taken in this game: %w", ConflictErr)
		}
	}

	player, err := NewPlayer(playerID, name)
	if err != nil {
		return nil, err
	}

	g.players = append(g.players, player)
	if g.HostID == "" {
		g.HostID = playerID
	}

	return player, nil
}

// RemovePlayer is a no-op for unknown ids. Removing the host promotes the
// first remaining roster member.
func (g *Game) RemovePlayer(playerID string) error {
	if err := g.ensureStatus(StatusLobby); err != nil {
		return err
	}

	idx := -1
	for i, player := range g.players {
		if player.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	wasHost := g.players[idx].ID == g.HostID
	g.players = append(g.players[:idx], g.players[idx+1:]...)

	if wasHost {
		g.HostID = ""
		if len(g.players) > 0 {
			g.HostID = g.players[0].ID
		}
	}

	return nil
}

// JoinLobby is the composite join flow: passcode gate, lobby gate, then an
// idempotent add. Rejoining with a known player id succeeds without
// touching the roster.
func (g *Game) JoinLobby(playerID, name string, passcodeValid bool) JoinResult {
	if g.PasscodeRequired() && !passcodeValid {
		return JoinResult{Status: JoinInvalidPasscode}
	}

	if g.Status != StatusLobby {
		return JoinResult{Status: JoinNotJoinable}
	}

	for _, player := range g.players {
		if player.ID == playerID {
			return JoinResult{Status: JoinSuccess}
		}
	}

	if _, err := g.AddPlayer(playerID, name); err != nil {
		return JoinResult{Status: JoinConflict, Err: err}
	}

	return JoinResult{Status: JoinSuccess}
}

// StartGame moves the lobby into play: host-gated, needs three players,
// deals exactly one vampire and one hunter over a uniform shuffle, and
// opens round 1.
func (g *Game) StartGame(requestedBy string) StartResult {
	if requestedBy != g.HostID {
		return StartResult{Status: StartHostOnly}
	}

	if g.Status != StatusLobby {
		return StartResult{Status: StartNotJoinable}
	}

	if len(g.players) < minPlayersToStart {
		return StartResult{Status: StartNotEnoughPlayers}
	}

	now := time.Now().UTC()
	g.StartedAt = &now
	g.Status = StatusInProgress
	g.assignRoles()

	if _, err := g.StartRound(); err != nil {
		return StartResult{Status: StartConflict, Err: err}
	}

	return StartResult{Status: StartSuccess}
}

// assignRoles deals roles by fixed position in a uniform permutation of
// the roster, so observable roster order leaks nothing.
func (g *Game) assignRoles() {
	shuffled := make([]*Player, len(g.players))
	copy(shuffled, g.players)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := int(fastrand.Uint32n(uint32(i + 1)))
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	for i, player := range shuffled {
		role := RoleVillager
		switch i {
		case 0:
			role = RoleVampire
		case 1:
			role = RoleHunter
		}
		_ = player.AssignRole(role)
	}
}

// StartRound opens the next round. Only one round may be open at a time.
func (g *Game) StartRound() (*Round, error) {
	if err := g.ensureStatus(StatusInProgress); err != nil {
		return nil, err
	}

	if len(g.rounds) > 0 && !g.rounds[len(g.rounds)-1].Finished() {
		return nil, fmt.Errorf("previous round is not finished: %w", ConflictErr)
	}

	round, err := NewRound(len(g.rounds) + 1)
	if err != nil {
		return nil, err
	}

	g.rounds = append(g.rounds, round)
	return round, nil
}

// AssignRoundQuestion opens the Question phase; a blank text draws from
// the fixed pool. Returns the question actually assigned.
func (g *Game) AssignRoundQuestion(text string) (string, error) {
	if err := g.ensureStatus(StatusInProgress); err != nil {
		return "", err
	}

	round, err := g.CurrentRound()
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		text = RandomQuestion()
	}

	if err := round.BeginQuestion(text); err != nil {
		return "", err
	}

	return round.QuestionText, nil
}

func (g *Game) SubmitRoundAction(playerID, selectedID string) error {
	if err := g.ensureStatus(StatusInProgress); err != nil {
		return err
	}

	actor, err := g.Player(playerID)
	if err != nil {
		return err
	}
	target, err := g.Player(selectedID)
	if err != nil {
		return err
	}

	if !actor.Alive {
		return fmt.Errorf("dead players cannot act: %w", ConflictErr)
	}
	if !target.Alive {
		return fmt.Errorf("cannot target a dead player: %w", ConflictErr)
	}

	round, err := g.CurrentRound()
	if err != nil {
		return err
	}

	return round.SubmitAction(playerID, selectedID)
}

// CloseQuestionPhaseAndResolveNight applies the vampire's kill and the
// hunter's check, both optional, and moves the round to Reveal. A dead
// kill target at resolution time indicates a logic error upstream and
// fails loudly rather than being papered over.
func (g *Game) CloseQuestionPhaseAndResolveNight() (NightResolution, error) {
	var resolution NightResolution

	if err := g.ensureStatus(StatusInProgress); err != nil {
		return resolution, err
	}

	round, err := g.CurrentRound()
	if err != nil {
		return resolution, err
	}
	if round.Phase != PhaseQuestion {
		return resolution, fmt.Errorf("action only allowed in %s phase: %w", PhaseQuestion, ConflictErr)
	}

	vampire := g.aliveByRole(RoleVampire)
	hunter := g.aliveByRole(RoleHunter)

	if vampire != nil {
		if action, ok := round.Action(vampire.ID); ok {
			target, err := g.Player(action.SelectedID)
			if err != nil {
				return resolution, err
			}
			if !target.Alive {
				return resolution, fmt.Errorf("night kill target %q is already dead: %w", target.ID, ConflictErr)
			}
			target.Kill()
			killed := target.ID
			resolution.KilledID = &killed
		}
	}

	if hunter != nil {
		if action, ok := round.Action(hunter.ID); ok {
			checked, err := g.Player(action.SelectedID)
			if err != nil {
				return resolution, err
			}
			checkedID := checked.ID
			detected := checked.Role == RoleVampire
			resolution.CheckedID = &checkedID
			resolution.HunterDetected = &detected
		}
	}

	if err := round.ResolveNight(resolution.KilledID, resolution.CheckedID, resolution.HunterDetected); err != nil {
		return NightResolution{}, err
	}

	return resolution, nil
}

// StartDiscussionPhase opens discussion; duration 0 falls back to the
// game's configured time.
func (g *Game) StartDiscussionPhase(durationSeconds int) error {
	if err := g.ensureStatus(StatusInProgress); err != nil {
		return err
	}

	round, err := g.CurrentRound()
	if err != nil {
		return err
	}

	if durationSeconds <= 0 {
		durationSeconds = g.DiscussionTime
	}

	return round.BeginDiscussion(durationSeconds)
}

func (g *Game) CloseDiscussionPhase() error {
	if err := g.ensureStatus(StatusInProgress); err != nil {
		return err
	}

	round, err := g.CurrentRound()
	if err != nil {
		return err
	}

	return round.EndDiscussion()
}

func (g *Game) StartVotingPhase(durationSeconds int) error {
	if err := g.ensureStatus(StatusInProgress); err != nil {
		return err
	}

	round, err := g.CurrentRound()
	if err != nil {
		return err
	}

	if durationSeconds <= 0 {
		durationSeconds = g.VotingTime
	}

	return round.BeginVoting(durationSeconds)
}

func (g *Game) CastVote(voterID, targetID string) error {
	if err := g.ensureStatus(StatusInProgress); err != nil {
		return err
	}

	voter, err := g.Player(voterID)
	if err != nil {
		return err
	}
	target, err := g.Player(targetID)
	if err != nil {
		return err
	}

	if !voter.Alive {
		return fmt.Errorf("dead players cannot vote: %w", ConflictErr)
	}
	if !target.Alive {
		return fmt.Errorf("cannot vote for a dead player: %w", ConflictErr)
	}

	round, err := g.CurrentRound()
	if err != nil {
		return err
	}

	return round.CastVote(voterID, targetID)
}

// CloseVotingPhaseAndExecute kills the leading vote target, if any, and
// finishes the round. A tie or an empty ballot executes nobody.
func (g *Game) CloseVotingPhaseAndExecute() (VotingResolution, error) {
	var resolution VotingResolution

	if err := g.ensureStatus(StatusInProgress); err != nil {
		return resolution, err
	}

	round, err := g.CurrentRound()
	if err != nil {
		return resolution, err
	}
	if round.Phase != PhaseVoting {
		return resolution, fmt.Errorf("action only allowed in %s phase: %w", PhaseVoting, ConflictErr)
	}

	if leading := round.LeadingTarget(); leading != nil {
		target, err := g.Player(*leading)
		if err != nil {
			return resolution, err
		}
		target.Kill()
		role := target.Role
		resolution.ExecutedID = leading
		resolution.ExecutedRole = &role
	}

	if err := round.EndVotingWithExecution(resolution.ExecutedID); err != nil {
		return VotingResolution{}, err
	}

	return resolution, nil
}

// EvaluateGameEnd checks the win conditions against the latest finished
// round. An execution of the vampire ends the game for the villagers; a
// villager or hunter execution with fewer than four players left alive
// ends it for the vampires.
func (g *Game) EvaluateGameEnd() (EndEvaluation, error) {
	if err := g.ensureStatus(StatusInProgress); err != nil {
		return EndEvaluation{}, err
	}

	round, err := g.CurrentRound()
	if err != nil {
		return EndEvaluation{}, err
	}

	if round.ExecutedID == nil {
		return EndEvaluation{Winner: WinnerNone}, nil
	}

	executed, err := g.Player(*round.ExecutedID)
	if err != nil {
		return EndEvaluation{}, err
	}

	if executed.Role == RoleVampire {
		g.Finish()
		return EndEvaluation{
			Ended:  true,
			Winner: WinnerVillagers,
			Reason: "the vampire was executed",
		}, nil
	}

	if g.AliveCount() < vampireWinAliveBelow {
		g.Finish()
		return EndEvaluation{
			Ended:  true,
			Winner: WinnerVampires,
			Reason: "too few players left alive",
		}, nil
	}

	return EndEvaluation{Winner: WinnerNone}, nil
}

// AdvanceToNextRoundOrFinish evaluates the end conditions and either
// reports the finished game or opens the next round.
func (g *Game) AdvanceToNextRoundOrFinish() (AdvanceResult, error) {
	evaluation, err := g.EvaluateGameEnd()
	if err != nil {
		return AdvanceResult{}, err
	}

	if evaluation.Ended {
		return AdvanceResult{
			Ended:       true,
			Winner:      evaluation.Winner,
			RoundNumber: g.CurrentRoundNumber(),
		}, nil
	}

	round, err := g.StartRound()
	if err != nil {
		return AdvanceResult{}, err
	}

	return AdvanceResult{RoundNumber: round.Number}, nil
}

// PrivateHunterResult returns the recorded detection only to the hunter.
// Anyone else gets a uniformly random boolean that is indistinguishable
// in shape and distribution, so the response itself cannot leak who the
// hunter is. A fixed constant here would leak over repeated queries.
func (g *Game) PrivateHunterResult(requesterID string) bool {
	decoy := fastrand.Uint32n(2) == 1

	requester, err := g.Player(requesterID)
	if err != nil || requester.Role != RoleHunter {
		return decoy
	}

	round, err := g.CurrentRound()
	if err != nil || round.HunterDetected == nil {
		return decoy
	}

	return *round.HunterDetected
}

// Finish is idempotent; a finished game never leaves that state.
func (g *Game) Finish() {
	if g.Status == StatusFinished {
		return
	}

	now := time.Now().UTC()
	g.Status = StatusFinished
	g.FinishedAt = &now
}

func (g *Game) aliveByRole(role Role) *Player {
	for _, player := range g.players {
		if player.Alive && player.Role == role {
			return player
		}
	}
	return nil
}

func (g *Game) ensureStatus(expected Status) error {
	if g.Status != expected {
		return fmt.Errorf("action only allowed in %s state: %w", expected, ConflictErr)
	}
	return nil
}
