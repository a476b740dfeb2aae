package engine

import (
	"time"

	"github.com/vampire-games/vampired/internal/game"
)

// Snapshot is the read-only view of a game handed to transport. It is
// produced while the per-game lock is held, so it never shows a torn
// state, and deliberately omits secret role assignments and the hunter's
// check outcome.
type Snapshot struct {
	GameID             string           `json:"gameId"`
	Name               string           `json:"name"`
	Status             string           `json:"status"`
	HostID             string           `json:"hostId"`
	CreatedAt          time.Time        `json:"createdAt"`
	MaxPlayers         int              `json:"maxPlayers"`
	DiscussionTime     int              `json:"discussionTime"`
	VotingTime         int              `json:"votingTime"`
	PasscodeRequired   bool             `json:"passcodeRequired"`
	Joinable           bool             `json:"joinable"`
	CurrentRoundNumber int              `json:"currentRoundNumber"`
	CurrentPhase       string           `json:"currentPhase,omitempty"`
	Players            []PlayerSnapshot `json:"players"`
	CurrentRound       *RoundSnapshot   `json:"currentRound,omitempty"`
	LastResult         *ResultSnapshot  `json:"lastResult,omitempty"`
}

type PlayerSnapshot struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Alive    bool   `json:"alive"`
}

type RoundSnapshot struct {
	RoundID             string         `json:"roundId"`
	Number              int            `json:"number"`
	Phase               string         `json:"phase"`
	QuestionText        string         `json:"questionText,omitempty"`
	DiscussionStartedAt *time.Time     `json:"discussionStartedAt,omitempty"`
	DiscussionSeconds   int            `json:"discussionSeconds,omitempty"`
	VotingStartedAt     *time.Time     `json:"votingStartedAt,omitempty"`
	VotingSeconds       int            `json:"votingSeconds,omitempty"`
	Votes               []VoteSnapshot `json:"votes"`
}

type VoteSnapshot struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

// ResultSnapshot exposes round outcomes once the round has reached Reveal.
type ResultSnapshot struct {
	Number        int    `json:"roundNumber"`
	NightKilledID string `json:"nightKilledId,omitempty"`
	ExecutedID    string `json:"executedId,omitempty"`
}

func toSnapshot(g *game.Game) Snapshot {
	players := make([]PlayerSnapshot, 0, len(g.Players()))
	for _, player := range g.Players() {
		players = append(players, PlayerSnapshot{
			PlayerID: player.ID,
			Name:     player.Name,
			Alive:    player.Alive,
		})
	}

	snapshot := Snapshot{
		GameID:             g.ID,
		Name:               g.Name,
		Status:             g.Status.String(),
		HostID:             g.HostID,
		CreatedAt:          g.CreatedAt,
		MaxPlayers:         g.MaxPlayers,
		DiscussionTime:     g.DiscussionTime,
		VotingTime:         g.VotingTime,
		PasscodeRequired:   g.PasscodeRequired(),
		Joinable:           g.Status == game.StatusLobby && len(g.Players()) < g.MaxPlayers,
		CurrentRoundNumber: g.CurrentRoundNumber(),
		Players:            players,
	}

	round, err := g.CurrentRound()
	if err != nil {
		return snapshot
	}

	snapshot.CurrentPhase = round.Phase.String()

	votes := make([]VoteSnapshot, 0, len(round.Votes()))
	for _, vote := range round.Votes() {
		votes = append(votes, VoteSnapshot{VoterID: vote.VoterID, TargetID: vote.TargetID})
	}

	snapshot.CurrentRound = &RoundSnapshot{
		RoundID:             round.ID,
		Number:              round.Number,
		Phase:               round.Phase.String(),
		QuestionText:        round.QuestionText,
		DiscussionStartedAt: round.DiscussionStartedAt,
		DiscussionSeconds:   round.DiscussionSeconds,
		VotingStartedAt:     round.VotingStartedAt,
		VotingSeconds:       round.VotingSeconds,
		Votes:               votes,
	}

	if round.Phase >= game.PhaseReveal {
		result := &ResultSnapshot{Number: round.Number}
		if round.NightKilledID != nil {
			result.NightKilledID = *round.NightKilledID
		}
		if round.ExecutedID != nil {
			result.ExecutedID = *round.ExecutedID
		}
		snapshot.LastResult = result
	}

	return snapshot
}
