package game

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Phase uint8

const (
	PhaseNotStarted Phase = iota + 1
	PhaseQuestion
	PhaseReveal
	PhaseDiscussion
	PhaseVoting
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "NotStarted"
	case PhaseQuestion:
		return "Question"
	case PhaseReveal:
		return "Reveal"
	case PhaseDiscussion:
		return "Discussion"
	case PhaseVoting:
		return "Voting"
	case PhaseFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

type Vote struct {
	VoterID  string
	TargetID string
	CastAt   time.Time
}

type Action struct {
	PlayerID    string
	SelectedID  string
	SubmittedAt time.Time
}

// Round is one question → night → discussion → voting cycle. The phase
// only ever moves forward; each outcome field is written once, when its
// phase closes.
type Round struct {
	ID         string
	Number     int
	StartedAt  time.Time
	FinishedAt *time.Time

	Phase Phase

	QuestionText      string
	QuestionStartedAt *time.Time

	DiscussionStartedAt *time.Time
	DiscussionSeconds   int
	VotingStartedAt     *time.Time
	VotingSeconds       int

	NightKilledID   *string
	HunterCheckedID *string
	HunterDetected  *bool
	ExecutedID      *string

	votesByVoter    map[string]Vote
	actionsByPlayer map[string]Action
}

func NewRound(number int) (*Round, error) {
	if number <= 0 {
		return nil, fmt.Errorf("round number must be > 0: %w", InvalidArgumentErr)
	}

	return &Round{
		ID:              uuid.NewString(),
		Number:          number,
		StartedAt:       time.Now().UTC(),
		Phase:           PhaseNotStarted,
		votesByVoter:    map[string]Vote{},
		actionsByPlayer: map[string]Action{},
	}, nil
}

func (r *Round) BeginQuestion(text string) error {
	if err := r.ensurePhase(PhaseNotStarted); err != nil {
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("question text cannot be empty: %w", InvalidArgumentErr)
	}

	now := time.Now().UTC()
	r.QuestionText = text
	r.QuestionStartedAt = &now
	r.Phase = PhaseQuestion
	return nil
}

// SubmitAction records the actor's pick; a later submission by the same
// actor replaces the earlier one.
func (r *Round) SubmitAction(playerID, selectedID string) error {
	if err := r.ensurePhase(PhaseQuestion); err != nil {
		return err
	}
	if playerID == "" {
		return fmt.Errorf("player id cannot be empty: %w", InvalidArgumentErr)
	}
	if selectedID == "" {
		return fmt.Errorf("selected player id cannot be empty: %w", InvalidArgumentErr)
	}
	if playerID == selectedID {
		return fmt.Errorf("player cannot select themselves: %w", ConflictErr)
	}

	r.actionsByPlayer[playerID] = Action{
		PlayerID:    playerID,
		SelectedID:  selectedID,
		SubmittedAt: time.Now().UTC(),
	}
	return nil
}

func (r *Round) Action(playerID string) (Action, bool) {
	action, ok := r.actionsByPlayer[playerID]
	return action, ok
}

// ResolveNight closes the Question phase and fixes the night outcomes.
// All three outcomes are optional: a round where neither special role
// acted resolves with nothing recorded.
func (r *Round) ResolveNight(killedID, checkedID *string, detected *bool) error {
	if err := r.ensurePhase(PhaseQuestion); err != nil {
		return err
	}

	r.NightKilledID = killedID
	r.HunterCheckedID = checkedID
	r.HunterDetected = detected
	r.Phase = PhaseReveal
	return nil
}

func (r *Round) BeginDiscussion(durationSeconds int) error {
	if err := r.ensurePhase(PhaseReveal); err != nil {
		return err
	}
	if durationSeconds <= 0 {
		return fmt.Errorf("discussion duration must be > 0: %w", InvalidArgumentErr)
	}

	now := time.Now().UTC()
	r.DiscussionStartedAt = &now
	r.DiscussionSeconds = durationSeconds
	r.Phase = PhaseDiscussion
	return nil
}

// EndDiscussion is a boundary signal only; the transition to Voting
// happens in BeginVoting.
func (r *Round) EndDiscussion() error {
	return r.ensurePhase(PhaseDiscussion)
}

func (r *Round) BeginVoting(durationSeconds int) error {
	if err := r.ensurePhase(PhaseDiscussion); err != nil {
		return err
	}
	if durationSeconds <= 0 {
		return fmt.Errorf("voting duration must be > 0: %w", InvalidArgumentErr)
	}

	now := time.Now().UTC()
	r.VotingStartedAt = &now
	r.VotingSeconds = durationSeconds
	r.Phase = PhaseVoting
	return nil
}

func (r *Round) CastVote(voterID, targetID string) error {
	if err := r.ensurePhase(PhaseVoting); err != nil {
		return err
	}
	if voterID == "" {
		return fmt.Errorf("voter id cannot be empty: %w", InvalidArgumentErr)
	}
	if targetID == "" {
		return fmt.Errorf("target id cannot be empty: %w", InvalidArgumentErr)
	}
	if voterID == targetID {
		return fmt.Errorf("a player cannot vote for themselves: %w", ConflictErr)
	}

	r.votesByVoter[voterID] = Vote{VoterID: voterID, TargetID: targetID, CastAt: time.Now().UTC()}
	return nil
}

func (r *Round) HasVoted(voterID string) bool {
	_, ok := r.votesByVoter[voterID]
	return ok
}

func (r *Round) Votes() []Vote {
	votes := make([]Vote, 0, len(r.votesByVoter))
	for _, vote := range r.votesByVoter {
		votes = append(votes, vote)
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].VoterID < votes[j].VoterID })
	return votes
}

// LeadingTarget tallies votes by target. No votes or a tie for the top
// count yields nil: a tie means nobody is executed, it is not an error.
func (r *Round) LeadingTarget() *string {
	if len(r.votesByVoter) == 0 {
		return nil
	}

	counts := map[string]int{}
	for _, vote := range r.votesByVoter {
		counts[vote.TargetID]++
	}

	var leader string
	var best, second int
	for target, n := range counts {
		switch {
		case n > best:
			second = best
			best = n
			leader = target
		case n > second:
			second = n
		}
	}

	if best == second {
		return nil
	}
	return &leader
}

func (r *Round) EndVotingWithExecution(executedID *string) error {
	if err := r.ensurePhase(PhaseVoting); err != nil {
		return err
	}

	now := time.Now().UTC()
	r.ExecutedID = executedID
	r.FinishedAt = &now
	r.Phase = PhaseFinished
	return nil
}

func (r *Round) Finished() bool {
	return r.Phase == PhaseFinished
}

func (r *Round) ensurePhase(expected Phase) error {
	if r.Phase != expected {
		return fmt.Errorf("action only allowed in %s phase: %w", expected, ConflictErr)
	}
	return nil
}
