package game

type JoinStatus uint8

const (
	JoinSuccess JoinStatus = iota + 1
	JoinInvalidPasscode
	JoinNotJoinable
	JoinConflict
)

func (s JoinStatus) String() string {
	switch s {
	case JoinSuccess:
		return "Success"
	case JoinInvalidPasscode:
		return "InvalidPasscode"
	case JoinNotJoinable:
		return "NotJoinable"
	case JoinConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

type JoinResult struct {
	Status JoinStatus
	Err    error
}

type StartStatus uint8

const (
	StartSuccess StartStatus = iota + 1
	StartHostOnly
	StartNotEnoughPlayers
	StartNotJoinable
	StartConflict
)

func (s StartStatus) String() string {
	switch s {
	case StartSuccess:
		return "Success"
	case StartHostOnly:
		return "HostOnly"
	case StartNotEnoughPlayers:
		return "NotEnoughPlayers"
	case StartNotJoinable:
		return "NotJoinable"
	case StartConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

type StartResult struct {
	Status StartStatus
	Err    error
}

type Winner uint8

const (
	WinnerNone Winner = iota
	WinnerVillagers
	WinnerVampires
)

func (w Winner) String() string {
	switch w {
	case WinnerVillagers:
		return "Villagers"
	case WinnerVampires:
		return "Vampires"
	default:
		return "None"
	}
}

// NightResolution carries the outcomes fixed when the Question phase
// closes. Every field may be nil: both special-role actions are optional.
type NightResolution struct {
	KilledID       *string
	CheckedID      *string
	HunterDetected *bool
}

type VotingResolution struct {
	ExecutedID   *string
	ExecutedRole *Role
}

type EndEvaluation struct {
	Ended  bool
	Winner Winner
	Reason string
}

type AdvanceResult struct {
	Ended       bool
	Winner      Winner
	RoundNumber int
}
