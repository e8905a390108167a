package match

import (
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/player"
)

const (
	FullTime         = 90
	MinSquadSize     = 7
	MaxStarters      = 11
	MaxSubstitutions = 5
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type EventType string

const (
	EventGoal         EventType = "goal"
	EventCard         EventType = "card"
	EventSubstitution EventType = "substitution"
	EventVAR          EventType = "var"
	EventOther        EventType = "other"
)

const (
	DetailOpenPlay       = "open play"
	DetailPenalty        = "penalty"
	DetailOwnGoal        = "own goal"
	DetailYellowCard     = "yellow"
	DetailSecondYellow   = "second yellow"
	DetailRedCard        = "red"
	DetailSave           = "save"
	DetailPenaltySaved   = "penalty saved"
	DetailPenaltyMissed  = "penalty missed"
	DetailGoalConfirmed  = "goal confirmed"
	DetailGoalDisallowed = "goal disallowed"
)

// Team is one side of a simulated match. The first MaxStarters players start.
type Team struct {
	ID      string
	Name    string
	Players []player.Player
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return crerr.Wrap(ErrInvalidRoster, "team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return crerr.Wrapf(ErrInvalidRoster, "team %s: name is required", t.ID)
	}
	if len(t.Players) < MinSquadSize {
		return crerr.Wrapf(ErrInvalidRoster, "team %s: expected at least %d players, got %d", t.ID, MinSquadSize, len(t.Players))
	}

	seen := make(map[string]struct{}, len(t.Players))
	for _, item := range t.Players {
		if err := item.Validate(); err != nil {
			return crerr.Wrapf(ErrInvalidRoster, "team %s: %v", t.ID, err)
		}
		if _, exists := seen[item.ID]; exists {
			return crerr.Wrapf(ErrInvalidRoster, "team %s: duplicate player %s", t.ID, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return nil
}

// ValidateRosters checks both teams and rejects players listed on both sides.
func ValidateRosters(home, away Team) error {
	if err := home.Validate(); err != nil {
		return err
	}
	if err := away.Validate(); err != nil {
		return err
	}
	if home.ID == away.ID {
		return crerr.Wrapf(ErrInvalidRoster, "home and away team share id %s", home.ID)
	}

	homeIDs := make(map[string]struct{}, len(home.Players))
	for _, item := range home.Players {
		homeIDs[item.ID] = struct{}{}
	}
	for _, item := range away.Players {
		if _, exists := homeIDs[item.ID]; exists {
			return crerr.Wrapf(ErrInvalidRoster, "player %s listed for both teams", item.ID)
		}
	}

	return nil
}

type Event struct {
	Minute         int
	Type           EventType
	TeamID         string
	PlayerID       string
	AssistPlayerID string
	Detail         string
}

// PlayerPerformance accumulates one player's contribution while the match runs.
type PlayerPerformance struct {
	PlayerID        string
	TeamID          string
	Position        player.Position
	Rating          float64
	Goals           int
	Assists         int
	MinutesPlayed   int
	YellowCards     int
	RedCards        int
	OwnGoals        int
	Saves           int
	GoalsConceded   int
	PenaltiesSaved  int
	PenaltiesMissed int
	SubbedOn        bool
	SubbedOff       bool
	SentOff         bool
}

type State struct {
	ID           string
	Home         Team
	Away         Team
	HomeScore    int
	AwayScore    int
	Status       Status
	Minute       int
	Events       []Event
	Performances map[string]PlayerPerformance
	Finalized    bool
}

// Clone returns a copy that shares only the immutable rosters.
func (s State) Clone() State {
	out := s
	out.Home = cloneTeam(s.Home)
	out.Away = cloneTeam(s.Away)
	out.Events = append([]Event(nil), s.Events...)
	out.Performances = make(map[string]PlayerPerformance, len(s.Performances))
	for id, perf := range s.Performances {
		out.Performances[id] = perf
	}
	return out
}

// OrderedPerformances lists records in home then away roster order.
func (s State) OrderedPerformances() []PlayerPerformance {
	out := make([]PlayerPerformance, 0, len(s.Performances))
	for _, roster := range [][]player.Player{s.Home.Players, s.Away.Players} {
		for _, item := range roster {
			if perf, ok := s.Performances[item.ID]; ok {
				out = append(out, perf)
			}
		}
	}
	return out
}

// GoalsAgainst returns how many goals the given team conceded.
func (s State) GoalsAgainst(teamID string) int {
	switch teamID {
	case s.Home.ID:
		return s.AwayScore
	case s.Away.ID:
		return s.HomeScore
	default:
		return 0
	}
}

// Result is a finalized match as stored after full time.
type Result struct {
	State        State
	Performances []PlayerPerformance
	FinalizedAt  time.Time
}
