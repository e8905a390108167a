package player

import (
	"fmt"
	"strings"
)

// Position represents football position categories used in simulation and fantasy rules.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

const (
	MinAttribute = 1
	MaxAttribute = 100
)

// Attributes are the numeric skill inputs of the match simulator.
type Attributes struct {
	Pace      int `json:"pace" yaml:"pace"`
	Shooting  int `json:"shooting" yaml:"shooting"`
	Passing   int `json:"passing" yaml:"passing"`
	Dribbling int `json:"dribbling" yaml:"dribbling"`
	Defending int `json:"defending" yaml:"defending"`
	Physical  int `json:"physical" yaml:"physical"`
}

func (a Attributes) Validate() error {
	named := []struct {
		name  string
		value int
	}{
		{"pace", a.Pace},
		{"shooting", a.Shooting},
		{"passing", a.Passing},
		{"dribbling", a.Dribbling},
		{"defending", a.Defending},
		{"physical", a.Physical},
	}
	for _, item := range named {
		if item.value < MinAttribute || item.value > MaxAttribute {
			return fmt.Errorf("attribute %s must be within [%d,%d], got %d", item.name, MinAttribute, MaxAttribute, item.value)
		}
	}
	return nil
}

// Attack is the attacking weight the simulator uses for team strength.
func (a Attributes) Attack() int {
	return a.Pace + a.Shooting + a.Dribbling
}

// Defence is the defensive weight the simulator uses for team strength.
func (a Attributes) Defence() int {
	return a.Defending + a.Physical
}

// Discipline approximates how rarely a player gets booked; higher is cleaner.
func (a Attributes) Discipline() int {
	return (a.Passing + a.Dribbling) / 2
}

// Player is one squad member taking part in a simulated match.
type Player struct {
	ID         string
	Name       string
	Position   Position
	Attributes Attributes
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if err := p.Attributes.Validate(); err != nil {
		return fmt.Errorf("player %s: %w", p.ID, err)
	}

	return nil
}

func (p Player) IsOutfield() bool {
	return p.Position != PositionGoalkeeper
}

// NormalizePosition maps loose position labels to a Position code.
func NormalizePosition(value string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "goalkeeper", "keeper", "goalie", "gk":
		return PositionGoalkeeper, true
	case "defender", "def", "centre-back", "center-back", "full-back", "wing-back":
		return PositionDefender, true
	case "midfielder", "mid", "winger", "attacking midfielder", "defensive midfielder":
		return PositionMidfielder, true
	case "forward", "attacker", "striker", "fwd":
		return PositionForward, true
	default:
		return "", false
	}
}
