package scoring

import (
	"io"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/player"
	"gopkg.in/yaml.v3"
)

// PositionRules holds the point values that depend on a player's position.
type PositionRules struct {
	Goal              int `json:"goal" yaml:"goal"`
	CleanSheet        int `json:"clean_sheet" yaml:"clean_sheet"`
	GoalsConcededPer2 int `json:"goals_conceded_per_2" yaml:"goals_conceded_per_2"`
	SavesPer3         int `json:"saves_per_3" yaml:"saves_per_3"`
	PenaltySave       int `json:"penalty_save" yaml:"penalty_save"`
}

// Rules is the full point table of a league.
type Rules struct {
	Positions            map[player.Position]PositionRules `json:"positions" yaml:"positions"`
	Assist               int                               `json:"assist" yaml:"assist"`
	PenaltyMiss          int                               `json:"penalty_miss" yaml:"penalty_miss"`
	OwnGoal              int                               `json:"own_goal" yaml:"own_goal"`
	YellowCard           int                               `json:"yellow_card" yaml:"yellow_card"`
	RedCard              int                               `json:"red_card" yaml:"red_card"`
	Appearance           int                               `json:"appearance" yaml:"appearance"`
	SixtyMinutes         int                               `json:"sixty_minutes" yaml:"sixty_minutes"`
	CleanSheetMinMinutes int                               `json:"clean_sheet_min_minutes" yaml:"clean_sheet_min_minutes"`
}

func DefaultRules() Rules {
	return Rules{
		Positions: map[player.Position]PositionRules{
			player.PositionGoalkeeper: {Goal: 6, CleanSheet: 4, GoalsConcededPer2: -1, SavesPer3: 1, PenaltySave: 5},
			player.PositionDefender:   {Goal: 6, CleanSheet: 4, GoalsConcededPer2: -1},
			player.PositionMidfielder: {Goal: 5, CleanSheet: 1},
			player.PositionForward:    {Goal: 4},
		},
		Assist:               3,
		PenaltyMiss:          -2,
		OwnGoal:              -2,
		YellowCard:           -1,
		RedCard:              -3,
		Appearance:           1,
		SixtyMinutes:         1,
		CleanSheetMinMinutes: 60,
	}
}

func (r Rules) Validate() error {
	for position := range player.AllPositions {
		item, ok := r.Positions[position]
		if !ok {
			return crerr.Wrapf(ErrInvalidRules, "missing rules for position %s", position)
		}
		if item.Goal < 0 || item.CleanSheet < 0 || item.SavesPer3 < 0 || item.PenaltySave < 0 {
			return crerr.Wrapf(ErrInvalidRules, "position %s: goal, clean sheet, saves and penalty save must not be negative", position)
		}
		if item.GoalsConcededPer2 > 0 {
			return crerr.Wrapf(ErrInvalidRules, "position %s: goals conceded must not be positive", position)
		}
	}
	for position := range r.Positions {
		if _, ok := player.AllPositions[position]; !ok {
			return crerr.Wrapf(ErrInvalidRules, "unknown position %s", position)
		}
	}

	if r.Assist < 0 || r.Appearance < 0 || r.SixtyMinutes < 0 {
		return crerr.Wrap(ErrInvalidRules, "assist, appearance and sixty minutes must not be negative")
	}
	if r.PenaltyMiss > 0 || r.OwnGoal > 0 || r.YellowCard > 0 || r.RedCard > 0 {
		return crerr.Wrap(ErrInvalidRules, "penalty miss, own goal and card values must not be positive")
	}
	if r.CleanSheetMinMinutes <= 0 {
		return crerr.Wrap(ErrInvalidRules, "clean sheet minimum minutes must be greater than zero")
	}

	return nil
}

// Clone copies the position map so callers may modify the result.
func (r Rules) Clone() Rules {
	out := r
	out.Positions = make(map[player.Position]PositionRules, len(r.Positions))
	for position, item := range r.Positions {
		out.Positions[position] = item
	}
	return out
}

// DecodeLeagueRules reads a YAML document keyed by league id. Every league
// starts from DefaultRules, so a document only lists the values it changes.
// A listed position replaces all of that position's values.
//
//	leagues:
//	  liga-1:
//	    assist: 2
//	    positions:
//	      FWD: {goal: 5}
func DecodeLeagueRules(r io.Reader) (map[string]Rules, error) {
	var doc struct {
		Leagues map[string]yaml.Node `yaml:"leagues"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if crerr.Is(err, io.EOF) {
			return map[string]Rules{}, nil
		}
		return nil, crerr.Wrap(err, "decode league rules")
	}

	out := make(map[string]Rules, len(doc.Leagues))
	for leagueID, node := range doc.Leagues {
		rules := DefaultRules()
		if err := node.Decode(&rules); err != nil {
			return nil, crerr.Wrapf(err, "decode rules for league %s", leagueID)
		}
		if err := rules.Validate(); err != nil {
			return nil, crerr.Wrapf(err, "league %s", leagueID)
		}
		out[leagueID] = rules
	}

	return out, nil
}
