package scoring

import (
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/player"
)

// GameweekPlayerStats is the scoring input for one player, from the simulator
// or from an external stats feed.
type GameweekPlayerStats struct {
	PlayerID        string          `json:"player_id"`
	Position        player.Position `json:"position"`
	MinutesPlayed   int             `json:"minutes_played"`
	GoalsScored     int             `json:"goals_scored"`
	Assists         int             `json:"assists"`
	CleanSheets     int             `json:"clean_sheets"`
	GoalsConceded   int             `json:"goals_conceded"`
	OwnGoals        int             `json:"own_goals"`
	PenaltiesSaved  int             `json:"penalties_saved"`
	PenaltiesMissed int             `json:"penalties_missed"`
	YellowCards     int             `json:"yellow_cards"`
	RedCards        int             `json:"red_cards"`
	Saves           int             `json:"saves"`
	Bonus           int             `json:"bonus"`
}

func (s GameweekPlayerStats) Validate() error {
	if strings.TrimSpace(s.PlayerID) == "" {
		return crerr.Wrap(ErrInvalidStats, "player id is required")
	}
	if _, ok := player.AllPositions[s.Position]; !ok {
		return crerr.Wrapf(ErrInvalidStats, "player %s: unknown position %q", s.PlayerID, s.Position)
	}

	counters := []int{
		s.MinutesPlayed, s.GoalsScored, s.Assists, s.CleanSheets, s.GoalsConceded, s.OwnGoals,
		s.PenaltiesSaved, s.PenaltiesMissed, s.YellowCards, s.RedCards, s.Saves, s.Bonus,
	}
	for _, value := range counters {
		if value < 0 {
			return crerr.Wrapf(ErrInvalidStats, "player %s: counters must not be negative", s.PlayerID)
		}
	}
	if s.CleanSheets > 1 {
		return crerr.Wrapf(ErrInvalidStats, "player %s: clean sheets must be 0 or 1", s.PlayerID)
	}
	if s.Bonus > 3 {
		return crerr.Wrapf(ErrInvalidStats, "player %s: bonus must be within [0,3]", s.PlayerID)
	}

	return nil
}

// CalculatePlayerPoints scores one player's gameweek. The total never goes below zero.
func CalculatePlayerPoints(stats GameweekPlayerStats, rules Rules) (int, error) {
	if err := rules.Validate(); err != nil {
		return 0, err
	}
	if err := stats.Validate(); err != nil {
		return 0, err
	}

	return playerPoints(stats, rules), nil
}

func playerPoints(stats GameweekPlayerStats, rules Rules) int {
	pos := rules.Positions[stats.Position]

	points := 0
	if stats.MinutesPlayed > 0 {
		points += rules.Appearance
	}
	if stats.MinutesPlayed >= 60 {
		points += rules.SixtyMinutes
	}

	points += stats.GoalsScored * pos.Goal
	points += stats.Assists * rules.Assist
	if stats.CleanSheets > 0 && stats.MinutesPlayed >= rules.CleanSheetMinMinutes {
		points += pos.CleanSheet
	}
	points += (stats.GoalsConceded / 2) * pos.GoalsConcededPer2
	points += (stats.Saves / 3) * pos.SavesPer3
	points += stats.PenaltiesSaved * pos.PenaltySave

	points += stats.PenaltiesMissed * rules.PenaltyMiss
	points += stats.OwnGoals * rules.OwnGoal
	points += stats.YellowCards * rules.YellowCard
	points += stats.RedCards * rules.RedCard
	points += stats.Bonus

	if points < 0 {
		return 0
	}
	return points
}

// Captaincy marks the captain and the optional vice captain of a fantasy roster.
type Captaincy struct {
	CaptainID     string `json:"captain_id"`
	ViceCaptainID string `json:"vice_captain_id,omitempty"`
}

func (c Captaincy) Validate(roster []string) error {
	if strings.TrimSpace(c.CaptainID) == "" {
		return crerr.Wrap(ErrInvalidCaptaincy, "captain is required")
	}
	if c.ViceCaptainID != "" && c.ViceCaptainID == c.CaptainID {
		return crerr.Wrapf(ErrInvalidCaptaincy, "player %s cannot be captain and vice captain", c.CaptainID)
	}

	members := make(map[string]struct{}, len(roster))
	for _, playerID := range roster {
		if _, exists := members[playerID]; exists {
			return crerr.Wrapf(ErrInvalidCaptaincy, "duplicate roster player %s", playerID)
		}
		members[playerID] = struct{}{}
	}
	if _, ok := members[c.CaptainID]; !ok {
		return crerr.Wrapf(ErrInvalidCaptaincy, "captain %s is not in roster", c.CaptainID)
	}
	if c.ViceCaptainID != "" {
		if _, ok := members[c.ViceCaptainID]; !ok {
			return crerr.Wrapf(ErrInvalidCaptaincy, "vice captain %s is not in roster", c.ViceCaptainID)
		}
	}

	return nil
}

type PlayerPoints struct {
	PlayerID      string
	IsCaptain     bool
	IsViceCaptain bool
	Multiplier    int
	BasePoints    int
	CountedPoints int
}

type TeamGameweekPoints struct {
	TotalPoints int
	Players     []PlayerPoints
}

// CalculateTeamGameweekPoints sums the roster with the captain doubled. When the
// captain scores zero the vice captain is doubled instead; outside that case the
// vice captain contributes nothing.
func CalculateTeamGameweekPoints(roster []string, statsByPlayer map[string]GameweekPlayerStats, captaincy Captaincy, rules Rules) (int, error) {
	breakdown, err := CalculateTeamGameweekBreakdown(roster, statsByPlayer, captaincy, rules)
	if err != nil {
		return 0, err
	}
	return breakdown.TotalPoints, nil
}

// CalculateTeamGameweekBreakdown is CalculateTeamGameweekPoints with per-player detail.
// Roster players without stats did not play and score zero.
func CalculateTeamGameweekBreakdown(roster []string, statsByPlayer map[string]GameweekPlayerStats, captaincy Captaincy, rules Rules) (TeamGameweekPoints, error) {
	if err := rules.Validate(); err != nil {
		return TeamGameweekPoints{}, err
	}
	if err := captaincy.Validate(roster); err != nil {
		return TeamGameweekPoints{}, err
	}

	base := make(map[string]int, len(roster))
	for _, playerID := range roster {
		stats, ok := statsByPlayer[playerID]
		if !ok {
			base[playerID] = 0
			continue
		}
		if stats.PlayerID != playerID {
			return TeamGameweekPoints{}, crerr.Wrapf(ErrInvalidStats, "stats keyed by %s belong to %s", playerID, stats.PlayerID)
		}
		if err := stats.Validate(); err != nil {
			return TeamGameweekPoints{}, err
		}
		base[playerID] = playerPoints(stats, rules)
	}

	captainPoints := base[captaincy.CaptainID]
	out := TeamGameweekPoints{Players: make([]PlayerPoints, 0, len(roster))}
	for _, playerID := range roster {
		item := PlayerPoints{
			PlayerID:      playerID,
			IsCaptain:     playerID == captaincy.CaptainID,
			IsViceCaptain: playerID == captaincy.ViceCaptainID,
			Multiplier:    1,
			BasePoints:    base[playerID],
		}
		switch {
		case item.IsCaptain && captainPoints > 0:
			item.Multiplier = 2
		case item.IsCaptain:
			item.Multiplier = 0
		case item.IsViceCaptain && captainPoints == 0:
			item.Multiplier = 2
		case item.IsViceCaptain:
			item.Multiplier = 0
		}
		item.CountedPoints = item.BasePoints * item.Multiplier
		out.TotalPoints += item.CountedPoints
		out.Players = append(out.Players, item)
	}

	return out, nil
}
