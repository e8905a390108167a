package scoring

import (
	"sort"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/player"
)

// Bonus points handed out per match, best first.
var bonusTiers = []int{3, 2, 1}

type BonusAward struct {
	PlayerID string `json:"player_id"`
	Bonus    int    `json:"bonus"`
}

// CompositeScore ranks a player's match for bonus purposes. It is not a fantasy
// points total: goals by deeper positions weigh more and clean sheets only count
// after an hour on the pitch.
func CompositeScore(stats GameweekPlayerStats) int {
	score := 0
	switch stats.Position {
	case player.PositionForward:
		score += stats.GoalsScored * 24
	case player.PositionMidfielder:
		score += stats.GoalsScored * 30
	default:
		score += stats.GoalsScored * 36
	}
	score += stats.Assists * 9

	if stats.CleanSheets > 0 && stats.MinutesPlayed >= 60 {
		switch stats.Position {
		case player.PositionGoalkeeper, player.PositionDefender:
			score += 12
		case player.PositionMidfielder:
			score += 3
		}
	}
	score += stats.Saves * 2
	score += stats.PenaltiesSaved * 15

	switch {
	case stats.MinutesPlayed >= 60:
		score += 6
	case stats.MinutesPlayed > 0:
		score += 3
	}

	score -= stats.YellowCards * 3
	score -= stats.RedCards * 9
	score -= stats.OwnGoals * 6
	score -= stats.PenaltiesMissed * 6
	if stats.Position == player.PositionGoalkeeper || stats.Position == player.PositionDefender {
		score -= stats.GoalsConceded * 4
	}

	return score
}

// AssignBonusPoints awards 3, 2 and 1 to the three best composite scores of a
// match. Equal scores are ordered by lower player id. Players scoring zero or
// less never receive bonus.
func AssignBonusPoints(matchStats []GameweekPlayerStats) ([]BonusAward, error) {
	type ranked struct {
		playerID string
		score    int
	}

	seen := make(map[string]struct{}, len(matchStats))
	rows := make([]ranked, 0, len(matchStats))
	for _, stats := range matchStats {
		if err := stats.Validate(); err != nil {
			return nil, err
		}
		if _, exists := seen[stats.PlayerID]; exists {
			return nil, crerr.Wrapf(ErrInvalidStats, "duplicate stats for player %s", stats.PlayerID)
		}
		seen[stats.PlayerID] = struct{}{}
		rows = append(rows, ranked{playerID: stats.PlayerID, score: CompositeScore(stats)})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		return rows[i].playerID < rows[j].playerID
	})

	out := make([]BonusAward, 0, len(bonusTiers))
	for idx, row := range rows {
		if idx >= len(bonusTiers) || row.score <= 0 {
			break
		}
		out = append(out, BonusAward{PlayerID: row.playerID, Bonus: bonusTiers[idx]})
	}

	return out, nil
}

// ApplyBonus returns a copy of matchStats with the awarded bonus filled in.
func ApplyBonus(matchStats []GameweekPlayerStats, awards []BonusAward) []GameweekPlayerStats {
	byPlayer := make(map[string]int, len(awards))
	for _, award := range awards {
		byPlayer[award.PlayerID] = award.Bonus
	}

	out := make([]GameweekPlayerStats, len(matchStats))
	for idx, stats := range matchStats {
		stats.Bonus = byPlayer[stats.PlayerID]
		out[idx] = stats
	}
	return out
}
