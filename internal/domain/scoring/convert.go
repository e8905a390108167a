package scoring

import "github.com/riskibarqy/fantasy-matchsim/internal/domain/match"

// FromPerformance converts a finalized simulator record into scoring input.
// A clean sheet means no goal was conceded while the player was on the pitch.
func FromPerformance(perf match.PlayerPerformance) GameweekPlayerStats {
	stats := GameweekPlayerStats{
		PlayerID:        perf.PlayerID,
		Position:        perf.Position,
		MinutesPlayed:   perf.MinutesPlayed,
		GoalsScored:     perf.Goals,
		Assists:         perf.Assists,
		GoalsConceded:   perf.GoalsConceded,
		OwnGoals:        perf.OwnGoals,
		PenaltiesSaved:  perf.PenaltiesSaved,
		PenaltiesMissed: perf.PenaltiesMissed,
		YellowCards:     perf.YellowCards,
		RedCards:        perf.RedCards,
		Saves:           perf.Saves,
	}
	if perf.MinutesPlayed > 0 && perf.GoalsConceded == 0 {
		stats.CleanSheets = 1
	}
	return stats
}

func FromPerformances(perfs []match.PlayerPerformance) []GameweekPlayerStats {
	out := make([]GameweekPlayerStats, 0, len(perfs))
	for _, perf := range perfs {
		out = append(out, FromPerformance(perf))
	}
	return out
}
