package jobqueue

import (
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
)

type matchResultMessage struct {
	MatchID      string               `json:"match_id"`
	HomeTeamID   string               `json:"home_team_id"`
	AwayTeamID   string               `json:"away_team_id"`
	HomeScore    int                  `json:"home_score"`
	AwayScore    int                  `json:"away_score"`
	FinalizedAt  string               `json:"finalized_at"`
	Performances []performanceMessage `json:"performances"`
}

type performanceMessage struct {
	PlayerID        string  `json:"player_id"`
	TeamID          string  `json:"team_id"`
	Position        string  `json:"position"`
	Rating          float64 `json:"rating"`
	MinutesPlayed   int     `json:"minutes_played"`
	Goals           int     `json:"goals"`
	Assists         int     `json:"assists"`
	OwnGoals        int     `json:"own_goals"`
	YellowCards     int     `json:"yellow_cards"`
	RedCards        int     `json:"red_cards"`
	Saves           int     `json:"saves"`
	GoalsConceded   int     `json:"goals_conceded"`
	PenaltiesSaved  int     `json:"penalties_saved"`
	PenaltiesMissed int     `json:"penalties_missed"`
}

func resultMessageFromDomain(result match.Result) matchResultMessage {
	performances := make([]performanceMessage, 0, len(result.Performances))
	for _, item := range result.Performances {
		performances = append(performances, performanceMessage{
			PlayerID:        item.PlayerID,
			TeamID:          item.TeamID,
			Position:        string(item.Position),
			Rating:          item.Rating,
			MinutesPlayed:   item.MinutesPlayed,
			Goals:           item.Goals,
			Assists:         item.Assists,
			OwnGoals:        item.OwnGoals,
			YellowCards:     item.YellowCards,
			RedCards:        item.RedCards,
			Saves:           item.Saves,
			GoalsConceded:   item.GoalsConceded,
			PenaltiesSaved:  item.PenaltiesSaved,
			PenaltiesMissed: item.PenaltiesMissed,
		})
	}
	sort.Slice(performances, func(i, j int) bool {
		return performances[i].PlayerID < performances[j].PlayerID
	})

	return matchResultMessage{
		MatchID:      result.State.ID,
		HomeTeamID:   result.State.Home.ID,
		AwayTeamID:   result.State.Away.ID,
		HomeScore:    result.State.HomeScore,
		AwayScore:    result.State.AwayScore,
		FinalizedAt:  result.FinalizedAt.UTC().Format(time.RFC3339),
		Performances: performances,
	}
}
