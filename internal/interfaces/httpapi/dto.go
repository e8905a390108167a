package httpapi

import (
	"strings"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/player"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-matchsim/internal/usecase"
)

type attributesRequest struct {
	Pace      int `json:"pace" validate:"min=1,max=100"`
	Shooting  int `json:"shooting" validate:"min=1,max=100"`
	Passing   int `json:"passing" validate:"min=1,max=100"`
	Dribbling int `json:"dribbling" validate:"min=1,max=100"`
	Defending int `json:"defending" validate:"min=1,max=100"`
	Physical  int `json:"physical" validate:"min=1,max=100"`
}

type playerRequest struct {
	ID         string            `json:"id" validate:"required"`
	Name       string            `json:"name" validate:"required,max=100"`
	Position   string            `json:"position" validate:"required,oneof=GK DEF MID FWD"`
	Attributes attributesRequest `json:"attributes"`
}

type teamRequest struct {
	ID      string          `json:"id" validate:"required"`
	Name    string          `json:"name" validate:"required,max=100"`
	Players []playerRequest `json:"players" validate:"required,min=1,dive"`
}

func (t teamRequest) toDomain() match.Team {
	players := make([]player.Player, 0, len(t.Players))
	for _, item := range t.Players {
		players = append(players, player.Player{
			ID:       strings.TrimSpace(item.ID),
			Name:     strings.TrimSpace(item.Name),
			Position: player.Position(item.Position),
			Attributes: player.Attributes{
				Pace:      item.Attributes.Pace,
				Shooting:  item.Attributes.Shooting,
				Passing:   item.Attributes.Passing,
				Dribbling: item.Attributes.Dribbling,
				Defending: item.Attributes.Defending,
				Physical:  item.Attributes.Physical,
			},
		})
	}
	return match.Team{ID: strings.TrimSpace(t.ID), Name: strings.TrimSpace(t.Name), Players: players}
}

type startMatchRequest struct {
	Home       *teamRequest `json:"home" validate:"required_without=HomeTeamID"`
	Away       *teamRequest `json:"away" validate:"required_without=AwayTeamID"`
	HomeTeamID string       `json:"home_team_id" validate:"omitempty,max=64"`
	AwayTeamID string       `json:"away_team_id" validate:"omitempty,max=64"`
	Seed       *int64       `json:"seed"`
	Live       bool         `json:"live"`
}

type simulateBatchRequest struct {
	Fixtures []startMatchRequest `json:"fixtures" validate:"required,min=1,max=64,dive"`
}

type playerStatsRequest struct {
	PlayerID        string `json:"player_id" validate:"required"`
	Position        string `json:"position" validate:"required,oneof=GK DEF MID FWD"`
	MinutesPlayed   int    `json:"minutes_played" validate:"min=0"`
	GoalsScored     int    `json:"goals_scored" validate:"min=0"`
	Assists         int    `json:"assists" validate:"min=0"`
	CleanSheets     int    `json:"clean_sheets" validate:"min=0,max=1"`
	GoalsConceded   int    `json:"goals_conceded" validate:"min=0"`
	OwnGoals        int    `json:"own_goals" validate:"min=0"`
	PenaltiesSaved  int    `json:"penalties_saved" validate:"min=0"`
	PenaltiesMissed int    `json:"penalties_missed" validate:"min=0"`
	YellowCards     int    `json:"yellow_cards" validate:"min=0"`
	RedCards        int    `json:"red_cards" validate:"min=0"`
	Saves           int    `json:"saves" validate:"min=0"`
	Bonus           int    `json:"bonus" validate:"min=0,max=3"`
}

func (s playerStatsRequest) toDomain() scoring.GameweekPlayerStats {
	return scoring.GameweekPlayerStats{
		PlayerID:        strings.TrimSpace(s.PlayerID),
		Position:        player.Position(s.Position),
		MinutesPlayed:   s.MinutesPlayed,
		GoalsScored:     s.GoalsScored,
		Assists:         s.Assists,
		CleanSheets:     s.CleanSheets,
		GoalsConceded:   s.GoalsConceded,
		OwnGoals:        s.OwnGoals,
		PenaltiesSaved:  s.PenaltiesSaved,
		PenaltiesMissed: s.PenaltiesMissed,
		YellowCards:     s.YellowCards,
		RedCards:        s.RedCards,
		Saves:           s.Saves,
		Bonus:           s.Bonus,
	}
}

func statsToDomain(items []playerStatsRequest) []scoring.GameweekPlayerStats {
	out := make([]scoring.GameweekPlayerStats, 0, len(items))
	for _, item := range items {
		out = append(out, item.toDomain())
	}
	return out
}

type playerPointsRequest struct {
	LeagueID string             `json:"league_id" validate:"omitempty,max=64"`
	Stats    playerStatsRequest `json:"stats"`
}

type teamPointsRequest struct {
	LeagueID      string               `json:"league_id" validate:"omitempty,max=64"`
	Roster        []string             `json:"roster" validate:"required,min=1,max=30,dive,required"`
	Stats         []playerStatsRequest `json:"stats" validate:"dive"`
	CaptainID     string               `json:"captain_id" validate:"required"`
	ViceCaptainID string               `json:"vice_captain_id"`
}

type bonusRequest struct {
	Stats []playerStatsRequest `json:"stats" validate:"required,min=1,dive"`
}

type attributesDTO struct {
	Pace      int `json:"pace"`
	Shooting  int `json:"shooting"`
	Passing   int `json:"passing"`
	Dribbling int `json:"dribbling"`
	Defending int `json:"defending"`
	Physical  int `json:"physical"`
}

type playerDTO struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Position   string        `json:"position"`
	Attributes attributesDTO `json:"attributes"`
}

type teamDTO struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Players []playerDTO `json:"players,omitempty"`
}

type eventDTO struct {
	Minute         int    `json:"minute"`
	Type           string `json:"type"`
	TeamID         string `json:"team_id"`
	PlayerID       string `json:"player_id"`
	AssistPlayerID string `json:"assist_player_id,omitempty"`
	Detail         string `json:"detail,omitempty"`
}

type performanceDTO struct {
	PlayerID        string  `json:"player_id"`
	TeamID          string  `json:"team_id"`
	Position        string  `json:"position"`
	Rating          float64 `json:"rating"`
	Goals           int     `json:"goals"`
	Assists         int     `json:"assists"`
	MinutesPlayed   int     `json:"minutes_played"`
	YellowCards     int     `json:"yellow_cards"`
	RedCards        int     `json:"red_cards"`
	OwnGoals        int     `json:"own_goals"`
	Saves           int     `json:"saves"`
	GoalsConceded   int     `json:"goals_conceded"`
	PenaltiesSaved  int     `json:"penalties_saved"`
	PenaltiesMissed int     `json:"penalties_missed"`
	SubbedOn        bool    `json:"subbed_on"`
	SubbedOff       bool    `json:"subbed_off"`
	SentOff         bool    `json:"sent_off"`
}

type matchStateDTO struct {
	ID           string           `json:"id"`
	HomeTeam     teamDTO          `json:"home_team"`
	AwayTeam     teamDTO          `json:"away_team"`
	HomeScore    int              `json:"home_score"`
	AwayScore    int              `json:"away_score"`
	Status       string           `json:"status"`
	Minute       int              `json:"minute"`
	Finalized    bool             `json:"finalized"`
	Events       []eventDTO       `json:"events"`
	Performances []performanceDTO `json:"performances"`
}

type minuteDTO struct {
	MatchID string     `json:"match_id"`
	Events  []eventDTO `json:"events"`
}

type matchSummaryDTO struct {
	ID        string `json:"id"`
	HomeTeam  string `json:"home_team_id"`
	AwayTeam  string `json:"away_team_id"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Status    string `json:"status"`
	Minute    int    `json:"minute"`
	Finalized bool   `json:"finalized"`
}

type batchResultDTO struct {
	Index     int    `json:"index"`
	MatchID   string `json:"match_id,omitempty"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

type playerPointsDTO struct {
	PlayerID string `json:"player_id"`
	Points   int    `json:"points"`
}

type teamPlayerPointsDTO struct {
	PlayerID      string `json:"player_id"`
	IsCaptain     bool   `json:"is_captain"`
	IsViceCaptain bool   `json:"is_vice_captain"`
	Multiplier    int    `json:"multiplier"`
	BasePoints    int    `json:"base_points"`
	CountedPoints int    `json:"counted_points"`
}

type teamPointsDTO struct {
	TotalPoints int                   `json:"total_points"`
	Players     []teamPlayerPointsDTO `json:"players"`
}

type matchPlayerPointsDTO struct {
	PlayerID string                      `json:"player_id"`
	Points   int                         `json:"points"`
	Stats    scoring.GameweekPlayerStats `json:"stats"`
}

type matchPointsDTO struct {
	MatchID  string                 `json:"match_id"`
	LeagueID string                 `json:"league_id,omitempty"`
	Bonus    []scoring.BonusAward   `json:"bonus"`
	Players  []matchPlayerPointsDTO `json:"players"`
}

type leagueRulesDTO struct {
	LeagueID string        `json:"league_id"`
	Rules    scoring.Rules `json:"rules"`
}

type finalizedDTO struct {
	MatchID      string           `json:"match_id"`
	Performances []performanceDTO `json:"performances"`
}

func teamToDTO(item match.Team) teamDTO {
	players := make([]playerDTO, 0, len(item.Players))
	for _, p := range item.Players {
		players = append(players, playerDTO{
			ID:       p.ID,
			Name:     p.Name,
			Position: string(p.Position),
			Attributes: attributesDTO{
				Pace:      p.Attributes.Pace,
				Shooting:  p.Attributes.Shooting,
				Passing:   p.Attributes.Passing,
				Dribbling: p.Attributes.Dribbling,
				Defending: p.Attributes.Defending,
				Physical:  p.Attributes.Physical,
			},
		})
	}
	return teamDTO{ID: item.ID, Name: item.Name, Players: players}
}

func eventsToDTO(items []match.Event) []eventDTO {
	out := make([]eventDTO, 0, len(items))
	for _, ev := range items {
		out = append(out, eventDTO{
			Minute:         ev.Minute,
			Type:           string(ev.Type),
			TeamID:         ev.TeamID,
			PlayerID:       ev.PlayerID,
			AssistPlayerID: ev.AssistPlayerID,
			Detail:         ev.Detail,
		})
	}
	return out
}

func performancesToDTO(items []match.PlayerPerformance) []performanceDTO {
	out := make([]performanceDTO, 0, len(items))
	for _, perf := range items {
		out = append(out, performanceDTO{
			PlayerID:        perf.PlayerID,
			TeamID:          perf.TeamID,
			Position:        string(perf.Position),
			Rating:          perf.Rating,
			Goals:           perf.Goals,
			Assists:         perf.Assists,
			MinutesPlayed:   perf.MinutesPlayed,
			YellowCards:     perf.YellowCards,
			RedCards:        perf.RedCards,
			OwnGoals:        perf.OwnGoals,
			Saves:           perf.Saves,
			GoalsConceded:   perf.GoalsConceded,
			PenaltiesSaved:  perf.PenaltiesSaved,
			PenaltiesMissed: perf.PenaltiesMissed,
			SubbedOn:        perf.SubbedOn,
			SubbedOff:       perf.SubbedOff,
			SentOff:         perf.SentOff,
		})
	}
	return out
}

func matchStateToDTO(state match.State) matchStateDTO {
	home := teamDTO{ID: state.Home.ID, Name: state.Home.Name}
	away := teamDTO{ID: state.Away.ID, Name: state.Away.Name}
	return matchStateDTO{
		ID:           state.ID,
		HomeTeam:     home,
		AwayTeam:     away,
		HomeScore:    state.HomeScore,
		AwayScore:    state.AwayScore,
		Status:       string(state.Status),
		Minute:       state.Minute,
		Finalized:    state.Finalized,
		Events:       eventsToDTO(state.Events),
		Performances: performancesToDTO(state.OrderedPerformances()),
	}
}

func matchSummaryToDTO(item usecase.MatchSummary) matchSummaryDTO {
	return matchSummaryDTO{
		ID:        item.ID,
		HomeTeam:  item.HomeTeam,
		AwayTeam:  item.AwayTeam,
		HomeScore: item.HomeScore,
		AwayScore: item.AwayScore,
		Status:    string(item.Status),
		Minute:    item.Minute,
		Finalized: item.Finalized,
	}
}

func batchResultToDTO(item usecase.BatchResult) batchResultDTO {
	out := batchResultDTO{Index: item.Index, MatchID: item.MatchID}
	if item.Err != nil {
		out.Error = item.Err.Error()
		return out
	}
	out.HomeScore = item.State.HomeScore
	out.AwayScore = item.State.AwayScore
	out.Status = string(item.State.Status)
	return out
}

func teamPointsToDTO(item scoring.TeamGameweekPoints) teamPointsDTO {
	players := make([]teamPlayerPointsDTO, 0, len(item.Players))
	for _, p := range item.Players {
		players = append(players, teamPlayerPointsDTO{
			PlayerID:      p.PlayerID,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
			Multiplier:    p.Multiplier,
			BasePoints:    p.BasePoints,
			CountedPoints: p.CountedPoints,
		})
	}
	return teamPointsDTO{TotalPoints: item.TotalPoints, Players: players}
}

func matchPointsToDTO(item usecase.MatchPoints) matchPointsDTO {
	players := make([]matchPlayerPointsDTO, 0, len(item.Players))
	for _, p := range item.Players {
		players = append(players, matchPlayerPointsDTO{
			PlayerID: p.Stats.PlayerID,
			Points:   p.Points,
			Stats:    p.Stats,
		})
	}
	bonus := item.Bonus
	if bonus == nil {
		bonus = []scoring.BonusAward{}
	}
	return matchPointsDTO{
		MatchID:  item.MatchID,
		LeagueID: item.LeagueID,
		Bonus:    bonus,
		Players:  players,
	}
}
