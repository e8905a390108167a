package postgres

import "time"

type matchResultTableModel struct {
	MatchID      string    `db:"match_id"`
	HomeTeamID   string    `db:"home_team_id"`
	AwayTeamID   string    `db:"away_team_id"`
	HomeScore    int       `db:"home_score"`
	AwayScore    int       `db:"away_score"`
	Status       string    `db:"status"`
	Minute       int       `db:"minute"`
	State        string    `db:"state"`
	Performances string    `db:"performances"`
	FinalizedAt  int64     `db:"finalized_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type matchResultInsertModel struct {
	MatchID      string `db:"match_id"`
	HomeTeamID   string `db:"home_team_id"`
	AwayTeamID   string `db:"away_team_id"`
	HomeScore    int    `db:"home_score"`
	AwayScore    int    `db:"away_score"`
	Status       string `db:"status"`
	Minute       int    `db:"minute"`
	State        string `db:"state"`
	Performances string `db:"performances"`
	FinalizedAt  int64  `db:"finalized_at"`
}

type scoringRulesTableModel struct {
	LeagueID  string    `db:"league_id"`
	Rules     string    `db:"rules"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type scoringRulesInsertModel struct {
	LeagueID string `db:"league_id"`
	Rules    string `db:"rules"`
}
