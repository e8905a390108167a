package scoring

import (
	"errors"
	"testing"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/player"
)

func TestCalculatePlayerPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats GameweekPlayerStats
		want  int
	}{
		{
			name: "goalkeeper clean sheet with saves and penalty save",
			stats: GameweekPlayerStats{
				PlayerID: "gk", Position: player.PositionGoalkeeper,
				MinutesPlayed: 90, CleanSheets: 1, Saves: 6, PenaltiesSaved: 1,
			},
			want: 13,
		},
		{
			name: "forward brace and assist with yellow",
			stats: GameweekPlayerStats{
				PlayerID: "fwd", Position: player.PositionForward,
				MinutesPlayed: 90, GoalsScored: 2, Assists: 1, YellowCards: 1,
			},
			want: 12,
		},
		{
			name: "clean sheet ignored for cameo",
			stats: GameweekPlayerStats{
				PlayerID: "def", Position: player.PositionDefender,
				MinutesPlayed: 15, CleanSheets: 1,
			},
			want: 1,
		},
		{
			name: "defender concedes per two",
			stats: GameweekPlayerStats{
				PlayerID: "def", Position: player.PositionDefender,
				MinutesPlayed: 90, GoalsConceded: 5,
			},
			want: 0,
		},
		{
			name: "midfielder goal and bonus",
			stats: GameweekPlayerStats{
				PlayerID: "mid", Position: player.PositionMidfielder,
				MinutesPlayed: 70, GoalsScored: 1, CleanSheets: 1, Bonus: 3,
			},
			want: 11,
		},
		{
			name: "floored at zero",
			stats: GameweekPlayerStats{
				PlayerID: "mid", Position: player.PositionMidfielder,
				MinutesPlayed: 30, RedCards: 1, OwnGoals: 2, PenaltiesMissed: 1,
			},
			want: 0,
		},
		{
			name:  "did not play",
			stats: GameweekPlayerStats{PlayerID: "bench", Position: player.PositionForward},
			want:  0,
		},
		{
			name: "saves only count for goalkeepers",
			stats: GameweekPlayerStats{
				PlayerID: "def", Position: player.PositionDefender,
				MinutesPlayed: 90, Saves: 6, PenaltiesSaved: 1,
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculatePlayerPoints(tt.stats, DefaultRules())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected points: got=%d want=%d", got, tt.want)
			}

			again, _ := CalculatePlayerPoints(tt.stats, DefaultRules())
			if again != got {
				t.Fatalf("points not stable: first=%d second=%d", got, again)
			}
		})
	}
}

func TestCleanSheetGatingAllPositions(t *testing.T) {
	t.Parallel()

	for position := range player.AllPositions {
		withSheet := GameweekPlayerStats{PlayerID: "p", Position: position, MinutesPlayed: 15, CleanSheets: 1}
		withoutSheet := withSheet
		withoutSheet.CleanSheets = 0

		a, err := CalculatePlayerPoints(withSheet, DefaultRules())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := CalculatePlayerPoints(withoutSheet, DefaultRules())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != b {
			t.Fatalf("position %s: clean sheet counted for 15 minutes: with=%d without=%d", position, a, b)
		}
	}
}

func TestCalculatePlayerPointsRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	valid := GameweekPlayerStats{PlayerID: "p1", Position: player.PositionMidfielder, MinutesPlayed: 90}

	brokenRules := DefaultRules()
	brokenRules.YellowCard = 2
	if _, err := CalculatePlayerPoints(valid, brokenRules); !errors.Is(err, ErrInvalidRules) {
		t.Fatalf("expected ErrInvalidRules, got %v", err)
	}

	missingPosition := DefaultRules()
	delete(missingPosition.Positions, player.PositionForward)
	if _, err := CalculatePlayerPoints(valid, missingPosition); !errors.Is(err, ErrInvalidRules) {
		t.Fatalf("expected ErrInvalidRules for missing position, got %v", err)
	}

	negative := valid
	negative.Saves = -1
	if _, err := CalculatePlayerPoints(negative, DefaultRules()); !errors.Is(err, ErrInvalidStats) {
		t.Fatalf("expected ErrInvalidStats, got %v", err)
	}

	unknown := valid
	unknown.Position = "CB"
	if _, err := CalculatePlayerPoints(unknown, DefaultRules()); !errors.Is(err, ErrInvalidStats) {
		t.Fatalf("expected ErrInvalidStats for position, got %v", err)
	}
}

func TestCalculateTeamGameweekPoints(t *testing.T) {
	t.Parallel()

	roster := []string{"c", "v", "o1", "o2"}
	stats := map[string]GameweekPlayerStats{
		"c":  {PlayerID: "c", Position: player.PositionForward, MinutesPlayed: 90, GoalsScored: 1},
		"v":  {PlayerID: "v", Position: player.PositionForward, MinutesPlayed: 90, GoalsScored: 1, Assists: 1},
		"o1": {PlayerID: "o1", Position: player.PositionMidfielder, MinutesPlayed: 90},
		"o2": {PlayerID: "o2", Position: player.PositionDefender, MinutesPlayed: 20},
	}

	tests := []struct {
		name      string
		stats     func() map[string]GameweekPlayerStats
		captaincy Captaincy
		want      int
	}{
		{
			name:      "captain played",
			stats:     func() map[string]GameweekPlayerStats { return stats },
			captaincy: Captaincy{CaptainID: "c", ViceCaptainID: "v"},
			// others 2+1, captain 6 doubled
			want: 15,
		},
		{
			name: "captain did not play falls back to vice",
			stats: func() map[string]GameweekPlayerStats {
				out := make(map[string]GameweekPlayerStats, len(stats))
				for id, item := range stats {
					out[id] = item
				}
				delete(out, "c")
				out["v"] = GameweekPlayerStats{PlayerID: "v", Position: player.PositionForward, MinutesPlayed: 90, GoalsScored: 1, Assists: 1}
				return out
			},
			captaincy: Captaincy{CaptainID: "c", ViceCaptainID: "v"},
			// others 2+1, vice 9 doubled
			want: 21,
		},
		{
			name: "captain blank without vice",
			stats: func() map[string]GameweekPlayerStats {
				out := map[string]GameweekPlayerStats{"o1": stats["o1"]}
				return out
			},
			captaincy: Captaincy{CaptainID: "c"},
			want:      2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateTeamGameweekPoints(roster, tt.stats(), tt.captaincy, DefaultRules())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected team points: got=%d want=%d", got, tt.want)
			}
		})
	}
}

func TestCaptainZeroUsesDoubleVice(t *testing.T) {
	t.Parallel()

	roster := []string{"c", "v"}
	stats := map[string]GameweekPlayerStats{
		// vice: appearance 1 + sixty 1 + assist 3 + bonus 3 = 8
		"v": {PlayerID: "v", Position: player.PositionMidfielder, MinutesPlayed: 90, Assists: 1, Bonus: 3},
	}

	breakdown, err := CalculateTeamGameweekBreakdown(roster, stats, Captaincy{CaptainID: "c", ViceCaptainID: "v"}, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.TotalPoints != 16 {
		t.Fatalf("unexpected total: got=%d want=16", breakdown.TotalPoints)
	}
	for _, item := range breakdown.Players {
		if item.PlayerID == "v" && item.Multiplier != 2 {
			t.Fatalf("unexpected vice multiplier: got=%d want=2", item.Multiplier)
		}
		if item.PlayerID == "c" && item.CountedPoints != 0 {
			t.Fatalf("unexpected captain points: got=%d want=0", item.CountedPoints)
		}
	}
}

func TestCaptaincyValidate(t *testing.T) {
	t.Parallel()

	roster := []string{"a", "b", "c"}
	tests := []struct {
		name      string
		captaincy Captaincy
		wantErr   bool
	}{
		{name: "valid", captaincy: Captaincy{CaptainID: "a", ViceCaptainID: "b"}},
		{name: "no vice", captaincy: Captaincy{CaptainID: "a"}},
		{name: "missing captain", captaincy: Captaincy{ViceCaptainID: "b"}, wantErr: true},
		{name: "same player", captaincy: Captaincy{CaptainID: "a", ViceCaptainID: "a"}, wantErr: true},
		{name: "captain outside roster", captaincy: Captaincy{CaptainID: "z"}, wantErr: true},
		{name: "vice outside roster", captaincy: Captaincy{CaptainID: "a", ViceCaptainID: "z"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.captaincy.Validate(roster)
			if tt.wantErr && !errors.Is(err, ErrInvalidCaptaincy) {
				t.Fatalf("expected ErrInvalidCaptaincy, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}
