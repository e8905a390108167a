package player

import "testing"

func TestPlayerValidate(t *testing.T) {
	valid := Player{
		ID:       "p1",
		Name:     "Marselino Ferdinan",
		Position: PositionMidfielder,
		Attributes: Attributes{
			Pace: 70, Shooting: 65, Passing: 78, Dribbling: 80, Defending: 40, Physical: 55,
		},
	}

	tests := []struct {
		name    string
		mutate  func(*Player)
		wantErr bool
	}{
		{name: "valid", mutate: func(_ *Player) {}},
		{name: "missing id", mutate: func(p *Player) { p.ID = " " }, wantErr: true},
		{name: "unknown position", mutate: func(p *Player) { p.Position = "CB" }, wantErr: true},
		{name: "attribute below range", mutate: func(p *Player) { p.Attributes.Pace = 0 }, wantErr: true},
		{name: "attribute above range", mutate: func(p *Player) { p.Attributes.Physical = 101 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid
			tt.mutate(&item)
			err := item.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestNormalizePosition(t *testing.T) {
	tests := map[string]Position{
		"Goalkeeper":  PositionGoalkeeper,
		"centre-back": PositionDefender,
		" winger ":    PositionMidfielder,
		"STRIKER":     PositionForward,
	}
	for in, want := range tests {
		got, ok := NormalizePosition(in)
		if !ok || got != want {
			t.Fatalf("NormalizePosition(%q)=%q,%v want=%q", in, got, ok, want)
		}
	}
	if _, ok := NormalizePosition("coach"); ok {
		t.Fatalf("expected unknown label to be rejected")
	}
}
