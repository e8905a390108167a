package memory

import (
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/player"
)

const (
	TeamIDPersija = "idn-persija"
	TeamIDPersib  = "idn-persib"
)

func attrs(pace, shooting, passing, dribbling, defending, physical int) player.Attributes {
	return player.Attributes{
		Pace:      pace,
		Shooting:  shooting,
		Passing:   passing,
		Dribbling: dribbling,
		Defending: defending,
		Physical:  physical,
	}
}

// SeedTeams returns two full Liga 1 squads for local runs and tests.
func SeedTeams() []match.Team {
	return []match.Team{
		{
			ID:   TeamIDPersija,
			Name: "Persija Jakarta",
			Players: []player.Player{
				{ID: "idn-psj-01", Name: "Andritany Ardhiyasa", Position: player.PositionGoalkeeper, Attributes: attrs(45, 20, 55, 30, 78, 72)},
				{ID: "idn-psj-02", Name: "Hansamu Yama", Position: player.PositionDefender, Attributes: attrs(62, 35, 58, 50, 80, 82)},
				{ID: "idn-psj-03", Name: "Rizky Ridho", Position: player.PositionDefender, Attributes: attrs(68, 38, 64, 58, 81, 76)},
				{ID: "idn-psj-04", Name: "Ondrej Kudela", Position: player.PositionDefender, Attributes: attrs(55, 40, 66, 52, 79, 80)},
				{ID: "idn-psj-05", Name: "Firza Andika", Position: player.PositionDefender, Attributes: attrs(80, 45, 68, 70, 70, 64)},
				{ID: "idn-psj-06", Name: "Maciej Gajos", Position: player.PositionMidfielder, Attributes: attrs(66, 72, 84, 78, 58, 66)},
				{ID: "idn-psj-07", Name: "Syahrian Abimanyu", Position: player.PositionMidfielder, Attributes: attrs(70, 60, 74, 72, 66, 70)},
				{ID: "idn-psj-08", Name: "Hanif Sjahbandi", Position: player.PositionMidfielder, Attributes: attrs(64, 55, 70, 64, 72, 74)},
				{ID: "idn-psj-09", Name: "Witan Sulaeman", Position: player.PositionForward, Attributes: attrs(86, 70, 72, 84, 38, 58)},
				{ID: "idn-psj-10", Name: "Gustavo Almeida", Position: player.PositionForward, Attributes: attrs(74, 82, 64, 72, 35, 80)},
				{ID: "idn-psj-11", Name: "Marko Simic", Position: player.PositionForward, Attributes: attrs(62, 84, 60, 66, 32, 84)},
				{ID: "idn-psj-12", Name: "Dony Tri Pamungkas", Position: player.PositionDefender, Attributes: attrs(74, 36, 60, 62, 68, 66)},
				{ID: "idn-psj-13", Name: "Rayhan Hannan", Position: player.PositionMidfielder, Attributes: attrs(78, 62, 68, 76, 48, 58)},
				{ID: "idn-psj-14", Name: "Aji Kusuma", Position: player.PositionForward, Attributes: attrs(80, 66, 58, 70, 30, 62)},
			},
		},
		{
			ID:   TeamIDPersib,
			Name: "Persib Bandung",
			Players: []player.Player{
				{ID: "idn-psb-01", Name: "Teja Paku Alam", Position: player.PositionGoalkeeper, Attributes: attrs(48, 18, 52, 28, 76, 74)},
				{ID: "idn-psb-02", Name: "Nick Kuipers", Position: player.PositionDefender, Attributes: attrs(58, 42, 62, 50, 84, 86)},
				{ID: "idn-psb-03", Name: "Alberto Rodriguez", Position: player.PositionDefender, Attributes: attrs(60, 40, 64, 54, 82, 80)},
				{ID: "idn-psb-04", Name: "Henhen Herdiana", Position: player.PositionDefender, Attributes: attrs(72, 34, 60, 58, 72, 68)},
				{ID: "idn-psb-05", Name: "Kakang Rudianto", Position: player.PositionDefender, Attributes: attrs(70, 30, 58, 56, 76, 72)},
				{ID: "idn-psb-06", Name: "Marc Klok", Position: player.PositionMidfielder, Attributes: attrs(64, 74, 86, 76, 64, 72)},
				{ID: "idn-psb-07", Name: "Dedi Kusnandar", Position: player.PositionMidfielder, Attributes: attrs(60, 58, 74, 66, 74, 76)},
				{ID: "idn-psb-08", Name: "Beckham Putra", Position: player.PositionMidfielder, Attributes: attrs(82, 68, 72, 82, 44, 58)},
				{ID: "idn-psb-09", Name: "Ciro Alves", Position: player.PositionForward, Attributes: attrs(84, 76, 70, 86, 36, 62)},
				{ID: "idn-psb-10", Name: "David da Silva", Position: player.PositionForward, Attributes: attrs(66, 86, 62, 70, 34, 82)},
				{ID: "idn-psb-11", Name: "Ezra Walian", Position: player.PositionForward, Attributes: attrs(76, 74, 66, 74, 30, 66)},
				{ID: "idn-psb-12", Name: "Kevin Ray Mendoza", Position: player.PositionGoalkeeper, Attributes: attrs(46, 16, 50, 26, 70, 70)},
				{ID: "idn-psb-13", Name: "Ryan Kurnia", Position: player.PositionMidfielder, Attributes: attrs(80, 60, 64, 72, 46, 60)},
				{ID: "idn-psb-14", Name: "Frets Butuan", Position: player.PositionForward, Attributes: attrs(88, 64, 56, 74, 28, 60)},
			},
		},
	}
}
