package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fantasy-matchsim/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/fantasy-matchsim/internal/platform/id"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchsim/internal/usecase"
)

type envelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	simulation := usecase.NewSimulationService(
		memory.NewMatchSessionRepository(),
		memory.NewMatchResultRepository(),
		idgen.NewNanoIDGenerator("m", 10),
		usecase.SimulationConfig{WorkerCount: 2, Seed: 99},
		logger,
	)
	scoringService := usecase.NewScoringService(memory.NewScoringRulesRepository(nil), simulation, 2, logger)
	handler := NewHandler(simulation, scoringService, memory.SeedTeams(), logger)
	return NewRouter(handler, logger, []string{"*"})
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var out envelope[T]
	if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response body: %v (body=%s)", err, rec.Body.String())
	}
	return out
}

func TestHandler_SimulationLifecycle(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/simulations",
		`{"home_team_id":"idn-persija","away_team_id":"idn-persib","seed":12}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	started := decodeBody[matchStateDTO](t, rec)
	matchID := started.Data.ID
	if !strings.HasPrefix(matchID, "m_") {
		t.Fatalf("unexpected match id: %q", matchID)
	}
	if started.Data.Status != "not_started" {
		t.Fatalf("unexpected status: got=%s want=not_started", started.Data.Status)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/simulations/"+matchID+"/finalize", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected conflict before full time, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/simulations/"+matchID+"/minutes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected minute status: got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/simulations/"+matchID+"/run", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected run status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	finished := decodeBody[matchStateDTO](t, rec)
	if finished.Data.Status != "completed" || finished.Data.Minute != 90 {
		t.Fatalf("unexpected final state: status=%s minute=%d", finished.Data.Status, finished.Data.Minute)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/simulations/"+matchID+"/finalize", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected finalize status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	finalized := decodeBody[finalizedDTO](t, rec)
	if len(finalized.Data.Performances) == 0 {
		t.Fatalf("expected performances after finalize")
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/simulations/"+matchID+"/points?league_id=idn-liga-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected points status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	points := decodeBody[matchPointsDTO](t, rec)
	if len(points.Data.Players) != len(finalized.Data.Performances) {
		t.Fatalf("unexpected scored players: got=%d want=%d", len(points.Data.Players), len(finalized.Data.Performances))
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/simulations/"+matchID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected cancel status: got=%d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodPost, "/v1/simulations/"+matchID+"/minutes", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected not found after cancel, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/simulations/"+matchID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected stored result after cancel, got %d", rec.Code)
	}
}

func TestHandler_StartMatchValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "malformed json", body: `{"home_team_id":`, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"home_team_id":"idn-persija","away_team_id":"idn-persib","extra":1}`, status: http.StatusBadRequest},
		{name: "missing away", body: `{"home_team_id":"idn-persija"}`, status: http.StatusBadRequest},
		{name: "unknown sample team", body: `{"home_team_id":"idn-persija","away_team_id":"nope"}`, status: http.StatusNotFound},
		{name: "same team twice", body: `{"home_team_id":"idn-persija","away_team_id":"idn-persija"}`, status: http.StatusBadRequest},
		{
			name: "short roster",
			body: `{"home_team_id":"idn-persija","away":{"id":"tiny","name":"Tiny FC","players":[
				{"id":"t1","name":"One","position":"GK","attributes":{"pace":50,"shooting":50,"passing":50,"dribbling":50,"defending":50,"physical":50}}
			]}}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/v1/simulations", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, tt.status, rec.Body.String())
			}
			body := decodeBody[any](t, rec)
			if body.Error == nil {
				t.Fatalf("expected error envelope")
			}
		})
	}
}

func TestHandler_SimulateBatch(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/v1/simulations/batch", `{"fixtures":[
		{"home_team_id":"idn-persija","away_team_id":"idn-persib","seed":1},
		{"home_team_id":"idn-persib","away_team_id":"idn-persija","seed":2}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}

	body := decodeBody[[]batchResultDTO](t, rec)
	if len(body.Data) != 2 {
		t.Fatalf("unexpected batch size: got=%d want=2", len(body.Data))
	}
	for _, item := range body.Data {
		if item.Error != "" || item.Status != "completed" {
			t.Fatalf("unexpected batch item: %+v", item)
		}
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/simulations", "")
	list := decodeBody[[]matchSummaryDTO](t, rec)
	if len(list.Data) != 0 {
		t.Fatalf("expected batch sessions to be released, got %d", len(list.Data))
	}
}

func TestHandler_ScoringEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/v1/scoring/player-points",
		`{"stats":{"player_id":"fwd-1","position":"FWD","minutes_played":90,"goals_scored":2}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	player := decodeBody[playerPointsDTO](t, rec)
	if player.Data.Points != 10 {
		t.Fatalf("unexpected points: got=%d want=10", player.Data.Points)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/scoring/team-points", `{
		"roster":["fwd-1","def-1"],
		"stats":[
			{"player_id":"fwd-1","position":"FWD","minutes_played":90,"goals_scored":2},
			{"player_id":"def-1","position":"DEF","minutes_played":90,"clean_sheets":1}
		],
		"captain_id":"fwd-1",
		"vice_captain_id":"def-1"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	team := decodeBody[teamPointsDTO](t, rec)
	if team.Data.TotalPoints != 20 {
		t.Fatalf("unexpected team total: got=%d want=20", team.Data.TotalPoints)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/scoring/team-points",
		`{"roster":["fwd-1"],"stats":[],"captain_id":"fwd-1","vice_captain_id":"fwd-1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request for same captain and vice, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/scoring/bonus", `{"stats":[
		{"player_id":"a","position":"FWD","minutes_played":90,"goals_scored":1},
		{"player_id":"b","position":"MID","minutes_played":90,"assists":1},
		{"player_id":"c","position":"DEF","minutes_played":10,"yellow_cards":1}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	bonus := decodeBody[[]struct {
		PlayerID string `json:"player_id"`
		Bonus    int    `json:"bonus"`
	}](t, rec)
	if len(bonus.Data) == 0 || bonus.Data[0].PlayerID != "a" || bonus.Data[0].Bonus != 3 {
		t.Fatalf("unexpected bonus awards: %+v", bonus.Data)
	}
}

func TestHandler_LeagueRules(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/v1/scoring/leagues/idn-liga-1/rules", `{"assist":4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/scoring/leagues/idn-liga-1/rules", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	got := decodeBody[leagueRulesDTO](t, rec)
	if got.Data.Rules.Assist != 4 || got.Data.Rules.YellowCard != -1 {
		t.Fatalf("unexpected rules: assist=%d yellow=%d", got.Data.Rules.Assist, got.Data.Rules.YellowCard)
	}

	rec = doRequest(t, router, http.MethodPut, "/v1/scoring/leagues/idn-liga-1/rules", `{"red_card":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected bad request for positive red card, got %d", rec.Code)
	}
}

func TestHandler_HealthzAndTeams(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected healthz status: %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/teams", "")
	teams := decodeBody[[]teamDTO](t, rec)
	if len(teams.Data) != 2 || teams.Data[0].ID != memory.TeamIDPersija {
		t.Fatalf("unexpected sample teams: %+v", teams.Data)
	}
}
