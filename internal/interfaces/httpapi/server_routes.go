package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /v1/teams", handler.ListSampleTeams)
}

func registerSimulationRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/simulations", handler.ListMatches)
	mux.HandleFunc("POST /v1/simulations", handler.StartMatch)
	mux.HandleFunc("POST /v1/simulations/batch", handler.SimulateBatch)
	mux.HandleFunc("GET /v1/simulations/{matchID}", handler.GetMatchState)
	mux.HandleFunc("DELETE /v1/simulations/{matchID}", handler.CancelMatch)
	mux.HandleFunc("POST /v1/simulations/{matchID}/minutes", handler.SimulateMinute)
	mux.HandleFunc("POST /v1/simulations/{matchID}/run", handler.RunToCompletion)
	mux.HandleFunc("POST /v1/simulations/{matchID}/finalize", handler.FinalizePlayerRatings)
	mux.HandleFunc("GET /v1/simulations/{matchID}/points", handler.ScoreMatch)
}

func registerScoringRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/scoring/player-points", handler.CalculatePlayerPoints)
	mux.HandleFunc("POST /v1/scoring/team-points", handler.CalculateTeamGameweekPoints)
	mux.HandleFunc("POST /v1/scoring/bonus", handler.AssignBonusPoints)
	mux.HandleFunc("GET /v1/scoring/leagues/{leagueID}/rules", handler.GetLeagueRules)
	mux.HandleFunc("PUT /v1/scoring/leagues/{leagueID}/rules", handler.UpsertLeagueRules)
}
