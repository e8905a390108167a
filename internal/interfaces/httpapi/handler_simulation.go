package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-matchsim/internal/usecase"
)

func (h *Handler) startInput(req startMatchRequest) (usecase.StartMatchInput, error) {
	home, err := h.resolveTeam(req.HomeTeamID, req.Home)
	if err != nil {
		return usecase.StartMatchInput{}, err
	}
	away, err := h.resolveTeam(req.AwayTeamID, req.Away)
	if err != nil {
		return usecase.StartMatchInput{}, err
	}

	return usecase.StartMatchInput{
		Home: home,
		Away: away,
		Seed: req.Seed,
		Live: req.Live,
	}, nil
}

func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartMatch")
	defer span.End()

	var req startMatchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	input, err := h.startInput(req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	state, err := h.simulationService.StartMatch(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "start match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchStateToDTO(state))
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	items, err := h.simulationService.ListMatches(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]matchSummaryDTO, 0, len(items))
	for _, item := range items {
		out = append(out, matchSummaryToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetMatchState(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchState")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	state, err := h.simulationService.GetMatchState(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchStateToDTO(state))
}

func (h *Handler) SimulateMinute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SimulateMinute")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	events, err := h.simulationService.SimulateMinute(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, minuteDTO{MatchID: matchID, Events: eventsToDTO(events)})
}

func (h *Handler) RunToCompletion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunToCompletion")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	state, err := h.simulationService.RunToCompletion(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchStateToDTO(state))
}

func (h *Handler) FinalizePlayerRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizePlayerRatings")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	performances, err := h.simulationService.FinalizePlayerRatings(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize ratings failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalizedDTO{
		MatchID:      matchID,
		Performances: performancesToDTO(performances),
	})
}

func (h *Handler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	if err := h.simulationService.CancelMatch(ctx, matchID); err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SimulateBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SimulateBatch")
	defer span.End()

	var req simulateBatchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	fixtures := make([]usecase.StartMatchInput, 0, len(req.Fixtures))
	for _, item := range req.Fixtures {
		input, err := h.startInput(item)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		fixtures = append(fixtures, input)
	}

	results, err := h.simulationService.SimulateBatch(ctx, fixtures)
	if err != nil {
		h.logger.ErrorContext(ctx, "simulate batch failed", "fixtures", len(fixtures), "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]batchResultDTO, 0, len(results))
	for _, item := range results {
		out = append(out, batchResultToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ScoreMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScoreMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	leagueID := strings.TrimSpace(r.URL.Query().Get("league_id"))
	points, err := h.scoringService.ScoreMatch(ctx, matchID, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchPointsToDTO(points))
}
