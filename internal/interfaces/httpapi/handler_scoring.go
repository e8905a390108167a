package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/scoring"
	"github.com/riskibarqy/fantasy-matchsim/internal/usecase"
)

func (h *Handler) CalculatePlayerPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CalculatePlayerPoints")
	defer span.End()

	var req playerPointsRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	stats := req.Stats.toDomain()
	points, err := h.scoringService.CalculatePlayerPoints(ctx, req.LeagueID, stats)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerPointsDTO{PlayerID: stats.PlayerID, Points: points})
}

func (h *Handler) CalculateTeamGameweekPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CalculateTeamGameweekPoints")
	defer span.End()

	var req teamPointsRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	roster := make([]string, 0, len(req.Roster))
	for _, playerID := range req.Roster {
		roster = append(roster, strings.TrimSpace(playerID))
	}

	out, err := h.scoringService.CalculateTeamGameweekPoints(ctx, usecase.TeamPointsInput{
		LeagueID: req.LeagueID,
		Roster:   roster,
		Stats:    statsToDomain(req.Stats),
		Captaincy: scoring.Captaincy{
			CaptainID:     strings.TrimSpace(req.CaptainID),
			ViceCaptainID: strings.TrimSpace(req.ViceCaptainID),
		},
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamPointsToDTO(out))
}

func (h *Handler) AssignBonusPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AssignBonusPoints")
	defer span.End()

	var req bonusRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	awards, err := h.scoringService.AssignBonusPoints(ctx, statsToDomain(req.Stats))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if awards == nil {
		awards = []scoring.BonusAward{}
	}

	writeSuccess(ctx, w, http.StatusOK, awards)
}

func (h *Handler) GetLeagueRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueRules")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rules, err := h.scoringService.ResolveRules(ctx, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueRulesDTO{LeagueID: leagueID, Rules: rules})
}

func (h *Handler) UpsertLeagueRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertLeagueRules")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rules := scoring.DefaultRules()
	if err := h.decodeRequest(ctx, w, r, &rules); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.scoringService.UpsertLeagueRules(ctx, leagueID, rules); err != nil {
		h.logger.WarnContext(ctx, "upsert league rules failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueRulesDTO{LeagueID: leagueID, Rules: rules})
}
