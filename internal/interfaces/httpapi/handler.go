package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchsim/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type Handler struct {
	simulationService *usecase.SimulationService
	scoringService    *usecase.ScoringService
	sampleTeams       map[string]match.Team
	sampleTeamOrder   []string
	logger            *logging.Logger
	validator         *validator.Validate
}

// NewHandler wires the HTTP surface. sampleTeams can be referenced by id when
// starting a simulation instead of sending a full roster.
func NewHandler(
	simulationService *usecase.SimulationService,
	scoringService *usecase.ScoringService,
	sampleTeams []match.Team,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	teams := make(map[string]match.Team, len(sampleTeams))
	order := make([]string, 0, len(sampleTeams))
	for _, item := range sampleTeams {
		if _, exists := teams[item.ID]; exists {
			continue
		}
		teams[item.ID] = item
		order = append(order, item.ID)
	}

	return &Handler{
		simulationService: simulationService,
		scoringService:    scoringService,
		sampleTeams:       teams,
		sampleTeamOrder:   order,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListSampleTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSampleTeams")
	defer span.End()

	out := make([]teamDTO, 0, len(h.sampleTeamOrder))
	for _, teamID := range h.sampleTeamOrder {
		out = append(out, teamToDTO(h.sampleTeams[teamID]))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.decodeRequest")
	defer span.End()

	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return h.validateRequest(ctx, dst)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) resolveTeam(ref string, payload *teamRequest) (match.Team, error) {
	if payload != nil {
		return payload.toDomain(), nil
	}

	ref = strings.TrimSpace(ref)
	item, ok := h.sampleTeams[ref]
	if !ok {
		return match.Team{}, fmt.Errorf("%w: team=%s", usecase.ErrNotFound, ref)
	}
	return item, nil
}
