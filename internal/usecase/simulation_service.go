package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	idgen "github.com/riskibarqy/fantasy-matchsim/internal/platform/id"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

const defaultSimulationWorkers = 4

// StartMatchInput is the incoming payload for registering a simulation.
type StartMatchInput struct {
	Home match.Team
	Away match.Team
	// Seed pins the random source. Nil derives one from the service seed.
	Seed *int64
	// Live starts the match immediately so the runner drives it.
	Live bool
}

type SimulationConfig struct {
	WorkerCount int
	// Seed makes match randomness reproducible per match id. Zero means random.
	Seed int64
}

type MatchSummary struct {
	ID        string
	HomeTeam  string
	AwayTeam  string
	HomeScore int
	AwayScore int
	Status    match.Status
	Minute    int
	Finalized bool
}

// ResultPublisher notifies downstream consumers about a newly finalized match.
type ResultPublisher interface {
	PublishResult(ctx context.Context, result match.Result) error
}

type BatchResult struct {
	Index        int
	MatchID      string
	State        match.State
	Performances []match.PlayerPerformance
	Err          error
}

type SimulationService struct {
	sessions  match.SessionStore
	results   match.ResultRepository
	idGen     idgen.Generator
	cfg       SimulationConfig
	publisher ResultPublisher
	logger    *logging.Logger
	now       func() time.Time
}

func NewSimulationService(
	sessions match.SessionStore,
	results match.ResultRepository,
	idGen idgen.Generator,
	cfg SimulationConfig,
	logger *logging.Logger,
) *SimulationService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultSimulationWorkers
	}

	return &SimulationService{
		sessions: sessions,
		results:  results,
		idGen:    idGen,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SimulationService) StartMatch(ctx context.Context, input StartMatchInput) (match.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.StartMatch")
	defer span.End()

	matchID, err := s.idGen.NewID()
	if err != nil {
		return match.State{}, fmt.Errorf("generate match id: %w", err)
	}
	span.SetAttributes(attribute.String("match.id", matchID))

	engine, err := match.NewEngine(matchID, input.Home, input.Away, s.engineOptions(matchID, input.Seed)...)
	if err != nil {
		return match.State{}, mapMatchError(err)
	}
	if input.Live {
		if err := engine.Start(); err != nil {
			return match.State{}, mapMatchError(err)
		}
	}
	if err := s.sessions.Create(ctx, engine); err != nil {
		return match.State{}, mapMatchError(err)
	}

	s.logger.InfoContext(ctx, "match registered",
		"match_id", matchID,
		"home_team", input.Home.ID,
		"away_team", input.Away.ID,
		"live", input.Live,
	)
	return engine.State(), nil
}

func (s *SimulationService) engineOptions(matchID string, seed *int64) []match.Option {
	switch {
	case seed != nil:
		return []match.Option{match.WithSeed(*seed)}
	case s.cfg.Seed != 0:
		h := fnv.New64a()
		_, _ = h.Write([]byte(matchID))
		return []match.Option{match.WithSeed(s.cfg.Seed ^ int64(h.Sum64()))}
	default:
		return nil
	}
}

// SimulateMinute advances one match by one minute and returns the events of that minute.
func (s *SimulationService) SimulateMinute(ctx context.Context, matchID string) ([]match.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.SimulateMinute")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	var (
		events    []match.Event
		completed bool
	)
	err := s.sessions.With(ctx, matchID, func(engine *match.Engine) error {
		before := engine.Status()
		events = engine.SimulateMinute()
		completed = before != match.StatusCompleted && engine.Status() == match.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, mapMatchError(err)
	}

	if completed {
		s.logger.InfoContext(ctx, "match completed", "match_id", matchID)
	}
	return events, nil
}

// GetMatchState returns the registered match, or the stored result once the
// session has been removed.
func (s *SimulationService) GetMatchState(ctx context.Context, matchID string) (match.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.GetMatchState")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.State{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	var state match.State
	err := s.sessions.With(ctx, matchID, func(engine *match.Engine) error {
		state = engine.State()
		return nil
	})
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, match.ErrUnknownMatch) || s.results == nil {
		return match.State{}, mapMatchError(err)
	}

	result, ok, resultErr := s.results.GetResult(ctx, matchID)
	if resultErr != nil {
		return match.State{}, mapMatchError(resultErr)
	}
	if !ok {
		return match.State{}, mapMatchError(err)
	}
	return result.State, nil
}

// FinalizePlayerRatings freezes ratings of a completed match. The first call
// also stores the result.
func (s *SimulationService) FinalizePlayerRatings(ctx context.Context, matchID string) ([]match.PlayerPerformance, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.FinalizePlayerRatings")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	var (
		performances []match.PlayerPerformance
		stored       *match.Result
	)
	err := s.sessions.With(ctx, matchID, func(engine *match.Engine) error {
		out, err := engine.FinalizePlayerRatings()
		if err != nil {
			return err
		}
		performances = out

		// A failed save leaves the engine finalized; persistence is checked on every call.
		result, saved, err := s.persistResult(ctx, engine.State(), out)
		if err != nil {
			return err
		}
		if saved {
			stored = &result
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, match.ErrUnknownMatch) {
			return s.storedPerformances(ctx, matchID, err)
		}
		return nil, mapMatchError(err)
	}

	if stored != nil {
		s.logger.InfoContext(ctx, "match finalized",
			"match_id", matchID,
			"home_score", stored.State.HomeScore,
			"away_score", stored.State.AwayScore,
			"players", len(performances),
		)
		s.publishResult(ctx, *stored)
	}

	return performances, nil
}

// persistResult saves the finalized match unless a result already exists.
// Callers hold the session lock.
func (s *SimulationService) persistResult(ctx context.Context, state match.State, performances []match.PlayerPerformance) (match.Result, bool, error) {
	if s.results == nil {
		return match.Result{}, false, nil
	}

	_, exists, err := s.results.GetResult(ctx, state.ID)
	if err != nil {
		return match.Result{}, false, fmt.Errorf("load result for match=%s: %w", state.ID, mapMatchError(err))
	}
	if exists {
		return match.Result{}, false, nil
	}

	result := match.Result{
		State:        state,
		Performances: performances,
		FinalizedAt:  s.now().UTC(),
	}
	if err := s.results.SaveResult(ctx, result); err != nil {
		return match.Result{}, false, fmt.Errorf("save result for match=%s: %w", state.ID, mapMatchError(err))
	}
	return result, true, nil
}

// WithResultPublisher attaches a publisher that receives each result once it is stored.
func (s *SimulationService) WithResultPublisher(publisher ResultPublisher) *SimulationService {
	s.publisher = publisher
	return s
}

// publishResult is best effort; the stored result stays authoritative.
func (s *SimulationService) publishResult(ctx context.Context, result match.Result) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishResult(ctx, result); err != nil {
		s.logger.WarnContext(ctx, "publish match result failed", "match_id", result.State.ID, "error", err)
	}
}

func (s *SimulationService) storedPerformances(ctx context.Context, matchID string, cause error) ([]match.PlayerPerformance, error) {
	if s.results == nil {
		return nil, mapMatchError(cause)
	}
	result, ok, err := s.results.GetResult(ctx, matchID)
	if err != nil {
		return nil, mapMatchError(err)
	}
	if !ok {
		return nil, mapMatchError(cause)
	}
	return result.Performances, nil
}

// CancelMatch removes a match from the registry. Stored results are kept.
func (s *SimulationService) CancelMatch(ctx context.Context, matchID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.CancelMatch")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if err := s.sessions.Delete(ctx, matchID); err != nil {
		return mapMatchError(err)
	}

	s.logger.InfoContext(ctx, "match cancelled", "match_id", matchID)
	return nil
}

// releaseSession drops a finished match from the registry. Reads fall back to
// the stored result afterwards.
func (s *SimulationService) releaseSession(ctx context.Context, matchID string) error {
	if err := s.sessions.Delete(ctx, matchID); err != nil && !errors.Is(err, match.ErrUnknownMatch) {
		return err
	}
	return nil
}

func (s *SimulationService) ListMatches(ctx context.Context) ([]MatchSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.ListMatches")
	defer span.End()

	ids, err := s.sessions.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list match ids: %w", err)
	}

	out := make([]MatchSummary, 0, len(ids))
	for _, matchID := range ids {
		var item MatchSummary
		err := s.sessions.With(ctx, matchID, func(engine *match.Engine) error {
			item = summarize(engine.State())
			return nil
		})
		if errors.Is(err, match.ErrUnknownMatch) {
			// Cancelled between listing and reading.
			continue
		}
		if err != nil {
			return nil, mapMatchError(err)
		}
		out = append(out, item)
	}

	return out, nil
}

func summarize(state match.State) MatchSummary {
	return MatchSummary{
		ID:        state.ID,
		HomeTeam:  state.Home.ID,
		AwayTeam:  state.Away.ID,
		HomeScore: state.HomeScore,
		AwayScore: state.AwayScore,
		Status:    state.Status,
		Minute:    state.Minute,
		Finalized: state.Finalized,
	}
}

// RunToCompletion steps a match until full time inside one registry lock.
func (s *SimulationService) RunToCompletion(ctx context.Context, matchID string) (match.State, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.RunToCompletion")
	defer span.End()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.State{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	var state match.State
	err := s.sessions.With(ctx, matchID, func(engine *match.Engine) error {
		for engine.Status() != match.StatusCompleted {
			if err := ctx.Err(); err != nil {
				return err
			}
			engine.SimulateMinute()
		}
		state = engine.State()
		return nil
	})
	if err != nil {
		return match.State{}, mapMatchError(err)
	}

	return state, nil
}

// SimulateBatch runs independent fixtures to completion on a worker pool and
// finalizes each one. Finished sessions are removed from the registry; their
// results stay available through GetMatchState.
func (s *SimulationService) SimulateBatch(ctx context.Context, fixtures []StartMatchInput) ([]BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationService.SimulateBatch")
	defer span.End()

	if len(fixtures) == 0 {
		return nil, fmt.Errorf("%w: at least one fixture is required", ErrInvalidInput)
	}

	workerCount := min(s.cfg.WorkerCount, len(fixtures))
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		workers     sync.WaitGroup
		failedCount atomic.Int32
	)
	resultCh := make(chan BatchResult, len(fixtures))

	for idx, fixture := range fixtures {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			item := s.simulateFixture(ctx, idx, fixture)
			if item.Err != nil {
				failedCount.Add(1)
			}
			resultCh <- item
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(resultCh)

	out := make([]BatchResult, 0, len(fixtures))
	for item := range resultCh {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Index < out[j].Index
	})

	s.logger.InfoContext(ctx, "batch simulation finished",
		"fixtures", len(fixtures),
		"failed", failedCount.Load(),
		"workers", workerCount,
	)
	return out, nil
}

func (s *SimulationService) simulateFixture(ctx context.Context, idx int, fixture StartMatchInput) BatchResult {
	out := BatchResult{Index: idx}

	state, err := s.StartMatch(ctx, fixture)
	if err != nil {
		out.Err = err
		return out
	}
	out.MatchID = state.ID
	defer func() {
		if err := s.releaseSession(context.WithoutCancel(ctx), out.MatchID); err != nil {
			s.logger.WarnContext(ctx, "remove batch session failed", "match_id", out.MatchID, "error", err)
		}
	}()

	if _, err := s.RunToCompletion(ctx, out.MatchID); err != nil {
		out.Err = err
		return out
	}
	performances, err := s.FinalizePlayerRatings(ctx, out.MatchID)
	if err != nil {
		out.Err = err
		return out
	}

	finalState, err := s.GetMatchState(ctx, out.MatchID)
	if err != nil {
		out.Err = err
		return out
	}
	out.State = finalState
	out.Performances = performances
	return out
}

func mapMatchError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict), errors.Is(err, ErrDependencyUnavailable):
		return err
	case errors.Is(err, match.ErrUnknownMatch):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, match.ErrInvalidRoster):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, match.ErrInvalidState), errors.Is(err, match.ErrDuplicateMatch):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: %w", ErrDependencyUnavailable, err)
	default:
		return err
	}
}
