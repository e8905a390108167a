package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/fantasy-matchsim/internal/mocks/domain/match"
	idgen "github.com/riskibarqy/fantasy-matchsim/internal/platform/id"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

type sequenceIDGenerator struct {
	next atomic.Int64
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("m_%03d", g.next.Add(1)), nil
}

var (
	_ idgen.Generator = staticIDGenerator{}
	_ idgen.Generator = (*sequenceIDGenerator)(nil)
)

func seededFixture(seed int64) StartMatchInput {
	teams := memory.SeedTeams()
	return StartMatchInput{Home: teams[0], Away: teams[1], Seed: &seed}
}

func newTestSimulationService(idGen idgen.Generator, results match.ResultRepository) (*SimulationService, *memory.MatchSessionRepository) {
	sessions := memory.NewMatchSessionRepository()
	service := NewSimulationService(sessions, results, idGen, SimulationConfig{WorkerCount: 2}, logging.NewNop())
	return service, sessions
}

func TestSimulationService_StepToFullTimeThenFinalize(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	results := memory.NewMatchResultRepository()
	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, results)
	finalizedAt := time.Date(2026, 3, 1, 20, 45, 0, 0, time.UTC)
	service.now = func() time.Time { return finalizedAt }

	state, err := service.StartMatch(ctx, seededFixture(9))
	require.NoError(t, err)
	if state.Status != match.StatusNotStarted {
		t.Fatalf("unexpected status: got=%s want=%s", state.Status, match.StatusNotStarted)
	}

	var events []match.Event
	for i := 0; i < match.FullTime; i++ {
		minuteEvents, err := service.SimulateMinute(ctx, "m_001")
		require.NoError(t, err)
		events = append(events, minuteEvents...)
	}

	extra, err := service.SimulateMinute(ctx, "m_001")
	require.NoError(t, err)
	if len(extra) != 0 {
		t.Fatalf("expected no events after full time, got %d", len(extra))
	}

	state, err = service.GetMatchState(ctx, "m_001")
	require.NoError(t, err)
	if state.Status != match.StatusCompleted {
		t.Fatalf("unexpected status: got=%s want=%s", state.Status, match.StatusCompleted)
	}
	if len(state.Events) != len(events) {
		t.Fatalf("unexpected event count: got=%d want=%d", len(state.Events), len(events))
	}

	performances, err := service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)
	require.NotEmpty(t, performances)

	stored, ok, err := results.GetResult(ctx, "m_001")
	require.NoError(t, err)
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if !stored.FinalizedAt.Equal(finalizedAt) {
		t.Fatalf("unexpected finalized at: got=%s want=%s", stored.FinalizedAt, finalizedAt)
	}
	if len(stored.Performances) != len(performances) {
		t.Fatalf("unexpected stored performances: got=%d want=%d", len(stored.Performances), len(performances))
	}
}

func TestSimulationService_ErrorsMapToUsecaseSentinels(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, memory.NewMatchResultRepository())

	_, err := service.SimulateMinute(ctx, "missing")
	if !errors.Is(err, ErrNotFound) || !errors.Is(err, match.ErrUnknownMatch) {
		t.Fatalf("expected not found wrapping unknown match, got %v", err)
	}

	_, err = service.SimulateMinute(ctx, "  ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got %v", err)
	}

	short := seededFixture(1)
	short.Home.Players = short.Home.Players[:match.MinSquadSize-1]
	_, err = service.StartMatch(ctx, short)
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, match.ErrInvalidRoster) {
		t.Fatalf("expected invalid input wrapping invalid roster, got %v", err)
	}

	_, err = service.StartMatch(ctx, seededFixture(1))
	require.NoError(t, err)
	_, err = service.StartMatch(ctx, seededFixture(1))
	if !errors.Is(err, ErrConflict) || !errors.Is(err, match.ErrDuplicateMatch) {
		t.Fatalf("expected conflict for duplicate id, got %v", err)
	}

	_, err = service.FinalizePlayerRatings(ctx, "m_001")
	if !errors.Is(err, ErrConflict) || !errors.Is(err, match.ErrInvalidState) {
		t.Fatalf("expected conflict before full time, got %v", err)
	}
}

func TestSimulationService_FinalizeStoresResultOnceUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	results := matchmock.NewResultRepository(t)
	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, results)

	results.
		On("GetResult", mock.Anything, "m_001").
		Return(match.Result{}, false, nil).
		Once()
	results.
		On("SaveResult", mock.Anything, mock.MatchedBy(func(v match.Result) bool {
			return v.State.ID == "m_001" && v.State.Finalized && len(v.Performances) > 0
		})).
		Return(nil).
		Once()
	results.
		On("GetResult", mock.Anything, "m_001").
		Return(match.Result{State: match.State{ID: "m_001"}}, true, nil).
		Once()

	_, err := service.StartMatch(ctx, seededFixture(4))
	require.NoError(t, err)
	_, err = service.RunToCompletion(ctx, "m_001")
	require.NoError(t, err)

	first, err := service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)
	second, err := service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSimulationService_FinalizeRetriesFailedSave(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	results := matchmock.NewResultRepository(t)
	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, results)
	publisher := &recordingPublisher{}
	service.WithResultPublisher(publisher)

	results.
		On("GetResult", mock.Anything, "m_001").
		Return(match.Result{}, false, nil).
		Twice()
	results.
		On("SaveResult", mock.MatchedBy(func(v context.Context) bool { return v != nil }), mock.Anything).
		Return(errors.New("db down")).
		Once()
	results.
		On("SaveResult", mock.Anything, mock.MatchedBy(func(v match.Result) bool {
			return v.State.ID == "m_001" && v.State.Finalized
		})).
		Return(nil).
		Once()

	_, err := service.StartMatch(ctx, seededFixture(4))
	require.NoError(t, err)
	_, err = service.RunToCompletion(ctx, "m_001")
	require.NoError(t, err)

	_, err = service.FinalizePlayerRatings(ctx, "m_001")
	require.Error(t, err)
	require.Empty(t, publisher.results, "nothing is published before the result is stored")

	performances, err := service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)
	require.NotEmpty(t, performances)
	require.Len(t, publisher.results, 1)
}

func TestSimulationService_FinalizeSkipsSaveWhenResultExists(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	results := memory.NewMatchResultRepository()
	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, results)

	_, err := service.StartMatch(ctx, seededFixture(4))
	require.NoError(t, err)
	_, err = service.RunToCompletion(ctx, "m_001")
	require.NoError(t, err)

	_, err = service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)
	first, ok, err := results.GetResult(ctx, "m_001")
	require.NoError(t, err)
	require.True(t, ok)

	service.now = func() time.Time { return first.FinalizedAt.Add(time.Hour) }
	_, err = service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)

	second, _, err := results.GetResult(ctx, "m_001")
	require.NoError(t, err)
	if !second.FinalizedAt.Equal(first.FinalizedAt) {
		t.Fatalf("stored result was overwritten: got=%s want=%s", second.FinalizedAt, first.FinalizedAt)
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	results []match.Result
	err     error
}

func (p *recordingPublisher) PublishResult(_ context.Context, result match.Result) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = append(p.results, result)
	return p.err
}

func TestSimulationService_PublishesResultOnFirstFinalize(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	publisher := &recordingPublisher{err: errors.New("qstash down")}
	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, memory.NewMatchResultRepository())
	service.WithResultPublisher(publisher)

	_, err := service.StartMatch(ctx, seededFixture(8))
	require.NoError(t, err)
	_, err = service.RunToCompletion(ctx, "m_001")
	require.NoError(t, err)

	_, err = service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err, "publish failure must not fail finalization")
	_, err = service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)

	require.Len(t, publisher.results, 1)
	require.Equal(t, "m_001", publisher.results[0].State.ID)
	require.True(t, publisher.results[0].State.Finalized)
}

func TestSimulationService_CancelFallsBackToStoredResult(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, memory.NewMatchResultRepository())

	_, err := service.StartMatch(ctx, seededFixture(2))
	require.NoError(t, err)
	final, err := service.RunToCompletion(ctx, "m_001")
	require.NoError(t, err)
	_, err = service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)

	require.NoError(t, service.CancelMatch(ctx, "m_001"))
	if err := service.CancelMatch(ctx, "m_001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second cancel, got %v", err)
	}

	state, err := service.GetMatchState(ctx, "m_001")
	require.NoError(t, err)
	if state.HomeScore != final.HomeScore || state.AwayScore != final.AwayScore {
		t.Fatalf("unexpected stored score: got=%d-%d want=%d-%d", state.HomeScore, state.AwayScore, final.HomeScore, final.AwayScore)
	}

	performances, err := service.FinalizePlayerRatings(ctx, "m_001")
	require.NoError(t, err)
	require.NotEmpty(t, performances)

	if _, err := service.SimulateMinute(ctx, "m_001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cancelled match to reject steps, got %v", err)
	}
}

func TestSimulationService_ListMatches(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	service, _ := newTestSimulationService(&sequenceIDGenerator{}, nil)

	live := seededFixture(3)
	live.Live = true
	_, err := service.StartMatch(ctx, live)
	require.NoError(t, err)
	_, err = service.StartMatch(ctx, seededFixture(3))
	require.NoError(t, err)

	got, err := service.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	if got[0].ID != "m_001" || got[0].Status != match.StatusInProgress {
		t.Fatalf("unexpected first summary: %+v", got[0])
	}
	if got[1].ID != "m_002" || got[1].Status != match.StatusNotStarted {
		t.Fatalf("unexpected second summary: %+v", got[1])
	}
	if got[0].HomeTeam != memory.TeamIDPersija || got[0].AwayTeam != memory.TeamIDPersib {
		t.Fatalf("unexpected teams: %s vs %s", got[0].HomeTeam, got[0].AwayTeam)
	}
}

func TestSimulationService_ConcurrentStepsAreSerialized(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, nil)
	_, err := service.StartMatch(ctx, seededFixture(5))
	require.NoError(t, err)

	const steps = 60
	var wg sync.WaitGroup
	for i := 0; i < steps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.SimulateMinute(ctx, "m_001"); err != nil {
				t.Errorf("simulate minute: %v", err)
			}
		}()
	}
	wg.Wait()

	state, err := service.GetMatchState(ctx, "m_001")
	require.NoError(t, err)
	if state.Minute != steps {
		t.Fatalf("unexpected minute: got=%d want=%d", state.Minute, steps)
	}
}

func TestSimulationService_ServiceSeedIsReproducible(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	teams := memory.SeedTeams()
	run := func() match.State {
		sessions := memory.NewMatchSessionRepository()
		service := NewSimulationService(sessions, nil, staticIDGenerator{id: "m_001"}, SimulationConfig{Seed: 77}, logging.NewNop())
		_, err := service.StartMatch(ctx, StartMatchInput{Home: teams[0], Away: teams[1]})
		require.NoError(t, err)
		state, err := service.RunToCompletion(ctx, "m_001")
		require.NoError(t, err)
		return state
	}

	first := run()
	second := run()
	require.Equal(t, first.Events, second.Events)
}

func TestSimulationService_SimulateBatch(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	results := memory.NewMatchResultRepository()
	service, sessions := newTestSimulationService(&sequenceIDGenerator{}, results)

	invalid := seededFixture(1)
	invalid.Away = invalid.Home
	fixtures := []StartMatchInput{seededFixture(1), seededFixture(2), invalid, seededFixture(3)}

	got, err := service.SimulateBatch(ctx, fixtures)
	require.NoError(t, err)
	require.Len(t, got, len(fixtures))

	for idx, item := range got {
		if item.Index != idx {
			t.Fatalf("unexpected batch order: got=%d want=%d", item.Index, idx)
		}
		if idx == 2 {
			if !errors.Is(item.Err, ErrInvalidInput) {
				t.Fatalf("expected invalid fixture to fail with ErrInvalidInput, got %v", item.Err)
			}
			continue
		}
		require.NoError(t, item.Err)
		if item.State.Status != match.StatusCompleted || !item.State.Finalized {
			t.Fatalf("fixture %d not finalized: status=%s finalized=%t", idx, item.State.Status, item.State.Finalized)
		}
		if _, ok, _ := results.GetResult(ctx, item.MatchID); !ok {
			t.Fatalf("expected stored result for %s", item.MatchID)
		}
	}

	ids, err := sessions.ListIDs(ctx)
	require.NoError(t, err)
	if len(ids) != 0 {
		t.Fatalf("expected batch sessions to be removed, got %v", ids)
	}

	if _, err := service.SimulateBatch(ctx, nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty batch, got %v", err)
	}
}
