package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/stretchr/testify/require"
)

func TestSimulationRunner_TickDrivesLiveMatchesOnly(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	results := memory.NewMatchResultRepository()
	service, sessions := newTestSimulationService(&sequenceIDGenerator{}, results)
	runner := NewSimulationRunner(service, RunnerConfig{TickInterval: time.Millisecond}, logging.NewNop())

	live := seededFixture(8)
	live.Live = true
	_, err := service.StartMatch(ctx, live)
	require.NoError(t, err)
	_, err = service.StartMatch(ctx, seededFixture(8))
	require.NoError(t, err)

	completed := 0
	for i := 0; i < match.FullTime; i++ {
		report, err := runner.Tick(ctx)
		require.NoError(t, err)
		if report.Stepped != 1 {
			t.Fatalf("tick %d: unexpected stepped count: got=%d want=1", i, report.Stepped)
		}
		completed += report.Completed
	}
	if completed != 1 {
		t.Fatalf("unexpected completed count: got=%d want=1", completed)
	}

	state, err := service.GetMatchState(ctx, "m_001")
	require.NoError(t, err)
	if state.Status != match.StatusCompleted || !state.Finalized {
		t.Fatalf("expected live match to be finalized, got status=%s finalized=%t", state.Status, state.Finalized)
	}
	if _, ok, _ := results.GetResult(ctx, "m_001"); !ok {
		t.Fatalf("expected runner to store the result")
	}

	ids, err := sessions.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"m_002"}, ids, "finished live match should leave the registry")

	idle, err := service.GetMatchState(ctx, "m_002")
	require.NoError(t, err)
	if idle.Minute != 0 {
		t.Fatalf("expected non-live match to stay at minute 0, got %d", idle.Minute)
	}

	report, err := runner.Tick(ctx)
	require.NoError(t, err)
	if report.Stepped != 0 {
		t.Fatalf("expected nothing to step after completion, got %d", report.Stepped)
	}
}

type flakyResultRepository struct {
	*memory.MatchResultRepository
	failures atomic.Int32
}

func (r *flakyResultRepository) SaveResult(ctx context.Context, result match.Result) error {
	if r.failures.Add(-1) >= 0 {
		return errors.New("db down")
	}
	return r.MatchResultRepository.SaveResult(ctx, result)
}

func TestSimulationRunner_RetriesFailedFinalize(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	results := &flakyResultRepository{MatchResultRepository: memory.NewMatchResultRepository()}
	results.failures.Store(1)
	service, sessions := newTestSimulationService(staticIDGenerator{id: "m_001"}, results)
	runner := NewSimulationRunner(service, RunnerConfig{TickInterval: time.Millisecond}, logging.NewNop())

	live := seededFixture(8)
	live.Live = true
	_, err := service.StartMatch(ctx, live)
	require.NoError(t, err)

	var failed int
	for i := 0; i < match.FullTime; i++ {
		report, err := runner.Tick(ctx)
		require.NoError(t, err)
		failed += report.Failed
	}
	if failed != 1 {
		t.Fatalf("unexpected failed count: got=%d want=1", failed)
	}
	ids, err := sessions.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"m_001"}, ids, "session must survive a failed finalize")

	report, err := runner.Tick(ctx)
	require.NoError(t, err)
	if report.Completed != 1 || report.Stepped != 0 {
		t.Fatalf("unexpected retry report: %+v", report)
	}
	if _, ok, _ := results.GetResult(ctx, "m_001"); !ok {
		t.Fatalf("expected retry to store the result")
	}
	ids, err = sessions.ListIDs(ctx)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestSimulationRunner_LeavesCallerSteppedMatches(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	service, sessions := newTestSimulationService(staticIDGenerator{id: "m_001"}, memory.NewMatchResultRepository())
	runner := NewSimulationRunner(service, RunnerConfig{TickInterval: time.Millisecond}, logging.NewNop())

	_, err := service.StartMatch(ctx, seededFixture(8))
	require.NoError(t, err)
	_, err = service.RunToCompletion(ctx, "m_001")
	require.NoError(t, err)

	report, err := runner.Tick(ctx)
	require.NoError(t, err)
	if report.Completed != 0 {
		t.Fatalf("runner finalized a caller-controlled match: %+v", report)
	}
	ids, err := sessions.ListIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"m_001"}, ids)
}

func TestSimulationRunner_AbandonsAfterMaxPolls(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	service, sessions := newTestSimulationService(staticIDGenerator{id: "m_001"}, nil)
	runner := NewSimulationRunner(service, RunnerConfig{MaxPolls: 3}, logging.NewNop())

	live := seededFixture(8)
	live.Live = true
	_, err := service.StartMatch(ctx, live)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := runner.Tick(ctx)
		require.NoError(t, err)
	}
	report, err := runner.Tick(ctx)
	require.NoError(t, err)
	if report.Abandoned != 1 {
		t.Fatalf("unexpected abandoned count: got=%d want=1", report.Abandoned)
	}

	ids, err := sessions.ListIDs(ctx)
	require.NoError(t, err)
	if len(ids) != 0 {
		t.Fatalf("expected abandoned match to be removed, got %v", ids)
	}
}

func TestSimulationRunner_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	service, _ := newTestSimulationService(staticIDGenerator{id: "m_001"}, nil)
	runner := NewSimulationRunner(service, RunnerConfig{TickInterval: time.Millisecond}, logging.NewNop())

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
}
