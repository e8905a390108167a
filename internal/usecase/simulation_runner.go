package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const (
	defaultTickInterval = time.Second
	// A full match needs FullTime steps; the margin covers ticks that raced a cancel.
	defaultMaxPolls = match.FullTime + 30
)

type RunnerConfig struct {
	TickInterval time.Duration
	MaxPolls     int
	Concurrency  int
}

type TickReport struct {
	Stepped   int
	Completed int
	Abandoned int
	Failed    int
}

// SimulationRunner drives live matches one minute per tick. Matches registered
// without Live stay under caller control.
type SimulationRunner struct {
	service *SimulationService
	cfg     RunnerConfig
	logger  *logging.Logger

	mu    sync.Mutex
	polls map[string]int
}

func NewSimulationRunner(service *SimulationService, cfg RunnerConfig, logger *logging.Logger) *SimulationRunner {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = defaultMaxPolls
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultSimulationWorkers
	}

	return &SimulationRunner{
		service: service,
		cfg:     cfg,
		logger:  logger,
		polls:   make(map[string]int),
	}
}

// Run ticks until ctx is done.
func (r *SimulationRunner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "simulation runner started",
		"tick_interval", r.cfg.TickInterval.String(),
		"max_polls", r.cfg.MaxPolls,
	)
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(context.WithoutCancel(ctx), "simulation runner stopped")
			return nil
		case <-ticker.C:
			report, err := r.Tick(ctx)
			if err != nil {
				r.logger.WarnContext(ctx, "simulation tick failed", "error", err)
				continue
			}
			if report.Completed > 0 || report.Abandoned > 0 || report.Failed > 0 {
				r.logger.InfoContext(ctx, "simulation tick",
					"stepped", report.Stepped,
					"completed", report.Completed,
					"abandoned", report.Abandoned,
					"failed", report.Failed,
				)
			}
		}
	}
}

// Tick steps every in-progress match once. Completed matches are finalized and
// released, matches still running after MaxPolls ticks are abandoned, and
// runner-driven matches whose finalize failed are retried.
func (r *SimulationRunner) Tick(ctx context.Context) (TickReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SimulationRunner.Tick")
	defer span.End()

	summaries, err := r.service.ListMatches(ctx)
	if err != nil {
		return TickReport{}, err
	}

	live := make(map[string]struct{}, len(summaries))
	var (
		reportMu sync.Mutex
		report   TickReport
	)
	record := func(fn func(*TickReport)) {
		reportMu.Lock()
		fn(&report)
		reportMu.Unlock()
	}
	finish := func(matchID string) {
		if err := r.finish(ctx, matchID); err != nil {
			r.logger.WarnContext(ctx, "finalize match failed", "match_id", matchID, "error", err)
			record(func(t *TickReport) { t.Failed++ })
			return
		}
		record(func(t *TickReport) { t.Completed++ })
	}

	p := pool.New().WithMaxGoroutines(r.cfg.Concurrency)
	for _, item := range summaries {
		switch item.Status {
		case match.StatusInProgress:
		case match.StatusCompleted:
			// Only matches this runner drove; caller-stepped matches stay with the caller.
			if !r.tracked(item.ID) {
				continue
			}
			live[item.ID] = struct{}{}
			p.Go(func() { finish(item.ID) })
			continue
		default:
			continue
		}
		live[item.ID] = struct{}{}

		polls := r.nextPoll(item.ID)
		if polls > r.cfg.MaxPolls {
			p.Go(func() {
				if err := r.service.CancelMatch(ctx, item.ID); err != nil && !errors.Is(err, ErrNotFound) {
					r.logger.WarnContext(ctx, "abandon match failed", "match_id", item.ID, "error", err)
					record(func(t *TickReport) { t.Failed++ })
					return
				}
				r.logger.WarnContext(ctx, "match abandoned", "match_id", item.ID, "polls", polls-1)
				record(func(t *TickReport) { t.Abandoned++ })
			})
			continue
		}

		p.Go(func() {
			if _, err := r.service.SimulateMinute(ctx, item.ID); err != nil {
				if !errors.Is(err, ErrNotFound) {
					r.logger.WarnContext(ctx, "simulate minute failed", "match_id", item.ID, "error", err)
					record(func(t *TickReport) { t.Failed++ })
				}
				return
			}
			record(func(t *TickReport) { t.Stepped++ })

			state, err := r.service.GetMatchState(ctx, item.ID)
			if err != nil || state.Status != match.StatusCompleted {
				return
			}
			finish(item.ID)
		})
	}
	p.Wait()

	r.forgetFinished(live)
	return report, nil
}

// finish stores the result and removes the session. The session stays
// registered when finalize fails so the next tick retries it.
func (r *SimulationRunner) finish(ctx context.Context, matchID string) error {
	if _, err := r.service.FinalizePlayerRatings(ctx, matchID); err != nil {
		return err
	}
	return r.service.releaseSession(ctx, matchID)
}

func (r *SimulationRunner) tracked(matchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.polls[matchID]
	return ok
}

func (r *SimulationRunner) nextPoll(matchID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.polls[matchID]++
	return r.polls[matchID]
}

func (r *SimulationRunner) forgetFinished(live map[string]struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for matchID := range r.polls {
		if _, ok := live[matchID]; !ok {
			delete(r.polls, matchID)
		}
	}
}
