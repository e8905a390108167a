package memory

import (
	"context"
	"sort"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
)

type session struct {
	mu      sync.Mutex
	engine  *match.Engine
	removed bool
}

// MatchSessionRepository is the in-process registry of running simulations.
// The map lock only guards membership; each session has its own lock so
// different matches step in parallel.
type MatchSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewMatchSessionRepository() *MatchSessionRepository {
	return &MatchSessionRepository{sessions: make(map[string]*session)}
}

func (r *MatchSessionRepository) Create(_ context.Context, engine *match.Engine) error {
	if engine == nil {
		return crerr.New("engine is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[engine.ID()]; exists {
		return crerr.Wrapf(match.ErrDuplicateMatch, "match %s", engine.ID())
	}
	r.sessions[engine.ID()] = &session{engine: engine}
	return nil
}

func (r *MatchSessionRepository) With(ctx context.Context, matchID string, fn func(engine *match.Engine) error) error {
	r.mu.RLock()
	item, ok := r.sessions[matchID]
	r.mu.RUnlock()
	if !ok {
		return crerr.Wrapf(match.ErrUnknownMatch, "match %s", matchID)
	}

	item.mu.Lock()
	defer item.mu.Unlock()

	if item.removed {
		return crerr.Wrapf(match.ErrUnknownMatch, "match %s", matchID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(item.engine)
}

func (r *MatchSessionRepository) Delete(_ context.Context, matchID string) error {
	r.mu.Lock()
	item, ok := r.sessions[matchID]
	if ok {
		delete(r.sessions, matchID)
	}
	r.mu.Unlock()
	if !ok {
		return crerr.Wrapf(match.ErrUnknownMatch, "match %s", matchID)
	}

	item.mu.Lock()
	item.removed = true
	item.mu.Unlock()
	return nil
}

func (r *MatchSessionRepository) ListIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
