package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
)

type MatchResultRepository struct {
	mu    sync.RWMutex
	items map[string]match.Result
}

func NewMatchResultRepository() *MatchResultRepository {
	return &MatchResultRepository{items: make(map[string]match.Result)}
}

func (r *MatchResultRepository) SaveResult(_ context.Context, result match.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[result.State.ID] = cloneResult(result)
	return nil
}

func (r *MatchResultRepository) GetResult(_ context.Context, matchID string) (match.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[matchID]
	if !ok {
		return match.Result{}, false, nil
	}
	return cloneResult(item), true, nil
}

func cloneResult(item match.Result) match.Result {
	copied := item
	copied.State = item.State.Clone()
	copied.Performances = append([]match.PlayerPerformance(nil), item.Performances...)
	return copied
}
