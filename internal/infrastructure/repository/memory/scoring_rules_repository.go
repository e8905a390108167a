package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/scoring"
)

type ScoringRulesRepository struct {
	mu    sync.RWMutex
	items map[string]scoring.Rules
}

// NewScoringRulesRepository optionally seeds overrides, e.g. from scoring.DecodeLeagueRules.
func NewScoringRulesRepository(seed map[string]scoring.Rules) *ScoringRulesRepository {
	items := make(map[string]scoring.Rules, len(seed))
	for leagueID, rules := range seed {
		items[leagueID] = rules.Clone()
	}
	return &ScoringRulesRepository{items: items}
}

func (r *ScoringRulesRepository) GetLeagueRules(_ context.Context, leagueID string) (scoring.Rules, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[leagueID]
	if !ok {
		return scoring.Rules{}, false, nil
	}
	return item.Clone(), true, nil
}

func (r *ScoringRulesRepository) UpsertLeagueRules(_ context.Context, leagueID string, rules scoring.Rules) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[leagueID] = rules.Clone()
	return nil
}
