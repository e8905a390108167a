package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/fantasy-matchsim/internal/domain/scoring"
	basecache "github.com/riskibarqy/fantasy-matchsim/internal/platform/cache"
)

type cachedRules struct {
	value  scoring.Rules
	exists bool
}

// ScoringRulesRepository caches league rule lookups, including misses, and
// drops the entry on write.
type ScoringRulesRepository struct {
	next  scoring.RulesRepository
	cache *basecache.Store[cachedRules]
}

func NewScoringRulesRepository(next scoring.RulesRepository, ttl time.Duration) *ScoringRulesRepository {
	return &ScoringRulesRepository{next: next, cache: basecache.NewStore[cachedRules](ttl)}
}

func (r *ScoringRulesRepository) GetLeagueRules(ctx context.Context, leagueID string) (scoring.Rules, bool, error) {
	cached, err := r.cache.GetOrLoad(ctx, rulesKey(leagueID), func(ctx context.Context) (cachedRules, error) {
		item, exists, err := r.next.GetLeagueRules(ctx, leagueID)
		if err != nil {
			return cachedRules{}, err
		}
		return cachedRules{value: item, exists: exists}, nil
	})
	if err != nil {
		return scoring.Rules{}, false, err
	}
	if !cached.exists {
		return scoring.Rules{}, false, nil
	}
	return cached.value.Clone(), true, nil
}

func (r *ScoringRulesRepository) UpsertLeagueRules(ctx context.Context, leagueID string, rules scoring.Rules) error {
	if err := r.next.UpsertLeagueRules(ctx, leagueID, rules); err != nil {
		return err
	}
	r.cache.Delete(ctx, rulesKey(leagueID))
	return nil
}

func rulesKey(leagueID string) string {
	return "scoring-rules:league:" + leagueID
}
