package scoring

import "context"

// RulesRepository stores league specific overrides of DefaultRules.
type RulesRepository interface {
	GetLeagueRules(ctx context.Context, leagueID string) (Rules, bool, error)
	UpsertLeagueRules(ctx context.Context, leagueID string, rules Rules) error
}
