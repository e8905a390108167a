package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/scoring"
	qb "github.com/riskibarqy/fantasy-matchsim/internal/platform/querybuilder"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/resilience"
)

type ScoringRulesRepository struct {
	db      *sqlx.DB
	breaker *resilience.CircuitBreaker
}

func NewScoringRulesRepository(db *sqlx.DB, breaker *resilience.CircuitBreaker) *ScoringRulesRepository {
	return &ScoringRulesRepository{db: db, breaker: breaker}
}

func (r *ScoringRulesRepository) GetLeagueRules(ctx context.Context, leagueID string) (scoring.Rules, bool, error) {
	query, args, err := qb.Select("*").
		From("scoring_rules").
		Where(qb.Eq("league_id", leagueID)).
		ToSQL()
	if err != nil {
		return scoring.Rules{}, false, fmt.Errorf("build get scoring rules query: %w", err)
	}

	var row scoringRulesTableModel
	err = guard(ctx, r.breaker, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &row, query, args...)
	})
	if err != nil {
		if isNotFound(err) {
			return scoring.Rules{}, false, nil
		}
		return scoring.Rules{}, false, fmt.Errorf("get scoring rules: %w", err)
	}

	rules := scoring.DefaultRules()
	if err := sonic.UnmarshalString(row.Rules, &rules); err != nil {
		return scoring.Rules{}, false, fmt.Errorf("decode scoring rules for league %s: %w", leagueID, err)
	}
	return rules, true, nil
}

func (r *ScoringRulesRepository) UpsertLeagueRules(ctx context.Context, leagueID string, rules scoring.Rules) error {
	encoded, err := sonic.MarshalString(rules)
	if err != nil {
		return fmt.Errorf("encode scoring rules: %w", err)
	}

	query, args, err := qb.InsertModel("scoring_rules", scoringRulesInsertModel{
		LeagueID: leagueID,
		Rules:    encoded,
	}, `ON CONFLICT (league_id)
DO UPDATE SET
    rules = EXCLUDED.rules,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert scoring rules query: %w", err)
	}

	return guard(ctx, r.breaker, func(ctx context.Context) error {
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert scoring rules: %w", err)
		}
		return nil
	})
}
