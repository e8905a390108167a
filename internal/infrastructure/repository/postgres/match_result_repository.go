package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/match"
	qb "github.com/riskibarqy/fantasy-matchsim/internal/platform/querybuilder"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/resilience"
)

type MatchResultRepository struct {
	db      *sqlx.DB
	breaker *resilience.CircuitBreaker
}

func NewMatchResultRepository(db *sqlx.DB, breaker *resilience.CircuitBreaker) *MatchResultRepository {
	return &MatchResultRepository{db: db, breaker: breaker}
}

func (r *MatchResultRepository) SaveResult(ctx context.Context, result match.Result) error {
	state, err := sonic.MarshalString(result.State)
	if err != nil {
		return fmt.Errorf("encode match state: %w", err)
	}
	perfs, err := sonic.MarshalString(result.Performances)
	if err != nil {
		return fmt.Errorf("encode match performances: %w", err)
	}

	insertModel := matchResultInsertModel{
		MatchID:      result.State.ID,
		HomeTeamID:   result.State.Home.ID,
		AwayTeamID:   result.State.Away.ID,
		HomeScore:    result.State.HomeScore,
		AwayScore:    result.State.AwayScore,
		Status:       string(result.State.Status),
		Minute:       result.State.Minute,
		State:        state,
		Performances: perfs,
		FinalizedAt:  result.FinalizedAt.UTC().UnixMilli(),
	}
	query, args, err := qb.InsertModel("match_results", insertModel, `ON CONFLICT (match_id)
DO UPDATE SET
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    minute = EXCLUDED.minute,
    state = EXCLUDED.state,
    performances = EXCLUDED.performances,
    finalized_at = EXCLUDED.finalized_at,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build save match result query: %w", err)
	}

	return guard(ctx, r.breaker, func(ctx context.Context) error {
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save match result: %w", err)
		}
		return nil
	})
}

func (r *MatchResultRepository) GetResult(ctx context.Context, matchID string) (match.Result, bool, error) {
	query, args, err := qb.Select("*").
		From("match_results").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Result{}, false, fmt.Errorf("build get match result query: %w", err)
	}

	var row matchResultTableModel
	err = guard(ctx, r.breaker, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &row, query, args...)
	})
	if err != nil {
		if isNotFound(err) {
			return match.Result{}, false, nil
		}
		return match.Result{}, false, fmt.Errorf("get match result: %w", err)
	}

	result, err := matchResultFromRow(row)
	if err != nil {
		return match.Result{}, false, err
	}
	return result, true, nil
}

func matchResultFromRow(row matchResultTableModel) (match.Result, error) {
	var out match.Result
	if err := sonic.UnmarshalString(row.State, &out.State); err != nil {
		return match.Result{}, fmt.Errorf("decode match state %s: %w", row.MatchID, err)
	}
	if err := sonic.UnmarshalString(row.Performances, &out.Performances); err != nil {
		return match.Result{}, fmt.Errorf("decode match performances %s: %w", row.MatchID, err)
	}
	out.FinalizedAt = time.UnixMilli(row.FinalizedAt).UTC()
	return out, nil
}
