package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-matchsim/internal/domain/scoring"
)

// BootstrapScoringRules inserts league overrides that are not stored yet.
// Rows edited in the database win over the file.
func BootstrapScoringRules(ctx context.Context, db *sqlx.DB, rules map[string]scoring.Rules) error {
	if len(rules) == 0 {
		return nil
	}

	leagueIDs := make([]string, 0, len(rules))
	for leagueID := range rules {
		leagueIDs = append(leagueIDs, leagueID)
	}
	sort.Strings(leagueIDs)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scoring rules seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, leagueID := range leagueIDs {
		encoded, err := sonic.MarshalString(rules[leagueID])
		if err != nil {
			return fmt.Errorf("encode seed rules %s: %w", leagueID, err)
		}
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO scoring_rules (league_id, rules)
VALUES (:league_id, :rules)
ON CONFLICT (league_id) DO NOTHING`, map[string]any{
			"league_id": leagueID,
			"rules":     encoded,
		})
		if err != nil {
			return fmt.Errorf("bind seed rules %s query: %w", leagueID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed rules %s: %w", leagueID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scoring rules seed tx: %w", err)
	}
	return nil
}
