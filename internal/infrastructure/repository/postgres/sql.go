package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/riskibarqy/fantasy-matchsim/internal/platform/resilience"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isOutage reports whether err points at the database rather than the request.
// Missing rows and integrity violations (class 23) are caller problems.
func isOutage(err error) bool {
	if err == nil || isNotFound(err) {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() != "23"
	}
	return true
}

func guard(ctx context.Context, breaker *resilience.CircuitBreaker, fn func(context.Context) error) error {
	return breaker.Do(ctx, fn, isOutage)
}
