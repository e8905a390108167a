package match

import "context"

// SessionStore keeps running simulations addressable by match id.
// Implementations must serialize calls to With for the same id.
type SessionStore interface {
	Create(ctx context.Context, engine *Engine) error
	With(ctx context.Context, matchID string, fn func(engine *Engine) error) error
	Delete(ctx context.Context, matchID string) error
	ListIDs(ctx context.Context) ([]string, error)
}

// ResultRepository persists finalized matches.
type ResultRepository interface {
	SaveResult(ctx context.Context, result Result) error
	GetResult(ctx context.Context, matchID string) (Result, bool, error)
}
