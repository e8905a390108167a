package scoring

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidRules     = crerr.New("invalid scoring rules")
	ErrInvalidStats     = crerr.New("invalid player stats")
	ErrInvalidCaptaincy = crerr.New("invalid captaincy")
)
