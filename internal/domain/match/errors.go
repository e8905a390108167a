package match

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidRoster  = crerr.New("invalid roster")
	ErrInvalidState   = crerr.New("invalid match state")
	ErrUnknownMatch   = crerr.New("unknown match")
	ErrDuplicateMatch = crerr.New("match already registered")
)
