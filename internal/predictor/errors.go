package predictor

import (
	"errors"

	"scottish-predictor/internal/analysis"
)

// Input errors. All are local and permanent: retrying the same request
// returns the same error.
var (
	ErrInvalidLeague   = errors.New("invalid league")
	ErrInvalidTeam     = errors.New("invalid team")
	ErrMissingHistory  = errors.New("no matchup history")
	ErrDegenerateInput = analysis.ErrDegenerateInput
)
