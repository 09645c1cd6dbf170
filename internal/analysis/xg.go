package analysis

import (
	"errors"
	"fmt"

	"scottish-predictor/internal/mathutil"
	"scottish-predictor/internal/model"
)

// ErrDegenerateInput is returned when a team has no matches to derive
// per-match rates from.
var ErrDegenerateInput = errors.New("degenerate input")

// Expected goals constants. Away sides get a lower base and a lower cap.
const (
	HomeBaseGoals = 1.4
	AwayBaseGoals = 1.1
	MaxHomeXg     = 3.5
	MaxAwayXg     = 2.5
)

// ExpectedGoals estimates the goals team will score against opponent.
//
//	attack  = strength * goalsScored/matches
//	defence = cleanSheetRatio*0.3 + (1 - concededRatio/3)*0.7   (opponent)
//	xG      = base * attack * (1 - defence) * formFactor
//
// The result is clamped to [0, MaxHomeXg] or [0, MaxAwayXg].
func ExpectedGoals(team, opponent model.TeamStats, isHome bool) (float64, error) {
	if team.Matches <= 0 {
		return 0, fmt.Errorf("%w: team in %s has %d matches", ErrDegenerateInput, team.League, team.Matches)
	}
	if opponent.Matches <= 0 {
		return 0, fmt.Errorf("%w: opponent in %s has %d matches", ErrDegenerateInput, opponent.League, opponent.Matches)
	}

	baseGoals, maxXg := AwayBaseGoals, MaxAwayXg
	if isHome {
		baseGoals, maxXg = HomeBaseGoals, MaxHomeXg
	}

	attackStrength := team.Strength * team.GoalsPerMatch()
	defenseStrength := DefenseStrength(opponent)
	formFactor := FormFactor(team.Form)

	xg := baseGoals * attackStrength * (1 - defenseStrength) * formFactor
	return mathutil.Clamp(xg, 0, maxXg), nil
}

// DefenseStrength rates a side's defence from its clean-sheet and
// goals-conceded rates. Callers must check Matches > 0.
func DefenseStrength(s model.TeamStats) float64 {
	cleanSheetRatio := s.CleanSheetRate()
	goalsConcededRatio := s.ConcededPerMatch()
	return cleanSheetRatio*0.3 + (1-goalsConcededRatio/3)*0.7
}
