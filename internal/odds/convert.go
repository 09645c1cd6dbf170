// Package odds converts predicted outcome percentages into fair prices.
package odds

import (
	"fmt"
	"math"

	"scottish-predictor/internal/mathutil"
	"scottish-predictor/internal/model"
)

// Line is the fair price of one outcome in decimal and American form.
// A zero Line means the outcome has no probability to price.
type Line struct {
	Decimal  float64 `json:"decimal"`
	American int     `json:"american"`
}

// String renders "2.50 (+150)".
func (l Line) String() string {
	if l.Decimal == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f (%+d)", l.Decimal, l.American)
}

// FairLines prices the three outcomes of a prediction without margin.
type FairLines struct {
	HomeWin Line `json:"homeWin"`
	Draw    Line `json:"draw"`
	AwayWin Line `json:"awayWin"`
}

// ForPrediction prices res's outcome percentages.
func ForPrediction(res model.PredictionResult) FairLines {
	return FairLines{
		HomeWin: LineFor(res.HomeWinProb),
		Draw:    LineFor(res.DrawProb),
		AwayWin: LineFor(res.AwayWinProb),
	}
}

// LineFor prices an outcome given as a percentage.
func LineFor(pct float64) Line {
	return Line{Decimal: DecimalOdds(pct), American: ImpliedToAmerican(pct / 100)}
}

// DecimalOdds is 100/pct rounded to two places. Percentages outside
// (0, 100] have no price and return 0.
func DecimalOdds(pct float64) float64 {
	if pct <= 0 || pct > 100 {
		return 0
	}
	return mathutil.Round(100/pct, 2)
}

// ImpliedToAmerican converts a probability to American odds
// Example: 0.6 → -150, 0.4 → +150
func ImpliedToAmerican(p float64) int {
	if p <= 0 || p >= 1 {
		return 0
	}
	if p >= 0.5 {
		// Favorite: odds = -100p / (1-p)
		return -int(math.Round(100 * p / (1 - p)))
	}
	// Underdog: odds = 100(1-p) / p
	return int(math.Round(100 * (1 - p) / p))
}
