package analysis

import (
	"fmt"
	"math"
	"strings"

	"scottish-predictor/internal/mathutil"
	"scottish-predictor/internal/model"
)

// GridMaxGoals is the highest per-side score in the Poisson grid. Mass
// above it is dropped, not redistributed.
const GridMaxGoals = 6

// RatioDrawProb is the fixed draw percentage of the ratio method.
const RatioDrawProb = 25.0

// Probabilities are match outcome percentages rounded to one decimal.
type Probabilities struct {
	HomeWin float64
	Draw    float64
	AwayWin float64
}

// Sum is HomeWin+Draw+AwayWin.
func (p Probabilities) Sum() float64 {
	return p.HomeWin + p.Draw + p.AwayWin
}

// Method selects how outcome probabilities are computed.
type Method string

const (
	// MethodPoisson uses the independent-Poisson score grid with a
	// head-to-head adjustment.
	MethodPoisson Method = "poisson"
	// MethodRatio uses the closed-form xG share with a fixed 25% draw.
	MethodRatio Method = "ratio"
)

// ParseMethod accepts "poisson" or "ratio", case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodPoisson:
		return MethodPoisson, nil
	case MethodRatio:
		return MethodRatio, nil
	}
	return "", fmt.Errorf("unknown probability method %q (want poisson or ratio)", s)
}

// Probabilities dispatches to the calculator for m.
func (m Method) Probabilities(homeXg, awayXg float64, h2h model.HeadToHeadStats) Probabilities {
	if m == MethodRatio {
		return RatioProbabilities(homeXg, awayXg)
	}
	return MatchProbabilities(homeXg, awayXg, h2h)
}

// MatchProbabilities sums P(i|homeXg)*P(j|awayXg) over the 7x7 grid of
// scores 0..6 into home-win, draw and away-win buckets, tilts the win
// buckets by the head-to-head home win rate, and renormalises so the three
// percentages total 100.
func MatchProbabilities(homeXg, awayXg float64, h2h model.HeadToHeadStats) Probabilities {
	var homeWin, draw, awayWin float64

	for i := 0; i <= GridMaxGoals; i++ {
		pi := mathutil.PoissonPMF(i, homeXg)
		for j := 0; j <= GridMaxGoals; j++ {
			p := pi * mathutil.PoissonPMF(j, awayXg)
			switch {
			case i > j:
				homeWin += p
			case i < j:
				awayWin += p
			default:
				draw += p
			}
		}
	}

	factor := HistoricalFactor(h2h)
	homeWin *= 1 + factor
	awayWin *= 1 - factor

	total := homeWin + draw + awayWin
	if total <= 0 {
		return Probabilities{}
	}

	return roundPercentages(homeWin/total, awayWin/total)
}

// roundPercentages converts win shares into one-decimal
// percentages. The win buckets are rounded and the draw takes the remainder,
// so the three always total 100 and equal win shares stay equal.
func roundPercentages(home, away float64) Probabilities {
	homePct := mathutil.Round(home*100, 1)
	awayPct := mathutil.Round(away*100, 1)
	drawPct := math.Max(0, mathutil.Round(100-homePct-awayPct, 1))
	return Probabilities{HomeWin: homePct, Draw: drawPct, AwayWin: awayPct}
}

// HistoricalFactor is (homeWins/totalMatches - 0.5) * 0.2, in [-0.1, 0.1].
// An empty history contributes nothing.
func HistoricalFactor(h2h model.HeadToHeadStats) float64 {
	if h2h.TotalMatches <= 0 {
		return 0
	}
	return (float64(h2h.HomeWins)/float64(h2h.TotalMatches) - 0.5) * 0.2
}

// RatioProbabilities is the simplified calculation: home gets its xG share,
// draw is fixed at 25% and away gets 75% of its share. The three values do
// not sum to 100; callers that need a distribution should use
// MatchProbabilities. Zero total xG is treated as an even share.
func RatioProbabilities(homeXg, awayXg float64) Probabilities {
	homeShare, awayShare := 0.5, 0.5
	if total := homeXg + awayXg; total > 0 {
		homeShare = homeXg / total
		awayShare = awayXg / total
	}
	return Probabilities{
		HomeWin: mathutil.Round(homeShare*100, 1),
		Draw:    RatioDrawProb,
		AwayWin: mathutil.Round(awayShare*75, 1),
	}
}
