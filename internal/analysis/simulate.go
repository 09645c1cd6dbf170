package analysis

import (
	"math"
	"math/rand/v2"
)

// MaxSimulatedGoals caps a simulated score.
const MaxSimulatedGoals = 4

// SimulateScore draws a final score for one side. With probability
// cleanSheetProb the opponent keeps a clean sheet and the result is 0;
// otherwise the score is sampled from Poisson(xg) by inverse CDF,
// truncated at MaxSimulatedGoals.
func SimulateScore(r *rand.Rand, xg, cleanSheetProb float64) int {
	if r.Float64() < cleanSheetProb {
		return 0
	}

	score := 0
	prob := math.Exp(-xg)
	cumulative := prob
	u := r.Float64()

	for u > cumulative && score < MaxSimulatedGoals {
		score++
		prob *= xg / float64(score)
		cumulative += prob
	}

	return score
}
