package analysis

import (
	"scottish-predictor/internal/mathutil"
	"scottish-predictor/internal/model"
)

// Form factor bounds.
const (
	MinFormFactor = 0.8
	MaxFormFactor = 1.2
)

// FormFactor turns a form sequence (oldest first) into a multiplicative
// adjustment. Each result multiplies the running factor by its outcome
// multiplier times a recency weight of 1 + 0.1*i, so later results count
// more. It is a cascade, not an average.
//
// Because the weights alone multiply to ~2.4 over five games, a full form
// sequence almost always saturates at MaxFormFactor.
func FormFactor(form []int) float64 {
	factor := 1.0
	for i, result := range form {
		weight := 1.0 + float64(i)*0.1
		switch result {
		case model.FormWin:
			factor *= 1.1 * weight
		case model.FormDraw:
			factor *= 1.0 * weight
		default:
			factor *= 0.9 * weight
		}
	}
	return mathutil.Clamp(factor, MinFormFactor, MaxFormFactor)
}

// FormRating is the additive, recency-weighted points average of a form
// sequence, scaled by 1/(15*1.4). Used for display only.
func FormRating(form []int) float64 {
	sum := 0.0
	for i, result := range form {
		sum += float64(result) * (1.0 + float64(i)*0.1)
	}
	return sum / (15 * 1.4)
}
