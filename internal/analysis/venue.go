package analysis

import (
	"scottish-predictor/internal/mathutil"
	"scottish-predictor/internal/model"
)

// VenueEffect scores how much the ground favours the home side:
// atmosphere + (homeWinRate - 0.5), clamped to [-0.5, 0.5].
func VenueEffect(ls model.LeagueStats) float64 {
	v := ls.VenueStats
	return mathutil.Clamp(v.AtmosphereEffect+(v.HomeWinRate-0.5), -0.5, 0.5)
}
