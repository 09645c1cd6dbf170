package stats

import (
	"fmt"

	"scottish-predictor/internal/ingest"
	"scottish-predictor/internal/model"
)

// FromTable derives team stats from a validated league table whose team
// names already match the catalog. Strength uses the same position formula
// as the generator with the table's own size. Form strings shorter than
// FormLength are padded with draws at the oldest end.
func FromTable(l model.League, rows []ingest.TableRow) (map[string]model.TeamStats, error) {
	out := make(map[string]model.TeamStats, len(rows))
	for _, r := range rows {
		if !l.HasTeam(r.Team) {
			return nil, fmt.Errorf("%s is not in %s", r.Team, l.Name)
		}
		if r.Position < 1 || r.Position > len(rows) {
			return nil, fmt.Errorf("%s: position %d outside table of %d", r.Team, r.Position, len(rows))
		}
		if r.Played <= 0 {
			return nil, fmt.Errorf("%s: no matches played", r.Team)
		}
		form, err := ingest.ParseForm(r.Form)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Team, err)
		}

		out[r.Team] = model.TeamStats{
			League:        l.Name,
			Strength:      Strength(l, r.Team, r.Position-1, len(rows)),
			Matches:       r.Played,
			Wins:          r.Won,
			Draws:         r.Drawn,
			Losses:        r.Lost,
			GoalsScored:   r.GoalsFor,
			GoalsConceded: r.GoalsAgainst,
			CleanSheets:   r.CleanSheets,
			Form:          fitForm(form),
		}
	}
	return out, nil
}

func fitForm(form []int) []int {
	if len(form) >= model.FormLength {
		return append([]int(nil), form[len(form)-model.FormLength:]...)
	}
	out := make([]int, 0, model.FormLength)
	for i := len(form); i < model.FormLength; i++ {
		out = append(out, model.FormDraw)
	}
	return append(out, form...)
}
