package ingest

import (
	"errors"
	"fmt"

	"scottish-predictor/internal/catalog"
)

// ErrUnknownTeam is returned when a scraped name matches no catalog team.
var ErrUnknownTeam = errors.New("unknown team")

// Resolve rewrites scraped team names to their catalog spelling for league.
// The input slice is not modified.
func Resolve(cat *catalog.Catalog, league string, rows []TableRow) ([]TableRow, error) {
	out := make([]TableRow, len(rows))
	var errs []error
	seen := make(map[string]string, len(rows))

	for i, r := range rows {
		name, ok := cat.ResolveTeam(league, r.Team)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q in %s", ErrUnknownTeam, r.Team, league))
			continue
		}
		if prev, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("%q and %q both resolve to %s", prev, r.Team, name))
			continue
		}
		seen[name] = r.Team
		r.Team = name
		out[i] = r
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}
