package ingest

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoTable is returned when a page has no recognisable league table.
var ErrNoTable = errors.New("no league table found")

type column int

const (
	colPosition column = iota
	colTeam
	colPlayed
	colWon
	colDrawn
	colLost
	colGoalsFor
	colGoalsAgainst
	colCleanSheets
	colForm
)

var headerAliases = map[string]column{
	"pos":      colPosition,
	"position": colPosition,
	"#":        colPosition,
	"team":     colTeam,
	"club":     colTeam,
	"p":        colPlayed,
	"pl":       colPlayed,
	"pld":      colPlayed,
	"played":   colPlayed,
	"w":        colWon,
	"won":      colWon,
	"d":        colDrawn,
	"drawn":    colDrawn,
	"l":        colLost,
	"lost":     colLost,
	"f":        colGoalsFor,
	"gf":       colGoalsFor,
	"a":        colGoalsAgainst,
	"ga":       colGoalsAgainst,
	"cs":       colCleanSheets,
	"form":     colForm,
}

var requiredColumns = []column{
	colPosition, colTeam, colPlayed, colWon, colDrawn, colLost, colGoalsFor, colGoalsAgainst,
}

// ParseTableHTML reads the first league table on an HTML page. Columns are
// located by header text, so extra columns such as goal difference or
// points are skipped. A non-numeric count is an error rather than zero.
func ParseTableHTML(r io.Reader) ([]TableRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var table *goquery.Selection
	var index map[column]int
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		idx := headerIndex(t)
		for _, c := range requiredColumns {
			if _, ok := idx[c]; !ok {
				return true
			}
		}
		table, index = t, idx
		return false
	})
	if table == nil {
		return nil, ErrNoTable
	}

	var rows []TableRow
	var parseErr error
	table.Find("tbody tr").EachWithBreak(func(i int, tr *goquery.Selection) bool {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return true
		}
		row, err := parseRow(cells, index)
		if err != nil {
			parseErr = fmt.Errorf("row %d: %w", i+1, err)
			return false
		}
		rows = append(rows, row)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(rows) == 0 {
		return nil, ErrNoTable
	}
	return rows, nil
}

func headerIndex(t *goquery.Selection) map[column]int {
	idx := make(map[column]int)
	headers := t.Find("thead th")
	if headers.Length() == 0 {
		headers = t.Find("tr").First().Find("th")
	}
	headers.Each(func(i int, th *goquery.Selection) {
		key := strings.ToLower(strings.TrimSpace(th.Text()))
		if c, ok := headerAliases[key]; ok {
			if _, seen := idx[c]; !seen {
				idx[c] = i
			}
		}
	})
	return idx
}

func parseRow(cells *goquery.Selection, index map[column]int) (TableRow, error) {
	text := func(c column) (string, bool) {
		i, ok := index[c]
		if !ok || i >= cells.Length() {
			return "", false
		}
		return strings.TrimSpace(cells.Eq(i).Text()), true
	}
	num := func(c column, name string) (int, error) {
		s, ok := text(c)
		if !ok {
			return 0, fmt.Errorf("missing %s", name)
		}
		s = strings.TrimSuffix(s, ".")
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s %q is not a number", name, s)
		}
		return n, nil
	}

	var row TableRow
	var err error
	if row.Position, err = num(colPosition, "position"); err != nil {
		return row, err
	}
	row.Team, _ = text(colTeam)
	row.Team = strings.Join(strings.Fields(row.Team), " ")
	if row.Played, err = num(colPlayed, "played"); err != nil {
		return row, err
	}
	if row.Won, err = num(colWon, "won"); err != nil {
		return row, err
	}
	if row.Drawn, err = num(colDrawn, "drawn"); err != nil {
		return row, err
	}
	if row.Lost, err = num(colLost, "lost"); err != nil {
		return row, err
	}
	if row.GoalsFor, err = num(colGoalsFor, "goals for"); err != nil {
		return row, err
	}
	if row.GoalsAgainst, err = num(colGoalsAgainst, "goals against"); err != nil {
		return row, err
	}
	if _, ok := index[colCleanSheets]; ok {
		if row.CleanSheets, err = num(colCleanSheets, "clean sheets"); err != nil {
			return row, err
		}
	}
	if form, ok := text(colForm); ok {
		row.Form = strings.Join(formLetters(form), "")
	}
	return row, nil
}
