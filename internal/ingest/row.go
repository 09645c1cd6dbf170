// Package ingest turns scraped league tables and published stats files into
// validated, strongly typed rows.
package ingest

import (
	"fmt"
	"strings"

	"scottish-predictor/internal/model"
)

// TableRow is one line of a league table.
type TableRow struct {
	Position     int         `json:"position"`
	Team         string      `json:"team"`
	Played       int         `json:"played"`
	Won          int         `json:"won"`
	Drawn        int         `json:"drawn"`
	Lost         int         `json:"lost"`
	GoalsFor     int         `json:"goalsFor"`
	GoalsAgainst int         `json:"goalsAgainst"`
	CleanSheets  int         `json:"cleanSheets"`
	Form         string      `json:"form"` // W/D/L letters, oldest first
	Home         *VenueSplit `json:"home,omitempty"`
	Away         *VenueSplit `json:"away,omitempty"`
}

// VenueSplit is a team's record at home or away.
type VenueSplit struct {
	Won          int `json:"won"`
	Drawn        int `json:"drawn"`
	Lost         int `json:"lost"`
	GoalsFor     int `json:"goalsFor"`
	GoalsAgainst int `json:"goalsAgainst"`
}

// Played is won+drawn+lost.
func (v VenueSplit) Played() int {
	return v.Won + v.Drawn + v.Lost
}

// ParseForm converts a W/D/L string into form codes. Spaces and dashes are
// ignored so "W-D-L" and "W D L" parse the same as "WDL".
func ParseForm(s string) ([]int, error) {
	codes := make([]int, 0, len(s))
	for _, c := range strings.ToUpper(s) {
		switch c {
		case 'W':
			codes = append(codes, model.FormWin)
		case 'D':
			codes = append(codes, model.FormDraw)
		case 'L':
			codes = append(codes, model.FormLoss)
		case ' ', '-', ',':
		default:
			return nil, fmt.Errorf("invalid form result %q", c)
		}
	}
	return codes, nil
}

func formLetters(s string) []string {
	letters := make([]string, 0, len(s))
	for _, c := range strings.ToUpper(s) {
		if c == ' ' || c == '-' || c == ',' {
			continue
		}
		letters = append(letters, string(c))
	}
	return letters
}
