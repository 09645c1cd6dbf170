package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scottish-predictor/internal/model"
)

func TestParseForm(t *testing.T) {
	got, err := ParseForm("W-d L w")
	require.NoError(t, err)
	assert.Equal(t, []int{model.FormWin, model.FormDraw, model.FormLoss, model.FormWin}, got)

	got, err = ParseForm("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseForm("WWP")
	assert.Error(t, err)
}

func TestVenueSplitPlayed(t *testing.T) {
	assert.Equal(t, 9, VenueSplit{Won: 4, Drawn: 3, Lost: 2, GoalsFor: 11}.Played())
}
