package export

import (
	"bytes"
	"testing"

	"blackqueen/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX(t *testing.T) {
	s := game.NewSession(nil)
	_, err := s.StartGame([]string{"A", "B", "C", "D"})
	require.NoError(t, err)
	_, err = s.SubmitRound(game.Submission{Bidder: "A", Teammates: []string{"B"}, DeckCount: 1, Bid: 100, Won: true})
	require.NoError(t, err)
	_, err = s.SubmitRound(game.Submission{Bidder: "C", DeckCount: 2, Bid: 150})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, s))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RoundsSheet, TotalsSheet}, f.GetSheetList())

	rounds, err := f.GetRows(RoundsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Round", "A", "B", "C", "D", "Bidder", "Teammates", "Decks", "Bid", "Result"},
		{"1", "100", "100", "0", "0", "A", "B", "1", "100", "won"},
		{"2", "0", "0", "-150", "0", "C", "", "2", "150", "lost"},
	}, rounds)

	totals, err := f.GetRows(TotalsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Player", "Total Points"},
		{"A", "100"},
		{"B", "100"},
		{"D", "0"},
		{"C", "-150"},
	}, totals)
}

func TestWriteXLSX_SetupPhase(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, game.NewSession(nil)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(RoundsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Round", "Bidder", "Teammates", "Decks", "Bid", "Result"}, rows[0])
}
