package scoresheet

import (
	"bytes"
	"strings"
	"testing"

	"blackqueen/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
players: [A, B, C, D]
rounds:
  - {bidder: A, teammates: [B], decks: 1, bid: 100, result: won}
  - {bidder: C, decks: 2, bid: 150, result: lost}
`

func TestLoadAndReplay(t *testing.T) {
	sheet, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, sheet.Rounds, 2)

	s := game.NewSession(nil)
	require.NoError(t, sheet.Replay(s))

	sum := s.Summary()
	assert.Equal(t, map[string]int{"A": 100, "B": 100, "C": -150, "D": 0}, sum.Totals)
	assert.Equal(t, "A", sum.Leader)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")

	_, err = Load(strings.NewReader("players: [A, B, C]\nround: []\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestReplay_ReportsFailingRound(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		round   int
		wantErr error
	}{
		{
			name:    "bid too high",
			doc:     "players: [A, B, C]\nrounds:\n  - {bidder: A, decks: 1, bid: 75, result: won}\n  - {bidder: B, decks: 1, bid: 155, result: won}\n",
			round:   2,
			wantErr: game.ErrBidOutOfRange,
		},
		{
			name:    "bad result",
			doc:     "players: [A, B, C]\nrounds:\n  - {bidder: A, decks: 1, bid: 75, result: draw}\n",
			round:   1,
			wantErr: ErrInvalidResult,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet, err := Load(strings.NewReader(tt.doc))
			require.NoError(t, err)

			err = sheet.Replay(game.NewSession(nil))
			require.ErrorIs(t, err, tt.wantErr)

			var rerr *RoundError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tt.round, rerr.Round)
		})
	}
}

func TestReplay_BlankPlayers(t *testing.T) {
	sheet := &Sheet{Players: []string{" ", "", "  "}}
	err := sheet.Replay(game.NewSession(nil))
	require.ErrorIs(t, err, game.ErrNoValidPlayers)
}

func TestFromSession(t *testing.T) {
	sheet, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	s := game.NewSession(nil)
	require.NoError(t, sheet.Replay(s))

	var buf bytes.Buffer
	require.NoError(t, FromSession(s).Write(&buf))

	again, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, sheet, again)
}
