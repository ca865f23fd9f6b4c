package chart

import (
	"bytes"
	"testing"

	"blackqueen/internal/game"
	"blackqueen/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func playedSession(t *testing.T) *game.Session {
	t.Helper()
	s := game.NewSession(nil)
	_, err := s.StartGame([]string{"A", "B", "C", "D"})
	require.NoError(t, err)
	for _, sub := range []game.Submission{
		{Bidder: "A", Teammates: []string{"B"}, DeckCount: shared.OneDeck, Bid: 100, Won: true},
		{Bidder: "C", DeckCount: shared.TwoDecks, Bid: 150},
		{Bidder: "D", Teammates: []string{"C", "A"}, DeckCount: shared.ThreeDecks, Bid: 300, Won: true},
	} {
		_, err := s.SubmitRound(sub)
		require.NoError(t, err)
	}
	return s
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("svg")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)
	assert.Equal(t, "image/svg+xml", f.ContentType())
	assert.Equal(t, "image/png", PNG.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestTotals(t *testing.T) {
	s := playedSession(t)
	r := NewRenderer(800, 400)

	var buf bytes.Buffer
	require.NoError(t, r.Totals(&buf, s.Summary().Standings, PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	buf.Reset()
	require.NoError(t, r.Totals(&buf, s.Summary().Standings, SVG))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Total Points")
}

func TestTotals_AllZero(t *testing.T) {
	s := game.NewSession(nil)
	_, err := s.StartGame([]string{"A", "B", "C"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(600, 300).Totals(&buf, s.Summary().Standings, PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestHistory(t *testing.T) {
	s := playedSession(t)
	r := NewRenderer(800, 400)

	var buf bytes.Buffer
	require.NoError(t, r.History(&buf, s.Histories(), SVG))
	assert.Contains(t, buf.String(), "<svg")
	assert.Contains(t, buf.String(), "Score Progression")

	buf.Reset()
	require.NoError(t, r.History(&buf, s.Histories(), PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestPlaceholders(t *testing.T) {
	s := game.NewSession(nil)
	r := NewRenderer(400, 200)

	var buf bytes.Buffer
	require.NoError(t, r.History(&buf, s.Histories(), PNG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	buf.Reset()
	require.NoError(t, r.Totals(&buf, nil, SVG))
	assert.Contains(t, buf.String(), "No players yet")
}

func TestPaddedRange(t *testing.T) {
	lo, hi := paddedRange([]float64{0, 0})
	assert.Equal(t, -100.0, lo)
	assert.Equal(t, 100.0, hi)

	lo, hi = paddedRange([]float64{100, -150})
	assert.InDelta(t, -175.0, lo, 1e-9)
	assert.InDelta(t, 125.0, hi, 1e-9)

	lo, hi = paddedRange([]float64{50})
	assert.Equal(t, 0.0, lo)
	assert.InDelta(t, 55.0, hi, 1e-9)
}

func TestRoundTicks(t *testing.T) {
	assert.Len(t, roundTicks(3), 4)
	ticks := roundTicks(50)
	assert.LessOrEqual(t, len(ticks), 21)
	assert.Equal(t, "0", ticks[0].Label)
}
