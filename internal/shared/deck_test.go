package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidRange(t *testing.T) {
	tests := []struct {
		decks DeckCount
		want  BidRange
	}{
		{OneDeck, BidRange{Min: 75, Max: 150, Step: 5}},
		{TwoDecks, BidRange{Min: 150, Max: 300, Step: 5}},
		{ThreeDecks, BidRange{Min: 225, Max: 450, Step: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.decks.String(), func(t *testing.T) {
			got, ok := tt.decks.BidRange()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.True(t, tt.decks.Valid())
		})
	}

	for _, bad := range []DeckCount{0, 4, -1} {
		_, ok := bad.BidRange()
		assert.False(t, ok, "deck count %d", bad)
		assert.False(t, bad.Valid())
	}
}

func TestBidRange_Contains(t *testing.T) {
	r, _ := OneDeck.BidRange()

	assert.True(t, r.Contains(75))
	assert.True(t, r.Contains(150))
	assert.True(t, r.Contains(100))
	assert.False(t, r.Contains(70))
	assert.False(t, r.Contains(155))
	assert.False(t, r.Contains(101), "off-step bids are not legal")
}

func TestBidRange_Clamp(t *testing.T) {
	r, _ := TwoDecks.BidRange()

	assert.Equal(t, 150, r.Clamp(0))
	assert.Equal(t, 300, r.Clamp(450))
	assert.Equal(t, 200, r.Clamp(200))
	assert.Equal(t, 200, r.Clamp(204))
}

func TestBidRange_Options(t *testing.T) {
	r, _ := ThreeDecks.BidRange()
	opts := r.Options()

	require.Len(t, opts, 46)
	assert.Equal(t, 225, opts[0])
	assert.Equal(t, 450, opts[len(opts)-1])
	for _, o := range opts {
		assert.True(t, r.Contains(o))
	}
}

func TestDeckCountString(t *testing.T) {
	assert.Equal(t, "1 deck", OneDeck.String())
	assert.Equal(t, "3 decks", ThreeDecks.String())
}
