package shared

import "fmt"

// DeckCount is the number of card decks shuffled together for a round. It scales the legal bid range.
type DeckCount int

const (
	OneDeck    DeckCount = 1
	TwoDecks   DeckCount = 2
	ThreeDecks DeckCount = 3
)

// BidStep is the granularity of every bid.
const BidStep = 5

// BidRange is the inclusive window of legal bids for a deck count.
type BidRange struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Step int `json:"step"`
}

var bidRanges = map[DeckCount]BidRange{
	OneDeck:    {Min: 75, Max: 150, Step: BidStep},
	TwoDecks:   {Min: 150, Max: 300, Step: BidStep},
	ThreeDecks: {Min: 225, Max: 450, Step: BidStep},
}

// DeckCounts lists the supported deck counts in ascending order.
func DeckCounts() []DeckCount {
	return []DeckCount{OneDeck, TwoDecks, ThreeDecks}
}

// Valid reports whether d is a supported deck count.
func (d DeckCount) Valid() bool {
	_, ok := bidRanges[d]
	return ok
}

// BidRange returns the legal bid window for d. The boolean is false for unsupported counts.
func (d DeckCount) BidRange() (BidRange, bool) {
	r, ok := bidRanges[d]
	return r, ok
}

func (d DeckCount) String() string {
	if d == OneDeck {
		return "1 deck"
	}
	return fmt.Sprintf("%d decks", int(d))
}

// Contains reports whether bid is inside the window and lands on a step.
func (r BidRange) Contains(bid int) bool {
	if bid < r.Min || bid > r.Max {
		return false
	}
	return (bid-r.Min)%r.Step == 0
}

// Clamp moves bid into the window and snaps it down to the nearest step.
func (r BidRange) Clamp(bid int) int {
	if bid <= r.Min {
		return r.Min
	}
	if bid >= r.Max {
		return r.Max
	}
	return bid - (bid-r.Min)%r.Step
}

// Options lists every legal bid in ascending order.
func (r BidRange) Options() []int {
	opts := make([]int, 0, (r.Max-r.Min)/r.Step+1)
	for b := r.Min; b <= r.Max; b += r.Step {
		opts = append(opts, b)
	}
	return opts
}

func (r BidRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}
