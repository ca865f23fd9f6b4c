package shared

import "maps"

// RoundRecord is one row of the score table.
type RoundRecord struct {
	Round     int            `json:"round"`      // 1-based, equals the row position plus one
	Team      Team           `json:"team"`       // Bidder and teammates of this round
	DeckCount DeckCount      `json:"deck_count"` // Decks used, selects the bid range
	Bid       int            `json:"bid"`        // Declared bid amount
	Outcome   Outcome        `json:"outcome"`    // Whether the bidding side made it
	Deltas    map[string]int `json:"deltas"`     // Points per roster name; 0 when not involved
}

// Delta returns the points name received in this round.
func (r RoundRecord) Delta(name string) int {
	return r.Deltas[name]
}

// Change returns the signed amount applied to every member of the bidding side.
func (r RoundRecord) Change() int {
	if r.Outcome == Won {
		return r.Bid
	}
	return -r.Bid
}

// Clone returns a copy that shares no mutable state with r.
func (r RoundRecord) Clone() RoundRecord {
	out := r
	out.Team = NewTeam(r.Team.Bidder, r.Team.Teammates...)
	out.Deltas = maps.Clone(r.Deltas)
	return out
}
