package game

import (
	"cmp"
	"iter"
	"slices"

	"blackqueen/internal/shared"
)

// Standing is one player's total.
type Standing struct {
	Player string `json:"player"`
	Total  int    `json:"total"`
}

// Summary is the derived view of a session. It is computed on demand and
// never cached.
type Summary struct {
	Rounds    int            `json:"rounds"`
	Totals    map[string]int `json:"totals"`
	Standings []Standing     `json:"standings"` // Highest total first, ties in roster order
	Leader    string         `json:"leader"`
}

// Summary sums every player's deltas and ranks them.
func (s *Session) Summary() Summary {
	totals := make(map[string]int, len(s.roster))
	for _, name := range s.roster {
		totals[name] = 0
	}
	for _, rec := range s.table {
		for _, name := range s.roster {
			totals[name] += rec.Delta(name)
		}
	}

	standings := make([]Standing, len(s.roster))
	for i, name := range s.roster {
		standings[i] = Standing{Player: name, Total: totals[name]}
	}
	slices.SortStableFunc(standings, func(a, b Standing) int {
		return cmp.Compare(b.Total, a.Total)
	})

	var leader string
	if len(standings) > 0 {
		leader = standings[0].Player
	}
	return Summary{
		Rounds:    len(s.table),
		Totals:    totals,
		Standings: standings,
		Leader:    leader,
	}
}

// History yields (round, running total) pairs for player. The sequence reads
// the table when iterated, so it can be ranged over again after more rounds.
// Players not on the roster yield nothing.
func (s *Session) History(player string) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if shared.IndexOf(s.roster, player) == -1 {
			return
		}
		total := 0
		for _, rec := range s.table {
			total += rec.Delta(player)
			if !yield(rec.Round, total) {
				return
			}
		}
	}
}

// Histories yields every roster player with their cumulative history, in roster order.
func (s *Session) Histories() iter.Seq2[string, iter.Seq2[int, int]] {
	return func(yield func(string, iter.Seq2[int, int]) bool) {
		for _, name := range s.roster {
			if !yield(name, s.History(name)) {
				return
			}
		}
	}
}
