package game

import (
	"testing"

	"blackqueen/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedSession(t *testing.T, names ...string) *Session {
	t.Helper()
	s := NewSession(nil)
	_, err := s.StartGame(names)
	require.NoError(t, err)
	return s
}

func TestStartGame(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		want    []string
		wantErr error
	}{
		{
			name:  "four players",
			names: []string{"A", "B", "C", "D"},
			want:  []string{"A", "B", "C", "D"},
		},
		{
			name:  "blank and padded names are cleaned",
			names: []string{"  Ana ", "", "Bo", "   "},
			want:  []string{"Ana", "Bo"},
		},
		{
			name:    "all blank",
			names:   []string{"", " ", "\t"},
			wantErr: ErrNoValidPlayers,
		},
		{
			name:    "too few seats",
			names:   []string{"A", "B"},
			wantErr: ErrPlayerCount,
		},
		{
			name:    "too many seats",
			names:   []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"},
			wantErr: ErrPlayerCount,
		},
		{
			name:    "duplicate after trimming",
			names:   []string{"Ana", "Bo", " Ana"},
			wantErr: ErrDuplicatePlayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(nil)
			roster, err := s.StartGame(tt.names)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Setup, s.Phase())
				assert.Empty(t, s.Roster())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, roster)
			assert.Equal(t, InProgress, s.Phase())
			assert.Empty(t, s.Table())
			assert.Equal(t, 1, s.NextRound())
		})
	}
}

func TestStartGame_RejectsWhileInProgress(t *testing.T) {
	s := startedSession(t, "A", "B", "C")

	_, err := s.StartGame([]string{"X", "Y", "Z"})

	require.ErrorIs(t, err, ErrGameInProgress)
	assert.Equal(t, []string{"A", "B", "C"}, s.Roster())
}

func TestRosterIsACopy(t *testing.T) {
	s := startedSession(t, "A", "B", "C")
	roster := s.Roster()
	roster[0] = "Z"
	assert.Equal(t, "A", s.Roster()[0])
}

func TestSubmitRound_Scenario(t *testing.T) {
	s := startedSession(t, "A", "B", "C", "D")

	rec, err := s.SubmitRound(Submission{Bidder: "A", Teammates: []string{"B"}, DeckCount: shared.OneDeck, Bid: 100, Won: true})
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Round)
	assert.Equal(t, map[string]int{"A": 100, "B": 100, "C": 0, "D": 0}, rec.Deltas)
	assert.Equal(t, shared.Won, rec.Outcome)

	sum := s.Summary()
	assert.Equal(t, map[string]int{"A": 100, "B": 100, "C": 0, "D": 0}, sum.Totals)
	assert.Equal(t, "A", sum.Leader)

	rec, err = s.SubmitRound(Submission{Bidder: "C", DeckCount: shared.TwoDecks, Bid: 150, Won: false})
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Round)
	assert.Equal(t, map[string]int{"A": 0, "B": 0, "C": -150, "D": 0}, rec.Deltas)
	assert.Equal(t, shared.Lost, rec.Outcome)

	sum = s.Summary()
	assert.Equal(t, map[string]int{"A": 100, "B": 100, "C": -150, "D": 0}, sum.Totals)
	assert.Equal(t, "A", sum.Leader)
	assert.Equal(t, []Standing{{"A", 100}, {"B", 100}, {"D", 0}, {"C", -150}}, sum.Standings)
}

func TestSubmitRound_BidBoundaries(t *testing.T) {
	for _, decks := range shared.DeckCounts() {
		bids, ok := decks.BidRange()
		require.True(t, ok)

		t.Run(decks.String(), func(t *testing.T) {
			s := startedSession(t, "A", "B", "C")

			for _, bid := range []int{bids.Min, bids.Max} {
				_, err := s.SubmitRound(Submission{Bidder: "A", DeckCount: decks, Bid: bid, Won: true})
				assert.NoError(t, err, "bid %d", bid)
			}
			for _, bid := range []int{bids.Min - shared.BidStep, bids.Max + shared.BidStep, bids.Min + 1} {
				_, err := s.SubmitRound(Submission{Bidder: "A", DeckCount: decks, Bid: bid, Won: true})
				assert.ErrorIs(t, err, ErrBidOutOfRange, "bid %d", bid)
			}
			assert.Equal(t, 2, s.Rounds())
		})
	}
}

func TestSubmitRound_Validation(t *testing.T) {
	tests := []struct {
		name    string
		sub     Submission
		wantErr error
	}{
		{"unknown bidder", Submission{Bidder: "Z", DeckCount: 1, Bid: 100}, ErrUnknownPlayer},
		{"unknown teammate", Submission{Bidder: "A", Teammates: []string{"Z"}, DeckCount: 1, Bid: 100}, ErrUnknownPlayer},
		{"bidder as teammate", Submission{Bidder: "A", Teammates: []string{"A"}, DeckCount: 1, Bid: 100}, ErrInvalidTeammate},
		{"teammate twice", Submission{Bidder: "A", Teammates: []string{"B", "B"}, DeckCount: 1, Bid: 100}, ErrInvalidTeammate},
		{"no decks", Submission{Bidder: "A", DeckCount: 0, Bid: 100}, ErrInvalidDeckCount},
		{"four decks", Submission{Bidder: "A", DeckCount: 4, Bid: 300}, ErrInvalidDeckCount},
		{"bid under range", Submission{Bidder: "A", DeckCount: 2, Bid: 100}, ErrBidOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startedSession(t, "A", "B", "C")
			_, err := s.SubmitRound(tt.sub)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, s.Rounds())
			assert.True(t, IsValidation(err))
		})
	}
}

func TestSubmitRound_BeforeStart(t *testing.T) {
	s := NewSession(nil)
	_, err := s.SubmitRound(Submission{Bidder: "A", DeckCount: 1, Bid: 100})
	require.ErrorIs(t, err, ErrGameNotStarted)
}

func TestReset(t *testing.T) {
	s := startedSession(t, "A", "B", "C")
	_, err := s.SubmitRound(Submission{Bidder: "A", DeckCount: 1, Bid: 75, Won: true})
	require.NoError(t, err)

	s.Reset()
	assert.Equal(t, Setup, s.Phase())
	assert.Empty(t, s.Roster())
	assert.Zero(t, s.Rounds())

	_, err = s.StartGame([]string{"X", "Y", "Z", "W"})
	require.NoError(t, err)
	assert.Empty(t, s.Table())
	assert.Equal(t, 1, s.NextRound())
	assert.Equal(t, map[string]int{"X": 0, "Y": 0, "Z": 0, "W": 0}, s.Summary().Totals)
}

func TestTableIsACopy(t *testing.T) {
	s := startedSession(t, "A", "B", "C")
	_, err := s.SubmitRound(Submission{Bidder: "A", Teammates: []string{"B"}, DeckCount: 1, Bid: 75, Won: true})
	require.NoError(t, err)

	table := s.Table()
	table[0].Deltas["A"] = 9999
	table[0].Team.Teammates[0] = "C"

	assert.Equal(t, 75, s.Table()[0].Delta("A"))
	assert.Equal(t, []string{"B"}, s.Table()[0].Team.Teammates)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "bid_out_of_range", ErrorCode(ErrBidOutOfRange))
	assert.Equal(t, "no_valid_players", ErrorCode(ErrNoValidPlayers))
	assert.Equal(t, "", ErrorCode(assert.AnError))
	assert.False(t, IsValidation(nil))
}

func TestSnapshot(t *testing.T) {
	s := startedSession(t, "A", "B", "C")
	_, err := s.SubmitRound(Submission{Bidder: "B", DeckCount: 1, Bid: 90, Won: true})
	require.NoError(t, err)

	snap := s.Snapshot()
	s.Reset()

	assert.Equal(t, s.ID, snap.ID)
	assert.Equal(t, InProgress, snap.Phase())
	assert.Equal(t, 1, snap.Rounds())
	assert.Equal(t, "B", snap.Summary().Leader)
	assert.Equal(t, Setup, s.Phase())
}
