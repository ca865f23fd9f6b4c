package game

import (
	"fmt"
	"log/slog"

	"blackqueen/internal/shared"

	"github.com/google/uuid"
)

// Phase is the lifecycle position of a session.
type Phase string

const (
	Setup      Phase = "setup"       // No roster yet, waiting for StartGame
	InProgress Phase = "in_progress" // Roster fixed, rounds may be submitted
)

// Submission is the input of one round.
type Submission struct {
	Bidder    string           `json:"bidder"`
	Teammates []string         `json:"teammates"`
	DeckCount shared.DeckCount `json:"deck_count"`
	Bid       int              `json:"bid"`
	Won       bool             `json:"won"`
}

// Session holds the roster and the append-only score table of one game.
//
// A Session is not safe for concurrent use. Its owner serialises every call;
// in the server that owner is the hub goroutine.
type Session struct {
	ID     string
	roster []string
	table  []shared.RoundRecord
	logger *slog.Logger
}

// NewSession creates an empty session in the setup phase.
func NewSession(logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()
	return &Session{
		ID:     id,
		logger: logger.With("session", id),
	}
}

// Phase reports whether a roster has been fixed.
func (s *Session) Phase() Phase {
	if len(s.roster) == 0 {
		return Setup
	}
	return InProgress
}

// Roster returns a copy of the players in seating order.
func (s *Session) Roster() []string {
	out := make([]string, len(s.roster))
	copy(out, s.roster)
	return out
}

// Rounds is the number of rounds recorded so far.
func (s *Session) Rounds() int {
	return len(s.table)
}

// NextRound is the number the next submitted round will get.
func (s *Session) NextRound() int {
	return len(s.table) + 1
}

// Table returns a deep copy of the score table.
func (s *Session) Table() []shared.RoundRecord {
	out := make([]shared.RoundRecord, len(s.table))
	for i, rec := range s.table {
		out[i] = rec.Clone()
	}
	return out
}

// Snapshot returns an independent copy of the session. Rendering and export
// work on snapshots so they never hold up the owner of the live session.
func (s *Session) Snapshot() *Session {
	return &Session{
		ID:     s.ID,
		roster: s.Roster(),
		table:  s.Table(),
		logger: s.logger,
	}
}

// StartGame fixes the roster and clears the score table. names holds one
// entry per seat; blank entries are dropped after trimming.
func (s *Session) StartGame(names []string) ([]string, error) {
	if s.Phase() != Setup {
		return nil, ErrGameInProgress
	}
	if len(names) < shared.MinPlayers || len(names) > shared.MaxPlayers {
		return nil, fmt.Errorf("%w: got %d seats, want %d-%d", ErrPlayerCount, len(names), shared.MinPlayers, shared.MaxPlayers)
	}

	roster := shared.NormalizeNames(names)
	if len(roster) == 0 {
		s.logger.Warn("Start rejected, all names blank", "seats", len(names))
		return nil, ErrNoValidPlayers
	}
	seen := make(map[string]struct{}, len(roster))
	for _, name := range roster {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, name)
		}
		seen[name] = struct{}{}
	}

	s.roster = roster
	s.table = []shared.RoundRecord{}
	s.logger.Info("Game started", "players", roster)
	return s.Roster(), nil
}

// SubmitRound scores one round and appends it to the table. Every member of
// the bidding side gets +bid when won and -bid when lost; everyone else gets 0.
func (s *Session) SubmitRound(sub Submission) (shared.RoundRecord, error) {
	if err := s.validate(sub); err != nil {
		s.logger.Warn("Round rejected", "round", s.NextRound(), "error", err)
		return shared.RoundRecord{}, err
	}

	rec := shared.RoundRecord{
		Round:     s.NextRound(),
		Team:      shared.NewTeam(sub.Bidder, sub.Teammates...),
		DeckCount: sub.DeckCount,
		Bid:       sub.Bid,
		Outcome:   shared.OutcomeOf(sub.Won),
		Deltas:    make(map[string]int, len(s.roster)),
	}
	change := rec.Change()
	for _, name := range s.roster {
		if rec.Team.Has(name) {
			rec.Deltas[name] = change
		} else {
			rec.Deltas[name] = 0
		}
	}
	s.table = append(s.table, rec)

	s.logger.Info("Round submitted",
		"round", rec.Round,
		"team", rec.Team.Members(),
		"bid", sub.Bid,
		"outcome", rec.Outcome)
	return rec.Clone(), nil
}

func (s *Session) validate(sub Submission) error {
	if s.Phase() != InProgress {
		return ErrGameNotStarted
	}
	if shared.IndexOf(s.roster, sub.Bidder) == -1 {
		return fmt.Errorf("%w: bidder %q", ErrUnknownPlayer, sub.Bidder)
	}
	seen := make(map[string]struct{}, len(sub.Teammates))
	for _, mate := range sub.Teammates {
		if shared.IndexOf(s.roster, mate) == -1 {
			return fmt.Errorf("%w: teammate %q", ErrUnknownPlayer, mate)
		}
		if mate == sub.Bidder {
			return fmt.Errorf("%w: %q is the bidder", ErrInvalidTeammate, mate)
		}
		if _, dup := seen[mate]; dup {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidTeammate, mate)
		}
		seen[mate] = struct{}{}
	}

	bids, ok := sub.DeckCount.BidRange()
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidDeckCount, int(sub.DeckCount))
	}
	if !bids.Contains(sub.Bid) {
		return fmt.Errorf("%w: %d is not in %s step %d", ErrBidOutOfRange, sub.Bid, bids, bids.Step)
	}
	return nil
}

// Reset discards the roster and every round, returning to the setup phase.
func (s *Session) Reset() {
	s.roster = nil
	s.table = nil
	s.logger.Info("Game reset")
}
