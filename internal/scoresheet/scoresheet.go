// Package scoresheet reads hand-written game logs and replays them through a
// session, so a finished game can be tallied, charted or exported offline.
package scoresheet

import (
	"errors"
	"fmt"
	"io"

	"blackqueen/internal/game"
	"blackqueen/internal/shared"

	"gopkg.in/yaml.v3"
)

// Sheet is a complete game log.
//
//	players: [Ana, Bo, Cy, Di]
//	rounds:
//	  - {bidder: Ana, teammates: [Bo], decks: 1, bid: 100, result: won}
//	  - {bidder: Cy, decks: 2, bid: 150, result: lost}
type Sheet struct {
	Players []string `yaml:"players"`
	Rounds  []Round  `yaml:"rounds"`
}

// Round is one line of the log.
type Round struct {
	Bidder    string   `yaml:"bidder"`
	Teammates []string `yaml:"teammates,omitempty"`
	Decks     int      `yaml:"decks"`
	Bid       int      `yaml:"bid"`
	Result    string   `yaml:"result"`
}

// RoundError reports the first line of a sheet that could not be scored.
type RoundError struct {
	Round int // 1-based position in the sheet
	Err   error
}

func (e *RoundError) Error() string {
	return fmt.Sprintf("round %d: %v", e.Round, e.Err)
}

func (e *RoundError) Unwrap() error {
	return e.Err
}

// ErrInvalidResult is returned for a result other than won or lost.
var ErrInvalidResult = errors.New(`result must be "won" or "lost"`)

// Load decodes a sheet. Unknown keys are rejected so typos do not silently drop data.
func Load(r io.Reader) (*Sheet, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sheet Sheet
	if err := dec.Decode(&sheet); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty score sheet")
		}
		return nil, fmt.Errorf("failed to decode score sheet: %w", err)
	}
	return &sheet, nil
}

// Submission converts the round into a game submission.
func (r Round) Submission() (game.Submission, error) {
	outcome := shared.Outcome(r.Result)
	if !outcome.Valid() {
		return game.Submission{}, fmt.Errorf("%w: got %q", ErrInvalidResult, r.Result)
	}
	return game.Submission{
		Bidder:    r.Bidder,
		Teammates: r.Teammates,
		DeckCount: shared.DeckCount(r.Decks),
		Bid:       r.Bid,
		Won:       outcome == shared.Won,
	}, nil
}

// Replay starts a game on s with the sheet's players and submits every round
// in order. It stops at the first round that fails validation.
func (sh *Sheet) Replay(s *game.Session) error {
	if _, err := s.StartGame(sh.Players); err != nil {
		return fmt.Errorf("players: %w", err)
	}
	for i, r := range sh.Rounds {
		sub, err := r.Submission()
		if err != nil {
			return &RoundError{Round: i + 1, Err: err}
		}
		if _, err := s.SubmitRound(sub); err != nil {
			return &RoundError{Round: i + 1, Err: err}
		}
	}
	return nil
}

// FromSession writes the session back into sheet form.
func FromSession(s *game.Session) *Sheet {
	sheet := &Sheet{Players: s.Roster()}
	for _, rec := range s.Table() {
		r := Round{
			Bidder: rec.Team.Bidder,
			Decks:  int(rec.DeckCount),
			Bid:    rec.Bid,
			Result: string(rec.Outcome),
		}
		if len(rec.Team.Teammates) > 0 {
			r.Teammates = rec.Team.Teammates
		}
		sheet.Rounds = append(sheet.Rounds, r)
	}
	return sheet
}

// Write encodes the sheet as YAML.
func (sh *Sheet) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(sh); err != nil {
		return fmt.Errorf("failed to encode score sheet: %w", err)
	}
	return enc.Close()
}
