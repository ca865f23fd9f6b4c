package protocol

import (
	"encoding/json"
	"errors"

	"blackqueen/internal/game"
	"blackqueen/internal/shared"
)

// Message represents a generic WebSocket message structure.
type Message struct {
	Type    string          `json:"type"`              // Type of the message (e.g., "start_game", "submit_round")
	Payload json.RawMessage `json:"payload,omitempty"` // Raw JSON payload, decoded per type
}

// Message types.
const (
	TypeStartGame      = "start_game"
	TypeSubmitRound    = "submit_round"
	TypeResetGame      = "reset_game"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeState          = "state"
	TypeRoundSubmitted = "round_submitted"
	TypeError          = "error"
)

// --- Client -> Server Payload Structs ---

type StartGamePayload struct {
	Names []string `json:"names"` // One entry per seat, blanks allowed
}

type SubmitRoundPayload struct {
	Bidder    string   `json:"bidder"`
	Teammates []string `json:"teammates"`
	DeckCount int      `json:"deck_count"`
	Bid       int      `json:"bid"`
	Result    string   `json:"result"` // "won" or "lost"
}

// Submission converts the wire payload into a game submission.
func (p SubmitRoundPayload) Submission() (game.Submission, error) {
	outcome := shared.Outcome(p.Result)
	if !outcome.Valid() {
		return game.Submission{}, ErrInvalidResult
	}
	return game.Submission{
		Bidder:    p.Bidder,
		Teammates: p.Teammates,
		DeckCount: shared.DeckCount(p.DeckCount),
		Bid:       p.Bid,
		Won:       outcome == shared.Won,
	}, nil
}

// ErrInvalidResult is returned when a round result is neither "won" nor "lost".
var ErrInvalidResult = errors.New(`result must be "won" or "lost"`)

// --- Server -> Client Payload Structs ---

type RoundRow struct {
	Round     int            `json:"round"`
	Bidder    string         `json:"bidder"`
	Teammates []string       `json:"teammates"`
	DeckCount int            `json:"deck_count"`
	Bid       int            `json:"bid"`
	Result    string         `json:"result"`
	Deltas    map[string]int `json:"deltas"`
}

type HistorySeries struct {
	Player string `json:"player"`
	Totals []int  `json:"totals"` // Cumulative total after each round, index 0 is round 1
}

type StatePayload struct {
	SessionCode string          `json:"session_code"`
	Phase       game.Phase      `json:"phase"`
	Roster      []string        `json:"roster"`
	NextRound   int             `json:"next_round"`
	Rounds      []RoundRow      `json:"rounds"`
	Standings   []game.Standing `json:"standings"`
	Leader      string          `json:"leader,omitempty"`
	History     []HistorySeries `json:"history"`
}

type RoundSubmittedPayload struct {
	Round  int    `json:"round"`
	Bidder string `json:"bidder"`
	Result string `json:"result"`
}

type ErrorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// NewState snapshots a session into its wire view.
func NewState(code string, s *game.Session) StatePayload {
	table := s.Table()
	rows := make([]RoundRow, len(table))
	for i, rec := range table {
		rows[i] = NewRoundRow(rec)
	}

	summary := s.Summary()
	state := StatePayload{
		SessionCode: code,
		Phase:       s.Phase(),
		Roster:      s.Roster(),
		NextRound:   s.NextRound(),
		Rounds:      rows,
		Standings:   summary.Standings,
		History:     []HistorySeries{},
	}
	if summary.Rounds > 0 {
		state.Leader = summary.Leader
	}
	for name, hist := range s.Histories() {
		series := HistorySeries{Player: name, Totals: []int{}}
		for _, total := range hist {
			series.Totals = append(series.Totals, total)
		}
		state.History = append(state.History, series)
	}
	return state
}

// NewRoundRow flattens a round record.
func NewRoundRow(rec shared.RoundRecord) RoundRow {
	mates := rec.Team.Teammates
	if mates == nil {
		mates = []string{}
	}
	return RoundRow{
		Round:     rec.Round,
		Bidder:    rec.Team.Bidder,
		Teammates: mates,
		DeckCount: int(rec.DeckCount),
		Bid:       rec.Bid,
		Result:    string(rec.Outcome),
		Deltas:    rec.Deltas,
	}
}

// NewError builds the error payload for err, tagging validation failures with their code.
func NewError(err error) ErrorPayload {
	code := game.ErrorCode(err)
	if code == "" && errors.Is(err, ErrInvalidResult) {
		code = "invalid_result"
	}
	return ErrorPayload{Code: code, Message: err.Error()}
}

// Helper function to create a JSON message
func NewMessage(msgType string, payload interface{}) ([]byte, error) {
	// Handle nil payload specifically
	if payload == nil {
		return json.Marshal(Message{Type: msgType})
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg := Message{
		Type:    msgType,
		Payload: payloadBytes,
	}
	return json.Marshal(msg)
}
