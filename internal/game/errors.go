package game

import "errors"

// Input validation failures. Callers wrap or inspect them with errors.Is;
// none of them leaves the session in a changed state.
var (
	ErrNoValidPlayers   = errors.New("at least one non-blank player name is required")
	ErrPlayerCount      = errors.New("player count out of range")
	ErrDuplicatePlayer  = errors.New("duplicate player name")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrGameNotStarted   = errors.New("game not started")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrInvalidTeammate  = errors.New("invalid teammate")
	ErrInvalidDeckCount = errors.New("invalid deck count")
	ErrBidOutOfRange    = errors.New("bid out of range")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrNoValidPlayers, "no_valid_players"},
	{ErrPlayerCount, "player_count"},
	{ErrDuplicatePlayer, "duplicate_player"},
	{ErrGameInProgress, "game_in_progress"},
	{ErrGameNotStarted, "game_not_started"},
	{ErrUnknownPlayer, "unknown_player"},
	{ErrInvalidTeammate, "invalid_teammate"},
	{ErrInvalidDeckCount, "invalid_deck_count"},
	{ErrBidOutOfRange, "bid_out_of_range"},
}

// ErrorCode returns the stable wire code for a validation error, or "" if err
// is not one of the errors above.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return ""
}

// IsValidation reports whether err is a user-input error that should be
// surfaced as a warning and re-prompted.
func IsValidation(err error) bool {
	return ErrorCode(err) != ""
}
