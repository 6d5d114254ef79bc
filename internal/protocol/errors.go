package protocol

// Rejection codes. Every one of these is recoverable: the session stays
// playable and no state changes when they fire.
const (
	ErrBadRequest = "E_BAD_REQUEST"
	ErrOutOfRange = "E_OUT_OF_RANGE"
	ErrMismatch   = "E_MISMATCH"
	ErrSessionWon = "E_SESSION_WON"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest: {},
	ErrOutOfRange: {},
	ErrMismatch:   {},
	ErrSessionWon: {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
