package model

// ErrorKind classifies domain errors independently of any transport
type ErrorKind string

const (
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindValidation         ErrorKind = "VALIDATION"
	KindConflict           ErrorKind = "CONFLICT"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindPreconditionFailed ErrorKind = "PRECONDITION_FAILED"
	KindInternal           ErrorKind = "INTERNAL"
)

// Error is a domain error carrying a stable symbolic code
type Error struct {
	Code string
	Kind ErrorKind
}

func (e *Error) Error() string {
	return e.Code
}

func newError(code string, kind ErrorKind) *Error {
	return &Error{Code: code, Kind: kind}
}

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound       = newError("ROOM_NOT_FOUND", KindNotFound)
	ErrGameInProgress     = newError("GAME_IN_PROGRESS", KindPreconditionFailed)
	ErrNameTaken          = newError("NAME_TAKEN", KindConflict)
	ErrInvalidPhase       = newError("INVALID_PHASE", KindPreconditionFailed)
	ErrNotEnoughPlayers   = newError("NOT_ENOUGH_PLAYERS", KindPreconditionFailed)
	ErrNotHost            = newError("NOT_HOST", KindForbidden)
	ErrNotInRoom          = newError("NOT_IN_ROOM", KindPreconditionFailed)
	ErrLimitReached       = newError("LIMIT_REACHED", KindPreconditionFailed)
	ErrCodeSpaceExhausted = newError("CODE_SPACE_EXHAUSTED", KindInternal)

	// Validation errors
	ErrInvalidName = newError("INVALID_NAME", KindValidation)
	ErrInvalidSong = newError("INVALID_SONG", KindValidation)
)
