package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/music-roulette/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Transport-level error codes. Domain codes come from model.Error.
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeRateLimited    = "RATE_LIMITED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// kindStatus maps domain error kinds to HTTP statuses
var kindStatus = map[model.ErrorKind]int{
	model.KindNotFound:           http.StatusNotFound,
	model.KindValidation:         http.StatusBadRequest,
	model.KindConflict:           http.StatusConflict,
	model.KindForbidden:          http.StatusForbidden,
	model.KindPreconditionFailed: http.StatusConflict,
	model.KindInternal:           http.StatusInternalServerError,
}

// messages are English fallbacks; clients should key off the code
var messages = map[string]string{
	model.ErrRoomNotFound.Code:       "Room not found",
	model.ErrGameInProgress.Code:     "Game is already in progress",
	model.ErrNameTaken.Code:          "Name is already taken in this room",
	model.ErrInvalidPhase.Code:       "Not allowed in the current phase",
	model.ErrNotEnoughPlayers.Code:   "Not enough players to start",
	model.ErrNotHost.Code:            "Only the host can perform this action",
	model.ErrNotInRoom.Code:          "Player is not in this room",
	model.ErrLimitReached.Code:       "Submission limit reached",
	model.ErrCodeSpaceExhausted.Code: "Could not allocate a room code",
	model.ErrInvalidName.Code:        "Name must be 1-32 characters",
	model.ErrInvalidSong.Code:        "Song must be 1-200 characters",
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		status, ok := kindStatus[domainErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		msg, ok := messages[domainErr.Code]
		if !ok {
			msg = domainErr.Code
		}
		return &httpError{status, APIError{domainErr.Code, msg}}
	}

	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewRateLimitedError creates a too-many-requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{CodeRateLimited, "Too many requests"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
