package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zapponejosh/ethiocal/internal/calendar"
	"github.com/zapponejosh/ethiocal/internal/database"
)

// Response represents a standard API response.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// WriteCreated writes a 201 Created response.
func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, status int, message string, code ...string) error {
	errInfo := ErrorInfo{
		Message: message,
	}
	if len(code) > 0 {
		errInfo.Code = code[0]
	}

	return WriteJSON(w, status, Response{
		Success: false,
		Error:   &errInfo,
	})
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusNotFound, message, "NOT_FOUND")
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message, "BAD_REQUEST")
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusUnauthorized, message, "UNAUTHORIZED")
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusConflict, message, "CONFLICT")
}

// WriteTooManyRequests writes a 429 Too Many Requests response.
func WriteTooManyRequests(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusTooManyRequests, message, "RATE_LIMITED")
}

// WriteCalendarError maps calendar and database errors to a response.
// It reports false, writing nothing, for errors it does not recognize.
func WriteCalendarError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, calendar.ErrInvalidMonth):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_MONTH")
	case errors.Is(err, calendar.ErrInvalidDate):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_DATE")
	case errors.Is(err, calendar.ErrOutOfRange):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "OUT_OF_RANGE")
	case errors.Is(err, calendar.ErrUnsupportedStyle):
		WriteError(w, http.StatusBadRequest, err.Error(), "UNSUPPORTED_STYLE")
	case errors.Is(err, calendar.ErrUnknownCalendar):
		WriteError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_CALENDAR")
	case errors.Is(err, database.ErrNotFound):
		WriteNotFound(w, err.Error())
	case errors.Is(err, database.ErrDuplicate):
		WriteConflict(w, err.Error())
	default:
		return false
	}
	return true
}
