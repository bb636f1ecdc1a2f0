// Package handlers provides REST API handlers for the address book.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/kimhsiao/addressbook/internal/errors"
	"github.com/kimhsiao/addressbook/internal/logging"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string              `json:"error"`
	Code  apperrors.ErrorCode `json:"code,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error("failed to encode response", err)
	}
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message})
}

// respondWithAppError maps err's code to a status and writes the user-facing message.
func respondWithAppError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := statusFor(code)

	message := err.Error()
	if appErr, ok := asAppError(err); ok {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logging.Error("request failed", err, map[string]interface{}{"code": string(code)})
	}
	respondWithJSON(w, status, errorResponse{Error: message, Code: code})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrInvalid, apperrors.ErrValidation, apperrors.ErrImportFailed:
		return http.StatusBadRequest
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrDuplicate:
		return http.StatusConflict
	case apperrors.ErrConnection, apperrors.ErrMigration, apperrors.ErrConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func asAppError(err error) (*apperrors.AppError, bool) {
	var appErr *apperrors.AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad contact id (%v)", raw)
	}
	return id, nil
}
