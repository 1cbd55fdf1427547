package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"winelabel/internal/dto"
	applog "winelabel/internal/log"
	"winelabel/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// decode reads a JSON body into dst and validates it. It answers the request itself
// when the body is unusable.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		applog.Debug(r.Context(), "invalid request payload", "error", err)
		writeJSONError(w, http.StatusBadRequest, "invalid request payload")
		return false
	}
	if err := a.validator.Validate(dst); err != nil {
		fail(w, r, err, "invalid request payload")
		return false
	}
	return true
}

// fail maps err to a status. Validation errors keep their field details.
func fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	default:
		applog.Error(r.Context(), message, "error", err)
		writeJSONError(w, http.StatusInternalServerError, message)
	}
}
