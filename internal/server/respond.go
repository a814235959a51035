package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/Tomlord1122/tudu-backend/internal/service"
)

const (
	msgUnauthorized = "Unauthorized"
	msgUserNotFound = "User not found"
	msgTodoNotFound = "Todo not found"
	msgInternal     = "Something went wrong"
)

// respondWithServiceError maps service errors onto the JSON error envelope.
// Anything unrecognised is logged with action and reported as a bare 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, service.ErrUserNotFound):
		hlog.FromRequest(r).Warn().Str("email", sessionEmail(r)).Msg("Session user has no matching row")
		respondWithError(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, service.ErrTodoNotFound):
		respondWithError(w, http.StatusNotFound, msgTodoNotFound)
	case errors.As(err, &verr):
		respondWithError(w, http.StatusBadRequest, verr.Message)
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("Error " + action)
		respondWithError(w, http.StatusInternalServerError, msgInternal)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Error marshaling JSON response")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Something went wrong"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
