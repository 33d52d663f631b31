package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rmarbach/todoboard-be/internal/services"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeServiceError maps service outcomes that every endpoint handles the
// same way. Not-found stays with the individual handlers because its wording
// is resource-specific.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeDetail(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrStoreUnavailable):
		log.Error().Err(err).Msg("Store unavailable")
		writeDetail(w, http.StatusServiceUnavailable, "Service unavailable")
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
