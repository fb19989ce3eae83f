package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

func respondWithJSON(w http.ResponseWriter, log zerolog.Logger, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

func respondWithError(w http.ResponseWriter, log zerolog.Logger, code int, msg string) {
	respondWithJSON(w, log, code, map[string]string{"error": msg})
}
