package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mgpai22/momentnav/internal/editor"
	"github.com/mgpai22/momentnav/internal/logging"
	"github.com/mgpai22/momentnav/internal/navigator"
)

func writeJSON(w http.ResponseWriter, logger *logging.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorw("JSON encode failed", "error", err)
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, h.logger, status, errResponse{Error: msg})
}

// maps domain errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, navigator.ErrNoMedia):
		return http.StatusNotFound
	case errors.Is(err, editor.ErrUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, editor.ErrNoTimeline), errors.Is(err, editor.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
