package api

import (
	"encoding/json"
	"net/http"

	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
)

// errorResponse is the JSON body written for any failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an apperror.Kind to the HTTP status it corresponds to.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindBadClientData, apperror.KindUnidentifiableClient:
		return http.StatusBadRequest
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err through apperror.KindOf and writes the matching
// status and a JSON error body. Internal-kind errors never leak their
// underlying message to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := statusFor(kind)

	msg := err.Error()
	if kind == apperror.KindInternal {
		logger := loggerFromRequest(r)
		logger.Error("internal error", "error", err)
		msg = "internal error"
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.BadClientData("malformed request body", err)
	}
	return nil
}
