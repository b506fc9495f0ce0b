package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/nitro-scheduler/nitro/internal/app"
	"github.com/nitro-scheduler/nitro/internal/shared/apperror"
)

// handlers bundles the container every route handler reads its
// command/query handlers from.
type handlers struct {
	c *app.Container
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.BadClientData("invalid id", err)
	}
	return id, nil
}

// mustAccountID returns the caller's authenticated account id. Every
// route but the health/readiness probes and account bootstrap runs
// behind requireAPIKey, which always sets this before a handler runs.
func mustAccountID(r *http.Request) uuid.UUID {
	id, _ := accountIDFromContext(r.Context())
	return id
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperror.BadClientData("invalid "+name+" path parameter", err)
	}
	return id, nil
}

func queryInt64(r *http.Request, name string, required bool) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if required {
			return 0, apperror.BadClientData("missing "+name+" query parameter", nil)
		}
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.BadClientData("invalid "+name+" query parameter", err)
	}
	return v, nil
}
