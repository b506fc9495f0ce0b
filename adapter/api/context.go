// Package api exposes the scheduling backend over HTTP/JSON, built on
// net/http.ServeMux — no router or framework anywhere in the corpus this
// repo was grounded on imports a third-party HTTP router, and the
// teacher's own cmd/worker health/readiness endpoints are served the
// same way.
package api

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const accountIDCtxKey ctxKey = "api_account_id"

func withAccountID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, accountIDCtxKey, id)
}

// accountIDFromContext returns the authenticated caller's account id, set
// by requireAPIKey after a successful API-key resolution.
func accountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(accountIDCtxKey).(uuid.UUID)
	return id, ok
}
