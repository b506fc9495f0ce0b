package api

import (
	"net/http"

	accountApp "github.com/nitro-scheduler/nitro/internal/account/application"
)

type createAccountRequest struct {
	SecretCode string `json:"secret_code"`
}

// createAccount bootstraps a new tenant. Gated by CreateAccountCommand's
// own shared secret rather than an API key, since the caller has none yet.
func (h *handlers) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	account, err := h.c.BootstrapHandler.Handle(r.Context(), accountApp.CreateAccountCommand{SecretCode: req.SecretCode})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountDTO(account))
}
