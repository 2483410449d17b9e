package http

import (
	"encoding/json"
	"net/http"

	"github.com/tidehub/accountd/internal/account/service"
	"github.com/tidehub/accountd/pkg/httpx"
)

type MeHandler struct {
	Accounts *service.AccountService
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// HandleGet returns the authenticated account's profile.
//
//	@Summary		Get own account
//	@Description	Returns the public projection of the authenticated account.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	domain.Profile
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		404	{object}	httpx.ErrorResponse	"Account no longer exists"
//	@Router			/v1/accounts/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	accountID := httpx.AccountIDFromCtx(r.Context())
	if accountID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing account identity")
		return
	}

	profile, err := h.Accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, profile)
}

// HandleDelete removes the authenticated account.
//
//	@Summary		Delete own account
//	@Description	Permanently deletes the authenticated account after
//	@Description	re-verifying its password. Verification codes belonging to
//	@Description	the account are removed with it.
//	@Tags			Accounts
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	DeleteAccountRequest	true	"Current password"
//	@Success		204		"Account deleted"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Failure		422		{object}	httpx.ErrorResponse	"Wrong password"
//	@Router			/v1/accounts/me [delete].
func (h *MeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	accountID := httpx.AccountIDFromCtx(r.Context())
	if accountID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing account identity")
		return
	}

	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := h.Accounts.DeleteAccount(r.Context(), accountID, req.Password); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
