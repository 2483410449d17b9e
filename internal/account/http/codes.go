package http

import (
	"encoding/json"
	"net/http"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/internal/account/service"
)

type CodesHandler struct {
	Codes *service.VerificationService
}

type IssueCodeRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

type ConfirmCodeRequest struct {
	Code    string `json:"code"`
	Purpose string `json:"purpose"`
}

// HandleIssue issues a fresh verification code.
//
//	@Summary		Issue a verification code
//	@Description	Emails a 4-digit code to the account owning the address.
//	@Description	Any earlier code for the same purpose stops working. The
//	@Description	code itself is never returned in the response.
//	@Tags			Codes
//	@Accept			json
//	@Param			request	body	IssueCodeRequest	true	"Target email and purpose"
//	@Success		202		"Code dispatched"
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed body or unknown purpose"
//	@Failure		404		{object}	httpx.ErrorResponse	"Unknown email"
//	@Router			/v1/accounts/codes [post].
func (h *CodesHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	var req IssueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	purpose, ok := domain.ParsePurpose(req.Purpose)
	if !ok {
		writeBadRequest(w, "unknown purpose")
		return
	}

	if _, err := h.Codes.IssueCode(r.Context(), req.Email, purpose); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleConfirm consumes a verification code.
//
//	@Summary		Confirm a verification code
//	@Description	Validates and consumes a previously issued code. For the
//	@Description	email_confirm purpose the account's email is marked as
//	@Description	confirmed. Codes are single use.
//	@Tags			Codes
//	@Accept			json
//	@Param			request	body	ConfirmCodeRequest	true	"Code and purpose"
//	@Success		204		"Code consumed"
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed body or unknown purpose"
//	@Failure		422		{object}	httpx.ErrorResponse	"Invalid, superseded, or already used code"
//	@Router			/v1/accounts/codes/confirm [post].
func (h *CodesHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	purpose, ok := domain.ParsePurpose(req.Purpose)
	if !ok {
		writeBadRequest(w, "unknown purpose")
		return
	}

	if _, err := h.Codes.ConsumeCode(r.Context(), purpose, req.Code); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
