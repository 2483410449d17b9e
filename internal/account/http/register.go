package http

import (
	"encoding/json"
	"net/http"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/internal/account/service"
	"github.com/tidehub/accountd/pkg/httpx"
)

type RegisterHandler struct {
	Accounts *service.AccountService
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// ServeHTTP handles account registration.
//
//	@Summary		Register a new account
//	@Description	Creates an account with the given credentials and role. The
//	@Description	email must be confirmed via a verification code before the
//	@Description	account can authenticate.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration payload"
//	@Success		201		{object}	domain.Profile
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed request body"
//	@Failure		422		{object}	httpx.ErrorResponse	"Validation failure or duplicate email"
//	@Router			/v1/accounts [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	account, err := h.Accounts.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, domain.ProfileOf(account))
}
