package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tidehub/accountd/internal/account/service"
	"github.com/tidehub/accountd/pkg/httpx"
)

// SessionCookieName is the remember-me session cookie. It carries the
// refresh token so browser clients can rotate without local storage.
const SessionCookieName = "accountd_session"

type LoginHandler struct {
	Accounts   *service.AccountService
	SessionTTL time.Duration
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// ServeHTTP handles credential authentication.
//
//	@Summary		Authenticate an account
//	@Description	Verifies email and password and returns an access/refresh
//	@Description	token pair. When remember is set a session cookie holding
//	@Description	the refresh token is also established.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed request body"
//	@Failure		404		{object}	httpx.ErrorResponse	"Unknown email"
//	@Failure		422		{object}	httpx.ErrorResponse	"Unconfirmed email or wrong password"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	pair, err := h.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	if req.Remember {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    pair.RefreshToken,
			Path:     "/",
			Expires:  time.Now().Add(h.SessionTTL),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
