package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/tidehub/accountd/internal/account/service"
	"github.com/tidehub/accountd/pkg/jwtx"
	"github.com/tidehub/accountd/pkg/slogx"
)

type LogoutHandler struct {
	Accounts *service.AccountService
	Verifier jwtx.Verifier
}

// ServeHTTP signs the caller out.
//
//	@Summary		Sign out
//	@Description	Clears the session cookie. When a valid bearer token is
//	@Description	presented the account's refresh token is also revoked, so
//	@Description	sign-out works for anonymous cookie-only callers too.
//	@Tags			Auth
//	@Success		204	"Signed out"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := h.Verifier.Verify(strings.TrimPrefix(auth, "Bearer ")); err == nil {
			if err := h.Accounts.SignOut(r.Context(), claims.Subject); err != nil {
				slogx.FromContext(r.Context()).Warn("refresh token revoke failed",
					"account_id", claims.Subject, "err", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
