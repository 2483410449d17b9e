package http

import (
	"encoding/json"
	"net/http"

	"github.com/tidehub/accountd/internal/account/service"
	"github.com/tidehub/accountd/pkg/httpx"
	"github.com/tidehub/accountd/pkg/jwtx"
)

type RefreshHandler struct {
	Accounts        *service.AccountService
	ExpiredVerifier jwtx.ExpiredVerifier
}

type RefreshRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ServeHTTP rotates a refresh token.
//
//	@Summary		Refresh a token pair
//	@Description	Accepts the expired access token plus the current refresh
//	@Description	token and returns a fresh pair. The access token's signature,
//	@Description	issuer, and audience are still verified; only its expiry is
//	@Description	waived. The presented refresh token is invalidated.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Expired access token and refresh token"
//	@Success		200		{object}	domain.TokenPair
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed request body"
//	@Failure		401		{object}	httpx.ErrorResponse	"Invalid access token or refresh token"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		writeBadRequest(w, "access_token and refresh_token are required")
		return
	}

	// The account identity comes from the expired access token, so an
	// attacker holding only a refresh token value cannot use it.
	claims, err := h.ExpiredVerifier.VerifyExpired(req.AccessToken)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "access token is invalid")
		return
	}

	pair, err := h.Accounts.RefreshTokens(r.Context(), claims.Subject, req.RefreshToken)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
