package http

import (
	"net/http"

	"github.com/tidehub/accountd/internal/account/domain"
	"github.com/tidehub/accountd/pkg/httpx"
	"github.com/tidehub/accountd/pkg/slogx"
)

// writeDomainError maps the service error taxonomy onto HTTP statuses:
// not_found 404, invalid_data 422, unauthorized 401, anything else 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch kind := domain.KindOf(err); kind {
	case domain.KindNotFound:
		httpx.WriteError(w, http.StatusNotFound, string(kind), err.Error())
	case domain.KindInvalidData:
		httpx.WriteError(w, http.StatusUnprocessableEntity, string(kind), err.Error())
	case domain.KindUnauthorized:
		httpx.WriteError(w, http.StatusUnauthorized, string(kind), err.Error())
	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
	}
}

func writeBadRequest(w http.ResponseWriter, message string) {
	httpx.WriteError(w, http.StatusBadRequest, "bad_request", message)
}
