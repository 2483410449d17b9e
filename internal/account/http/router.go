package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tidehub/accountd/internal/account/service"
	"github.com/tidehub/accountd/internal/account/store"
	"github.com/tidehub/accountd/pkg/httpx"
	"github.com/tidehub/accountd/pkg/jwtx"
	"github.com/tidehub/accountd/pkg/slogx"

	_ "github.com/tidehub/accountd/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier        jwtx.Verifier
	expiredVerifier jwtx.ExpiredVerifier
	buildVersion    string
	startTime       time.Time
	logger          *slog.Logger

	store               store.Store
	AccountService      *service.AccountService
	VerificationService *service.VerificationService

	// SessionTTL bounds the remember-me cookie lifetime.
	SessionTTL time.Duration
}

func NewRouter(
	verifier jwtx.Verifier,
	expiredVerifier jwtx.ExpiredVerifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:             http.NewServeMux(),
		verifier:        verifier,
		expiredVerifier: expiredVerifier,
		buildVersion:    buildVersion,
		startTime:       time.Now(),
		store:           st,
		logger:          logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccounts()
	r.registerAuth()
	r.registerCodes()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Account Lifecycle Service API
//	@version		0.1.0
//	@description	Account registration, credential verification, and token
//	@description	lifecycle management. Access tokens are HS256-signed JWTs;
//	@description	refresh tokens are opaque single-use values rotated on every
//	@description	refresh.
//
//	@contact.name				TideHub Platform Team
//	@contact.url				https://github.com/tidehub/accountd
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccounts() {
	registerHandler := &RegisterHandler{Accounts: r.AccountService}
	r.Mux.Handle("POST /v1/accounts",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	meHandler := &MeHandler{Accounts: r.AccountService}
	r.Mux.Handle("GET /v1/accounts/me",
		httpx.Chain(http.HandlerFunc(meHandler.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/accounts/me",
		httpx.Chain(http.HandlerFunc(meHandler.HandleDelete),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{Accounts: r.AccountService, SessionTTL: r.SessionTTL}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	refreshHandler := &RefreshHandler{
		Accounts:        r.AccountService,
		ExpiredVerifier: r.expiredVerifier,
	}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	logoutHandler := &LogoutHandler{Accounts: r.AccountService, Verifier: r.verifier}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCodes() {
	codesHandler := &CodesHandler{Codes: r.VerificationService}
	r.Mux.Handle("POST /v1/accounts/codes",
		httpx.Chain(http.HandlerFunc(codesHandler.HandleIssue),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/accounts/codes/confirm",
		httpx.Chain(http.HandlerFunc(codesHandler.HandleConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
}
