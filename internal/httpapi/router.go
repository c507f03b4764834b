package httpapi

import (
	"net/http"

	"nexusai/internal/logging"
	"nexusai/internal/manager"
	"nexusai/internal/ratelimit"
	"nexusai/internal/utils"
)

// Dependencies aggregates the services the HTTP layer needs.
// AccessLog is optional; when nil no access log is written.
type Dependencies struct {
	Manager   *manager.Manager
	RateLimit ratelimit.Limiter
	Store     manager.CredentialStore
	AccessLog *logging.AccessLogger
	Logger    *utils.Logger
}

// NewRouter builds the HTTP mux for the gateway API.
func NewRouter(deps *Dependencies) *http.ServeMux {
	if deps.RateLimit == nil {
		deps.RateLimit = ratelimit.NewNoopLimiter()
	}
	if deps.Logger == nil {
		deps.Logger = utils.NewLogger("httpapi")
	}

	handler := NewGatewayHandler(deps)
	mux := http.NewServeMux()

	limited := rateLimitMiddleware(deps.RateLimit, deps.Logger)
	withID := requestIDMiddleware()
	if deps.AccessLog != nil {
		logged := accessLogMiddleware(deps.AccessLog)
		inner := withID
		withID = func(next http.Handler) http.Handler {
			return inner(logged(next))
		}
	}

	mux.Handle("/api/v1/generate/code", withID(limited(http.HandlerFunc(handler.GenerateCode))))
	mux.Handle("/api/v1/generate/docs", withID(limited(http.HandlerFunc(handler.GenerateDocs))))
	mux.Handle("/api/v1/generate/tests", withID(limited(http.HandlerFunc(handler.GenerateTests))))
	mux.Handle("/api/v1/generate/fix", withID(limited(http.HandlerFunc(handler.FixBugs))))
	mux.Handle("/api/v1/generate/optimize", withID(limited(http.HandlerFunc(handler.OptimizeCode))))

	mux.Handle("/api/v1/providers", withID(http.HandlerFunc(handler.Providers)))
	mux.Handle("/api/v1/providers/active", withID(http.HandlerFunc(handler.SetActive)))

	mux.Handle("/api/v1/credentials", withID(http.HandlerFunc(handler.SetCredential)))
	mux.Handle("/api/v1/credentials/save", withID(http.HandlerFunc(handler.SaveCredentials)))
	mux.Handle("/api/v1/credentials/load", withID(http.HandlerFunc(handler.LoadCredentials)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return mux
}
