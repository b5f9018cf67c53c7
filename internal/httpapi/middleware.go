package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/alexanderramin/ambitions/internal/contract"
	"github.com/alexanderramin/ambitions/internal/domain"
)

type callerKey struct{}

// callerEmail returns the authenticated email stored by authed.
func callerEmail(ctx context.Context) string {
	email, _ := ctx.Value(callerKey{}).(string)
	return email
}

// authed rejects unauthenticated requests with 401 before h runs.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			header := r.Header.Get("Authorization")
			if header == "" {
				s.writeJSON(w, http.StatusUnauthorized, contract.Unauthenticated("missing Authorization header"))
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				s.writeJSON(w, http.StatusUnauthorized, contract.Unauthenticated("invalid Authorization header format"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
				s.writeJSON(w, http.StatusUnauthorized, contract.Unauthenticated("invalid token"))
				return
			}
		}
		email := domain.NormalizeEmail(r.Header.Get(EmailHeader))
		if email == "" {
			s.writeJSON(w, http.StatusUnauthorized, contract.Unauthenticated("missing "+EmailHeader+" header"))
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, email)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// traced opens a server span per request on the global tracer provider, which
// is a no-op unless telemetry is enabled.
func (s *Server) traced(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
