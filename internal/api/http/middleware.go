package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"frontdesk-rental-backend/internal/apperr"
	"frontdesk-rental-backend/internal/config"
	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/metrics"
	"frontdesk-rental-backend/internal/security"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// RequestID tags the request context with the caller's X-Request-ID or a fresh one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
	})
}

// Observe logs one line per request and feeds the HTTP metrics. Routes are
// labelled by their template so path parameters do not explode cardinality.
func Observe(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			m.ObserveHTTP(r.Method, route, rec.status, elapsed)
			logger.HTTPRequest(r.Context(), r.Method, r.URL.Path, rec.status, elapsed.Milliseconds())
		})
	}
}

// Recover turns a handler panic into a 500 in the usual error shape.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(r.Context(), "Panic recovered",
					"panic", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				writeError(w, r, apperr.Internal(r.Method+" "+r.URL.Path, fmt.Errorf("panic: %v", rec)), "request")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// LimitBody caps request bodies; photo payloads arrive base64 inside JSON.
func LimitBody(maxBytes int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewCORS wraps h with the configured CORS policy. An empty origin list allows any origin.
func NewCORS(origins []string, h http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return c.Handler(h)
}

type sessionKey struct{}

// SessionFromContext returns the admin session attached by AuthMiddleware.
func SessionFromContext(ctx context.Context) (*security.SessionClaims, bool) {
	claims, ok := ctx.Value(sessionKey{}).(*security.SessionClaims)
	return claims, ok
}

// AuthMiddleware guards the administrative routes with the session cookie.
type AuthMiddleware struct {
	tokens  security.TokenManager
	domain  string
	enabled bool
}

func NewAuthMiddleware(tokens security.TokenManager, allowedDomain string, enabled bool) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, domain: allowedDomain, enabled: enabled}
}

func (a *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.enabled || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if config.GetSecurityLevel(r.Method, r.URL.Path) == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil || cookie.Value == "" {
			a.deny(w, r, apperr.Unauthorized("Sign in with an administrator account to continue"))
			return
		}
		claims, err := a.tokens.ValidateToken(cookie.Value)
		if err != nil {
			msg := "Session is invalid"
			if errors.Is(err, security.ErrExpiredToken) {
				msg = "Session has expired"
			}
			a.deny(w, r, apperr.Unauthorized(msg))
			return
		}
		if !security.EmailInDomain(claims.Email, a.domain) {
			a.deny(w, r, apperr.Forbidden("Your account is not permitted to access this page"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, claims)))
	})
}

// deny answers API clients with the error shape and sends browsers to sign-in
// or to the access-denied page.
func (a *AuthMiddleware) deny(w http.ResponseWriter, r *http.Request, err *apperr.Error) {
	if wantsJSON(r) {
		writeError(w, r, err, "authentication")
		return
	}
	target := "/auth/signin?callbackUrl=" + url.QueryEscape(r.URL.RequestURI())
	if err.Kind == apperr.KindForbidden {
		target = "/auth-error?error=AccessDenied"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// wantsJSON is false only for browser navigations, which ask for HTML.
func wantsJSON(r *http.Request) bool {
	return !strings.Contains(r.Header.Get("Accept"), "text/html")
}
