package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/quillpost/quillpost"
)

// Authenticator resolves a bearer token to a user id. *quillpost.Engine
// implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

// HandlerFunc is a handler that receives the admitted user id explicitly.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, userID int64)

// ErrorWriter renders a rejection. status is 401 or 500.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int)

// Gate admits or rejects requests based on their bearer token.
type Gate struct {
	auth       Authenticator
	logger     *slog.Logger
	writeError ErrorWriter
}

type GateOption func(*Gate)

func WithLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithErrorWriter replaces the default plain-text rejection body.
func WithErrorWriter(fn ErrorWriter) GateOption {
	return func(g *Gate) {
		if fn != nil {
			g.writeError = fn
		}
	}
}

func NewGate(auth Authenticator, opts ...GateOption) *Gate {
	g := &Gate{
		auth:       auth,
		logger:     slog.Default(),
		writeError: plainError,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Identify runs the gate on r without writing a response.
func (g *Gate) Identify(r *http.Request) (int64, error) {
	if g == nil || g.auth == nil {
		return 0, quillpost.ErrEngineNotReady
	}
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return 0, quillpost.ErrUnauthenticated
	}
	return g.auth.Authenticate(r.Context(), token)
}

// Require admits authenticated requests to next with the user id attached
// to the request context.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := g.admit(w, r)
		if !ok {
			return
		}
		next.ServeHTTP(w, r.WithContext(quillpost.WithUserID(r.Context(), userID)))
	})
}

// Wrap is Require for handlers that take the user id as an argument.
func (g *Gate) Wrap(h HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := g.admit(w, r)
		if !ok {
			return
		}
		h(w, r.WithContext(quillpost.WithUserID(r.Context(), userID)), userID)
	})
}

func (g *Gate) admit(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := g.Identify(r)
	if err == nil {
		return userID, true
	}

	if errors.Is(err, quillpost.ErrUnauthenticated) {
		g.writeError(w, r, http.StatusUnauthorized)
		return 0, false
	}
	g.logger.ErrorContext(r.Context(), "auth gate failure", "path", r.URL.Path, "error", err)
	g.writeError(w, r, http.StatusInternalServerError)
	return 0, false
}

// UserIDFromContext returns the id the gate attached to the request.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	return quillpost.UserIDFromContext(ctx)
}

// BearerToken extracts the credential of a "Bearer" authorization value.
// The scheme match is case-sensitive and the token must be non-empty.
func BearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

func plainError(w http.ResponseWriter, _ *http.Request, status int) {
	switch status {
	case http.StatusUnauthorized:
		http.Error(w, "unauthorized", status)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
