// Package httpapi exposes the account, session and message operations over
// HTTP with JSON bodies.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/quillpost/quillpost"
	"github.com/quillpost/quillpost/middleware"
)

// Accounts is the engine surface the handlers use. *quillpost.Engine
// implements it.
type Accounts interface {
	Login(ctx context.Context, login, password string) (string, error)
	Logout(ctx context.Context, token string) error
	CreateAccount(ctx context.Context, login, password string) (quillpost.UserRecord, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
}

type Users interface {
	GetUserByID(ctx context.Context, id int64) (quillpost.UserRecord, error)
	ChangeLogin(ctx context.Context, id int64, newLogin string) error
	Delete(ctx context.Context, id int64) error
}

type Messages interface {
	List(ctx context.Context, limit, offset int64) ([]quillpost.Message, error)
	Get(ctx context.Context, id int64) (quillpost.Message, error)
	Create(ctx context.Context, userID int64, text string) (quillpost.Message, error)
	UpdateText(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Deps wires the server. Metrics and HTTPMetrics are optional.
type Deps struct {
	Accounts Accounts
	Auth     middleware.Authenticator
	Users    Users
	Messages Messages

	// Ready is consulted by /readyz; every check must pass.
	Ready        map[string]Check
	ReadyTimeout time.Duration

	Metrics     http.Handler
	HTTPMetrics *middleware.HTTPMetrics
	Logger      *slog.Logger
}

// Server holds the routes. It is safe for concurrent use.
type Server struct {
	accounts Accounts
	users    Users
	messages Messages
	gate     *middleware.Gate

	ready        map[string]Check
	readyTimeout time.Duration
	metrics      http.Handler
	httpMetrics  *middleware.HTTPMetrics
	logger       *slog.Logger
}

func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	readyTimeout := deps.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = 2 * time.Second
	}

	s := &Server{
		accounts:     deps.Accounts,
		users:        deps.Users,
		messages:     deps.Messages,
		ready:        deps.Ready,
		readyTimeout: readyTimeout,
		metrics:      deps.Metrics,
		httpMetrics:  deps.HTTPMetrics,
		logger:       logger.With("component", "http"),
	}
	s.gate = middleware.NewGate(deps.Auth,
		middleware.WithLogger(s.logger),
		middleware.WithErrorWriter(s.writeStatus),
	)
	return s
}

// Handler returns the routed handler wrapped in access logging, request
// metrics and CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)

	mws := []func(http.Handler) http.Handler{middleware.Logging(s.logger)}
	if s.httpMetrics != nil {
		mws = append(mws, s.httpMetrics.Middleware)
	}
	mws = append(mws, middleware.CORS)
	return middleware.Chain(mux, mws...)
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("DELETE /auth/session", s.gate.Wrap(s.handleLogout))

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.Handle("GET /users/{id}", s.gate.Wrap(s.handleGetUser))
	mux.Handle("DELETE /users/{id}", s.gate.Wrap(s.handleDeleteUser))
	mux.Handle("PUT /users/{id}/password", s.gate.Wrap(s.handleChangePassword))
	mux.Handle("PUT /users/{id}/login", s.gate.Wrap(s.handleChangeLogin))

	mux.Handle("GET /messages", s.gate.Wrap(s.handleListMessages))
	mux.Handle("POST /messages", s.gate.Wrap(s.handleCreateMessage))
	mux.Handle("GET /messages/{id}", s.gate.Wrap(s.handleGetMessage))
	mux.Handle("PUT /messages/{id}", s.gate.Wrap(s.handleUpdateMessage))
	mux.Handle("DELETE /messages/{id}", s.gate.Wrap(s.handleDeleteMessage))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
}
