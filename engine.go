package quillpost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillpost/quillpost/internal/flows"
	"github.com/quillpost/quillpost/password"
	"github.com/quillpost/quillpost/session"
)

// Engine runs login, token checks and account operations against an
// injected session store and user provider.
type Engine struct {
	config       Config
	rawStore     session.Store
	ownedStore   *session.MemoryStore
	sessionStore session.Store
	issuer       *session.Issuer
	passwords    *password.Mixed
	userProvider UserProvider
	metrics      *Metrics
	logger       *slog.Logger
	flowDeps     flows.Deps
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Close releases a store the engine created itself. Injected stores and
// Redis clients belong to the caller.
func (e *Engine) Close() {
	if e == nil || e.ownedStore == nil {
		return
	}
	_ = e.ownedStore.Close()
}

// Ping checks that the session store answers within the store timeout.
func (e *Engine) Ping(ctx context.Context) error {
	if e == nil || e.rawStore == nil {
		return ErrEngineNotReady
	}
	p, ok := e.rawStore.(pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.config.Session.StoreTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return e.infraError("session store ping", err)
	}
	return nil
}

func (e *Engine) SessionTTL() time.Duration {
	return e.issuer.TTL()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id int) {
	e.metrics.Inc(MetricID(id))
}

func (e *Engine) metricObserve(id int, d time.Duration) {
	e.metrics.Observe(MetricID(id), d)
}

// Login checks the credential pair and returns a new session token.
//
// Unknown login and wrong password both return [ErrInvalidCredentials]. A
// store failure returns an error wrapping [ErrInfrastructure] and no token.
// Two logins for the same user yield two independent tokens.
func (e *Engine) Login(ctx context.Context, login, password string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	token, err := flows.RunLogin(ctx, login, password, e.flowDeps.Login)
	if err != nil {
		e.logFailure("login", err)
		return "", err
	}
	return token, nil
}

// IssueToken mints a session for a user the caller has already verified.
func (e *Engine) IssueToken(ctx context.Context, userID int64) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	token, err := e.issuer.Issue(ctx, userID)
	if err != nil {
		e.metricInc(int(MetricStoreFailure))
		return "", e.infraError("issue session", err)
	}
	e.metricInc(int(MetricSessionCreated))
	return token, nil
}

// Authenticate resolves a bearer token to the user id it was issued for.
//
// Malformed, unknown and expired tokens all return [ErrUnauthenticated]; a
// malformed token never reaches the store. Store failures return an error
// wrapping [ErrInfrastructure].
func (e *Engine) Authenticate(ctx context.Context, token string) (int64, error) {
	if e == nil {
		return 0, ErrEngineNotReady
	}
	userID, err := flows.RunAuthenticate(ctx, token, e.flowDeps.Authenticate)
	if err != nil {
		e.logFailure("authenticate", err)
		return 0, err
	}
	return userID, nil
}

// Logout deletes the session behind token. Unknown tokens are not an error.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := flows.RunLogout(ctx, token, e.flowDeps.Logout); err != nil {
		e.logFailure("logout", err)
		return err
	}
	return nil
}

// HashPassword encodes plaintext with the configured scheme.
func (e *Engine) HashPassword(plaintext string) (string, error) {
	if e == nil || e.passwords == nil {
		return "", ErrEngineNotReady
	}
	return e.passwords.Hash(plaintext)
}

// VerifyPassword reports whether plaintext matches verifier under any
// known scheme.
func (e *Engine) VerifyPassword(plaintext, verifier string) bool {
	if e == nil || e.passwords == nil {
		return false
	}
	return e.passwords.Verify(plaintext, verifier)
}

func (e *Engine) infraError(op string, err error) error {
	e.logger.Error("store failure", "op", op, "error", err)
	if errors.Is(err, ErrInfrastructure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInfrastructure, err)
}

// logFailure logs store failures at error and credential rejections at
// debug. It never receives the token or password.
func (e *Engine) logFailure(op string, err error) {
	switch {
	case errors.Is(err, ErrInfrastructure):
		e.logger.Error("store failure", "op", op, "error", err)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthenticated):
		e.logger.Debug("rejected", "op", op, "reason", err.Error())
	}
}
