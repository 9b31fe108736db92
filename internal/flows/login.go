package flows

import (
	"context"
	"errors"
	"fmt"
)

// LoginUserRecord is the flow-local view of a user row.
type LoginUserRecord struct {
	UserID       int64
	PasswordHash string
}

// LoginMetrics carries the metric IDs the login flow increments.
type LoginMetrics struct {
	LoginSuccess     int
	LoginFailure     int
	SessionCreated   int
	StoreFailure     int
	PasswordUpgraded int
}

// LoginErrors carries host-level sentinels.
type LoginErrors struct {
	EngineNotReady     error
	InvalidCredentials error
	Infrastructure     error
	UserNotFound       error
}

// LoginDeps captures login dependencies.
type LoginDeps struct {
	PasswordUpgradeOnLogin bool

	GetUserByLogin       func(context.Context, string) (LoginUserRecord, error)
	UpdatePasswordHash   func(context.Context, int64, string) error
	VerifyPassword       func(plaintext, verifier string) bool
	PasswordNeedsUpgrade func(verifier string) bool
	HashPassword         func(string) (string, error)
	IssueToken           func(context.Context, int64) (string, error)

	MetricInc func(int)
	Warn      func(string, ...any)

	Metrics LoginMetrics
	Errors  LoginErrors
}

// RunLogin verifies the credential pair and issues a session token.
//
// An unknown login and a wrong password both return Errors.InvalidCredentials.
// A user store or session store failure returns Errors.Infrastructure wrapping
// the cause, and no token.
func RunLogin(ctx context.Context, login, password string, deps LoginDeps) (string, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.Warn == nil {
		deps.Warn = noopWarn
	}
	if deps.GetUserByLogin == nil || deps.VerifyPassword == nil || deps.IssueToken == nil {
		return "", deps.Errors.EngineNotReady
	}

	user, err := deps.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, deps.Errors.UserNotFound) {
			deps.MetricInc(deps.Metrics.LoginFailure)
			return "", deps.Errors.InvalidCredentials
		}
		deps.MetricInc(deps.Metrics.StoreFailure)
		return "", infrastructure(deps.Errors.Infrastructure, err)
	}

	if !deps.VerifyPassword(password, user.PasswordHash) {
		deps.MetricInc(deps.Metrics.LoginFailure)
		return "", deps.Errors.InvalidCredentials
	}

	if deps.PasswordUpgradeOnLogin && deps.PasswordNeedsUpgrade != nil && deps.PasswordNeedsUpgrade(user.PasswordHash) {
		upgradeVerifier(ctx, user.UserID, password, deps)
	}
	password = ""

	token, err := deps.IssueToken(ctx, user.UserID)
	if err != nil {
		deps.MetricInc(deps.Metrics.StoreFailure)
		return "", infrastructure(deps.Errors.Infrastructure, err)
	}

	deps.MetricInc(deps.Metrics.SessionCreated)
	deps.MetricInc(deps.Metrics.LoginSuccess)
	return token, nil
}

// upgradeVerifier rewrites the stored verifier with the configured scheme.
// Failure is logged and never fails the login.
func upgradeVerifier(ctx context.Context, userID int64, password string, deps LoginDeps) {
	if deps.HashPassword == nil || deps.UpdatePasswordHash == nil {
		return
	}
	hash, err := deps.HashPassword(password)
	if err != nil {
		deps.Warn("password upgrade: hashing failed", "user_id", userID)
		return
	}
	if err := deps.UpdatePasswordHash(ctx, userID, hash); err != nil {
		deps.Warn("password upgrade: update failed", "user_id", userID, "error", err)
		return
	}
	deps.MetricInc(deps.Metrics.PasswordUpgraded)
}

func infrastructure(class, cause error) error {
	if class == nil {
		return cause
	}
	return fmt.Errorf("%w: %w", class, cause)
}
