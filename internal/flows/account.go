package flows

import (
	"context"
	"errors"
	"strings"
)

type AccountUserRecord struct {
	UserID       int64
	Login        string
	PasswordHash string
}

type AccountMetrics struct {
	AccountCreated           int
	AccountDuplicate         int
	PasswordChangeSuccess    int
	PasswordChangeInvalidOld int
	StoreFailure             int
}

type AccountErrors struct {
	EngineNotReady error
	InvalidRequest error
	Infrastructure error
	Forbidden      error
	LoginTaken     error
	UserNotFound   error
}

// CreateAccountDeps captures account creation dependencies.
type CreateAccountDeps struct {
	HashPassword func(string) (string, error)
	CreateUser   func(ctx context.Context, login, passwordHash string) (AccountUserRecord, error)

	MetricInc func(int)
	Metrics   AccountMetrics
	Errors    AccountErrors
}

// RunCreateAccount hashes password with the configured scheme and inserts a
// user. A duplicate login passes Errors.LoginTaken through unchanged.
func RunCreateAccount(ctx context.Context, login, password string, deps CreateAccountDeps) (AccountUserRecord, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.HashPassword == nil || deps.CreateUser == nil {
		return AccountUserRecord{}, deps.Errors.EngineNotReady
	}
	if strings.TrimSpace(login) == "" {
		return AccountUserRecord{}, deps.Errors.InvalidRequest
	}

	hash, err := deps.HashPassword(password)
	if err != nil {
		return AccountUserRecord{}, err
	}
	password = ""

	user, err := deps.CreateUser(ctx, login, hash)
	switch {
	case err == nil:
	case errors.Is(err, deps.Errors.LoginTaken):
		deps.MetricInc(deps.Metrics.AccountDuplicate)
		return AccountUserRecord{}, err
	default:
		deps.MetricInc(deps.Metrics.StoreFailure)
		return AccountUserRecord{}, infrastructure(deps.Errors.Infrastructure, err)
	}

	deps.MetricInc(deps.Metrics.AccountCreated)
	return user, nil
}

// ChangePasswordDeps captures password change dependencies.
type ChangePasswordDeps struct {
	GetUserByID        func(context.Context, int64) (AccountUserRecord, error)
	UpdatePasswordHash func(context.Context, int64, string) error
	VerifyPassword     func(plaintext, verifier string) bool
	HashPassword       func(string) (string, error)

	MetricInc func(int)
	Metrics   AccountMetrics
	Errors    AccountErrors
}

// RunChangePassword replaces the verifier of userID after checking the old
// password. A mismatch is Errors.Forbidden. Existing sessions stay valid.
func RunChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string, deps ChangePasswordDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.GetUserByID == nil || deps.UpdatePasswordHash == nil || deps.VerifyPassword == nil || deps.HashPassword == nil {
		return deps.Errors.EngineNotReady
	}

	user, err := deps.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, deps.Errors.UserNotFound) {
			return err
		}
		deps.MetricInc(deps.Metrics.StoreFailure)
		return infrastructure(deps.Errors.Infrastructure, err)
	}

	if !deps.VerifyPassword(oldPassword, user.PasswordHash) {
		deps.MetricInc(deps.Metrics.PasswordChangeInvalidOld)
		return deps.Errors.Forbidden
	}

	hash, err := deps.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := deps.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, deps.Errors.UserNotFound) {
			return err
		}
		deps.MetricInc(deps.Metrics.StoreFailure)
		return infrastructure(deps.Errors.Infrastructure, err)
	}

	deps.MetricInc(deps.Metrics.PasswordChangeSuccess)
	return nil
}
