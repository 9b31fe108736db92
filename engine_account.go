package quillpost

import (
	"context"
	"time"

	"github.com/quillpost/quillpost/internal/flows"
	"github.com/quillpost/quillpost/session"
)

// CreateAccount stores a new user with a verifier in the configured scheme.
// A duplicate login returns an error wrapping [ErrLoginTaken].
func (e *Engine) CreateAccount(ctx context.Context, login, password string) (UserRecord, error) {
	if e == nil {
		return UserRecord{}, ErrEngineNotReady
	}
	rec, err := flows.RunCreateAccount(ctx, login, password, e.flowDeps.CreateAccount)
	if err != nil {
		e.logFailure("create account", err)
		return UserRecord{}, err
	}
	return UserRecord{ID: rec.UserID, Login: rec.Login, PasswordHash: rec.PasswordHash}, nil
}

// ChangePassword replaces the verifier of userID. The old password must
// verify or [ErrForbidden] is returned. Live sessions are left alone.
func (e *Engine) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := flows.RunChangePassword(ctx, userID, oldPassword, newPassword, e.flowDeps.ChangePassword); err != nil {
		e.logFailure("change password", err)
		return err
	}
	return nil
}

func toAccountRecord(u UserRecord) flows.AccountUserRecord {
	return flows.AccountUserRecord{UserID: u.ID, Login: u.Login, PasswordHash: u.PasswordHash}
}

func (e *Engine) initFlowDeps() {
	accountMetrics := flows.AccountMetrics{
		AccountCreated:           int(MetricAccountCreated),
		AccountDuplicate:         int(MetricAccountDuplicate),
		PasswordChangeSuccess:    int(MetricPasswordChangeSuccess),
		PasswordChangeInvalidOld: int(MetricPasswordChangeInvalidOld),
		StoreFailure:             int(MetricStoreFailure),
	}
	accountErrors := flows.AccountErrors{
		EngineNotReady: ErrEngineNotReady,
		InvalidRequest: ErrInvalidRequest,
		Infrastructure: ErrInfrastructure,
		Forbidden:      ErrForbidden,
		LoginTaken:     ErrLoginTaken,
		UserNotFound:   ErrUserNotFound,
	}
	authErrors := flows.AuthenticateErrors{
		EngineNotReady:  ErrEngineNotReady,
		Unauthenticated: ErrUnauthenticated,
		Infrastructure:  ErrInfrastructure,
	}

	var observe func(int, time.Duration)
	if e.metrics.LatencyEnabled() {
		observe = e.metricObserve
	}

	e.flowDeps = flows.Deps{
		Login: flows.LoginDeps{
			PasswordUpgradeOnLogin: e.config.Password.UpgradeOnLogin,
			GetUserByLogin: func(ctx context.Context, login string) (flows.LoginUserRecord, error) {
				u, err := e.userProvider.GetUserByLogin(ctx, login)
				if err != nil {
					return flows.LoginUserRecord{}, err
				}
				return flows.LoginUserRecord{UserID: u.ID, PasswordHash: u.PasswordHash}, nil
			},
			UpdatePasswordHash:   e.userProvider.UpdatePasswordHash,
			VerifyPassword:       e.passwords.Verify,
			PasswordNeedsUpgrade: e.passwords.NeedsUpgrade,
			HashPassword:         e.passwords.Hash,
			IssueToken:           e.issuer.Issue,
			MetricInc:            e.metricInc,
			Warn:                 e.logger.Warn,
			Metrics: flows.LoginMetrics{
				LoginSuccess:     int(MetricLoginSuccess),
				LoginFailure:     int(MetricLoginFailure),
				SessionCreated:   int(MetricSessionCreated),
				StoreFailure:     int(MetricStoreFailure),
				PasswordUpgraded: int(MetricPasswordUpgraded),
			},
			Errors: flows.LoginErrors{
				EngineNotReady:     ErrEngineNotReady,
				InvalidCredentials: ErrInvalidCredentials,
				Infrastructure:     ErrInfrastructure,
				UserNotFound:       ErrUserNotFound,
			},
		},
		Authenticate: flows.AuthenticateDeps{
			ValidToken:  session.ValidToken,
			LookupToken: e.sessionStore.Get,
			MetricInc:   e.metricInc,
			Observe:     observe,
			Metrics: flows.AuthenticateMetrics{
				Admitted:     int(MetricAuthAdmitted),
				Rejected:     int(MetricAuthRejected),
				StoreFailure: int(MetricStoreFailure),
				Latency:      int(MetricAuthenticateLatency),
			},
			Errors: authErrors,
		},
		Logout: flows.LogoutDeps{
			ValidToken:   session.ValidToken,
			DeleteToken:  e.sessionStore.Delete,
			MetricInc:    e.metricInc,
			LogoutMetric: int(MetricLogout),
			StoreFailure: int(MetricStoreFailure),
			Errors:       authErrors,
		},
		CreateAccount: flows.CreateAccountDeps{
			HashPassword: e.passwords.Hash,
			CreateUser: func(ctx context.Context, login, hash string) (flows.AccountUserRecord, error) {
				u, err := e.userProvider.CreateUser(ctx, login, hash)
				if err != nil {
					return flows.AccountUserRecord{}, err
				}
				return toAccountRecord(u), nil
			},
			MetricInc: e.metricInc,
			Metrics:   accountMetrics,
			Errors:    accountErrors,
		},
		ChangePassword: flows.ChangePasswordDeps{
			GetUserByID: func(ctx context.Context, id int64) (flows.AccountUserRecord, error) {
				u, err := e.userProvider.GetUserByID(ctx, id)
				if err != nil {
					return flows.AccountUserRecord{}, err
				}
				return toAccountRecord(u), nil
			},
			UpdatePasswordHash: e.userProvider.UpdatePasswordHash,
			VerifyPassword:     e.passwords.Verify,
			HashPassword:       e.passwords.Hash,
			MetricInc:          e.metricInc,
			Metrics:            accountMetrics,
			Errors:             accountErrors,
		},
	}
}
