package flows

import (
	"context"
	"time"
)

// AuthenticateMetrics carries the metric IDs of the token check.
type AuthenticateMetrics struct {
	Admitted     int
	Rejected     int
	StoreFailure int
	Latency      int
}

type AuthenticateErrors struct {
	EngineNotReady  error
	Unauthenticated error
	Infrastructure  error
}

// AuthenticateDeps captures the dependencies of the request-time token check.
type AuthenticateDeps struct {
	ValidToken  func(string) bool
	LookupToken func(context.Context, string) (int64, bool, error)

	Now       func() time.Time
	MetricInc func(int)
	Observe   func(int, time.Duration)

	Metrics AuthenticateMetrics
	Errors  AuthenticateErrors
}

// RunAuthenticate resolves token to a user id.
//
// A token that is not in canonical form is rejected without a store round
// trip. Unknown and expired tokens are indistinguishable: both yield
// Errors.Unauthenticated. Store failures yield Errors.Infrastructure.
func RunAuthenticate(ctx context.Context, token string, deps AuthenticateDeps) (int64, error) {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.ValidToken == nil || deps.LookupToken == nil {
		return 0, deps.Errors.EngineNotReady
	}
	if deps.Observe != nil {
		now := time.Now
		if deps.Now != nil {
			now = deps.Now
		}
		start := now()
		defer func() {
			deps.Observe(deps.Metrics.Latency, now().Sub(start))
		}()
	}

	if !deps.ValidToken(token) {
		deps.MetricInc(deps.Metrics.Rejected)
		return 0, deps.Errors.Unauthenticated
	}

	userID, found, err := deps.LookupToken(ctx, token)
	if err != nil {
		deps.MetricInc(deps.Metrics.StoreFailure)
		return 0, infrastructure(deps.Errors.Infrastructure, err)
	}
	if !found {
		deps.MetricInc(deps.Metrics.Rejected)
		return 0, deps.Errors.Unauthenticated
	}

	deps.MetricInc(deps.Metrics.Admitted)
	return userID, nil
}
