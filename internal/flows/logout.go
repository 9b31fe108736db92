package flows

import "context"

type LogoutDeps struct {
	ValidToken   func(string) bool
	DeleteToken  func(context.Context, string) error
	MetricInc    func(int)
	LogoutMetric int
	StoreFailure int

	Errors AuthenticateErrors
}

// RunLogout removes the session behind token. Deleting an unknown token
// succeeds; a malformed token is Errors.Unauthenticated.
func RunLogout(ctx context.Context, token string, deps LogoutDeps) error {
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetric
	}
	if deps.ValidToken == nil || deps.DeleteToken == nil {
		return deps.Errors.EngineNotReady
	}
	if !deps.ValidToken(token) {
		return deps.Errors.Unauthenticated
	}
	if err := deps.DeleteToken(ctx, token); err != nil {
		deps.MetricInc(deps.StoreFailure)
		return infrastructure(deps.Errors.Infrastructure, err)
	}
	deps.MetricInc(deps.LogoutMetric)
	return nil
}
