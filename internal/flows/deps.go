package flows

// Deps groups the dependency sets the Engine builds once and reuses for
// every call.
type Deps struct {
	Login          LoginDeps
	Authenticate   AuthenticateDeps
	Logout         LogoutDeps
	CreateAccount  CreateAccountDeps
	ChangePassword ChangePasswordDeps
}

func noopMetric(int) {}

func noopWarn(string, ...any) {}
