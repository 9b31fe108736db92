package quillpost

import "errors"

// Error classes. Callers classify with errors.Is; the HTTP layer maps each
// class to one status code and never exposes the wrapped cause.
var (
	// ErrInvalidCredentials covers both an unknown login and a wrong
	// password. The two are deliberately not distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated covers a missing, malformed, unknown or expired
	// session token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInfrastructure reports that the session store or the user store
	// could not be reached or timed out.
	ErrInfrastructure = errors.New("infrastructure failure")
	ErrConflict       = errors.New("conflict")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Store errors. Stores wrap these so callers can tell a missing or duplicate
// record apart from a storage failure.
var (
	ErrUserNotFound = wrapClass(ErrNotFound, "user not found")
	ErrLoginTaken   = wrapClass(ErrConflict, "login already taken")

	ErrMessageNotFound = wrapClass(ErrNotFound, "message not found")
)

var (
	ErrEngineNotReady = errors.New("engine not initialized")
	ErrMissingStore   = errors.New("session store or redis client required")
	ErrMissingUsers   = errors.New("user provider required")
)

type classError struct {
	class error
	msg   string
}

func wrapClass(class error, msg string) error {
	return &classError{class: class, msg: msg}
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Unwrap() error { return e.class }
