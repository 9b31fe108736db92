// Package quillpost is the session and authentication core of the quillpost
// record service: password verification, opaque session tokens held in an
// expiring store, and the request-time check every protected endpoint runs.
//
// Engine methods are safe for concurrent use once [Builder.Build] returns.
//
// # Architecture boundaries
//
// quillpost exposes [Engine], [Builder], [Config] and the error classes in
// errors.go. Flow orchestration lives in internal/flows, the HTTP gate in
// middleware, password codecs in password and session storage in session.
// The relational user store is reached only through [UserProvider].
//
// # What this package must NOT do
//
//   - Log or return plaintext passwords or session tokens in errors.
//   - Hold a process-wide session map. The store is always injected.
//   - Retry store calls. A failed round trip surfaces as [ErrInfrastructure].
//
// # Performance contract
//
// Authenticate is the hot path: one canonical-format check, then at most one
// session store round trip. It never touches the user store.
package quillpost
