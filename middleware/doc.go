// Package middleware adapts quillpost.Engine to net/http.
//
// # Gate
//
// [Gate] is the request-time authentication check. For every request it
// reads "Authorization: Bearer <token>", asks the engine to resolve the
// token and then either admits the request with the user id attached, or
// answers 401 "unauthorized" (missing header, wrong scheme, malformed,
// unknown or expired token) or 500 "internal server error" (session store
// unreachable). Handlers receive the id either as an explicit argument
// ([HandlerFunc] via [Gate.Wrap]) or through [UserIDFromContext].
//
// # Ambient middleware
//
//   - [Logging] writes one structured access log line per request.
//   - [CORS] answers preflights and allows any origin.
//   - [HTTPMetrics] records request counts and durations in Prometheus.
//
// # What this package must NOT do
//
//   - Talk to the session store directly. All decisions go through the
//     engine.
//   - Put error details, tokens or store addresses in responses or logs.
package middleware
