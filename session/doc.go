// Package session maps opaque session tokens to user identities with an
// absolute time-to-live.
//
// # Records
//
// A record is keyed by the token (under a key prefix, "session:" by default)
// and holds the user id in decimal. The TTL is fixed when the record is
// written and is never extended by reads. An expired record is never
// returned, whether or not the backend has reclaimed it yet.
//
// # Backends
//
//   - [RedisStore]: SET with EX, expiry delegated to Redis.
//   - [MemoryStore]: in-process map with an injectable clock, lazy expiry on
//     read and an optional background sweep.
//
// [WithTimeout] bounds every round trip of any backend. Backend failures
// (including timeouts) are reported as [ErrStoreUnavailable] and never as
// "not found".
//
// # What this package must NOT do
//
//   - Import quillpost or the HTTP layers (no upward imports).
//   - Decide whether a request is authenticated. That belongs to the Engine.
package session
