// Package flows contains the orchestration behind every Engine operation.
//
// Each Run* function takes a typed dependency struct of plain functions and
// returns its result without touching anything the struct does not hand it.
// The Engine builds these structs once at construction and stays a thin
// delegating shell, so the flows can be tested with hand-written fakes.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import quillpost (import cycle).
//   - Log tokens or passwords. Warn callbacks receive fixed messages only.
package flows
