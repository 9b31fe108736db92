// Package postgres is the PostgreSQL persistence layer: the connection pool,
// the users and messages repositories, embedded schema migrations and bulk
// seeding.
//
// Repositories accept a [DB] so tests can substitute pgxmock for
// *pgxpool.Pool. Not-found and duplicate-login conditions wrap the root
// package sentinels ([quillpost.ErrUserNotFound], [quillpost.ErrLoginTaken],
// [quillpost.ErrNotFound]); every other failure carries an oops error code.
package postgres
