// Package password turns plaintext passwords into stored verifiers and checks
// plaintext passwords against them.
//
// # Schemes
//
//   - [SHA256]: unsalted single-pass SHA-256, lowercase hex. This is the scheme
//     existing user rows were written with and remains the default. Identical
//     passwords produce identical verifiers and offer no resistance to offline
//     brute force.
//   - [Argon2]: argon2id in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Mixed] hashes new passwords with one scheme and verifies any verifier whose
// scheme it recognizes, so switching the configured scheme does not lock out
// users with older verifiers.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive verifiers.
//   - Import any other quillpost package.
//   - Log plaintext passwords.
package password
