package password

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Codec derives verifiers from plaintext passwords and checks plaintext
// against a stored verifier. Verify never errors: a verifier it cannot parse
// simply does not match.
type Codec interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, verifier string) bool
}

// Scheme names a verifier format.
type Scheme string

const (
	SchemeSHA256   Scheme = "sha256"
	SchemeArgon2id Scheme = "argon2id"
	SchemeUnknown  Scheme = ""
)

const sha256HexLen = sha256.Size * 2

// SHA256 is the unsalted digest codec.
type SHA256 struct{}

// Hash returns the lowercase hex SHA-256 digest of the UTF-8 bytes of plaintext.
func (SHA256) Hash(plaintext string) (string, error) {
	return Digest(plaintext), nil
}

// Verify recomputes the digest and compares it with verifier.
func (SHA256) Verify(plaintext, verifier string) bool {
	return Digest(plaintext) == verifier
}

// Digest is the infallible form of [SHA256.Hash].
func Digest(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// Detect reports which scheme produced verifier.
func Detect(verifier string) Scheme {
	if strings.HasPrefix(verifier, "$"+algorithmID+"$") {
		return SchemeArgon2id
	}
	if len(verifier) == sha256HexLen && isLowerHex(verifier) {
		return SchemeSHA256
	}
	return SchemeUnknown
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// ParseScheme maps a configuration value onto a [Scheme].
func ParseScheme(raw string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(raw))) {
	case SchemeSHA256, "":
		return SchemeSHA256, nil
	case SchemeArgon2id, "argon2":
		return SchemeArgon2id, nil
	default:
		return SchemeUnknown, fmt.Errorf("unknown password scheme %q", raw)
	}
}
