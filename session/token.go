package session

import (
	"fmt"

	"github.com/google/uuid"
)

const tokenLength = 36

// NewToken returns a random (version 4) UUID in canonical form: 128 bits from
// crypto/rand, lowercase, hyphenated.
func NewToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return id.String(), nil
}

// ValidToken reports whether raw is a UUID in canonical lowercase hyphenated
// form. Braced, URN, unhyphenated and uppercase spellings are rejected so a
// token has exactly one key in the store.
func ValidToken(raw string) bool {
	if len(raw) != tokenLength {
		return false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return false
	}
	return id.String() == raw
}
