package password

import "fmt"

// Mixed hashes with a primary scheme and verifies every scheme it knows.
type Mixed struct {
	primary Scheme
	sha     SHA256
	argon   *Argon2
}

// New returns a [Mixed] codec whose Hash uses scheme. argonCfg is used both
// for new argon2id hashes and to construct the argon2id verifier.
func New(scheme Scheme, argonCfg Config) (*Mixed, error) {
	argon, err := NewArgon2(argonCfg)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case SchemeSHA256, SchemeArgon2id:
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}

	return &Mixed{primary: scheme, argon: argon}, nil
}

// Scheme reports the scheme used for new verifiers.
func (m *Mixed) Scheme() Scheme {
	return m.primary
}

func (m *Mixed) Hash(plaintext string) (string, error) {
	if m.primary == SchemeArgon2id {
		return m.argon.Hash(plaintext)
	}
	return m.sha.Hash(plaintext)
}

func (m *Mixed) Verify(plaintext, verifier string) bool {
	switch Detect(verifier) {
	case SchemeArgon2id:
		return m.argon.Verify(plaintext, verifier)
	case SchemeSHA256:
		return m.sha.Verify(plaintext, verifier)
	default:
		return false
	}
}

// NeedsUpgrade reports whether verifier should be replaced on the next
// successful login: it was produced by a different scheme than the primary
// one, or by weaker argon2id parameters.
func (m *Mixed) NeedsUpgrade(verifier string) bool {
	scheme := Detect(verifier)
	if scheme != m.primary {
		return true
	}
	if scheme != SchemeArgon2id {
		return false
	}
	upgrade, err := m.argon.NeedsUpgrade(verifier)
	return err != nil || upgrade
}
