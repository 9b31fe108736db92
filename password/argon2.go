package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

var (
	ErrInvalidPHC     = errors.New("invalid PHC format")
	ErrUnsupportedPHC = errors.New("unsupported PHC hash")
)

// Config holds argon2id cost parameters. Memory is in KiB.
type Config struct {
	Memory      uint32 `koanf:"memory"`
	Time        uint32 `koanf:"time"`
	Parallelism uint8  `koanf:"parallelism"`
	SaltLength  uint32 `koanf:"salt_length"`
	KeyLength   uint32 `koanf:"key_length"`
}

// DefaultArgon2Config returns the parameters used when argon2id is enabled
// without explicit tuning.
func DefaultArgon2Config() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2 is the salted, memory-hard codec.
type Argon2 struct {
	config Config
}

type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
	keyLength   uint32
}

// NewArgon2 validates cfg and returns a codec using it for new hashes.
func NewArgon2(cfg Config) (*Argon2, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Argon2{config: cfg}, nil
}

// Hash derives a PHC-encoded verifier with a fresh random salt.
func (a *Argon2) Hash(plaintext string) (string, error) {
	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(plaintext),
		salt,
		a.config.Time,
		a.config.Memory,
		a.config.Parallelism,
		a.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(hash),
	), nil
}

// Verify reports whether plaintext matches verifier. Malformed verifiers do
// not match; use [Argon2.Check] to see why.
func (a *Argon2) Verify(plaintext, verifier string) bool {
	ok, err := a.Check(plaintext, verifier)
	return err == nil && ok
}

// Check is Verify with the parse error exposed. The comparison is constant
// time and uses the parameters recorded in the verifier, not the codec's.
func (a *Argon2) Check(plaintext, verifier string) (bool, error) {
	parsed, err := parsePHC(verifier)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(plaintext),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		parsed.keyLength,
	)

	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1, nil
}

// NeedsUpgrade reports whether verifier was produced with weaker parameters
// than the codec's current configuration.
func (a *Argon2) NeedsUpgrade(verifier string) (bool, error) {
	parsed, err := parsePHC(verifier)
	if err != nil {
		return false, err
	}

	switch {
	case a.config.Memory > parsed.memory,
		a.config.Time > parsed.time,
		a.config.Parallelism > parsed.parallelism,
		a.config.KeyLength != parsed.keyLength:
		return true, nil
	}

	return false, nil
}

func parsePHC(encoded string) (*parsedPHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrInvalidPHC
	}

	if parts[1] != algorithmID {
		return nil, fmt.Errorf("%w: algorithm %q", ErrUnsupportedPHC, parts[1])
	}

	versionPart, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidPHC)
	}
	version, err := strconv.Atoi(versionPart)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q", ErrInvalidPHC, versionPart)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedPHC, version)
	}

	params, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < int(minSaltLength) {
		return nil, fmt.Errorf("%w: salt", ErrInvalidPHC)
	}

	hash, err := base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return nil, fmt.Errorf("%w: hash", ErrInvalidPHC)
	}

	return &parsedPHC{
		memory:      params.memory,
		time:        params.time,
		parallelism: params.parallelism,
		salt:        salt,
		hash:        hash,
		keyLength:   uint32(len(hash)),
	}, nil
}

type parsedParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

func parseParams(part string) (*parsedParams, error) {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return nil, fmt.Errorf("%w: parameters", ErrInvalidPHC)
	}

	var (
		seen   int
		params parsedParams
	)

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q", ErrInvalidPHC, pair)
		}

		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minMemoryKB) {
				return nil, fmt.Errorf("%w: memory", ErrInvalidPHC)
			}
			params.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v < uint64(minTimeCost) {
				return nil, fmt.Errorf("%w: time", ErrInvalidPHC)
			}
			params.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v < uint64(minParallelism) {
				return nil, fmt.Errorf("%w: parallelism", ErrInvalidPHC)
			}
			params.parallelism = uint8(v)
		default:
			return nil, fmt.Errorf("%w: parameter %q", ErrUnsupportedPHC, key)
		}
		seen++
	}

	if seen != 3 || params.memory == 0 || params.time == 0 || params.parallelism == 0 {
		return nil, fmt.Errorf("%w: missing parameters", ErrInvalidPHC)
	}

	return &params, nil
}

// Validate checks the parameters against the accepted minimums.
func (c Config) Validate() error {
	if c.Memory < minMemoryKB {
		return errors.New("argon2 memory must be >= 8192 KiB")
	}
	if c.Time < minTimeCost {
		return errors.New("argon2 time must be >= 1")
	}
	if c.Parallelism < minParallelism {
		return errors.New("argon2 parallelism must be >= 1")
	}
	if c.SaltLength < minSaltLength {
		return errors.New("argon2 salt length must be >= 16")
	}
	if c.KeyLength < minKeyLength {
		return errors.New("argon2 key length must be >= 16")
	}

	return nil
}
