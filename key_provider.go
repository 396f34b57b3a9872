package eea

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"os"
)

// KeyProvider supplies the key that protects a keys file
type KeyProvider interface {
	// DeriveKey returns the vault protection key
	DeriveKey() (Key, error)

	// GenerateSalt returns n random bytes that never contain '\n' or 0x00
	GenerateSalt(n int) ([]byte, error)
}

// PasswordKey returns the hex encoded SHA-512 digest of password.
// The result is always 128 hex characters.
func PasswordKey(password []byte) Key {
	sum := sha512.Sum512(password)
	return Key(hex.EncodeToString(sum[:]))
}

// generateSalt returns n hex characters of randomness
func generateSalt(n int) ([]byte, error) {
	if n <= 0 {
		return nil, NewValidationError("salt", n, "salt size must be positive")
	}
	s, err := randomHex((n + 1) / 2)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return []byte(s[:n]), nil
}

// PasswordKeyProvider implements KeyProvider from a password held in memory
type PasswordKeyProvider struct {
	password []byte
}

// NewPasswordKeyProvider creates a new password-based key provider
func NewPasswordKeyProvider(password []byte) *PasswordKeyProvider {
	return &PasswordKeyProvider{password: password}
}

// DeriveKey hashes the password. An empty password is hashed like any
// other.
func (p *PasswordKeyProvider) DeriveKey() (Key, error) {
	return PasswordKey(p.password), nil
}

// GenerateSalt generates a new random salt
func (p *PasswordKeyProvider) GenerateSalt(n int) ([]byte, error) {
	return generateSalt(n)
}

// EnvKeyProvider implements KeyProvider using a password stored in an
// environment variable
type EnvKeyProvider struct {
	envVar string
}

// NewEnvKeyProvider creates a new environment variable key provider
func NewEnvKeyProvider(envVar string) *EnvKeyProvider {
	return &EnvKeyProvider{envVar: envVar}
}

// DeriveKey hashes the password found in the environment variable. The
// variable must be set; an empty value is an empty password.
func (e *EnvKeyProvider) DeriveKey() (Key, error) {
	password, ok := os.LookupEnv(e.envVar)
	if !ok {
		return "", fmt.Errorf("environment variable %s: %w", e.envVar, ErrPasswordNotSet)
	}
	return PasswordKey([]byte(password)), nil
}

// GenerateSalt generates a new random salt
func (e *EnvKeyProvider) GenerateSalt(n int) ([]byte, error) {
	return generateSalt(n)
}

// ConfirmPassword compares two password entries in constant time
func ConfirmPassword(first, second []byte) error {
	if len(first) != len(second) || subtle.ConstantTimeCompare(first, second) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
