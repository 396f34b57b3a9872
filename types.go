package eea

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinKeyLen is the shortest key length in hex characters (256 bits)
	MinKeyLen = 64

	// MinKeyBits is the key size granularity in bits
	MinKeyBits = 256

	// Rounds is the number of engine passes the key vault applies
	Rounds = 5

	// Padding is the byte used to fill the final block
	Padding byte = 0

	// Extension is appended to encrypted file names
	Extension = ".eea"

	// KeysExtension identifies keys files in a keys directory
	KeysExtension = ".keys"

	// DefaultKeysFile is the keys file name used when none is given
	DefaultKeysFile = "keys.keys"

	// DefaultKeyBits is the default size of generated keys
	DefaultKeyBits = 512

	// DefaultNumKeys is the default number of generated keys
	DefaultNumKeys = 3
)

// Key is a hex string used literally as cipher key bytes
type Key string

// Len returns the key length in bytes (one byte per hex character)
func (k Key) Len() int {
	return len(k)
}

// Bits returns the key strength in bits
func (k Key) Bits() int {
	return len(k) * 4
}

// KeySet is an ordered list of keys. Encryption applies the keys in
// order and decryption applies them in reverse.
type KeySet []Key

// NewKeySet builds a KeySet from plain strings
func NewKeySet(keys ...string) KeySet {
	ks := make(KeySet, len(keys))
	for i, k := range keys {
		ks[i] = Key(k)
	}
	return ks
}

// BlockSize returns the shared key length, or 0 for an empty set
func (ks KeySet) BlockSize() int {
	if len(ks) == 0 {
		return 0
	}
	return len(ks[0])
}

// Strings returns the keys as plain strings
func (ks KeySet) Strings() []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = string(k)
	}
	return out
}

// Join returns the keys separated by sep
func (ks KeySet) Join(sep string) string {
	return strings.Join(ks.Strings(), sep)
}

// Equal reports whether both sets hold the same keys in the same order
func (ks KeySet) Equal(other KeySet) bool {
	if len(ks) != len(other) {
		return false
	}
	for i := range ks {
		if ks[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate checks that the set is non-empty, that every key is hex,
// and that all keys share a length that is a multiple of MinKeyLen.
func (ks KeySet) Validate() error {
	if len(ks) == 0 {
		return &ValidationError{
			Field:   "keys",
			Message: "key set cannot be empty",
			Err:     ErrInvalidKeys,
		}
	}

	keyLen := len(ks[0])
	for i, k := range ks {
		if err := ValidateKey(k); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = fmt.Sprintf("keys[%d]", i)
			}
			return err
		}
		if len(k) != keyLen {
			return &ValidationError{
				Field:   fmt.Sprintf("keys[%d]", i),
				Value:   len(k),
				Message: fmt.Sprintf("key has length %d, expected %d", len(k), keyLen),
				Err:     ErrInvalidKeys,
			}
		}
	}
	return nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Mode selects the direction of a file operation
type Mode uint8

const (
	// ModeEncrypt encrypts plaintext files into .eea files
	ModeEncrypt Mode = iota
	// ModeDecrypt decrypts .eea files back to plaintext
	ModeDecrypt
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeEncrypt:
		return "encrypt"
	case ModeDecrypt:
		return "decrypt"
	default:
		return "unknown"
	}
}

// Config holds the settings shared by the command line and the batch
// processor. It replaces the process-wide globals of older tools.
type Config struct {
	// KeysDir is the directory searched for .keys files
	KeysDir string

	// Threads is the number of batch workers (values below 1 mean 1)
	Threads int

	// Overwrite removes the source file after a successful operation
	Overwrite bool

	// KeyBits is the size of generated keys
	KeyBits int

	// NumKeys is the number of keys generated per keys file
	NumKeys int

	// LogLevel is one of debug, info, warn or error
	LogLevel string
}

// DefaultConfig returns the configuration used when no config file exists
func DefaultConfig() Config {
	return Config{
		KeysDir:   ".",
		Threads:   1,
		Overwrite: true,
		KeyBits:   DefaultKeyBits,
		NumKeys:   DefaultNumKeys,
		LogLevel:  "info",
	}
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.KeysDir == "" {
		return errors.New("keys directory cannot be empty")
	}
	if c.Threads < 0 {
		return NewValidationError("threads", c.Threads, "thread count cannot be negative")
	}
	if err := ValidateKeyBits(c.KeyBits); err != nil {
		return err
	}
	if err := ValidateCount(c.NumKeys, "num_keys", 1); err != nil {
		return err
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return NewValidationError("log_level", c.LogLevel, "must be debug, info, warn or error")
	}
	return nil
}
