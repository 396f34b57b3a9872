package eea

import (
	"fmt"
	"strings"
)

// Input validation helpers shared by the library and the command line

// ValidateFilePath checks if a file path is valid (not empty)
func ValidateFilePath(path string) error {
	if path == "" {
		return &ValidationError{
			Field:   "path",
			Message: "file path cannot be empty",
		}
	}
	return nil
}

// ValidateKey checks that k is a hex string whose length is a positive
// multiple of MinKeyLen
func ValidateKey(k Key) error {
	if len(k) < MinKeyLen || len(k)%MinKeyLen != 0 {
		return &ValidationError{
			Field:   "key",
			Value:   len(k),
			Message: fmt.Sprintf("key length %d is not a multiple of %d", len(k), MinKeyLen),
			Err:     ErrInvalidKeys,
		}
	}
	if !isHex(string(k)) {
		return &ValidationError{
			Field:   "key",
			Message: "key is not a hex value",
			Err:     ErrInvalidKeys,
		}
	}
	return nil
}

// ValidateKeyBits checks that bits is a positive multiple of MinKeyBits
func ValidateKeyBits(bits int) error {
	if bits <= 0 || bits%MinKeyBits != 0 {
		return &ValidationError{
			Field:   "key_bits",
			Value:   bits,
			Message: fmt.Sprintf("key size must be a positive multiple of %d", MinKeyBits),
			Err:     ErrInvalidKeySize,
		}
	}
	return nil
}

// ValidateCount checks that n is at least minimum
func ValidateCount(n int, name string, minimum int) error {
	if n < minimum {
		return &ValidationError{
			Field:   name,
			Value:   n,
			Message: fmt.Sprintf("must be at least %d", minimum),
		}
	}
	return nil
}

// ParseKeySet builds a KeySet from manually entered keys. Surrounding
// whitespace is trimmed and blank entries are ignored.
func ParseKeySet(entries []string) (KeySet, error) {
	keys := make(KeySet, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		keys = append(keys, Key(e))
	}
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	return keys, nil
}
