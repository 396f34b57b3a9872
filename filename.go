package eea

import (
	"fmt"
	"path"
	"strings"
)

// IsCiphertextName reports whether the base of name carries the .eea
// extension after a non-empty stem
func IsCiphertextName(name string) bool {
	base := path.Base(name)
	return len(base) > len(Extension) && strings.HasSuffix(base, Extension)
}

// OutputName returns the file an operation writes to. Encryption appends
// Extension; decryption strips it and rejects names without it.
func OutputName(name string, mode Mode) (string, error) {
	switch mode {
	case ModeEncrypt:
		if err := ValidateFilePath(name); err != nil {
			return "", err
		}
		return name + Extension, nil
	case ModeDecrypt:
		if !IsCiphertextName(name) {
			return "", fmt.Errorf("%w: %s", ErrNotCiphertext, name)
		}
		return name[:len(name)-len(Extension)], nil
	default:
		return "", NewValidationError("mode", mode, "unsupported mode")
	}
}

// IsKeysFileName reports whether name looks like a keys file
func IsKeysFileName(name string) bool {
	base := path.Base(name)
	return len(base) > len(KeysExtension) && strings.HasSuffix(base, KeysExtension)
}

// keysFileName validates a keys file name, falling back to DefaultKeysFile
func keysFileName(name string) (string, error) {
	if name == "" {
		return DefaultKeysFile, nil
	}
	if strings.ContainsAny(name, `/\`) || !IsKeysFileName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKeysFile, name)
	}
	return name, nil
}
