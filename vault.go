package eea

import (
	"bytes"
	"errors"
	"fmt"
)

// Protect encrypts keys for storage. The plaintext is a random salt, a
// newline and the newline separated keys; it is encrypted Rounds times
// with the single key supplied by p.
func Protect(keys KeySet, p KeyProvider) ([]byte, error) {
	if p == nil {
		return nil, ErrNilKeyProvider
	}
	if err := keys.Validate(); err != nil {
		return nil, err
	}

	passwordKey, err := p.DeriveKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	salt, err := p.GenerateSalt(passwordKey.Len())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(salt) + 1 + len(keys)*(keys.BlockSize()+1))
	buf.Write(salt)
	buf.WriteByte('\n')
	buf.WriteString(keys.Join("\n"))

	engine, err := NewChainEngine(KeySet{passwordKey})
	if err != nil {
		return nil, err
	}
	data := buf.Bytes()
	for round := 0; round < Rounds; round++ {
		data, err = engine.Encrypt(data)
		if err != nil {
			return nil, NewEncryptionError("encrypt", "", err)
		}
	}
	return data, nil
}

// Unprotect reverses Protect. A wrong password and a damaged blob are
// indistinguishable and both fail with ErrDecryptionFailed or
// ErrInvalidKeys.
func Unprotect(blob []byte, p KeyProvider) (KeySet, error) {
	if p == nil {
		return nil, ErrNilKeyProvider
	}
	if m, ok := p.(*MultiKeyProvider); ok {
		return m.unprotect(blob)
	}

	passwordKey, err := p.DeriveKey()
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	// The padding is only stripped after the last round. Intermediate
	// rounds may legitimately end in zero bytes.
	vaultKeys := KeySet{passwordKey}
	data := blob
	for round := 0; round < Rounds; round++ {
		data, err = decryptBlocks(data, vaultKeys)
		if err != nil {
			if errors.Is(err, ErrOutOfMemory) {
				return nil, err
			}
			return nil, NewAuthenticationError("", fmt.Errorf("%w: round %d: %v", ErrDecryptionFailed, round+1, err))
		}
	}
	plaintext := RemovePadding(data)

	idx := bytes.IndexByte(plaintext, '\n')
	if idx < 0 {
		return nil, NewAuthenticationError("", ErrDecryptionFailed)
	}
	return parseKeys(string(plaintext[idx+1:]))
}

// parseKeys splits the newline separated key list that follows the salt
func parseKeys(keysString string) (KeySet, error) {
	keyLen := FindKeyLen(keysString)
	if keyLen < 0 || len(keysString) < keyLen {
		return nil, NewAuthenticationError("", ErrDecryptionFailed)
	}

	keys := make(KeySet, 0, (len(keysString)+1)/(keyLen+1))
	for start := 0; start < len(keysString); start += keyLen + 1 {
		end := start + keyLen
		if end > len(keysString) {
			end = len(keysString)
		}
		keys = append(keys, Key(keysString[start:end]))
		if end < len(keysString) && keysString[end] != '\n' {
			return nil, NewAuthenticationError("", ErrInvalidKeys)
		}
	}

	if err := keys.Validate(); err != nil {
		return nil, NewAuthenticationError("", fmt.Errorf("%w: %v", ErrInvalidKeys, err))
	}
	return keys, nil
}

// FindKeyLen returns the length of the first key in a newline separated
// key list. Candidate lengths grow in steps of MinKeyLen until a newline
// or the end of the string is found. It returns -1 when there is none.
func FindKeyLen(keysString string) int {
	for keyLen := MinKeyLen; keyLen <= len(keysString); keyLen += MinKeyLen {
		if keyLen == len(keysString) || keysString[keyLen] == '\n' {
			return keyLen
		}
	}
	return -1
}

// ProtectKeys protects keys with a password
func ProtectKeys(keys KeySet, password []byte) ([]byte, error) {
	return Protect(keys, NewPasswordKeyProvider(password))
}

// UnprotectKeys recovers keys protected with a password
func UnprotectKeys(blob []byte, password []byte) (KeySet, error) {
	return Unprotect(blob, NewPasswordKeyProvider(password))
}
