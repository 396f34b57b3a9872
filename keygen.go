package eea

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

const (
	seedSize       = 32
	maxRandomTries = 5
)

// randReader is the entropy source for seeds and salts
var randReader io.Reader = rand.Reader

// randomHex returns n random bytes encoded as 2n hex characters
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	var err error
	for try := 0; try < maxRandomTries; try++ {
		if _, err = io.ReadFull(randReader, buf); err == nil {
			return hex.EncodeToString(buf), nil
		}
	}
	return "", fmt.Errorf("failed to read random bytes after %d tries: %w", maxRandomTries, err)
}

// GenerateKey returns a random hex key of bits/4 characters. The key is
// built from digests of fresh random seeds: SHA-512 while more than 256
// bits are missing, SHA-256 for the final 256.
func GenerateKey(bits int) (Key, error) {
	if err := ValidateKeyBits(bits); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(bits / 4)
	for size := 0; size < bits; {
		seed, err := randomHex(seedSize)
		if err != nil {
			return "", err
		}
		if bits-size > MinKeyBits {
			sum := sha512.Sum512([]byte(seed))
			sb.WriteString(hex.EncodeToString(sum[:]))
			size += 2 * MinKeyBits
		} else {
			sum := sha256.Sum256([]byte(seed))
			sb.WriteString(hex.EncodeToString(sum[:]))
			size += MinKeyBits
		}
	}
	return Key(sb.String()), nil
}

// GenerateKeys returns n independent keys of the given size. Nothing is
// returned unless every key was generated.
func GenerateKeys(bits, n int) (KeySet, error) {
	if err := ValidateCount(n, "num_keys", 1); err != nil {
		return nil, err
	}
	if err := ValidateKeyBits(bits); err != nil {
		return nil, err
	}

	keys := make(KeySet, 0, n)
	for i := 0; i < n; i++ {
		k, err := GenerateKey(bits)
		if err != nil {
			return nil, fmt.Errorf("failed to generate key %d: %w", i+1, err)
		}
		keys = append(keys, k)
	}
	return keys, nil
}
