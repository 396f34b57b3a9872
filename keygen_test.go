package eea

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"io"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	tests := []struct {
		bits    int
		wantLen int
	}{
		{256, 64},
		{512, 128},
		{768, 192},
		{1024, 256},
		{2048, 512},
	}

	for _, tt := range tests {
		key, err := GenerateKey(tt.bits)
		if err != nil {
			t.Fatalf("GenerateKey(%d) failed: %v", tt.bits, err)
		}
		if key.Len() != tt.wantLen {
			t.Errorf("GenerateKey(%d) length = %d, want %d", tt.bits, key.Len(), tt.wantLen)
		}
		if key.Bits() != tt.bits {
			t.Errorf("GenerateKey(%d).Bits() = %d", tt.bits, key.Bits())
		}
		for i := 0; i < len(key); i++ {
			c := key[i]
			if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
				t.Fatalf("GenerateKey(%d) has non-hex byte %q at %d", tt.bits, c, i)
			}
		}
	}
}

func TestGenerateKeyInvalidSize(t *testing.T) {
	for _, bits := range []int{0, -256, 100, 300, 511} {
		_, err := GenerateKey(bits)
		if !errors.Is(err, ErrInvalidKeySize) {
			t.Errorf("GenerateKey(%d) error = %v, want ErrInvalidKeySize", bits, err)
		}
	}
}

func TestGenerateKeysDistinct(t *testing.T) {
	keys, err := GenerateKeys(512, 5)
	if err != nil {
		t.Fatalf("GenerateKeys failed: %v", err)
	}
	if len(keys) != 5 {
		t.Fatalf("got %d keys, want 5", len(keys))
	}
	if err := keys.Validate(); err != nil {
		t.Fatalf("generated keys do not validate: %v", err)
	}

	seen := make(map[Key]bool)
	for _, k := range keys {
		if seen[k] {
			t.Fatal("GenerateKeys returned a duplicate key")
		}
		seen[k] = true
	}
}

func TestGenerateKeysInvalidCount(t *testing.T) {
	if _, err := GenerateKeys(512, 0); !IsValidationError(err) {
		t.Fatalf("GenerateKeys(512, 0) error = %v, want ValidationError", err)
	}
}

// flakyReader fails a fixed number of reads before delegating
type flakyReader struct {
	failures int
	r        io.Reader
}

func (f *flakyReader) Read(p []byte) (int, error) {
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("entropy unavailable")
	}
	return f.r.Read(p)
}

func withRandReader(t *testing.T, r io.Reader) {
	t.Helper()
	old := randReader
	randReader = r
	t.Cleanup(func() { randReader = old })
}

func TestGenerateKeyRetriesRandomSource(t *testing.T) {
	withRandReader(t, &flakyReader{failures: maxRandomTries - 1, r: rand.Reader})

	if _, err := GenerateKey(256); err != nil {
		t.Fatalf("GenerateKey should succeed on the last try: %v", err)
	}
}

func TestGenerateKeyRandomSourceExhausted(t *testing.T) {
	withRandReader(t, &flakyReader{failures: maxRandomTries, r: rand.Reader})

	if _, err := GenerateKeys(256, 2); err == nil {
		t.Fatal("GenerateKeys should fail when the random source keeps failing")
	}
}

func TestGenerateKeySegmentDigests(t *testing.T) {
	// A constant source makes every segment use the same seed
	withRandReader(t, bytes.NewReader(bytes.Repeat([]byte{7}, 2*seedSize)))

	key, err := GenerateKey(512 + 256)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	seed := hex.EncodeToString(bytes.Repeat([]byte{7}, seedSize))
	long := sha512.Sum512([]byte(seed))
	short := sha256.Sum256([]byte(seed))
	want := hex.EncodeToString(long[:]) + hex.EncodeToString(short[:])
	if string(key) != want {
		t.Fatalf("GenerateKey = %s, want %s", key, want)
	}
}
