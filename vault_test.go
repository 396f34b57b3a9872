package eea

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestProtectUnprotect(t *testing.T) {
	keys := mustKeys(t, 512, 3)

	blob, err := ProtectKeys(keys, []byte("secret"))
	if err != nil {
		t.Fatalf("ProtectKeys failed: %v", err)
	}

	got, err := UnprotectKeys(blob, []byte("secret"))
	if err != nil {
		t.Fatalf("UnprotectKeys failed: %v", err)
	}
	if !got.Equal(keys) {
		t.Fatalf("UnprotectKeys = %v, want %v", got, keys)
	}
}

func TestProtectUnprotectSizes(t *testing.T) {
	tests := []struct {
		name string
		bits int
		n    int
	}{
		{"single short key", 256, 1},
		{"default", DefaultKeyBits, DefaultNumKeys},
		{"long keys", 2048, 2},
		{"many keys", 256, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := mustKeys(t, tt.bits, tt.n)
			p := NewPasswordKeyProvider([]byte("correct horse battery staple"))

			blob, err := Protect(keys, p)
			if err != nil {
				t.Fatalf("Protect failed: %v", err)
			}
			got, err := Unprotect(blob, p)
			if err != nil {
				t.Fatalf("Unprotect failed: %v", err)
			}
			if !got.Equal(keys) {
				t.Fatal("keys changed in the round trip")
			}
		})
	}
}

func TestProtectUnprotectEmptyPassword(t *testing.T) {
	keys := mustKeys(t, 512, 3)

	for _, pw := range [][]byte{nil, {}} {
		blob, err := ProtectKeys(keys, pw)
		if err != nil {
			t.Fatalf("ProtectKeys(%q) failed: %v", pw, err)
		}
		if len(blob) == 0 {
			t.Fatal("ProtectKeys returned an empty blob")
		}
		got, err := UnprotectKeys(blob, []byte(""))
		if err != nil {
			t.Fatalf("UnprotectKeys failed: %v", err)
		}
		if !got.Equal(keys) {
			t.Fatal("keys changed in the round trip")
		}
	}

	blob, err := ProtectKeys(keys, []byte("not empty"))
	if err != nil {
		t.Fatalf("ProtectKeys failed: %v", err)
	}
	if got, err := UnprotectKeys(blob, nil); err == nil && got.Equal(keys) {
		t.Fatal("the empty password unlocked keys protected with another password")
	}
}

func TestProtectIsSalted(t *testing.T) {
	keys := mustKeys(t, 256, 2)

	a, err := ProtectKeys(keys, []byte("pw"))
	if err != nil {
		t.Fatalf("ProtectKeys failed: %v", err)
	}
	b, err := ProtectKeys(keys, []byte("pw"))
	if err != nil {
		t.Fatalf("ProtectKeys failed: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two protections of the same keys should differ")
	}
}

func TestUnprotectWrongPassword(t *testing.T) {
	keys := mustKeys(t, 512, 3)

	blob, err := ProtectKeys(keys, []byte("secret"))
	if err != nil {
		t.Fatalf("ProtectKeys failed: %v", err)
	}

	for _, pw := range []string{"Secret", "secret ", "s", "another password entirely"} {
		got, err := UnprotectKeys(blob, []byte(pw))
		if err == nil {
			// Garbage that parses as keys is possible but must not match
			if got.Equal(keys) {
				t.Fatalf("password %q unlocked the keys", pw)
			}
			continue
		}
		if !IsAuthenticationError(err) {
			t.Fatalf("password %q: error = %T %v, want AuthenticationError", pw, err, err)
		}
		if !errors.Is(err, ErrDecryptionFailed) && !errors.Is(err, ErrInvalidKeys) {
			t.Fatalf("password %q: error = %v, want ErrDecryptionFailed or ErrInvalidKeys", pw, err)
		}
	}
}

func TestUnprotectCorrupted(t *testing.T) {
	keys := mustKeys(t, 256, 2)
	blob, err := ProtectKeys(keys, []byte("pw"))
	if err != nil {
		t.Fatalf("ProtectKeys failed: %v", err)
	}

	t.Run("truncated", func(t *testing.T) {
		_, err := UnprotectKeys(blob[:len(blob)-1], []byte("pw"))
		if !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("error = %v, want ErrDecryptionFailed", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := UnprotectKeys(nil, []byte("pw"))
		if !errors.Is(err, ErrDecryptionFailed) {
			t.Fatalf("error = %v, want ErrDecryptionFailed", err)
		}
	})
}

func TestProtectErrors(t *testing.T) {
	keys := mustKeys(t, 256, 1)

	if _, err := Protect(keys, nil); !errors.Is(err, ErrNilKeyProvider) {
		t.Errorf("Protect(nil provider) error = %v", err)
	}
	if _, err := Unprotect([]byte("x"), nil); !errors.Is(err, ErrNilKeyProvider) {
		t.Errorf("Unprotect(nil provider) error = %v", err)
	}
	if _, err := ProtectKeys(KeySet{}, []byte("pw")); !errors.Is(err, ErrInvalidKeys) {
		t.Errorf("ProtectKeys(no keys) error = %v", err)
	}
	if _, err := ProtectKeys(NewKeySet("xyz"), []byte("pw")); !errors.Is(err, ErrInvalidKeys) {
		t.Errorf("ProtectKeys(bad key) error = %v", err)
	}
}

func TestFindKeyLen(t *testing.T) {
	k64 := strings.Repeat("a", 64)
	k128 := strings.Repeat("b", 128)

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"single 64", k64, 64},
		{"two 64", k64 + "\n" + k64, 64},
		{"single 128", k128, 128},
		{"three 128", k128 + "\n" + k128 + "\n" + k128, 128},
		{"too short", "abc", -1},
		{"empty", "", -1},
		{"no separator", k64 + "x", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindKeyLen(tt.in); got != tt.want {
				t.Errorf("FindKeyLen = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseKeys(t *testing.T) {
	k1 := strings.Repeat("1", 64)
	k2 := strings.Repeat("2", 64)

	keys, err := parseKeys(k1 + "\n" + k2)
	if err != nil {
		t.Fatalf("parseKeys failed: %v", err)
	}
	if !keys.Equal(NewKeySet(k1, k2)) {
		t.Fatalf("parseKeys = %v", keys)
	}

	if _, err := parseKeys(k1 + "\n" + "zz"); !errors.Is(err, ErrInvalidKeys) {
		t.Fatalf("short trailing key error = %v, want ErrInvalidKeys", err)
	}
	if _, err := parseKeys(strings.Repeat("g", 64)); !errors.Is(err, ErrInvalidKeys) {
		t.Fatalf("non-hex key error = %v, want ErrInvalidKeys", err)
	}
}

func TestPasswordKey(t *testing.T) {
	key := PasswordKey([]byte("secret"))
	if key.Len() != 128 {
		t.Fatalf("PasswordKey length = %d, want 128", key.Len())
	}
	if key != PasswordKey([]byte("secret")) {
		t.Fatal("PasswordKey is not deterministic")
	}
	if key == PasswordKey([]byte("Secret")) {
		t.Fatal("different passwords gave the same key")
	}
}

func TestKeyProviders(t *testing.T) {
	t.Run("password", func(t *testing.T) {
		p := NewPasswordKeyProvider([]byte("pw"))
		key, err := p.DeriveKey()
		if err != nil {
			t.Fatalf("DeriveKey failed: %v", err)
		}
		if key != PasswordKey([]byte("pw")) {
			t.Fatal("DeriveKey does not match PasswordKey")
		}
	})

	t.Run("empty password", func(t *testing.T) {
		key, err := NewPasswordKeyProvider(nil).DeriveKey()
		if err != nil {
			t.Fatalf("DeriveKey failed: %v", err)
		}
		if key != PasswordKey([]byte{}) {
			t.Fatal("empty password does not hash like any other password")
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("EEA_TEST_PASSWORD", "pw")
		key, err := NewEnvKeyProvider("EEA_TEST_PASSWORD").DeriveKey()
		if err != nil {
			t.Fatalf("DeriveKey failed: %v", err)
		}
		if key != PasswordKey([]byte("pw")) {
			t.Fatal("env provider does not match PasswordKey")
		}
	})

	t.Run("env empty", func(t *testing.T) {
		t.Setenv("EEA_TEST_PASSWORD", "")
		key, err := NewEnvKeyProvider("EEA_TEST_PASSWORD").DeriveKey()
		if err != nil {
			t.Fatalf("DeriveKey failed: %v", err)
		}
		if key != PasswordKey(nil) {
			t.Fatal("empty env password does not match PasswordKey")
		}
	})

	t.Run("env unset", func(t *testing.T) {
		if _, err := NewEnvKeyProvider("EEA_TEST_PASSWORD_UNSET").DeriveKey(); !errors.Is(err, ErrPasswordNotSet) {
			t.Fatalf("error = %v, want ErrPasswordNotSet", err)
		}
	})

	t.Run("salt", func(t *testing.T) {
		salt, err := NewPasswordKeyProvider([]byte("pw")).GenerateSalt(128)
		if err != nil {
			t.Fatalf("GenerateSalt failed: %v", err)
		}
		if len(salt) != 128 {
			t.Fatalf("salt length = %d, want 128", len(salt))
		}
		if bytes.IndexByte(salt, '\n') >= 0 || bytes.IndexByte(salt, 0) >= 0 {
			t.Fatal("salt contains a separator or padding byte")
		}
	})
}

func TestConfirmPassword(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		wantErr error
	}{
		{"match", "secret", "secret", nil},
		{"mismatch", "secret", "secreT", ErrPasswordMismatch},
		{"length mismatch", "secret", "secrets", ErrPasswordMismatch},
		{"both empty", "", "", nil},
		{"one empty", "", "x", ErrPasswordMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ConfirmPassword([]byte(tt.a), []byte(tt.b))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ConfirmPassword error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
