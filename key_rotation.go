package eea

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/absfs/absfs"
)

// MultiKeyProvider tries multiple key providers in order when unlocking
// a keys file. This is useful while a password is being changed.
type MultiKeyProvider struct {
	providers []KeyProvider
	primary   KeyProvider // Primary provider for new protections
}

// NewMultiKeyProvider creates a new multi-key provider.
// The first provider protects new keys files, all of them unlock.
func NewMultiKeyProvider(providers ...KeyProvider) (*MultiKeyProvider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one key provider required: %w", ErrNilKeyProvider)
	}
	for i, p := range providers {
		if p == nil {
			return nil, fmt.Errorf("provider %d: %w", i, ErrNilKeyProvider)
		}
	}

	return &MultiKeyProvider{
		providers: providers,
		primary:   providers[0],
	}, nil
}

// DeriveKey uses the primary provider
func (m *MultiKeyProvider) DeriveKey() (Key, error) {
	return m.primary.DeriveKey()
}

// GenerateSalt uses the primary provider
func (m *MultiKeyProvider) GenerateSalt(n int) ([]byte, error) {
	return m.primary.GenerateSalt(n)
}

// unprotect tries every provider in order and returns the first keys
// that unlock cleanly
func (m *MultiKeyProvider) unprotect(blob []byte) (KeySet, error) {
	var lastErr error
	for _, provider := range m.providers {
		keys, err := Unprotect(blob, provider)
		if err == nil {
			return keys, nil
		}
		if errors.Is(err, ErrOutOfMemory) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("all key providers failed: %w", lastErr)
}

// ReEncryptFile decrypts the .eea file name with from and writes it
// back in place encrypted with to
func ReEncryptFile(fsys absfs.FileSystem, name string, from, to CipherEngine) error {
	if fsys == nil {
		return ErrNilFileSystem
	}
	if from == nil || to == nil {
		return ErrNilEngine
	}
	if !IsCiphertextName(name) {
		return fmt.Errorf("%w: %s", ErrNotCiphertext, name)
	}

	plaintext, err := decryptStored(fsys, name, from)
	if err != nil {
		return err
	}
	ciphertext, err := to.Encrypt(plaintext)
	if err != nil {
		return NewEncryptionError("encrypt", name, err)
	}
	return writeFile(fsys, name, encode(ciphertext))
}

// KeyRotationOptions contains options for key rotation operations
type KeyRotationOptions struct {
	// DryRun lists the files that would be rotated without touching them
	DryRun bool

	// Logger receives one record per file, slog.Default() when nil
	Logger *slog.Logger
}

// RotationReport lists the outcome of RotateFiles
type RotationReport struct {
	Rotated []string
	Failed  map[string]error
}

// RotateFiles re-encrypts every .eea file below root from oldKeys to
// newKeys. Failures are collected and do not stop the walk.
func RotateFiles(fsys absfs.FileSystem, root string, oldKeys, newKeys KeySet, opts KeyRotationOptions) (*RotationReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	from, err := NewChainEngine(oldKeys)
	if err != nil {
		return nil, err
	}
	to, err := NewChainEngine(newKeys)
	if err != nil {
		return nil, err
	}

	files, err := CollectFiles(fsys, root)
	if err != nil {
		return nil, err
	}

	report := &RotationReport{Failed: make(map[string]error)}
	for _, name := range files {
		if !IsCiphertextName(name) {
			continue
		}
		if opts.DryRun {
			logger.Info("would rotate file", slog.String("path", name))
			report.Rotated = append(report.Rotated, name)
			continue
		}
		if err := ReEncryptFile(fsys, name, from, to); err != nil {
			logger.Error("failed to rotate file", slog.String("path", name), slog.Any("error", err))
			report.Failed[name] = err
			continue
		}
		logger.Debug("file rotated", slog.String("path", name))
		report.Rotated = append(report.Rotated, name)
	}

	if len(report.Failed) > 0 {
		return report, fmt.Errorf("key rotation completed with %d errors (rotated %d files)", len(report.Failed), len(report.Rotated))
	}
	return report, nil
}
