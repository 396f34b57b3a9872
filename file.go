package eea

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/absfs/absfs"
)

// readFile reads a whole file from fsys
func readFile(fsys absfs.FileSystem, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, NewIOError("open", name, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewIOError("read", name, err)
	}
	return data, nil
}

// writeFile creates or truncates name and writes data to it
func writeFile(fsys absfs.FileSystem, name string, data []byte) error {
	f, err := fsys.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return NewIOError("open", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return NewIOError("write", name, err)
	}
	if err := f.Close(); err != nil {
		return NewIOError("close", name, err)
	}
	return nil
}

// encode returns the base64 text form of engine output
func encode(ciphertext []byte) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(ciphertext)))
	base64.StdEncoding.Encode(out, ciphertext)
	return out
}

// decodeOrRaw base64 decodes data. Content that is not valid base64 is
// returned unchanged so files written as raw engine output still load.
func decodeOrRaw(data []byte) []byte {
	trimmed := bytes.TrimRight(data, "\r\n")
	if len(trimmed) == 0 {
		return data
	}
	out := make([]byte, base64.StdEncoding.DecodedLen(len(trimmed)))
	n, err := base64.StdEncoding.Decode(out, trimmed)
	if err != nil {
		return data
	}
	return out[:n]
}

// EncryptFile encrypts name with engine and writes the base64 encoded
// result to name + Extension. It returns the path written.
func EncryptFile(fsys absfs.FileSystem, name string, engine CipherEngine) (string, error) {
	if fsys == nil {
		return "", ErrNilFileSystem
	}
	if engine == nil {
		return "", ErrNilEngine
	}
	output, err := OutputName(name, ModeEncrypt)
	if err != nil {
		return "", err
	}

	plaintext, err := readFile(fsys, name)
	if err != nil {
		return "", err
	}
	ciphertext, err := engine.Encrypt(plaintext)
	if err != nil {
		return "", NewEncryptionError("encrypt", name, err)
	}
	if err := writeFile(fsys, output, encode(ciphertext)); err != nil {
		return "", err
	}
	return output, nil
}

// DecryptFile decrypts an .eea file with engine and writes the plaintext
// next to it without the extension. It returns the path written.
func DecryptFile(fsys absfs.FileSystem, name string, engine CipherEngine) (string, error) {
	if fsys == nil {
		return "", ErrNilFileSystem
	}
	if engine == nil {
		return "", ErrNilEngine
	}
	output, err := OutputName(name, ModeDecrypt)
	if err != nil {
		return "", err
	}

	plaintext, err := decryptStored(fsys, name, engine)
	if err != nil {
		return "", err
	}
	if err := writeFile(fsys, output, plaintext); err != nil {
		return "", err
	}
	return output, nil
}

// decryptStored reads an encrypted file and returns its plaintext
func decryptStored(fsys absfs.FileSystem, name string, engine CipherEngine) ([]byte, error) {
	data, err := readFile(fsys, name)
	if err != nil {
		return nil, err
	}
	plaintext, err := engine.Decrypt(decodeOrRaw(data))
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, NewCorruptionError(name, err)
		}
		return nil, NewEncryptionError("decrypt", name, err)
	}
	return plaintext, nil
}

// ProcessFile runs EncryptFile or DecryptFile depending on mode
func ProcessFile(fsys absfs.FileSystem, name string, engine CipherEngine, mode Mode) (string, error) {
	switch mode {
	case ModeEncrypt:
		return EncryptFile(fsys, name, engine)
	case ModeDecrypt:
		return DecryptFile(fsys, name, engine)
	default:
		return "", NewValidationError("mode", mode, "unsupported mode")
	}
}

// EncodeText encrypts text and returns the ciphertext as base64
func EncodeText(text []byte, engine CipherEngine) (string, error) {
	if engine == nil {
		return "", ErrNilEngine
	}
	ciphertext, err := engine.Encrypt(text)
	if err != nil {
		return "", NewEncryptionError("encrypt", "", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecodeText decrypts base64 text produced by EncodeText
func DecodeText(text string, engine CipherEngine) ([]byte, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	ciphertext, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace([]byte(text))))
	if err != nil {
		return nil, NewCorruptionError("", fmt.Errorf("%w: not base64: %v", ErrInvalidInput, err))
	}
	plaintext, err := engine.Decrypt(ciphertext)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return nil, NewCorruptionError("", err)
		}
		return nil, NewEncryptionError("decrypt", "", err)
	}
	return plaintext, nil
}
