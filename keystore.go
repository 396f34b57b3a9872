package eea

import (
	"errors"
	"sort"

	"github.com/absfs/absfs"
)

// KeyStore manages protected keys files inside one directory
type KeyStore struct {
	fs  absfs.FileSystem
	dir string
}

// NewKeyStore opens the keys directory dir on fsys, creating it if needed
func NewKeyStore(fsys absfs.FileSystem, dir string) (*KeyStore, error) {
	if fsys == nil {
		return nil, ErrNilFileSystem
	}
	if dir == "" {
		return nil, NewValidationError("keys_dir", dir, "keys directory cannot be empty")
	}
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return nil, NewIOError("mkdir", dir, err)
	}
	return &KeyStore{fs: fsys, dir: dir}, nil
}

// Dir returns the keys directory
func (s *KeyStore) Dir() string {
	return s.dir
}

// Path returns the location of a keys file. An empty name selects
// DefaultKeysFile.
func (s *KeyStore) Path(name string) (string, error) {
	name, err := keysFileName(name)
	if err != nil {
		return "", err
	}
	return joinPath(s.fs.Separator(), s.dir, name), nil
}

// Save protects keys with p and writes them base64 encoded to name.
// An existing file is replaced.
func (s *KeyStore) Save(name string, keys KeySet, p KeyProvider) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	blob, err := Protect(keys, p)
	if err != nil {
		return "", err
	}
	if err := writeFile(s.fs, path, encode(blob)); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads name and unlocks it with p
func (s *KeyStore) Load(name string, p KeyProvider) (KeySet, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	data, err := readFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	keys, err := Unprotect(decodeOrRaw(data), p)
	if err != nil {
		var authErr *AuthenticationError
		if errors.As(err, &authErr) {
			authErr.Path = path
		}
		return nil, err
	}
	return keys, nil
}

// List returns the names of all keys files in the directory, sorted
func (s *KeyStore) List() ([]string, error) {
	f, err := s.fs.Open(s.dir)
	if err != nil {
		return nil, NewIOError("open", s.dir, err)
	}
	defer f.Close()

	entries, err := f.Readdir(-1)
	if err != nil {
		return nil, NewIOError("readdir", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsKeysFileName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether the keys file name is present
func (s *KeyStore) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := s.fs.Stat(path)
	return err == nil && !info.IsDir()
}

// Empty reports whether the directory holds no keys files
func (s *KeyStore) Empty() (bool, error) {
	names, err := s.List()
	if err != nil {
		return false, err
	}
	return len(names) == 0, nil
}

// Delete removes the keys file name
func (s *KeyStore) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil {
		return NewIOError("remove", path, err)
	}
	return nil
}

// ChangePassword unlocks name with oldKey and protects it again with newKey
func (s *KeyStore) ChangePassword(name string, oldKey, newKey KeyProvider) error {
	keys, err := s.Load(name, oldKey)
	if err != nil {
		return err
	}
	_, err = s.Save(name, keys, newKey)
	return err
}
