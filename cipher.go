package eea

import (
	"fmt"
	"math"
)

// CipherEngine encrypts and decrypts whole buffers
type CipherEngine interface {
	// Encrypt pads data to a block boundary and encrypts it
	Encrypt(data []byte) ([]byte, error)

	// Decrypt decrypts ciphertext and strips the zero padding
	Decrypt(ciphertext []byte) ([]byte, error)

	// BlockSize returns the block length in bytes
	BlockSize() int
}

// ChainEngine implements CipherEngine with the chained block cipher.
// Each key performs one pass over the buffer. Within a pass the first
// block is XORed with the key and every later block with the previous
// ciphertext block of the same pass.
type ChainEngine struct {
	keys KeySet
}

// NewChainEngine creates an engine bound to keys
func NewChainEngine(keys KeySet) (*ChainEngine, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}
	return &ChainEngine{keys: keys}, nil
}

// Encrypt encrypts data with the bound keys
func (e *ChainEngine) Encrypt(data []byte) ([]byte, error) {
	return Encrypt(data, e.keys)
}

// Decrypt decrypts ciphertext with the bound keys
func (e *ChainEngine) Decrypt(ciphertext []byte) ([]byte, error) {
	return Decrypt(ciphertext, e.keys)
}

// BlockSize returns the key length of the bound keys
func (e *ChainEngine) BlockSize() int {
	return e.keys.BlockSize()
}

// checkKeys enforces the engine preconditions: a non-empty set of
// non-empty keys that all have the same length.
func checkKeys(keys KeySet) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: no keys provided", ErrInvalidKey)
	}
	blockLen := len(keys[0])
	if blockLen == 0 {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	for i, k := range keys {
		if len(k) != blockLen {
			return fmt.Errorf("%w: key %d has length %d, expected %d", ErrInvalidKey, i, len(k), blockLen)
		}
	}
	return nil
}

// CipherLen returns the smallest multiple of blockLen that can hold
// dataLen bytes. The result is never smaller than one block.
func CipherLen(dataLen, blockLen int) int {
	if blockLen <= 0 {
		return 0
	}
	if dataLen <= blockLen {
		return blockLen
	}
	blocks := dataLen / blockLen
	if dataLen%blockLen != 0 {
		blocks++
	}
	return blocks * blockLen
}

// allocate returns a zeroed buffer of n bytes. Sizes that cannot be
// satisfied come back as ErrOutOfMemory instead of crashing the process.
func allocate(n int) (buf []byte, err error) {
	if n < 0 || n > math.MaxInt-1 {
		return nil, ErrOutOfMemory
	}
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %v", ErrOutOfMemory, r)
		}
	}()
	return make([]byte, n), nil
}

// Encrypt encrypts data with every key in order. The result is zero
// padded to a whole number of blocks; the input is not modified.
func Encrypt(data []byte, keys KeySet) ([]byte, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}

	blockLen := len(keys[0])
	if len(data) > math.MaxInt-blockLen {
		return nil, ErrOutOfMemory
	}

	out, err := allocate(CipherLen(len(data), blockLen))
	if err != nil {
		return nil, err
	}
	copy(out, data)

	for _, k := range keys {
		encryptPass(out, []byte(k))
	}
	return out, nil
}

// encryptPass runs one in-place pass. The keystream of block i is the
// already encrypted block i-1, which is not touched again in this pass.
func encryptPass(buf, key []byte) {
	blockLen := len(key)
	prev := key
	for off := 0; off < len(buf); off += blockLen {
		block := buf[off : off+blockLen]
		for i := range block {
			block[i] ^= prev[i]
		}
		prev = block
	}
}

// decryptBlocks reverses every pass but keeps the padding. The input
// length must be a positive multiple of the block length.
func decryptBlocks(ciphertext []byte, keys KeySet) ([]byte, error) {
	if err := checkKeys(keys); err != nil {
		return nil, err
	}

	blockLen := len(keys[0])
	if len(ciphertext) == 0 || len(ciphertext)%blockLen != 0 {
		return nil, fmt.Errorf("%w: got %d bytes for block length %d", ErrInvalidInput, len(ciphertext), blockLen)
	}

	out, err := allocate(len(ciphertext))
	if err != nil {
		return nil, err
	}
	copy(out, ciphertext)

	for k := len(keys) - 1; k >= 0; k-- {
		decryptPass(out, []byte(keys[k]))
	}
	return out, nil
}

// decryptPass undoes encryptPass in place. Walking the blocks back to
// front keeps block i-1 as ciphertext while block i is recovered.
func decryptPass(buf, key []byte) {
	blockLen := len(key)
	for off := len(buf) - blockLen; off > 0; off -= blockLen {
		block := buf[off : off+blockLen]
		prev := buf[off-blockLen : off]
		for i := range block {
			block[i] ^= prev[i]
		}
	}
	first := buf[:blockLen]
	for i := range first {
		first[i] ^= key[i]
	}
}

// Decrypt decrypts ciphertext with the keys in reverse order and strips
// the zero padding. Plaintext that really ended in zero bytes loses them;
// the padding carries no length so the two cannot be told apart.
func Decrypt(ciphertext []byte, keys KeySet) ([]byte, error) {
	plaintext, err := decryptBlocks(ciphertext, keys)
	if err != nil {
		return nil, err
	}
	return RemovePadding(plaintext), nil
}

// RemovePadding drops trailing Padding bytes
func RemovePadding(b []byte) []byte {
	n := len(b)
	for n > 0 && b[n-1] == Padding {
		n--
	}
	return b[:n]
}
