// Package eea implements the Elite Encryption Algorithm file tool: a
// chained block cipher keyed by hex strings, a key generator, a password
// protected key vault and a concurrent batch processor for files on any
// absfs.FileSystem.
//
// # Overview
//
// A key is a hex string whose characters are used literally as key bytes,
// so a 512-bit key is 128 bytes long and the block length equals the key
// length. A KeySet holds several keys of the same length. Encryption
// applies one pass per key in order; decryption applies them in reverse.
//
// Within a pass the first block is XORed with the key and every later
// block with the previous ciphertext block. Input is zero padded to a
// whole number of blocks and decryption strips trailing zero bytes, so
// plaintext that really ends in 0x00 does not survive a round trip.
//
// # Security Considerations
//
// The cipher is a chained XOR construction. It provides no
// authentication and must not be relied on to protect sensitive data.
// Decrypting with the wrong keys of the right length succeeds and
// returns garbage.
//
// # Basic Usage
//
//	keys, err := eea.GenerateKeys(eea.DefaultKeyBits, eea.DefaultNumKeys)
//	if err != nil {
//	    return err
//	}
//
//	// Protect the keys with a password and store them
//	store, err := eea.NewKeyStore(fsys, "/keys")
//	if err != nil {
//	    return err
//	}
//	if _, err := store.Save("work.keys", keys, eea.NewPasswordKeyProvider(password)); err != nil {
//	    return err
//	}
//
//	// Encrypt a directory with two workers
//	files, _ := eea.CollectFiles(fsys, "/docs")
//	p, _ := eea.NewProcessor(fsys)
//	results, err := p.Process(ctx, files, keys, true, 2, eea.ModeEncrypt)
//
// # Keys Files
//
// A keys file holds a random salt and the keys separated by newlines,
// encrypted five times with the SHA-512 hex digest of the password and
// stored as base64. A wrong password is reported as ErrDecryptionFailed
// or ErrInvalidKeys, except in the rare case where garbage happens to
// parse as valid keys.
//
// # Error Handling
//
// Errors are typed (ValidationError, EncryptionError, IOError,
// CorruptionError, AuthenticationError) and wrap sentinel errors that
// can be checked with errors.Is.
package eea
