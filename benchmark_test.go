package eea

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Benchmark engine encryption throughput
func BenchmarkEncrypt(b *testing.B) {
	sizes := []int{
		1024,             // 1 KB
		64 * 1024,        // 64 KB
		1024 * 1024,      // 1 MB
		10 * 1024 * 1024, // 10 MB
	}

	for _, size := range sizes {
		b.Run(formatSize(size), func(b *testing.B) {
			benchmarkEncrypt(b, DefaultKeyBits, DefaultNumKeys, size)
		})
	}
}

// Benchmark engine encryption by key size
func BenchmarkEncrypt_KeySize(b *testing.B) {
	for _, bits := range []int{256, 512, 1024, 4096} {
		b.Run(fmt.Sprintf("%dbit", bits), func(b *testing.B) {
			benchmarkEncrypt(b, bits, DefaultNumKeys, 1024*1024)
		})
	}
}

func benchmarkEncrypt(b *testing.B, bits, numKeys, size int) {
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		b.Fatalf("failed to generate test data: %v", err)
	}
	keys := mustKeys(b, bits, numKeys)

	b.SetBytes(int64(size))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Encrypt(data, keys); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark engine decryption throughput
func BenchmarkDecrypt(b *testing.B) {
	sizes := []int{
		1024,        // 1 KB
		64 * 1024,   // 64 KB
		1024 * 1024, // 1 MB
	}

	for _, size := range sizes {
		b.Run(formatSize(size), func(b *testing.B) {
			data := make([]byte, size)
			if _, err := rand.Read(data); err != nil {
				b.Fatalf("failed to generate test data: %v", err)
			}
			keys := mustKeys(b, DefaultKeyBits, DefaultNumKeys)
			ciphertext, err := Encrypt(data, keys)
			if err != nil {
				b.Fatal(err)
			}

			b.SetBytes(int64(size))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := Decrypt(ciphertext, keys); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkGenerateKeys(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := GenerateKeys(DefaultKeyBits, DefaultNumKeys); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProtectUnprotect(b *testing.B) {
	keys := mustKeys(b, DefaultKeyBits, DefaultNumKeys)
	p := NewPasswordKeyProvider([]byte("benchmark-password"))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		blob, err := Protect(keys, p)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := Unprotect(blob, p); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark batch encryption of a directory by worker count
func BenchmarkProcess(b *testing.B) {
	const numFiles = 32
	const fileSize = 64 * 1024

	keys := mustKeys(b, DefaultKeyBits, DefaultNumKeys)
	data := make([]byte, fileSize)
	if _, err := rand.Read(data); err != nil {
		b.Fatalf("failed to generate test data: %v", err)
	}

	for _, threads := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			root := b.TempDir()
			files := make([]string, numFiles)
			for i := range files {
				files[i] = filepath.Join(root, fmt.Sprintf("f%02d", i))
				if err := os.WriteFile(files[i], data, 0644); err != nil {
					b.Fatal(err)
				}
			}

			p, err := NewProcessor(newOSFS(b), WithLogger(quietLogger()))
			if err != nil {
				b.Fatal(err)
			}

			b.SetBytes(numFiles * fileSize)
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := p.Process(context.Background(), files, keys, false, threads, ModeEncrypt); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func formatSize(size int) string {
	if size < 1024 {
		return fmt.Sprintf("%dB", size)
	}
	if size < 1024*1024 {
		return fmt.Sprintf("%dKB", size/1024)
	}
	return fmt.Sprintf("%dMB", size/(1024*1024))
}
