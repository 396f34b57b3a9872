// Command eea encrypts and decrypts files with the Elite Encryption
// Algorithm and manages password protected keys files.
package main

func main() {
	Execute()
}
