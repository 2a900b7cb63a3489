package hash

// Hash hashes plaintext secrets and verifies plaintext against stored hashes.
type Hash interface {
	// Hash returns the hash of the given plaintext.
	Hash(str string) ([]byte, error)

	// Verify reports whether the plaintext matches the stored hash.
	Verify(hashed, str string) bool
}
