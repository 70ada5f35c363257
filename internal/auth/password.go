package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash for storage in credencial.password_hash.
// A cost below bcrypt's minimum falls back to the library default so a
// misconfigured environment cannot produce weak hashes.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against its stored hash.
func VerifyPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
