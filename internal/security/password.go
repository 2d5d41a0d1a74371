package security

import "golang.org/x/crypto/bcrypt"

// DefaultCost mirrors the cost the original deployment ran with.
const DefaultCost = 12

// HashPassword hashes a plain text password with bcrypt. The salt is random,
// so hashing the same input twice yields different strings.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
// bcrypt's comparison is constant time with respect to the password bytes.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
