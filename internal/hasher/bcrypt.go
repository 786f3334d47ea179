package hasher

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes with golang.org/x/crypto/bcrypt. Output is salted, so
// Verify uses bcrypt's own comparison instead of re-hashing.
type Bcrypt struct {
	Cost int
}

// NewBcrypt returns a Bcrypt hasher; cost 0 selects bcrypt.DefaultCost.
func NewBcrypt(cost int) Bcrypt {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return Bcrypt{Cost: cost}
}

func (Bcrypt) Name() string { return "bcrypt" }

func (b Bcrypt) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), b.Cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (Bcrypt) IsHashed(value string) bool {
	if len(value) != 60 {
		return false
	}
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

func (Bcrypt) Verify(plain, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
