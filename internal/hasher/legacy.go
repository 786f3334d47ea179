package hasher

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a plaintext candidate against a stored value. Every
// Hasher is a Verifier; the types below only verify and never hash.
type Verifier interface {
	Verify(plain, stored string) bool
}

// Chain tries each verifier in order; the first match wins. It lets
// accounts imported from older systems keep logging in with their
// original hash formats.
type Chain []Verifier

func (c Chain) Verify(plain, stored string) bool {
	for _, v := range c {
		if v != nil && v.Verify(plain, stored) {
			return true
		}
	}
	return false
}

// SaltedMD5 matches hex md5(plain + Salt), the format used by older LMS
// installations with a site-wide password salt.
type SaltedMD5 struct {
	Salt string
}

func (s SaltedMD5) Verify(plain, stored string) bool {
	if len(stored) != 32 {
		return false
	}
	sum := md5.Sum([]byte(plain + s.Salt))
	return constantTimeEqual(hex.EncodeToString(sum[:]), strings.ToLower(stored))
}

// PlatformCrypt delegates crypt(3)-style "$2?$" hashes to the bcrypt
// verify primitive. Any other crypt scheme is reported as a mismatch.
type PlatformCrypt struct{}

func (PlatformCrypt) Verify(plain, stored string) bool {
	if !strings.HasPrefix(stored, "$2") {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
}
