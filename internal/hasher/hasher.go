// Package hasher turns plaintext passwords into their stored form and
// checks candidates against stored values. Algorithms are pluggable per
// deployment; the service only sees the Hasher interface.
package hasher

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/gophusers/internal/common"
)

// Hasher is the password hashing contract.
type Hasher interface {
	// Name identifies the algorithm in config files.
	Name() string
	// Hash returns the stored representation of plain.
	Hash(plain string) (string, error)
	// IsHashed reports whether value already looks like output of Hash,
	// so saving a record twice does not hash the hash.
	IsHashed(value string) bool
	// Verify reports whether plain matches stored.
	Verify(plain, stored string) bool
}

var (
	sha1Pattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
	md5Pattern  = regexp.MustCompile(`^[0-9a-f]{32}$`)
)

// SHA1 is the default hasher: lowercase hex SHA-1, 40 characters.
type SHA1 struct{}

func (SHA1) Name() string { return "sha1" }

func (SHA1) Hash(plain string) (string, error) {
	sum := sha1.Sum([]byte(plain))
	return hex.EncodeToString(sum[:]), nil
}

func (SHA1) IsHashed(value string) bool { return sha1Pattern.MatchString(value) }

func (h SHA1) Verify(plain, stored string) bool {
	candidate, _ := h.Hash(plain)
	return constantTimeEqual(candidate, stored)
}

// MD5 stores lowercase hex MD5, 32 characters. Kept for migrated data sets.
type MD5 struct{}

func (MD5) Name() string { return "md5" }

func (MD5) Hash(plain string) (string, error) {
	sum := md5.Sum([]byte(plain))
	return hex.EncodeToString(sum[:]), nil
}

func (MD5) IsHashed(value string) bool { return md5Pattern.MatchString(value) }

func (h MD5) Verify(plain, stored string) bool {
	candidate, _ := h.Hash(plain)
	return constantTimeEqual(candidate, stored)
}

// ByName returns the hasher registered under name. Empty selects SHA1.
// bcryptCost is used only for "bcrypt"; zero means bcrypt.DefaultCost.
func ByName(name string, bcryptCost int) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha1":
		return SHA1{}, nil
	case "md5":
		return MD5{}, nil
	case "bcrypt":
		return NewBcrypt(bcryptCost), nil
	case "argon2", "argon2id":
		return NewArgon2(), nil
	default:
		return nil, fmt.Errorf("%w: unknown password hash %q", common.ErrorInvalidArgument, name)
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
