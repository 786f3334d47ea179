package hasher

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"golang.org/x/crypto/argon2"
)

// Argon2 stores argon2id hashes in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2 struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// NewArgon2 returns an Argon2 hasher with t=1, m=64MiB, p=4, 32-byte keys.
func NewArgon2() Argon2 {
	return Argon2{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32, SaltLen: 16}
}

func (Argon2) Name() string { return "argon2" }

func (a Argon2) Hash(plain string) (string, error) {
	salt := common.GenerateRandByteArray(a.SaltLen)
	key := argon2.IDKey([]byte(plain), salt, a.Time, a.Memory, a.Threads, a.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, a.Memory, a.Time, a.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func (Argon2) IsHashed(value string) bool {
	_, _, _, err := parseArgon2(value)
	return err == nil
}

func (Argon2) Verify(plain, stored string) bool {
	params, salt, key, err := parseArgon2(stored)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(plain), salt, params.Time, params.Memory, params.Threads, uint32(len(key)))
	return constantTimeEqual(string(candidate), string(key))
}

func parseArgon2(encoded string) (Argon2, []byte, []byte, error) {
	var p Argon2

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("%w: not an argon2id hash", common.ErrorInvalidArgument)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported argon2 version", common.ErrorInvalidArgument)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad argon2 params: %v", common.ErrorInvalidArgument, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: bad argon2 salt: %v", common.ErrorInvalidArgument, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: bad argon2 key", common.ErrorInvalidArgument)
	}

	p.KeyLen = uint32(len(key))
	p.SaltLen = len(salt)
	return p, salt, key, nil
}
