// Package auth signs and verifies the tokens issued by UserService.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signer turns a claim set into a token and back. Expiry enforcement
// belongs to the signer.
type Signer interface {
	Sign(claims map[string]any, ttl time.Duration) (string, error)
	Verify(token string) (map[string]any, error)
}

// JWTSigner issues HS256 JWTs.
type JWTSigner struct {
	secret []byte
	now    func() time.Time
}

func NewJWTSigner(secret []byte) (*JWTSigner, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", common.ErrorInvalidArgument)
	}
	return &JWTSigner{secret: secret, now: time.Now}, nil
}

// Sign copies claims and adds iat and a random jti, so two tokens signed
// in the same second still differ. A zero ttl issues a token without exp;
// a negative ttl yields an already expired token.
func (s *JWTSigner) Sign(claims map[string]any, ttl time.Duration) (string, error) {
	now := s.now()

	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = jwt.NewNumericDate(now)
	mc["jti"] = uuid.NewString()
	if ttl != 0 {
		mc["exp"] = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(s.secret)
}

func (s *JWTSigner) Verify(tokenString string) (map[string]any, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Fingerprint is the value stored server-side for the last issued token.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
