package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/auth"
	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/models"
)

// Claim names always present in issued tokens.
const (
	ClaimLogin  = "login"
	ClaimUserID = "userid"
)

// TokenInfo is the result of a successful IsValidToken.
type TokenInfo struct {
	User   *models.User
	Claims map[string]any
}

// CreateAuthToken checks the credentials, applies userFields as property
// updates, signs tokenClaims plus login and user id, and stores the token
// fingerprint on the user. Issuing a token invalidates the previous one.
//
// A zero ttl uses the service default. Bad credentials fail with
// common.ErrorNotAuthenticated.
func (s *UserService) CreateAuthToken(ctx context.Context, login, password string, ttl time.Duration,
	userFields map[string]string, tokenClaims map[string]any) (string, error) {

	if s.signer == nil {
		return "", fmt.Errorf("%w: no token signer configured", common.ErrorUnsupported)
	}
	for name := range userFields {
		if err := checkPropertyName(name); err != nil {
			return "", err
		}
	}

	user, err := s.IsValidUser(ctx, login, password)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", common.ErrorNotAuthenticated
	}

	names := make([]string, 0, len(userFields))
	for name := range userFields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		user.Properties.Set(name, userFields[name])
	}

	claims := make(map[string]any, len(tokenClaims)+2)
	for k, v := range tokenClaims {
		claims[k] = v
	}
	claims[ClaimLogin] = normalizeLogin(login)
	claims[ClaimUserID] = user.ID

	if ttl == 0 {
		ttl = s.tokenTTL
	}
	token, err := s.signer.Sign(claims, ttl)
	if err != nil {
		s.log.Error(ctx, "token signing failed", "user_id", user.ID, "error", err)
		return "", common.ErrorInternal
	}

	user.Properties.Set(common.TokenHashProperty, auth.Fingerprint(token))
	if _, err := s.SaveUser(ctx, user); err != nil {
		return "", err
	}

	s.log.Info(ctx, "token issued", "user_id", user.ID)
	return token, nil
}

// IsValidToken accepts token only if it is the last one issued for login
// and the signer still considers it valid. Failures: unknown login is
// common.ErrorNotFound, a stale or foreign token common.ErrorNotAuthenticated,
// signature or expiry problems the signer's error.
func (s *UserService) IsValidToken(ctx context.Context, login, token string) (*TokenInfo, error) {
	if s.signer == nil {
		return nil, fmt.Errorf("%w: no token signer configured", common.ErrorUnsupported)
	}

	user, err := s.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrorNotFound
	}

	stored := user.Properties.Values(common.TokenHashProperty)
	presented := auth.Fingerprint(token)
	if len(stored) == 0 || subtle.ConstantTimeCompare([]byte(stored[0]), []byte(presented)) != 1 {
		s.log.Info(ctx, "token fingerprint mismatch", "user_id", user.ID)
		return nil, common.ErrorNotAuthenticated
	}

	claims, err := s.signer.Verify(token)
	if err != nil {
		s.log.Info(ctx, "token rejected by signer", "user_id", user.ID, "error", err)
		return nil, err
	}

	if _, err := s.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	return &TokenInfo{User: user, Claims: claims}, nil
}

// RevokeTokens drops the stored fingerprint so no outstanding token for
// the user validates any more.
func (s *UserService) RevokeTokens(ctx context.Context, userID string) error {
	_, err := s.repomanager.Properties(s.repomanager.Conn()).DeleteByName(ctx, userID, common.TokenHashProperty)
	return s.propertyErr(ctx, "token revoke failed", err)
}
