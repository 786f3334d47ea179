package services

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/models"
)

// IsValidUser returns the user when plain matches the stored password and
// nil, nil when the login is unknown or the password is wrong.
//
// The configured hasher is tried first, then the legacy verifier chain.
func (s *UserService) IsValidUser(ctx context.Context, login, plain string) (*models.User, error) {
	user, err := s.GetByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.log.Info(ctx, "credential check: unknown login")
		return nil, nil
	}

	if user.Password != "" && s.hasher.Verify(plain, user.Password) {
		return user, nil
	}
	if user.Password != "" && s.legacy.Verify(plain, user.Password) {
		s.log.Info(ctx, "credential check: legacy hash accepted", "user_id", user.ID)
		return user, nil
	}

	s.log.Info(ctx, "credential check: password mismatch", "user_id", user.ID)
	return nil, nil
}
