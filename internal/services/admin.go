package services

import (
	"context"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/session"
)

// IsAdmin reports the admin flag of userID. An empty userID means the user
// of the session carried by ctx: without one the call fails with
// common.ErrorNotAuthenticated. An unknown user is common.ErrorNotFound.
func (s *UserService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		uc, ok := session.FromContext(ctx)
		if !ok {
			return false, common.ErrorNotAuthenticated
		}
		id, err := uc.UserID(ctx)
		if err != nil {
			return false, err
		}
		userID = id
	}

	user, err := s.mustLoadUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// SetAdmin grants or revokes the admin flag.
func (s *UserService) SetAdmin(ctx context.Context, userID string, admin bool) error {
	user, err := s.mustLoadUser(ctx, userID)
	if err != nil {
		return err
	}
	user.SetAdmin(admin)
	user.Properties = nil
	if _, err := s.SaveUser(ctx, user); err != nil {
		return err
	}
	s.log.Info(ctx, "admin flag changed", "user_id", userID, "admin", admin)
	return nil
}
