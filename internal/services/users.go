package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/models"
	"github.com/dmitrijs2005/gophusers/internal/repositories/properties"
	"github.com/dmitrijs2005/gophusers/internal/repositories/users"
)

// AddUser creates a new account. An existing id, username or email fails
// with common.ErrorUserExists before anything is written.
func (s *UserService) AddUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Normalize()

	checks := []struct {
		field users.Field
		value string
	}{
		{users.FieldID, user.ID},
		{users.FieldUsername, user.Username},
		{users.FieldEmail, user.Email},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		existing, err := s.loadUser(ctx, c.field, c.value)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.log.Info(ctx, "user already exists", "field", string(c.field))
			return nil, fmt.Errorf("%w: %s taken", common.ErrorUserExists, c.field)
		}
	}

	return s.SaveUser(ctx, user)
}

// SaveUser creates or updates user in one transaction.
//
// A password that does not already look like a hash is checked against the
// user's PasswordDefinition (or the service default) and hashed. The id and
// created timestamp are assigned on first save and never change.
//
// Properties == nil leaves stored properties untouched; any other value,
// including an empty list, replaces them.
func (s *UserService) SaveUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.Normalize()
	if err := s.validate.Struct(user); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		var existing *models.User
		if user.ID != "" {
			found, err := repo.GetByID(ctx, user.ID)
			if err != nil && !isNotFound(err) {
				return err
			}
			existing = found
		}

		if err := s.preparePassword(user, existing); err != nil {
			return err
		}

		if existing == nil {
			if user.ID == "" {
				user.ID = s.ids.NewID()
			}
			if user.Created.IsZero() {
				user.Created = s.now().UTC()
			}
			if user.Admin == "" {
				user.SetAdmin(false)
			}
			if _, err := repo.Create(ctx, user); err != nil {
				return err
			}
		} else {
			user.Created = existing.Created
			if !sameRecord(user, existing) {
				if err := repo.Update(ctx, user); err != nil {
					return err
				}
			}
		}

		if user.Properties == nil {
			return nil
		}
		return syncProperties(ctx, s.repomanager.Properties(tx), user.ID, user.Properties)
	})
	if err != nil {
		s.log.Warn(ctx, "save user failed", "user_id", user.ID, "error", err)
		return nil, passThrough(err)
	}

	props, err := s.repomanager.Properties(s.repomanager.Conn()).ListByUser(ctx, user.ID)
	if err != nil {
		s.log.Error(ctx, "property reload failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if props == nil {
		props = models.PropertyList{}
	}
	user.Properties = props

	s.log.Debug(ctx, "user saved", "user_id", user.ID)
	return user, nil
}

// sameRecord reports whether saving u would leave the stored user row
// unchanged. Property-only saves then work against read-only directories.
func sameRecord(u, stored *models.User) bool {
	return u.Name == stored.Name &&
		u.Email == stored.Email &&
		u.Username == stored.Username &&
		u.Password == stored.Password &&
		u.Admin == stored.Admin
}

// preparePassword hashes a plaintext password. The stored value of an
// existing record passes through unchanged even if its format predates the
// current hasher.
func (s *UserService) preparePassword(user, existing *models.User) error {
	if existing != nil && user.Password == existing.Password {
		return nil
	}
	if s.hasher.IsHashed(user.Password) {
		return nil
	}
	return s.hashPlaintext(user)
}

func (s *UserService) hashPlaintext(user *models.User) error {
	def := user.PasswordDefinition
	if def == nil {
		def = s.definition
	}
	if err := def.Check(user.Password); err != nil {
		return err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hashed
	return nil
}

// syncProperties makes the stored rows of userID equal to want. Rows kept
// by id are updated in place; duplicate pairs in want are dropped.
func syncProperties(ctx context.Context, repo properties.Repository, userID string, want models.PropertyList) error {
	stored, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	type pair struct{ name, value string }
	byID := make(map[string]models.Property, len(stored))
	for _, p := range stored {
		byID[p.ID] = p
	}

	kept := make(map[string]bool)
	seen := make(map[pair]bool)
	var updates, pending []models.Property

	for _, p := range want {
		key := pair{p.Name, p.Value}
		if seen[key] {
			continue
		}
		seen[key] = true

		if old, ok := byID[p.ID]; ok && p.ID != "" && old.Name == p.Name && !kept[p.ID] {
			kept[p.ID] = true
			if old.Value != p.Value {
				updates = append(updates, p)
			}
			continue
		}
		pending = append(pending, p)
	}

	// A pair that is already stored under another id keeps that row.
	var adds []models.Property
	for _, p := range pending {
		matched := false
		for _, old := range stored {
			if !kept[old.ID] && old.Name == p.Name && old.Value == p.Value {
				kept[old.ID] = true
				matched = true
				break
			}
		}
		if !matched {
			adds = append(adds, p)
		}
	}

	for _, old := range stored {
		if !kept[old.ID] {
			if err := repo.Delete(ctx, old.ID); err != nil {
				return err
			}
		}
	}
	for _, p := range updates {
		if err := repo.UpdateValue(ctx, p.ID, p.Value); err != nil {
			return err
		}
	}
	for _, p := range adds {
		row := &models.Property{UserID: userID, Name: p.Name, Value: p.Value}
		if _, err := repo.Add(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// GetByID returns nil, nil when the user does not exist.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.loadUser(ctx, users.FieldID, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.loadUser(ctx, users.FieldUsername, normalizeLogin(username))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.loadUser(ctx, users.FieldEmail, normalizeLogin(email))
}

// GetByLogin looks the user up by the configured login field.
func (s *UserService) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	value := login
	if s.loginField != users.FieldID {
		value = normalizeLogin(login)
	}
	return s.loadUser(ctx, s.loginField, value)
}

// ListUsers returns every user with properties, ordered by username.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	db := s.repomanager.Conn()

	list, err := s.repomanager.Users(db).List(ctx)
	if err != nil {
		s.log.Error(ctx, "list users failed", "error", err)
		return nil, common.ErrorInternal
	}

	props := s.repomanager.Properties(db)
	for _, u := range list {
		pl, err := props.ListByUser(ctx, u.ID)
		if err != nil {
			s.log.Error(ctx, "property lookup failed", "user_id", u.ID, "error", err)
			return nil, common.ErrorInternal
		}
		if pl == nil {
			pl = models.PropertyList{}
		}
		u.Properties = pl
	}
	return list, nil
}

// RemoveUserByID deletes the user and its properties atomically. Removing
// a missing user is a no-op.
func (s *UserService) RemoveUserByID(ctx context.Context, id string) error {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Properties(tx).DeleteByUser(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
	if err != nil {
		s.log.Error(ctx, "remove user failed", "user_id", id, "error", err)
		return passThrough(err)
	}
	s.log.Info(ctx, "user removed", "user_id", id)
	return nil
}

// RemoveUserByLogin resolves login with the configured field and removes
// that user. An unknown login is a no-op.
func (s *UserService) RemoveUserByLogin(ctx context.Context, login string) error {
	user, err := s.GetByLogin(ctx, login)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	return s.RemoveUserByID(ctx, user.ID)
}

// SetPassword treats plain as a plaintext password even when it happens to
// look like a hash, so it is always checked against the policy.
func (s *UserService) SetPassword(ctx context.Context, userID, plain string) error {
	user, err := s.mustLoadUser(ctx, userID)
	if err != nil {
		return err
	}

	user.Password = plain
	if err := s.hashPlaintext(user); err != nil {
		return err
	}

	user.Properties = nil
	if _, err := s.SaveUser(ctx, user); err != nil {
		return err
	}
	s.log.Info(ctx, "password changed", "user_id", userID)
	return nil
}
