package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/models"
)

// HasProperty reports whether the user holds at least one value under
// name. Admins hold every property. An unknown user yields false.
func (s *UserService) HasProperty(ctx context.Context, userID, name string) (bool, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	if user.IsAdmin() {
		return true, nil
	}
	return user.Properties.Has(name), nil
}

// HasPropertyValue is HasProperty restricted to one exact value.
func (s *UserService) HasPropertyValue(ctx context.Context, userID, name, value string) (bool, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	if user.IsAdmin() {
		return true, nil
	}
	return user.Properties.HasValue(name, value), nil
}

// GetProperty returns nil for no value, the bare string for exactly one
// value and a []string in insertion order otherwise.
func (s *UserService) GetProperty(ctx context.Context, userID, name string) (any, error) {
	values, err := s.GetPropertyValues(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	switch len(values) {
	case 0:
		return nil, nil
	case 1:
		return values[0], nil
	default:
		return values, nil
	}
}

// GetPropertyValues always returns a slice, empty for an unknown user.
func (s *UserService) GetPropertyValues(ctx context.Context, userID, name string) ([]string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil || user == nil {
		return nil, err
	}
	return user.Properties.Values(name), nil
}

// AddProperty stores the pair unless the user already has it. The admin
// bypass does not apply here; only stored rows count.
func (s *UserService) AddProperty(ctx context.Context, userID, name, value string) error {
	if err := checkPropertyName(name); err != nil {
		return err
	}
	user, err := s.mustLoadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Properties.HasValue(name, value) {
		return nil
	}

	repo := s.repomanager.Properties(s.repomanager.Conn())
	if _, err := repo.Add(ctx, &models.Property{UserID: userID, Name: name, Value: value}); err != nil {
		s.log.Error(ctx, "add property failed", "user_id", userID, "name", name, "error", err)
		return common.ErrorInternal
	}
	return nil
}

// SetProperty overwrites the first value under name in place, or adds
// one when the user has none.
func (s *UserService) SetProperty(ctx context.Context, userID, name, value string) error {
	if err := checkPropertyName(name); err != nil {
		return err
	}
	user, err := s.mustLoadUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.setProperty(ctx, user, name, value)
}

func (s *UserService) setProperty(ctx context.Context, user *models.User, name, value string) error {
	if user.Properties.HasValue(name, value) {
		return nil
	}

	repo := s.repomanager.Properties(s.repomanager.Conn())
	for _, p := range user.Properties {
		if p.Name != name {
			continue
		}
		if err := repo.UpdateValue(ctx, p.ID, value); err != nil {
			s.log.Error(ctx, "update property failed", "user_id", user.ID, "name", name, "error", err)
			return passThrough(err)
		}
		user.Properties.Set(name, value)
		return nil
	}

	row, err := repo.Add(ctx, &models.Property{UserID: user.ID, Name: name, Value: value})
	if err != nil {
		s.log.Error(ctx, "add property failed", "user_id", user.ID, "name", name, "error", err)
		return common.ErrorInternal
	}
	user.Properties = append(user.Properties, *row)
	return nil
}

// RemoveProperty deletes every value under name for one user.
func (s *UserService) RemoveProperty(ctx context.Context, userID, name string) (int64, error) {
	n, err := s.repomanager.Properties(s.repomanager.Conn()).DeleteByName(ctx, userID, name)
	return n, s.propertyErr(ctx, "remove property failed", err)
}

func (s *UserService) RemovePropertyValue(ctx context.Context, userID, name, value string) (int64, error) {
	n, err := s.repomanager.Properties(s.repomanager.Conn()).DeleteByNameValue(ctx, userID, name, value)
	return n, s.propertyErr(ctx, "remove property value failed", err)
}

// RemoveAllProperties deletes name from every user.
func (s *UserService) RemoveAllProperties(ctx context.Context, name string) (int64, error) {
	n, err := s.repomanager.Properties(s.repomanager.Conn()).DeleteAllByName(ctx, name)
	return n, s.propertyErr(ctx, "remove all properties failed", err)
}

func (s *UserService) RemoveAllPropertyValues(ctx context.Context, name, value string) (int64, error) {
	n, err := s.repomanager.Properties(s.repomanager.Conn()).DeleteAllByNameValue(ctx, name, value)
	return n, s.propertyErr(ctx, "remove all property values failed", err)
}

// GetUsersByProperty returns users holding name=value.
func (s *UserService) GetUsersByProperty(ctx context.Context, name, value string) ([]*models.User, error) {
	return s.GetUsersByPropertySet(ctx, []models.PropertyFilter{{Name: name, Value: value}})
}

// GetUsersByPropertySet returns users holding every pair in filters,
// ordered by id. No filters match nobody.
func (s *UserService) GetUsersByPropertySet(ctx context.Context, filters []models.PropertyFilter) ([]*models.User, error) {
	ids, err := s.repomanager.Properties(s.repomanager.Conn()).FindUserIDs(ctx, filters)
	if err != nil {
		s.log.Error(ctx, "property search failed", "error", err)
		return nil, common.ErrorInternal
	}

	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user != nil {
			out = append(out, user)
		}
	}
	return out, nil
}

func (s *UserService) propertyErr(ctx context.Context, msg string, err error) error {
	if err == nil {
		return nil
	}
	s.log.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}

// checkPropertyName rejects names the service reserves for itself.
func checkPropertyName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty property name", common.ErrorInvalidArgument)
	}
	if name == common.TokenHashProperty {
		return fmt.Errorf("%w: property %q is reserved", common.ErrorInvalidArgument, name)
	}
	return nil
}
