package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/hasher"
	"github.com/dmitrijs2005/gophusers/internal/models"
	"github.com/dmitrijs2005/gophusers/internal/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUser_AssignsIDCreatedAndHash(t *testing.T) {
	s, _ := newTestService(t)

	u := addUser(t, s, " Alice ", "ALICE@Example.com", pwAlice)

	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.Created.Equal(fixedNow))
	assert.False(t, u.IsAdmin())

	want, _ := hasher.SHA1{}.Hash(pwAlice)
	assert.Equal(t, want, u.Password)
	assert.NotNil(t, u.Properties)
}

func TestAddUser_DuplicateLeavesOriginal(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	orig := addUser(t, s, "user2", "user2@example.com", pwAlice)

	_, err := s.AddUser(ctx, &models.User{Username: "USER2", Email: "other@example.com", Password: pwBob})
	assert.ErrorIs(t, err, common.ErrorUserExists)

	_, err = s.AddUser(ctx, &models.User{Username: "other", Email: "user2@example.com", Password: pwBob})
	assert.ErrorIs(t, err, common.ErrorUserExists)

	_, err = s.AddUser(ctx, &models.User{ID: orig.ID, Username: "third", Email: "third@example.com", Password: pwBob})
	assert.ErrorIs(t, err, common.ErrorUserExists)

	got, err := s.GetByUsername(ctx, "user2")
	require.NoError(t, err)
	assert.Equal(t, orig.Password, got.Password)
	assert.Equal(t, "user2@example.com", got.Email)

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddUser_PolicyViolation(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.AddUser(ctx, &models.User{Username: "bob", Email: "bob@example.com", Password: "abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.EqualError(t, err, password.PolicyErrorMessage)

	var pe *password.PolicyError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Mask.Has(password.MinimumChars))
	assert.True(t, pe.Mask.Has(password.Numbers))
	assert.True(t, pe.Mask.Has(password.Sequential))

	got, err := s.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, got, "nothing is written on policy failure")
}

func TestSaveUser_PerUserDefinitionOverrides(t *testing.T) {
	s, _ := newTestService(t)

	strict, err := password.NewDefinition(map[password.Rule]int{password.RuleRequireUppercase: 2})
	require.NoError(t, err)

	_, err = s.SaveUser(context.Background(), &models.User{
		Username: "carol", Email: "carol@example.com", Password: pwAlice, PasswordDefinition: strict,
	})
	var pe *password.PolicyError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, password.Uppercase, pe.Mask)
}

func TestSaveUser_NoPolicyWhenDefinitionNil(t *testing.T) {
	s, _ := newTestService(t, func(o *Options) { o.PasswordDefinition = nil })

	u := addUser(t, s, "user2", "user2@example.com", "pwd2")
	assert.Len(t, u.Password, 40)
}

func TestSaveUser_TwiceKeepsHash(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	u := addUser(t, s, "alice", "alice@example.com", pwAlice)
	first := u.Password

	u.Name = "Alice Liddell"
	u, err := s.SaveUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, first, u.Password)

	again, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first, again.Password)
	assert.Equal(t, "Alice Liddell", again.Name)
}

func TestSaveUser_CreatedAndIDAreStable(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	u := addUser(t, s, "alice", "alice@example.com", pwAlice)
	u.Created = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixedNow.Add(time.Hour) }

	u, err := s.SaveUser(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.True(t, u.Created.Equal(fixedNow))
}

func TestSaveUser_ExplicitIDIsKept(t *testing.T) {
	s, _ := newTestService(t)

	u, err := s.SaveUser(context.Background(), &models.User{
		ID: "legacy-42", Username: "dave", Email: "dave@example.com", Password: pwAlice,
	})
	require.NoError(t, err)
	assert.Equal(t, "legacy-42", u.ID)
}

func TestSaveUser_Validation(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.SaveUser(context.Background(), &models.User{Username: "eve", Email: "not-an-email", Password: pwAlice})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.SaveUser(context.Background(), &models.User{Email: "eve@example.com", Password: pwAlice})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestSaveUser_Properties(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	u := &models.User{Username: "alice", Email: "alice@example.com", Password: pwAlice}
	u.Properties.Add("city", "Rio de Janeiro")
	u.Properties.Add("city", "Belo Horizonte")
	u.Properties.Add("city", "Rio de Janeiro")
	u.Properties.Add("role", "student")

	u, err := s.AddUser(ctx, u)
	require.NoError(t, err)
	require.Len(t, u.Properties, 3)
	firstID := u.Properties[0].ID

	u.Properties.Set("city", "Recife")
	u.Properties.Remove("role")
	u.Properties.Add("course", "math")
	u, err = s.SaveUser(ctx, u)
	require.NoError(t, err)

	assert.Equal(t, []string{"Recife", "Belo Horizonte"}, u.Properties.Values("city"))
	assert.False(t, u.Properties.Has("role"))
	assert.Equal(t, []string{"math"}, u.Properties.Values("course"))
	assert.Equal(t, firstID, u.Properties[0].ID, "set updates the row in place")

	bare := &models.User{ID: u.ID, Username: "alice", Email: "alice@example.com", Password: u.Password}
	_, err = s.SaveUser(ctx, bare)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, got.Properties, 3, "nil properties leave stored rows alone")

	got.Properties = models.PropertyList{}
	_, err = s.SaveUser(ctx, got)
	require.NoError(t, err)
	got, err = s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Properties)
}

func TestGetters(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	u := addUser(t, s, "alice", "alice@example.com", pwAlice)

	got, err := s.GetByEmail(ctx, "Alice@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.GetByLogin(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = s.GetByUsername(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListUsers(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()

	addUser(t, s, "carol", "carol@example.com", pwAlice)
	a := addUser(t, s, "alice", "alice@example.com", pwAlice)
	require.NoError(t, s.AddProperty(ctx, a.ID, "role", "editor"))

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
	assert.Equal(t, []string{"editor"}, list[0].Properties.Values("role"))
	assert.Equal(t, "carol", list[1].Username)
}

func TestRemoveUser_Cascades(t *testing.T) {
	s, m := newTestService(t)
	ctx := context.Background()

	a := addUser(t, s, "alice", "alice@example.com", pwAlice)
	b := addUser(t, s, "bob", "bob@example.com", pwBob)
	require.NoError(t, s.AddProperty(ctx, a.ID, "role", "x"))
	require.NoError(t, s.AddProperty(ctx, b.ID, "role", "x"))

	require.NoError(t, s.RemoveUserByID(ctx, a.ID))

	got, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	rows, err := m.Properties(m.Conn()).ListByUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.RemoveUserByLogin(ctx, "BOB"))
	got, err = s.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, s.RemoveUserByID(ctx, "missing"))
	assert.NoError(t, s.RemoveUserByLogin(ctx, "missing"))
}

func TestSetPassword(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	u := addUser(t, s, "alice", "alice@example.com", pwAlice)

	err := s.SetPassword(ctx, u.ID, "short")
	assert.ErrorIs(t, err, common.ErrorValidation)

	require.NoError(t, s.SetPassword(ctx, u.ID, pwBob))

	got, err := s.IsValidUser(ctx, "alice", pwBob)
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = s.IsValidUser(ctx, "alice", pwAlice)
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, s.SetPassword(ctx, "missing", pwBob), common.ErrorNotFound)
}

func TestSetPassword_HashLookingPlaintextIsHashed(t *testing.T) {
	s, _ := newTestService(t, func(o *Options) { o.PasswordDefinition = nil })
	ctx := context.Background()
	u := addUser(t, s, "alice", "alice@example.com", pwAlice)

	hexLike := "0123456789abcdef0123456789abcdef01234567"
	require.NoError(t, s.SetPassword(ctx, u.ID, hexLike))

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, hexLike, got.Password)

	valid, err := s.IsValidUser(ctx, "alice", hexLike)
	require.NoError(t, err)
	assert.NotNil(t, valid)
}
