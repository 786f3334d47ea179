package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/auth"
	"github.com/dmitrijs2005/gophusers/internal/idgen"
	"github.com/dmitrijs2005/gophusers/internal/logging"
	"github.com/dmitrijs2005/gophusers/internal/models"
	"github.com/dmitrijs2005/gophusers/internal/password"
	"github.com/dmitrijs2005/gophusers/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

const (
	pwAlice = "w1kpq8zm"
	pwBob   = "t7rvbn5e"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, tweak ...func(*Options)) (*UserService, *repomanager.MemoryRepositoryManager) {
	t.Helper()

	signer, err := auth.NewJWTSigner([]byte("test-secret"))
	require.NoError(t, err)

	opts := Options{
		PasswordDefinition: password.DefaultDefinition(),
		IDs:                &idgen.Sequence{Prefix: "u-"},
		Signer:             signer,
		TokenTTL:           time.Hour,
		Logger:             logging.Discard(),
	}
	for _, f := range tweak {
		f(&opts)
	}

	m := repomanager.NewMemoryRepositoryManager()
	s := NewUserService(m, opts)
	s.now = func() time.Time { return fixedNow }
	return s, m
}

func addUser(t *testing.T, s *UserService, username, email, pw string) *models.User {
	t.Helper()
	u, err := s.AddUser(context.Background(), &models.User{
		Name: username, Username: username, Email: email, Password: pw,
	})
	require.NoError(t, err)
	return u
}
