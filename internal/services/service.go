// Package services contains the user-management business logic. UserService
// stores accounts and their properties, checks credentials, answers
// property-based authorization questions and issues tokens bound to a
// server-side fingerprint.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/auth"
	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/hasher"
	"github.com/dmitrijs2005/gophusers/internal/idgen"
	"github.com/dmitrijs2005/gophusers/internal/logging"
	"github.com/dmitrijs2005/gophusers/internal/models"
	"github.com/dmitrijs2005/gophusers/internal/password"
	"github.com/dmitrijs2005/gophusers/internal/repositories/repomanager"
	"github.com/dmitrijs2005/gophusers/internal/repositories/users"
	"github.com/go-playground/validator/v10"
)

// Options configures a UserService. Zero values fall back to: login by
// username, SHA-1 hashing, UUID ids, no signer, discarded logs.
type Options struct {
	LoginField users.Field
	Hasher     hasher.Hasher
	// Legacy verifiers are tried after Hasher when checking credentials.
	Legacy hasher.Chain
	// PasswordDefinition applies to users without their own definition.
	// Nil disables policy checks.
	PasswordDefinition *password.Definition
	IDs                idgen.Generator
	Signer             auth.Signer
	// TokenTTL is used when CreateAuthToken is called with ttl == 0.
	TokenTTL time.Duration
	Logger   logging.Logger
}

type UserService struct {
	repomanager repomanager.RepositoryManager
	loginField  users.Field
	hasher      hasher.Hasher
	legacy      hasher.Chain
	definition  *password.Definition
	ids         idgen.Generator
	signer      auth.Signer
	tokenTTL    time.Duration
	log         logging.Logger
	validate    *validator.Validate
	now         func() time.Time
}

func NewUserService(m repomanager.RepositoryManager, opts Options) *UserService {
	s := &UserService{
		repomanager: m,
		loginField:  opts.LoginField,
		hasher:      opts.Hasher,
		legacy:      opts.Legacy,
		definition:  opts.PasswordDefinition,
		ids:         opts.IDs,
		signer:      opts.Signer,
		tokenTTL:    opts.TokenTTL,
		log:         opts.Logger,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		now:         time.Now,
	}
	if s.loginField == "" {
		s.loginField = users.FieldUsername
	}
	if s.hasher == nil {
		s.hasher = hasher.SHA1{}
	}
	if s.ids == nil {
		s.ids = idgen.UUID{}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	s.log = s.log.With("module", "user_service")
	return s
}

// loadUser fetches a user with its properties. A missing user yields
// nil, nil; storage failures are logged and reported as ErrorInternal.
func (s *UserService) loadUser(ctx context.Context, field users.Field, value string) (*models.User, error) {
	db := s.repomanager.Conn()

	user, err := s.repomanager.Users(db).GetByField(ctx, field, value)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		s.log.Error(ctx, "user lookup failed", "field", string(field), "error", err)
		return nil, common.ErrorInternal
	}

	props, err := s.repomanager.Properties(db).ListByUser(ctx, user.ID)
	if err != nil {
		s.log.Error(ctx, "property lookup failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if props == nil {
		props = models.PropertyList{}
	}
	user.Properties = props
	return user, nil
}

// mustLoadUser is loadUser with absence reported as ErrorNotFound.
func (s *UserService) mustLoadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.loadUser(ctx, users.FieldID, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

func normalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}
