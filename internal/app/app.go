// Package app wires configuration, storage, hashing, token signing and
// the session store into a ready-to-use UserService.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophusers/internal/auth"
	"github.com/dmitrijs2005/gophusers/internal/config"
	"github.com/dmitrijs2005/gophusers/internal/dbx"
	"github.com/dmitrijs2005/gophusers/internal/hasher"
	"github.com/dmitrijs2005/gophusers/internal/idgen"
	"github.com/dmitrijs2005/gophusers/internal/logging"
	"github.com/dmitrijs2005/gophusers/internal/password"
	"github.com/dmitrijs2005/gophusers/internal/repositories/repomanager"
	"github.com/dmitrijs2005/gophusers/internal/repositories/users"
	"github.com/dmitrijs2005/gophusers/internal/services"
	"github.com/dmitrijs2005/gophusers/internal/session"
	"github.com/redis/go-redis/v9"
)

type App struct {
	Config      *config.Config
	Logger      logging.Logger
	Repos       repomanager.RepositoryManager
	UserService *services.UserService
	Sessions    session.Store

	closers []func() error
}

// Seams for tests.
var (
	logOutput io.Writer = os.Stderr
	openDB              = func(ctx context.Context, dsn string) (*sql.DB, error) {
		return dbx.Open(ctx, repomanager.DriverName, dsn)
	}
)

// NewApp builds every collaborator described by c. On error, whatever was
// already opened is closed again.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config: c,
		Logger: logging.NewJSONLogger(logOutput, c.LogLevel),
	}
	if err := app.init(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Logger.Debug(ctx, "app initialized", "storage", c.Storage, "login_field", c.LoginField, "hash", c.PasswordHash)
	return app, nil
}

func (app *App) init(ctx context.Context) error {
	var err error
	if app.Repos, err = app.initStorage(ctx); err != nil {
		return fmt.Errorf("storage init error: %w", err)
	}
	if app.Config.ReadOnlyUsers {
		app.Repos = repomanager.NewReadOnlyUsersManager(app.Repos)
	}
	if app.Sessions, err = app.initSessions(ctx); err != nil {
		return fmt.Errorf("session store init error: %w", err)
	}

	opts, err := serviceOptions(app.Config)
	if err != nil {
		return err
	}
	opts.Logger = app.Logger
	app.UserService = services.NewUserService(app.Repos, opts)
	return nil
}

func (app *App) initStorage(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.Config.Storage == config.StorageMemory {
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	db, err := openDB(ctx, app.Config.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	m := repomanager.NewPostgresRepositoryManager(db)
	app.closers = append(app.closers, m.Close)

	if err := m.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return m, nil
}

func (app *App) initSessions(ctx context.Context) (session.Store, error) {
	c := app.Config
	if c.RedisAddr == "" {
		return session.NewMemoryStore(c.SessionPrefix), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	app.closers = append(app.closers, client.Close)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return session.NewRedisStore(client, c.SessionPrefix, c.SessionTTL), nil
}

// serviceOptions translates config values into UserService collaborators.
func serviceOptions(c *config.Config) (services.Options, error) {
	h, err := hasher.ByName(c.PasswordHash, c.BcryptCost)
	if err != nil {
		return services.Options{}, err
	}

	field, err := users.ParseField(c.LoginField)
	if err != nil {
		return services.Options{}, err
	}

	def, err := password.ParseRules(c.PasswordRules)
	if err != nil {
		return services.Options{}, err
	}

	signer, err := auth.NewJWTSigner([]byte(c.SecretKey))
	if err != nil {
		return services.Options{}, err
	}

	var legacy hasher.Chain
	if c.LegacyMD5Salt != "" {
		legacy = append(legacy, hasher.SaltedMD5{Salt: c.LegacyMD5Salt})
	}
	if c.LegacyCrypt {
		legacy = append(legacy, hasher.PlatformCrypt{})
	}

	return services.Options{
		LoginField:         field,
		Hasher:             h,
		Legacy:             legacy,
		PasswordDefinition: def,
		IDs:                idgen.UUID{},
		Signer:             signer,
		TokenTTL:           c.TokenValidityDuration,
	}, nil
}

// Close releases storage and session connections in reverse order.
func (app *App) Close() error {
	var errs []error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
