package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophusers/internal/common"
)

// state is the JSON document kept under the session id.
type state struct {
	UserID string            `json:"user_id"`
	Values map[string]string `json:"values,omitempty"`
}

// UserContext is one client's session. It is passed explicitly (or via
// NewContext) rather than looked up from global state.
type UserContext struct {
	store Store
	id    string
}

// NewUserContext binds session id to store. An empty id starts a new
// session with a random id.
func NewUserContext(store Store, id string) (*UserContext, error) {
	if id == "" {
		var err error
		id, err = common.MakeRandHexString(16)
		if err != nil {
			return nil, fmt.Errorf("session id: %w", err)
		}
	}
	return &UserContext{store: store, id: id}, nil
}

// ID is the session key, suitable for handing back to the client.
func (c *UserContext) ID() string {
	return c.id
}

// RegisterLogin marks the session as belonging to userID, discarding any
// values left by a previous login.
func (c *UserContext) RegisterLogin(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", common.ErrorInvalidArgument)
	}
	return c.save(ctx, &state{UserID: userID})
}

func (c *UserContext) RegisterLogout(ctx context.Context) error {
	return c.store.Release(ctx, c.id)
}

func (c *UserContext) IsAuthenticated(ctx context.Context) bool {
	_, err := c.UserID(ctx)
	return err == nil
}

// UserID returns common.ErrorNotAuthenticated when nobody is logged in.
func (c *UserContext) UserID(ctx context.Context) (string, error) {
	st, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	return st.UserID, nil
}

// SetValue attaches an arbitrary value to the authenticated session.
func (c *UserContext) SetValue(ctx context.Context, key, value string) error {
	st, err := c.load(ctx)
	if err != nil {
		return err
	}
	if st.Values == nil {
		st.Values = make(map[string]string)
	}
	st.Values[key] = value
	return c.save(ctx, st)
}

// Value returns common.ErrorNotFound for an unset key.
func (c *UserContext) Value(ctx context.Context, key string) (string, error) {
	st, err := c.load(ctx)
	if err != nil {
		return "", err
	}
	v, ok := st.Values[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (c *UserContext) load(ctx context.Context) (*state, error) {
	raw, err := c.store.Get(ctx, c.id)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	var st state
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	if st.UserID == "" {
		return nil, common.ErrorNotAuthenticated
	}
	return &st, nil
}

func (c *UserContext) save(ctx context.Context, st *state) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := c.store.Set(ctx, c.id, string(raw)); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying uc.
func NewContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, uc)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*UserContext, bool) {
	uc, ok := ctx.Value(ctxKey{}).(*UserContext)
	return uc, ok && uc != nil
}
