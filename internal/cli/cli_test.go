package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophusers/internal/app"
	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pwAlice = "w1kpq8zm"
	pwBob   = "t7rvbn5e"
)

type testCLI struct {
	*CLI
	out       *bytes.Buffer
	passwords []string
}

// newTestCLI runs over in-memory storage. input feeds prompts and the
// shell; passwords are handed out in order by the password seam.
func newTestCLI(t *testing.T, input string) *testCLI {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = "error"

	a, err := app.NewApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	tc := &testCLI{out: &bytes.Buffer{}}
	c, err := New(a, strings.NewReader(input), tc.out)
	require.NoError(t, err)

	c.password = func(w io.Writer, prompt string) ([]byte, error) {
		require.NotEmpty(t, tc.passwords, "unexpected password prompt %q", prompt)
		pw := tc.passwords[0]
		tc.passwords = tc.passwords[1:]
		return []byte(pw), nil
	}
	tc.CLI = c
	return tc
}

func (tc *testCLI) run(t *testing.T, args ...string) string {
	t.Helper()
	tc.out.Reset()
	require.NoError(t, tc.Execute(context.Background(), args))
	return tc.out.String()
}

func (tc *testCLI) addUser(t *testing.T, username, pw string) {
	t.Helper()
	tc.passwords = append(tc.passwords, pw)
	tc.run(t, "add", username, username+"@example.com")
}

func TestExecute_Usage(t *testing.T) {
	tc := newTestCLI(t, "")
	ctx := context.Background()

	err := tc.Execute(ctx, nil)
	require.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, tc.out.String(), "Usage: userctl")

	require.ErrorIs(t, tc.Execute(ctx, []string{"frobnicate"}), ErrUsage)
	require.ErrorIs(t, tc.Execute(ctx, []string{"grant", "alice"}), ErrUsage)
	require.ErrorIs(t, tc.Execute(ctx, []string{"list", "extra"}), ErrUsage)
	require.ErrorIs(t, tc.Execute(ctx, []string{"find", "noequals"}), ErrUsage)

	assert.Contains(t, tc.run(t, "help"), "Commands:")
}

func TestAddAndList(t *testing.T) {
	tc := newTestCLI(t, "")

	tc.passwords = []string{pwAlice}
	out := tc.run(t, "add", "Alice", "Alice@Example.com", "Alice Liddell")
	assert.Contains(t, out, "created user alice")
	assert.Contains(t, out, "New password: ")

	tc.addUser(t, "bob", pwBob)

	lines := strings.Split(strings.TrimSpace(tc.run(t, "list")), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "\talice\talice@example.com\tadmin=false")
	assert.Contains(t, lines[1], "\tbob\t")
}

func TestAdd_Failures(t *testing.T) {
	tc := newTestCLI(t, "")
	ctx := context.Background()
	tc.addUser(t, "alice", pwAlice)

	tc.passwords = []string{pwBob}
	err := tc.Execute(ctx, []string{"add", "alice", "other@example.com"})
	require.ErrorIs(t, err, common.ErrorUserExists)

	tc.passwords = []string{"short"}
	err = tc.Execute(ctx, []string{"add", "carol", "carol@example.com"})
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestCheckAndPasswd(t *testing.T) {
	tc := newTestCLI(t, "")
	tc.addUser(t, "alice", pwAlice)

	tc.passwords = []string{pwAlice}
	assert.Contains(t, tc.run(t, "check", "alice"), "valid credentials for")

	tc.passwords = []string{"wrong"}
	assert.Contains(t, tc.run(t, "check", "alice"), "invalid credentials")

	tc.passwords = []string{pwBob}
	assert.Contains(t, tc.run(t, "passwd", "alice"), "password changed")

	tc.passwords = []string{pwBob}
	assert.Contains(t, tc.run(t, "check", "alice"), "valid credentials for")

	tc.passwords = []string{pwBob}
	err := tc.Execute(context.Background(), []string{"passwd", "nobody"})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestLoginVerifyWhoamiLogout(t *testing.T) {
	tc := newTestCLI(t, "")
	ctx := context.Background()
	tc.addUser(t, "alice", pwAlice)

	tc.passwords = []string{pwAlice}
	out := tc.run(t, "login", "alice")

	var token, sid string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if v, ok := strings.CutPrefix(line, "token: "); ok {
			token = v
		}
		if v, ok := strings.CutPrefix(line, "session: "); ok {
			sid = v
		}
	}
	require.NotEmpty(t, token)
	require.Len(t, sid, 32)

	out = tc.run(t, "verify", "alice", token)
	assert.Contains(t, out, "token valid for")
	assert.Contains(t, out, "login: alice")

	assert.Contains(t, tc.run(t, "whoami", sid), " alice admin=false")

	assert.Contains(t, tc.run(t, "logout", sid), "logged out")
	require.ErrorIs(t, tc.Execute(ctx, []string{"whoami", sid}), common.ErrorNotAuthenticated)

	tc.passwords = []string{"wrong"}
	require.ErrorIs(t, tc.Execute(ctx, []string{"login", "alice"}), common.ErrorNotAuthenticated)

	require.ErrorIs(t, tc.Execute(ctx, []string{"verify", "alice", "garbage"}), common.ErrorNotAuthenticated)
}

func TestProperties(t *testing.T) {
	tc := newTestCLI(t, "")
	tc.addUser(t, "alice", pwAlice)
	tc.addUser(t, "bob", pwBob)

	tc.run(t, "grant", "alice", "role", "dev")
	tc.run(t, "grant", "alice", "role", "ops")
	tc.run(t, "grant", "alice", "team", "core")
	tc.run(t, "grant", "bob", "role", "dev")

	assert.Equal(t, "role=dev\nrole=ops\nteam=core\n", tc.run(t, "props", "alice"))

	out := tc.run(t, "find", "role=dev")
	assert.Contains(t, out, "\talice\t")
	assert.Contains(t, out, "\tbob\t")

	out = tc.run(t, "find", "role=dev", "team=core")
	assert.Contains(t, out, "\talice\t")
	assert.NotContains(t, out, "\tbob\t")

	assert.Equal(t, "removed 1\n", tc.run(t, "revoke", "alice", "role", "ops"))
	assert.Equal(t, "removed 1\n", tc.run(t, "revoke", "alice", "team"))
	assert.Equal(t, "removed 0\n", tc.run(t, "revoke", "alice", "team"))
	assert.Equal(t, "role=dev\n", tc.run(t, "props", "alice"))

	err := tc.Execute(context.Background(), []string{"grant", "alice", common.TokenHashProperty, "x"})
	require.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestAdmin(t *testing.T) {
	tc := newTestCLI(t, "")
	tc.addUser(t, "alice", pwAlice)

	assert.Equal(t, "admin=false\n", tc.run(t, "admin", "alice"))
	assert.Equal(t, "admin=true\n", tc.run(t, "admin", "alice", "on"))
	assert.Contains(t, tc.run(t, "list"), "admin=true")
	assert.Equal(t, "admin=false\n", tc.run(t, "admin", "alice", "OFF"))

	require.ErrorIs(t, tc.Execute(context.Background(), []string{"admin", "alice", "maybe"}), ErrUsage)
}

func TestRemove(t *testing.T) {
	tc := newTestCLI(t, "n\ny\n")
	tc.addUser(t, "alice", pwAlice)
	tc.run(t, "grant", "alice", "role", "dev")

	assert.Contains(t, tc.run(t, "remove", "alice"), "cancelled")
	assert.Contains(t, tc.run(t, "list"), "alice")

	assert.Contains(t, tc.run(t, "remove", "alice"), "removed")
	assert.Empty(t, tc.run(t, "list"))
	assert.Empty(t, tc.run(t, "find", "role=dev"))
}

func TestPolicy(t *testing.T) {
	tc := newTestCLI(t, "")

	tc.passwords = []string{pwAlice}
	assert.Contains(t, tc.run(t, "policy"), "password matches the policy")

	tc.passwords = []string{"XQZ"}
	out := tc.run(t, "policy")
	assert.Contains(t, out, "failed rules: minimum_chars, lowercase, numbers")
}

func TestReadSecret_WipesTerminalBuffer(t *testing.T) {
	tc := newTestCLI(t, "")
	buf := []byte(pwAlice)
	tc.password = func(io.Writer, string) ([]byte, error) { return buf, nil }

	got, err := tc.readSecret("Password")
	require.NoError(t, err)
	assert.Equal(t, pwAlice, got)
	assert.Equal(t, make([]byte, len(pwAlice)), buf)
}

func TestNew_BadPasswordRules(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LogLevel = "error"
	a, err := app.NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	a.Config.PasswordRules = map[string]int{"no_such_rule": 1}
	_, err = New(a, strings.NewReader(""), io.Discard)
	require.Error(t, err)
}
