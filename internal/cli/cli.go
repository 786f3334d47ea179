// Package cli implements userctl, the administrative command line for the
// user service. Every command is also available from an interactive shell
// so the in-memory storage backend stays useful between commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/gophusers/internal/app"
	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/models"
	"github.com/dmitrijs2005/gophusers/internal/password"
	"github.com/dmitrijs2005/gophusers/internal/services"
	"github.com/dmitrijs2005/gophusers/internal/session"
)

// ErrUsage is returned for unknown commands and wrong argument counts.
var ErrUsage = errors.New("usage error")

// passwordFn reads a secret; replaced in tests.
type passwordFn func(w io.Writer, prompt string) ([]byte, error)

type CLI struct {
	users      *services.UserService
	sessions   session.Store
	definition *password.Definition
	reader     *bufio.Reader
	out        io.Writer
	password   passwordFn
}

// New builds a CLI over an initialized App. Prompts read from in and all
// output goes to out; passwords are read from the terminal.
func New(a *app.App, in io.Reader, out io.Writer) (*CLI, error) {
	def, err := password.ParseRules(a.Config.PasswordRules)
	if err != nil {
		return nil, err
	}
	return &CLI{
		users:      a.UserService,
		sessions:   a.Sessions,
		definition: def,
		reader:     bufio.NewReader(in),
		out:        out,
		password:   GetPassword,
	}, nil
}

// Execute runs one command. args[0] is the command name.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.usage()
		return ErrUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		c.usage()
		return nil
	case "add":
		return c.add(ctx, rest)
	case "passwd":
		return c.passwd(ctx, rest)
	case "check":
		return c.check(ctx, rest)
	case "login":
		return c.login(ctx, rest)
	case "verify":
		return c.verify(ctx, rest)
	case "whoami":
		return c.whoami(ctx, rest)
	case "logout":
		return c.logout(ctx, rest)
	case "grant":
		return c.grant(ctx, rest)
	case "revoke":
		return c.revoke(ctx, rest)
	case "props":
		return c.props(ctx, rest)
	case "find":
		return c.find(ctx, rest)
	case "admin":
		return c.admin(ctx, rest)
	case "remove":
		return c.remove(ctx, rest)
	case "list":
		return c.list(ctx, rest)
	case "policy":
		return c.policy(ctx, rest)
	case "shell":
		return c.Shell(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}

func (c *CLI) usage() {
	fmt.Fprintln(c.out, `Usage: userctl [flags] <command> [args]

Commands:
  add <username> <email> [name]    create a user (prompts for password)
  passwd <login>                   change a password
  check <login>                    check a password
  login <login>                    issue a token and open a session
  verify <login> <token>           validate a token
  whoami <session>                 show the user of a session
  logout <session>                 close a session
  grant <login> <name> <value>     add a property value
  revoke <login> <name> [value]    remove a property or one of its values
  props <login>                    list properties
  find <name=value>...             list users having all given properties
  admin <login> [on|off]           show or change the admin flag
  remove <login>                   delete a user and its properties
  list                             list users
  policy                           evaluate a password against the policy
  shell                            interactive mode`)
}

func wantArgs(args []string, lo, hi int, usage string) error {
	if len(args) < lo || len(args) > hi {
		return fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	return nil
}

// readSecret prompts for a password and returns it as a string, wiping
// the terminal buffer.
func (c *CLI) readSecret(prompt string) (string, error) {
	pw, err := c.password(c.out, prompt)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// requireUser resolves login or fails with common.ErrorNotFound.
func (c *CLI) requireUser(ctx context.Context, login string) (string, error) {
	u, err := c.users.GetByLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", fmt.Errorf("%w: user %q", common.ErrorNotFound, login)
	}
	return u.ID, nil
}

func parseFilters(args []string) ([]models.PropertyFilter, error) {
	filters := make([]models.PropertyFilter, 0, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: filter %q is not name=value", ErrUsage, a)
		}
		filters = append(filters, models.PropertyFilter{Name: name, Value: value})
	}
	return filters, nil
}
