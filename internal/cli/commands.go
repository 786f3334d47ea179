package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/dmitrijs2005/gophusers/internal/models"
	"github.com/dmitrijs2005/gophusers/internal/session"
)

func (c *CLI) add(ctx context.Context, args []string) error {
	if err := wantArgs(args, 2, 3, "add <username> <email> [name]"); err != nil {
		return err
	}
	pw, err := c.readSecret("New password")
	if err != nil {
		return err
	}

	u := &models.User{Username: args[0], Email: args[1], Password: pw}
	if len(args) == 3 {
		u.Name = args[2]
	}
	created, err := c.users.AddUser(ctx, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created user %s (%s)\n", created.Username, created.ID)
	return nil
}

func (c *CLI) passwd(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "passwd <login>"); err != nil {
		return err
	}
	id, err := c.requireUser(ctx, args[0])
	if err != nil {
		return err
	}
	pw, err := c.readSecret("New password")
	if err != nil {
		return err
	}
	if err := c.users.SetPassword(ctx, id, pw); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "password changed")
	return nil
}

func (c *CLI) check(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "check <login>"); err != nil {
		return err
	}
	pw, err := c.readSecret("Password")
	if err != nil {
		return err
	}
	u, err := c.users.IsValidUser(ctx, args[0], pw)
	if err != nil {
		return err
	}
	if u == nil {
		fmt.Fprintln(c.out, "invalid credentials")
		return nil
	}
	fmt.Fprintf(c.out, "valid credentials for %s\n", u.ID)
	return nil
}

func (c *CLI) login(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "login <login>"); err != nil {
		return err
	}
	pw, err := c.readSecret("Password")
	if err != nil {
		return err
	}
	token, err := c.users.CreateAuthToken(ctx, args[0], pw, 0, nil, nil)
	if err != nil {
		return err
	}
	id, err := c.requireUser(ctx, args[0])
	if err != nil {
		return err
	}

	uc, err := session.NewUserContext(c.sessions, "")
	if err != nil {
		return err
	}
	if err := uc.RegisterLogin(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "token: %s\nsession: %s\n", token, uc.ID())
	return nil
}

func (c *CLI) verify(ctx context.Context, args []string) error {
	if err := wantArgs(args, 2, 2, "verify <login> <token>"); err != nil {
		return err
	}
	info, err := c.users.IsValidToken(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "token valid for %s\n", info.User.ID)
	keys := make([]string, 0, len(info.Claims))
	for k := range info.Claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(c.out, "  %s: %v\n", k, info.Claims[k])
	}
	return nil
}

func (c *CLI) whoami(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "whoami <session>"); err != nil {
		return err
	}
	uc, err := session.NewUserContext(c.sessions, args[0])
	if err != nil {
		return err
	}
	id, err := uc.UserID(ctx)
	if err != nil {
		return err
	}
	admin, err := c.users.IsAdmin(session.NewContext(ctx, uc), "")
	if err != nil {
		return err
	}
	u, err := c.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%w: user %q", common.ErrorNotFound, id)
	}
	fmt.Fprintf(c.out, "%s %s admin=%t\n", id, u.Username, admin)
	return nil
}

func (c *CLI) logout(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "logout <session>"); err != nil {
		return err
	}
	uc, err := session.NewUserContext(c.sessions, args[0])
	if err != nil {
		return err
	}
	if err := uc.RegisterLogout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "logged out")
	return nil
}

func (c *CLI) grant(ctx context.Context, args []string) error {
	if err := wantArgs(args, 3, 3, "grant <login> <name> <value>"); err != nil {
		return err
	}
	id, err := c.requireUser(ctx, args[0])
	if err != nil {
		return err
	}
	return c.users.AddProperty(ctx, id, args[1], args[2])
}

func (c *CLI) revoke(ctx context.Context, args []string) error {
	if err := wantArgs(args, 2, 3, "revoke <login> <name> [value]"); err != nil {
		return err
	}
	id, err := c.requireUser(ctx, args[0])
	if err != nil {
		return err
	}

	var n int64
	if len(args) == 3 {
		n, err = c.users.RemovePropertyValue(ctx, id, args[1], args[2])
	} else {
		n, err = c.users.RemoveProperty(ctx, id, args[1])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "removed %d\n", n)
	return nil
}

func (c *CLI) props(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "props <login>"); err != nil {
		return err
	}
	id, err := c.requireUser(ctx, args[0])
	if err != nil {
		return err
	}
	u, err := c.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	for _, p := range u.Properties {
		fmt.Fprintf(c.out, "%s=%s\n", p.Name, p.Value)
	}
	return nil
}

func (c *CLI) find(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, len(args), "find <name=value>..."); err != nil {
		return err
	}
	filters, err := parseFilters(args)
	if err != nil {
		return err
	}
	list, err := c.users.GetUsersByPropertySet(ctx, filters)
	if err != nil {
		return err
	}
	c.printUsers(list)
	return nil
}

func (c *CLI) admin(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 2, "admin <login> [on|off]"); err != nil {
		return err
	}
	id, err := c.requireUser(ctx, args[0])
	if err != nil {
		return err
	}

	if len(args) == 2 {
		var on bool
		switch strings.ToLower(args[1]) {
		case "on":
			on = true
		case "off":
		default:
			return fmt.Errorf("%w: admin <login> [on|off]", ErrUsage)
		}
		if err := c.users.SetAdmin(ctx, id, on); err != nil {
			return err
		}
	}

	admin, err := c.users.IsAdmin(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "admin=%t\n", admin)
	return nil
}

func (c *CLI) remove(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1, 1, "remove <login>"); err != nil {
		return err
	}
	answer, err := GetSimpleText(c.reader, fmt.Sprintf("Remove user %q and all its properties? [y/N]", args[0]), c.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(c.out, "cancelled")
		return nil
	}
	if err := c.users.RemoveUserByLogin(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "removed")
	return nil
}

func (c *CLI) list(ctx context.Context, args []string) error {
	if err := wantArgs(args, 0, 0, "list"); err != nil {
		return err
	}
	list, err := c.users.ListUsers(ctx)
	if err != nil {
		return err
	}
	c.printUsers(list)
	return nil
}

func (c *CLI) printUsers(list []*models.User) {
	for _, u := range list {
		fmt.Fprintf(c.out, "%s\t%s\t%s\tadmin=%t\n", u.ID, u.Username, u.Email, u.IsAdmin())
	}
}

func (c *CLI) policy(_ context.Context, args []string) error {
	if err := wantArgs(args, 0, 0, "policy"); err != nil {
		return err
	}
	pw, err := c.readSecret("Password")
	if err != nil {
		return err
	}
	v := c.definition.MatchPassword(pw)
	if v == 0 {
		fmt.Fprintln(c.out, "password matches the policy")
		return nil
	}
	fmt.Fprintf(c.out, "failed rules: %s\n", strings.Join(v.Names(), ", "))
	return nil
}
