package cli

import (
	"context"
	"fmt"

	"github.com/adanyl0v/go-todo-client/internal/models"
)

func (a *App) runLogin(ctx context.Context, args []string) error {
	fs := a.newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	err := a.parseFlags(fs, args)
	if err != nil {
		return err
	}

	if *email == "" {
		*email, err = a.prompt("email: ")
		if err != nil {
			return err
		}
	}
	if *password == "" {
		*password, err = a.prompt("password: ")
		if err != nil {
			return err
		}
	}

	resp, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome back, %s!\n", resp.User.Name)
	return nil
}

func (a *App) runRegister(ctx context.Context, args []string) error {
	fs := a.newFlagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (prompted when omitted)")
	confirm := fs.String("confirm", "", "password confirmation (prompted when omitted)")
	err := a.parseFlags(fs, args)
	if err != nil {
		return err
	}

	fields := []struct {
		value *string
		label string
	}{
		{name, "name: "},
		{email, "email: "},
		{password, "password: "},
		{confirm, "confirm password: "},
	}
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		*f.value, err = a.prompt(f.label)
		if err != nil {
			return err
		}
	}

	err = models.ValidateSignup(*password, *confirm)
	if err != nil {
		return err
	}

	resp, err := a.session.Register(ctx, *email, *password, *name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s! Your account is ready.\n", resp.User.Name)
	return nil
}

func (a *App) runLogout(ctx context.Context, args []string) error {
	err := a.parseFlags(a.newFlagSet("logout"), args)
	if err != nil {
		return err
	}

	err = a.session.Logout(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) runWhoami(_ context.Context, args []string) error {
	err := a.parseFlags(a.newFlagSet("whoami"), args)
	if err != nil {
		return err
	}

	user, ok := a.session.User()
	if !a.session.IsAuthenticated() || !ok {
		fmt.Fprintln(a.out, "Not logged in. Try 'todo demo' to explore without an account.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s>\n", user.Name, user.Email)
	return nil
}
