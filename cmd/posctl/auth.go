package main

import (
	"errors"
	"fmt"

	"github.com/skybi/posctl/internal/posapi"
	"github.com/skybi/posctl/internal/session"
	"github.com/urfave/cli/v2"
)

type statusOutput struct {
	Active bool           `json:"active"`
	User   map[string]any `json:"user,omitempty"`
}

func (app *application) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "log in with a username and password",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "the username to log in with"},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"POS_PASSWORD"}, Usage: "the password; read from stdin if omitted"},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readSecret(ctx, "password")
			if err != nil {
				return err
			}
			return app.login(ctx, ctx.String("username"), password)
		},
	}
}

func (app *application) login(ctx *cli.Context, username, password string) error {
	if err := app.sessions.Login(ctx.Context, username, password); err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return session.ErrInvalidCredentials
		}
		return err
	}
	user := app.sessions.User()
	return printResult(ctx, statusOutput{Active: true, User: user}, "logged in as %s", user.Username())
}

func (app *application) logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "terminate the current session",
		Action: func(ctx *cli.Context) error {
			app.sessions.Logout(ctx.Context)
			return printResult(ctx, statusOutput{}, "logged out")
		},
	}
}

func (app *application) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show whether a session is active and who it belongs to",
		Action: func(ctx *cli.Context) error {
			if !app.sessions.Active() {
				return printResult(ctx, statusOutput{}, "not logged in")
			}
			user := app.sessions.User()
			return printResult(ctx, statusOutput{Active: true, User: user}, "logged in as %s (id %s)", user.Username(), user.ID())
		},
	}
}

func (app *application) registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create a new account and log in with it",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"POS_PASSWORD"}, Usage: "the password; read from stdin if omitted"},
			&cli.StringFlag{Name: "first-name", Required: true},
			&cli.StringFlag{Name: "last-name", Required: true},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readSecret(ctx, "password")
			if err != nil {
				return err
			}
			err = app.api.Register(ctx.Context, &posapi.RegisterRequest{
				Username:  ctx.String("username"),
				Email:     ctx.String("email"),
				Password:  password,
				FirstName: ctx.String("first-name"),
				LastName:  ctx.String("last-name"),
			})
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			return app.login(ctx, ctx.String("username"), password)
		},
	}
}
