package main

import (
	"errors"
	"strconv"

	"github.com/skybi/posctl/internal/posapi"
	"github.com/urfave/cli/v2"
)

func printUsers(ctx *cli.Context, users ...*posapi.User) error {
	if ok, err := printJSON(ctx, users); ok {
		return err
	}
	rows := make([][]string, 0, len(users))
	for _, user := range users {
		rows = append(rows, []string{
			strconv.FormatInt(user.ID, 10),
			user.Username,
			user.Email,
			user.RoleName(),
		})
	}
	return printTable(ctx, []string{"id", "username", "email", "role"}, rows)
}

func (app *application) usersCommand() *cli.Command {
	return &cli.Command{
		Name:    "users",
		Aliases: []string{"u"},
		Usage:   "manage user accounts",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all users",
				Action: app.authenticated(func(ctx *cli.Context) error {
					users, err := app.api.Users(ctx.Context)
					if err != nil {
						return err
					}
					return printUsers(ctx, users...)
				}),
			},
			{
				Name:      "get",
				Usage:     "show a single user",
				ArgsUsage: "<id>",
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					user, err := app.api.User(ctx.Context, id)
					if err != nil {
						return err
					}
					return printUsers(ctx, user)
				}),
			},
			{
				Name:  "create",
				Usage: "create a new user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", EnvVars: []string{"POS_NEW_USER_PASSWORD"}, Usage: "the password; read from stdin if omitted"},
					&cli.StringFlag{Name: "role"},
				},
				Action: app.authenticated(func(ctx *cli.Context) error {
					password, err := readSecret(ctx, "password")
					if err != nil {
						return err
					}
					username := ctx.String("username")
					err = app.api.CreateUser(ctx.Context, &posapi.CreateUserInput{
						Username: username,
						Email:    ctx.String("email"),
						Password: password,
						Role:     ctx.String("role"),
					})
					if err != nil {
						return err
					}
					return printResult(ctx, map[string]any{"created": username}, "created user %s", username)
				}),
			},
			{
				Name:      "update",
				Usage:     "update an existing user",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.Int64Flag{Name: "role-id"},
				},
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					input := &posapi.UpdateUserInput{
						Username: ctx.String("username"),
						Email:    ctx.String("email"),
					}
					if ctx.IsSet("role-id") {
						roleID := ctx.Int64("role-id")
						input.RoleID = &roleID
					}
					if err := app.api.UpdateUser(ctx.Context, id, input); err != nil {
						return err
					}
					return printResult(ctx, map[string]any{"updated": id}, "updated user %d", id)
				}),
			},
			{
				Name:      "delete",
				Usage:     "delete a user by username",
				ArgsUsage: "<username>",
				Action: app.authenticated(func(ctx *cli.Context) error {
					username := ctx.Args().First()
					if username == "" {
						return errors.New("a username argument is required")
					}
					if err := app.api.DeleteUser(ctx.Context, username); err != nil {
						return err
					}
					return printResult(ctx, map[string]any{"deleted": username}, "deleted user %s", username)
				}),
			},
		},
	}
}
