package main

import (
	"strconv"

	"github.com/skybi/posctl/internal/posapi"
	"github.com/urfave/cli/v2"
)

func categoryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "description"},
	}
}

func categoryInput(ctx *cli.Context) *posapi.CategoryInput {
	return &posapi.CategoryInput{
		Name:        ctx.String("name"),
		Description: ctx.String("description"),
	}
}

func printCategories(ctx *cli.Context, categories ...*posapi.Category) error {
	if ok, err := printJSON(ctx, categories); ok {
		return err
	}
	rows := make([][]string, 0, len(categories))
	for _, category := range categories {
		rows = append(rows, []string{strconv.FormatInt(category.ID, 10), category.Name, category.Description})
	}
	return printTable(ctx, []string{"id", "name", "description"}, rows)
}

func (app *application) categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:    "categories",
		Aliases: []string{"c"},
		Usage:   "manage product categories",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all categories",
				Action: app.authenticated(func(ctx *cli.Context) error {
					categories, err := app.api.Categories(ctx.Context)
					if err != nil {
						return err
					}
					return printCategories(ctx, categories...)
				}),
			},
			{
				Name:      "get",
				Usage:     "show a single category",
				ArgsUsage: "<id>",
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					category, err := app.api.Category(ctx.Context, id)
					if err != nil {
						return err
					}
					return printCategories(ctx, category)
				}),
			},
			{
				Name:  "create",
				Usage: "create a new category",
				Flags: categoryFlags(),
				Action: app.authenticated(func(ctx *cli.Context) error {
					category, err := app.api.CreateCategory(ctx.Context, categoryInput(ctx))
					if err != nil {
						return err
					}
					return printCategories(ctx, category)
				}),
			},
			{
				Name:      "update",
				Usage:     "replace an existing category",
				ArgsUsage: "<id>",
				Flags:     categoryFlags(),
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					category, err := app.api.UpdateCategory(ctx.Context, id, categoryInput(ctx))
					if err != nil {
						return err
					}
					return printCategories(ctx, category)
				}),
			},
			{
				Name:      "delete",
				Usage:     "delete a category",
				ArgsUsage: "<id>",
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					if err := app.api.DeleteCategory(ctx.Context, id); err != nil {
						return err
					}
					return printResult(ctx, map[string]any{"deleted": id}, "deleted category %d", id)
				}),
			},
		},
	}
}
