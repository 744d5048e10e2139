package main

import (
	"errors"
	"strconv"

	"github.com/skybi/posctl/internal/format"
	"github.com/skybi/posctl/internal/posapi"
	"github.com/urfave/cli/v2"
)

var errMissingID = errors.New("a numeric ID argument is required")

func idArgument(ctx *cli.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Args().First(), 10, 64)
	if err != nil {
		return 0, errMissingID
	}
	return id, nil
}

func productFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "price", Required: true, Usage: "decimal price, i.e. 12.50"},
		&cli.IntFlag{Name: "stock"},
		&cli.Int64Flag{Name: "category-id"},
		&cli.StringFlag{Name: "image-url"},
	}
}

func productInput(ctx *cli.Context) *posapi.ProductInput {
	input := &posapi.ProductInput{
		Name:        ctx.String("name"),
		Description: ctx.String("description"),
		Price:       posapi.Decimal(ctx.String("price")),
		Stock:       ctx.Int("stock"),
		ImageURL:    ctx.String("image-url"),
	}
	if ctx.IsSet("category-id") {
		categoryID := ctx.Int64("category-id")
		input.CategoryID = &categoryID
	}
	return input
}

func printProducts(ctx *cli.Context, products ...*posapi.Product) error {
	if ok, err := printJSON(ctx, products); ok {
		return err
	}
	rows := make([][]string, 0, len(products))
	for _, product := range products {
		category := ""
		if product.Category != nil {
			category = product.Category.Name
		}
		stock := product.Stock
		rows = append(rows, []string{
			strconv.FormatInt(product.ID, 10),
			product.Name,
			format.Price(product.Price.String()),
			strconv.Itoa(stock),
			format.StockStatus(&stock),
			category,
		})
	}
	return printTable(ctx, []string{"id", "name", "price", "stock", "status", "category"}, rows)
}

func (app *application) productsCommand() *cli.Command {
	return &cli.Command{
		Name:    "products",
		Aliases: []string{"p"},
		Usage:   "manage the product catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list all products",
				Action: app.authenticated(func(ctx *cli.Context) error {
					products, err := app.api.Products(ctx.Context)
					if err != nil {
						return err
					}
					return printProducts(ctx, products...)
				}),
			},
			{
				Name:      "get",
				Usage:     "show a single product",
				ArgsUsage: "<id>",
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					product, err := app.api.Product(ctx.Context, id)
					if err != nil {
						return err
					}
					return printProducts(ctx, product)
				}),
			},
			{
				Name:  "create",
				Usage: "create a new product",
				Flags: productFlags(),
				Action: app.authenticated(func(ctx *cli.Context) error {
					product, err := app.api.CreateProduct(ctx.Context, productInput(ctx))
					if err != nil {
						return err
					}
					return printProducts(ctx, product)
				}),
			},
			{
				Name:      "update",
				Usage:     "replace an existing product",
				ArgsUsage: "<id>",
				Flags:     productFlags(),
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					product, err := app.api.UpdateProduct(ctx.Context, id, productInput(ctx))
					if err != nil {
						return err
					}
					return printProducts(ctx, product)
				}),
			},
			{
				Name:      "delete",
				Usage:     "delete a product",
				ArgsUsage: "<id>",
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					if err := app.api.DeleteProduct(ctx.Context, id); err != nil {
						return err
					}
					return printResult(ctx, map[string]any{"deleted": id}, "deleted product %d", id)
				}),
			},
			{
				Name:      "reduce-stock",
				Usage:     "reduce the stock of a product",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "amount", Value: 1},
				},
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					amount := ctx.Int("amount")
					if err := app.api.ReduceStock(ctx.Context, id, amount); err != nil {
						return err
					}
					return printResult(ctx, map[string]any{"id": id, "reduced_by": amount}, "reduced the stock of product %d by %d", id, amount)
				}),
			},
		},
	}
}
