package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/skybi/posctl/internal/format"
	"github.com/skybi/posctl/internal/posapi"
	"github.com/urfave/cli/v2"
)

var errUnknownUserID = errors.New("the session's user record has no id")

// currentUserID returns the ID of the logged-in user whose cart is used
func (app *application) currentUserID() (string, error) {
	id := app.sessions.User().ID()
	if id == "" {
		return "", errUnknownUserID
	}
	return id, nil
}

func printCart(ctx *cli.Context, cart *posapi.Cart) error {
	if ok, err := printJSON(ctx, cart); ok {
		return err
	}
	rows := make([][]string, 0, len(cart.Items)+1)
	for _, item := range cart.Items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ProductID, 10),
			item.ProductName,
			format.Price(item.ProductPrice.String()),
			strconv.Itoa(item.Quantity),
		})
	}
	rows = append(rows, []string{"", "total", format.Price(cart.Total.String()), ""})
	return printTable(ctx, []string{"product", "name", "price", "quantity"}, rows)
}

func (app *application) cartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "manage the shopping cart of the logged-in user",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "show the cart",
				Action: app.authenticated(func(ctx *cli.Context) error {
					userID, err := app.currentUserID()
					if err != nil {
						return err
					}
					cart, err := app.api.Cart(ctx.Context, userID)
					if err != nil {
						return err
					}
					return printCart(ctx, cart)
				}),
			},
			{
				Name:  "add",
				Usage: "add a product to the cart",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "product", Required: true},
					&cli.IntFlag{Name: "quantity", Value: 1},
				},
				Action: app.authenticated(func(ctx *cli.Context) error {
					userID, err := app.currentUserID()
					if err != nil {
						return err
					}
					productID := ctx.Int64("product")
					quantity := ctx.Int("quantity")
					if err := app.api.AddToCart(ctx.Context, userID, productID, quantity); err != nil {
						return err
					}
					return printResult(ctx, map[string]any{"producto_id": productID, "cantidad": quantity}, "added %d x product %d to the cart", quantity, productID)
				}),
			},
		},
	}
}

func (app *application) salesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sales",
		Usage: "inspect completed sales",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "show a single sale",
				ArgsUsage: "<id>",
				Action: app.authenticated(func(ctx *cli.Context) error {
					id, err := idArgument(ctx)
					if err != nil {
						return err
					}
					sale, err := app.api.Sale(ctx.Context, id)
					if err != nil {
						return err
					}
					if ok, err := printJSON(ctx, sale); ok {
						return err
					}
					return printTable(ctx, []string{"id", "total", "status", "created"}, [][]string{{
						strconv.FormatInt(sale.ID, 10),
						format.Price(sale.Total.String()),
						sale.Status,
						sale.CreatedAt.Local().Format(time.DateTime),
					}})
				}),
			},
		},
	}
}

func (app *application) payCommand() *cli.Command {
	return &cli.Command{
		Name:  "pay",
		Usage: "pay the cart of the logged-in user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "total", Usage: "the amount to pay; defaults to the cart total"},
			&cli.StringSliceFlag{Name: "card", Usage: "card information as key=value, may be repeated"},
		},
		Action: app.authenticated(func(ctx *cli.Context) error {
			cardInfo, err := parseCardInfo(ctx.StringSlice("card"))
			if err != nil {
				return err
			}

			total := posapi.Decimal(ctx.String("total"))
			if total == "" {
				userID, err := app.currentUserID()
				if err != nil {
					return err
				}
				cart, err := app.api.Cart(ctx.Context, userID)
				if err != nil {
					return err
				}
				total = cart.Total
			}

			result, err := app.api.Pay(ctx.Context, &posapi.PaymentRequest{
				Total:    total,
				CardInfo: cardInfo,
			})
			if err != nil {
				return fmt.Errorf("payment failed: %w", err)
			}
			return printResult(ctx, result, "paid %s", format.Price(total.String()))
		}),
	}
}

func parseCardInfo(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, errors.New("at least one --card key=value pair is required")
	}
	info := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid card information '%s'; expected key=value", pair)
		}
		info[key] = value
	}
	return info, nil
}
