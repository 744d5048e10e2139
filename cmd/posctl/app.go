package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/skybi/posctl/internal/config"
	"github.com/skybi/posctl/internal/posapi"
	"github.com/skybi/posctl/internal/session"
	"github.com/skybi/posctl/internal/storage"
	"github.com/skybi/posctl/internal/storage/file"
	"github.com/skybi/posctl/internal/storage/inmem"
	"github.com/skybi/posctl/internal/storage/postgres"
	"github.com/skybi/posctl/internal/transport"
	"github.com/urfave/cli/v2"
)

var errNotLoggedIn = errors.New("not logged in; run 'posctl login' first")

// application holds the components shared by all commands.
// They are set up in the CLI's Before hook and released in its After hook.
type application struct {
	cfg *config.Config

	storage  storage.Driver
	sessions *session.Manager
	api      *posapi.Client

	// ownsStorage is false if the storage driver was handed in from outside and must not be closed
	ownsStorage bool
}

func newApplication(cfg *config.Config) *application {
	return &application{cfg: cfg}
}

func (app *application) cli() *cli.App {
	return &cli.App{
		Name:  "posctl",
		Usage: "administer the point-of-sale backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
		},
		Before: app.setUp,
		After:  app.tearDown,
		Commands: []*cli.Command{
			app.loginCommand(),
			app.logoutCommand(),
			app.statusCommand(),
			app.registerCommand(),
			app.productsCommand(),
			app.categoriesCommand(),
			app.usersCommand(),
			app.cartCommand(),
			app.salesCommand(),
			app.payCommand(),
		},
	}
}

// commandsWithoutVerification do not rely on a previously established session
var commandsWithoutVerification = map[string]bool{
	"login":    true,
	"register": true,
	"help":     true,
	"h":        true,
}

func (app *application) setUp(ctx *cli.Context) error {
	name := ctx.Args().First()
	if name == "" || ctx.App.Command(name) == nil {
		return nil
	}

	if app.storage == nil {
		driver, err := openStorage(app.cfg)
		if err != nil {
			return err
		}
		if err := driver.Initialize(ctx.Context); err != nil {
			return fmt.Errorf("could not initialize the %s storage driver: %w", app.cfg.StorageDriver, err)
		}
		app.storage = driver
		app.ownsStorage = true
	}

	app.sessions = &session.Manager{Storage: app.storage}
	client, err := posapi.New(app.cfg.APIBaseURL, transport.NewClient(transport.Options{
		Tokens:    app.sessions,
		RateLimit: app.cfg.RateLimit,
	}), app.cfg.ProductCacheLifetime)
	if err != nil {
		return err
	}
	app.api = client
	app.sessions.Auth = client

	if err := app.sessions.Restore(ctx.Context); err != nil {
		return err
	}
	if commandsWithoutVerification[name] {
		return nil
	}
	return app.sessions.Verify(ctx.Context)
}

func (app *application) tearDown(_ *cli.Context) error {
	if app.api != nil {
		app.api.Close()
		app.api = nil
	}
	if app.storage != nil && app.ownsStorage {
		app.storage.Close()
		app.storage = nil
	}
	return nil
}

func openStorage(cfg *config.Config) (storage.Driver, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverFile:
		return file.New(cfg.StoragePath), nil
	case config.StorageDriverMemory:
		log.Warn().Msg("the in-memory storage driver forgets the session as soon as the process exits")
		return inmem.New(), nil
	case config.StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("the postgres storage driver requires POS_POSTGRES_DSN")
		}
		return postgres.New(cfg.PostgresDSN, cfg.StorageNamespace), nil
	default:
		return nil, fmt.Errorf("unknown storage driver '%s'", cfg.StorageDriver)
	}
}

// authenticated guards actions that require an active session
func (app *application) authenticated(action cli.ActionFunc) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		if !app.sessions.Active() {
			return errNotLoggedIn
		}
		return action(ctx)
	}
}

// readSecret returns the flag value or reads a single line from the application's input
func readSecret(ctx *cli.Context, flag string) (string, error) {
	if value := ctx.String(flag); value != "" {
		return value, nil
	}
	reader := ctx.App.Reader
	if reader == nil {
		reader = os.Stdin
	}
	fmt.Fprintf(ctx.App.ErrWriter, "%s: ", flag)
	line, err := bufio.NewReader(reader).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
