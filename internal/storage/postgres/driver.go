package postgres

import (
	"context"
	"embed"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/skybi/posctl/internal/storage"
)

//go:embed migrations/*.sql
var migrations embed.FS

const table = "session_entries"

// Driver represents the PostgreSQL storage driver implementation.
// Several terminals may share one database; each one uses its own namespace.
type Driver struct {
	dsn       string
	namespace string
	db        *pgxpool.Pool
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new empty PostgreSQL storage driver.
// Use Initialize to open the database connection.
func New(dsn, namespace string) *Driver {
	return &Driver{
		dsn:       dsn,
		namespace: namespace,
	}
}

// Initialize migrates the database and opens the database connection pool
func (driver *Driver) Initialize(ctx context.Context) error {
	// Perform SQL migrations
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, driver.dsn)
	if err != nil {
		return err
	}
	defer migrator.Close()
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	// Initialize the database connection pool
	pool, err := pgxpool.Connect(ctx, driver.dsn)
	if err != nil {
		return err
	}
	driver.db = pool
	return nil
}

// Get retrieves the value of a key
func (driver *Driver) Get(ctx context.Context, key storage.Key) (string, bool, error) {
	if driver.db == nil {
		return "", false, storage.ErrNotInitialized
	}

	sql, args, err := squirrel.Select("value").
		From(table).
		Where(squirrel.Eq{"namespace": driver.namespace, "key": string(key)}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", false, err
	}

	var value string
	if err := driver.db.QueryRow(ctx, sql, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Set upserts all given key-value pairs inside a single transaction
func (driver *Driver) Set(ctx context.Context, values map[storage.Key]string) error {
	if driver.db == nil {
		return storage.ErrNotInitialized
	}
	if len(values) == 0 {
		return nil
	}

	query := squirrel.Insert(table).Columns("namespace", "key", "value")
	for key, val := range values {
		query = query.Values(driver.namespace, string(key), val)
	}
	sql, args, err := query.
		Suffix("ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return driver.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql, args...)
		return err
	})
}

// Remove deletes all given keys inside a single transaction
func (driver *Driver) Remove(ctx context.Context, keys ...storage.Key) error {
	if driver.db == nil {
		return storage.ErrNotInitialized
	}
	if len(keys) == 0 {
		return nil
	}

	raw := make([]string, 0, len(keys))
	for _, key := range keys {
		raw = append(raw, string(key))
	}
	sql, args, err := squirrel.Delete(table).
		Where(squirrel.Eq{"namespace": driver.namespace, "key": raw}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return driver.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, sql, args...)
		return err
	})
}

// Close closes the database connection
func (driver *Driver) Close() {
	if driver.db != nil {
		driver.db.Close()
		driver.db = nil
	}
}

func (driver *Driver) inTx(ctx context.Context, action func(tx pgx.Tx) error) error {
	tx, err := driver.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := action(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
