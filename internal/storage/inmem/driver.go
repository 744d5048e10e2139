package inmem

import (
	"context"

	"github.com/hashicorp/go-memdb"
	"github.com/skybi/posctl/internal/storage"
)

const tableEntries = "entries"

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableEntries: {
			Name: tableEntries,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "Key"},
				},
			},
		},
	},
}

type entry struct {
	Key   string
	Value string
}

// Driver represents the in-memory storage driver built using hashicorp/go-memdb.
// Its contents do not survive the process; it is meant for tests and one-shot invocations.
type Driver struct {
	db *memdb.MemDB
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new uninitialized in-memory storage driver
func New() *Driver {
	return &Driver{}
}

// Initialize creates the empty in-memory database
func (driver *Driver) Initialize(_ context.Context) error {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return err
	}
	driver.db = db
	return nil
}

// Get retrieves the value of a key
func (driver *Driver) Get(_ context.Context, key storage.Key) (string, bool, error) {
	if driver.db == nil {
		return "", false, storage.ErrNotInitialized
	}

	txn := driver.db.Txn(false)
	obj, err := txn.First(tableEntries, "id", string(key))
	if err != nil {
		return "", false, err
	}
	if obj == nil {
		return "", false, nil
	}
	return obj.(*entry).Value, true, nil
}

// Set stores all given key-value pairs inside a single write transaction
func (driver *Driver) Set(_ context.Context, values map[storage.Key]string) error {
	if driver.db == nil {
		return storage.ErrNotInitialized
	}

	txn := driver.db.Txn(true)
	defer txn.Abort()
	for key, val := range values {
		if err := txn.Insert(tableEntries, &entry{Key: string(key), Value: val}); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

// Remove removes all given keys inside a single write transaction
func (driver *Driver) Remove(_ context.Context, keys ...storage.Key) error {
	if driver.db == nil {
		return storage.ErrNotInitialized
	}

	txn := driver.db.Txn(true)
	defer txn.Abort()
	for _, key := range keys {
		if _, err := txn.DeleteAll(tableEntries, "id", string(key)); err != nil {
			return err
		}
	}
	txn.Commit()
	return nil
}

// Close drops the in-memory database
func (driver *Driver) Close() {
	driver.db = nil
}
