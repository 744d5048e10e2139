// Package storagetest provides a conformance suite every storage.Driver implementation has to pass
package storagetest

import (
	"context"
	"testing"

	"github.com/skybi/posctl/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run runs the conformance suite against drivers created by newDriver.
// Every call to newDriver has to return a fresh, uninitialized driver with empty contents.
func Run(t *testing.T, newDriver func(t *testing.T) storage.Driver) {
	ctx := context.Background()

	open := func(t *testing.T) storage.Driver {
		driver := newDriver(t)
		require.NoError(t, driver.Initialize(ctx))
		t.Cleanup(driver.Close)
		return driver
	}

	t.Run("missing key", func(t *testing.T) {
		driver := open(t)
		val, ok, err := driver.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, val)
	})

	t.Run("set and get", func(t *testing.T) {
		driver := open(t)
		require.NoError(t, driver.Set(ctx, map[storage.Key]string{
			storage.KeyAccessToken:  "abc123",
			storage.KeyRefreshToken: "def456",
			storage.KeyUser:         `{"id":7,"username":"ana"}`,
		}))

		val, ok, err := driver.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "abc123", val)

		val, ok, err = driver.Get(ctx, storage.KeyUser)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.JSONEq(t, `{"id":7,"username":"ana"}`, val)
	})

	t.Run("overwrite", func(t *testing.T) {
		driver := open(t)
		require.NoError(t, driver.Set(ctx, map[storage.Key]string{storage.KeyAccessToken: "old"}))
		require.NoError(t, driver.Set(ctx, map[storage.Key]string{storage.KeyAccessToken: "new"}))

		val, ok, err := driver.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "new", val)
	})

	t.Run("remove", func(t *testing.T) {
		driver := open(t)
		require.NoError(t, driver.Set(ctx, map[storage.Key]string{
			storage.KeyAccessToken:  "abc123",
			storage.KeyRefreshToken: "def456",
		}))
		require.NoError(t, driver.Remove(ctx, storage.SessionKeys...))

		for _, key := range storage.SessionKeys {
			_, ok, err := driver.Get(ctx, key)
			require.NoError(t, err)
			assert.False(t, ok, "key %s should be absent", key)
		}
	})

	t.Run("remove missing keys", func(t *testing.T) {
		driver := open(t)
		assert.NoError(t, driver.Remove(ctx, storage.KeyUser))
		assert.NoError(t, driver.Remove(ctx))
	})

	t.Run("uninitialized", func(t *testing.T) {
		driver := newDriver(t)
		_, _, err := driver.Get(ctx, storage.KeyAccessToken)
		assert.ErrorIs(t, err, storage.ErrNotInitialized)
	})
}
