package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/skybi/posctl/internal/storage"
	"github.com/skybi/posctl/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Driver {
		return New(filepath.Join(t.TempDir(), "session.json"))
	})
}

func TestDriverPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	first := New(path)
	require.NoError(t, first.Initialize(ctx))
	require.NoError(t, first.Set(ctx, map[storage.Key]string{
		storage.KeyAccessToken: "abc123",
		storage.KeyUser:        `{"username":"ana"}`,
	}))
	first.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second := New(path)
	require.NoError(t, second.Initialize(ctx))
	defer second.Close()

	val, ok, err := second.Get(ctx, storage.KeyAccessToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", val)

	require.NoError(t, second.Remove(ctx, storage.SessionKeys...))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestDriverRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	driver := New(path)
	assert.Error(t, driver.Initialize(context.Background()))
}
