package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/youte"
	"github.com/fwojciec/youte/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileStore(t *testing.T) *fs.ProfileStore {
	t.Helper()
	return fs.NewProfileStore(filepath.Join(t.TempDir(), "config.json"))
}

func TestProfileStore_CreateProfile(t *testing.T) {
	t.Parallel()

	t.Run("first profile becomes the default", func(t *testing.T) {
		t.Parallel()

		store := newProfileStore(t)
		ctx := context.Background()

		first := &youte.Profile{Name: "main", Key: "key-1"}
		require.NoError(t, store.CreateProfile(ctx, first))
		require.NoError(t, store.CreateProfile(ctx, &youte.Profile{Name: "backup", Key: "key-2"}))

		assert.True(t, first.Default)
		p, err := store.FindProfile(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "main", p.Name)
	})

	t.Run("rejects duplicate names and keys", func(t *testing.T) {
		t.Parallel()

		store := newProfileStore(t)
		ctx := context.Background()
		require.NoError(t, store.CreateProfile(ctx, &youte.Profile{Name: "main", Key: "key-1"}))

		err := store.CreateProfile(ctx, &youte.Profile{Name: "main", Key: "key-2"})
		assert.Equal(t, youte.ECONFLICT, youte.ErrorCode(err))

		err = store.CreateProfile(ctx, &youte.Profile{Name: "other", Key: "key-1"})
		assert.Equal(t, youte.ECONFLICT, youte.ErrorCode(err))
	})

	t.Run("rejects incomplete profiles", func(t *testing.T) {
		t.Parallel()

		err := newProfileStore(t).CreateProfile(context.Background(), &youte.Profile{Name: "main"})
		assert.Equal(t, youte.EINVALID, youte.ErrorCode(err))
	})

	t.Run("writes a private file", func(t *testing.T) {
		t.Parallel()

		store := newProfileStore(t)
		require.NoError(t, store.CreateProfile(context.Background(), &youte.Profile{Name: "main", Key: "key-1"}))

		info, err := os.Stat(store.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})
}

func TestProfileStore_FindProfiles(t *testing.T) {
	t.Parallel()

	t.Run("returns profiles sorted by name", func(t *testing.T) {
		t.Parallel()

		store := newProfileStore(t)
		ctx := context.Background()
		require.NoError(t, store.CreateProfile(ctx, &youte.Profile{Name: "zeta", Key: "k1"}))
		require.NoError(t, store.CreateProfile(ctx, &youte.Profile{Name: "alpha", Key: "k2"}))

		profiles, err := store.FindProfiles(ctx)
		require.NoError(t, err)
		require.Len(t, profiles, 2)
		assert.Equal(t, "alpha", profiles[0].Name)
		assert.Equal(t, "zeta", profiles[1].Name)
	})

	t.Run("empty when the file does not exist", func(t *testing.T) {
		t.Parallel()

		profiles, err := newProfileStore(t).FindProfiles(context.Background())
		require.NoError(t, err)
		assert.Empty(t, profiles)
	})

	t.Run("malformed file is a configuration error", func(t *testing.T) {
		t.Parallel()

		store := newProfileStore(t)
		require.NoError(t, os.WriteFile(store.Path(), []byte("not json"), 0600))

		_, err := store.FindProfiles(context.Background())
		assert.Equal(t, youte.ECONFIG, youte.ErrorCode(err))
	})
}

func TestProfileStore_SetDefault(t *testing.T) {
	t.Parallel()

	t.Run("moves the default", func(t *testing.T) {
		t.Parallel()

		store := newProfileStore(t)
		ctx := context.Background()
		require.NoError(t, store.CreateProfile(ctx, &youte.Profile{Name: "main", Key: "k1"}))
		require.NoError(t, store.CreateProfile(ctx, &youte.Profile{Name: "backup", Key: "k2"}))

		require.NoError(t, store.SetDefault(ctx, "backup"))

		p, err := store.FindProfile(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "backup", p.Name)
	})

	t.Run("unknown profile is not found", func(t *testing.T) {
		t.Parallel()

		err := newProfileStore(t).SetDefault(context.Background(), "nope")
		assert.Equal(t, youte.ENOTFOUND, youte.ErrorCode(err))
	})
}

func TestProfileStore_DeleteProfile(t *testing.T) {
	t.Parallel()

	store := newProfileStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateProfile(ctx, &youte.Profile{Name: "main", Key: "k1"}))

	require.NoError(t, store.DeleteProfile(ctx, "main"))

	_, err := store.FindProfile(ctx, "main")
	assert.Equal(t, youte.ENOTFOUND, youte.ErrorCode(err))
	assert.Equal(t, youte.ENOTFOUND, youte.ErrorCode(store.DeleteProfile(ctx, "main")))
}
