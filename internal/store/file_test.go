package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zachrip/valpal/pkg/types"
)

var testWeapons = []string{"vandal", "phantom", "classic"}

func TestFileStore_CreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir, testWeapons)

	cfg, err := s.GetUserConfig(context.Background(), "user-1")
	require.NoError(t, err)

	require.Equal(t, types.ConfigVersion, cfg.Version)
	require.Len(t, cfg.Loadouts, 1)
	l := cfg.Loadouts[0]
	assert.Equal(t, DefaultLoadoutName, l.Name)
	assert.True(t, l.Enabled)
	_, err = uuid.Parse(l.ID)
	assert.NoError(t, err)
	assert.Len(t, l.Weapons, len(testWeapons))
	for _, id := range testWeapons {
		assert.Empty(t, l.Weapons[id].Templates, id)
	}

	info, err := os.Stat(filepath.Join(dir, "user_user-1.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(configFileMode), info.Mode().Perm())

	again, err := s.GetUserConfig(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, l.ID, again.Loadouts[0].ID, "default is created once")
}

func TestFileStore_SaveThenGet(t *testing.T) {
	s := NewFileStore(t.TempDir(), testWeapons)
	ctx := context.Background()

	want := types.UserConfig{Loadouts: []types.Loadout{{
		ID:       "a",
		Name:     "Jett",
		Enabled:  true,
		AgentIDs: []string{"jett"},
		Weapons: map[string]types.WeaponConfig{
			"vandal": {Templates: []types.Template{{
				ID: "t", SkinID: "prime", ChromaIDs: []string{"c"}, LevelIDs: []string{"l"},
			}}},
		},
	}}}
	require.NoError(t, s.SaveUserConfig(ctx, "user-1", want))

	got, err := s.GetUserConfig(ctx, "user-1")
	require.NoError(t, err)
	want.Version = types.ConfigVersion
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(s.dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFileStore_RejectsOtherVersions(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(types.UserConfig{Version: 2})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_old.json"), data, 0o600))

	_, err = NewFileStore(dir, testWeapons).GetUserConfig(context.Background(), "old")
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFileStore_RejectsBadUserIDs(t *testing.T) {
	s := NewFileStore(t.TempDir(), testWeapons)
	for _, id := range []string{"", "../etc", `a\b`, "a/b"} {
		_, err := s.GetUserConfig(context.Background(), id)
		assert.ErrorIs(t, err, ErrInvalidUserID, id)
		assert.ErrorIs(t, s.SaveUserConfig(context.Background(), id, types.UserConfig{}), ErrInvalidUserID, id)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_x.json"), []byte("{"), 0o600))

	_, err := NewFileStore(dir, testWeapons).GetUserConfig(context.Background(), "x")
	require.Error(t, err)
}

func TestRows(t *testing.T) {
	cfg := DefaultConfig(testWeapons)
	row, err := toRow("u", cfg)
	require.NoError(t, err)
	assert.Equal(t, "u", row.UserID)

	back, err := fromRow(row)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)

	row.Version = 1
	_, err = fromRow(row)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}
