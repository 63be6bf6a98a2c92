package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKilledFalseWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	require.False(t, Killed(filepath.Join(dir, "kill")))
}

func TestKilledTrueAndRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kill")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	require.True(t, Killed(path))
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestKilledEmptyPathNeverKills(t *testing.T) {
	require.False(t, Killed(""))
}

func TestRemoveOldConfigsClearsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cfg"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.cfg"), nil, 0o644))

	require.NoError(t, RemoveOldConfigs(dir))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRemoveOldConfigsMissingDirIsNoop(t *testing.T) {
	require.NoError(t, RemoveOldConfigs("/nonexistent/path/for/nbody-sim-tests"))
}
