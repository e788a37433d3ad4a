package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		path string
		want int64
	}{
		{"YurCoin0.png", 0},
		{"YurCoin1.png", 1},
		{"/srv/data/YurCoin10.png", 10},
		{"nested/YurCoin1000.png", 1000},
		{"yurcoin1000.png", 0},
		{"cat.gif", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ValueOf(tt.path))
		})
	}
}

func TestLoadSkipsCommentsAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "images.env"),
		"# prizes\n\nYurCoin10.png\n  YurCoin1.png  \n/abs/YurCoin1000.png\n#YurCoin0.png\n")

	entries := New(dir, "images.env").Load()

	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Path: filepath.Join(dir, "YurCoin10.png"), Value: 10}, entries[0])
	assert.Equal(t, Entry{Path: filepath.Join(dir, "YurCoin1.png"), Value: 1}, entries[1])
	assert.Equal(t, Entry{Path: "/abs/YurCoin1000.png", Value: 1000}, entries[2])
}

func TestLoadMissingManifest(t *testing.T) {
	assert.Empty(t, New(t.TempDir(), "images.env").Load())
}

func TestBootstrapWritesSortedImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "x")
	writeFile(t, filepath.Join(dir, "B.JPG"), "x")
	writeFile(t, filepath.Join(dir, "note.txt"), "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.png"), 0o755))

	c := New(dir, "images.env")
	n, err := c.Bootstrap()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(c.ManifestPath())
	require.NoError(t, err)
	assert.Equal(t, "B.JPG\na.png", string(data))
}

func TestBootstrapFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	store := t.TempDir()
	writeFile(t, filepath.Join(store, "YurCoin10.png"), "x")
	require.NoError(t, os.Symlink(filepath.Join(store, "YurCoin10.png"), filepath.Join(dir, "YurCoin10.png")))
	require.NoError(t, os.Symlink(store, filepath.Join(dir, "album.png")))
	require.NoError(t, os.Symlink(filepath.Join(store, "missing.png"), filepath.Join(dir, "broken.png")))

	c := New(dir, "images.env")
	n, err := c.Bootstrap()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries := c.Load()
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Join(dir, "YurCoin10.png"), entries[0].Path)
	assert.Equal(t, int64(10), entries[0].Value)
}

func TestBootstrapReplacesManifestWithOnlyComments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "images.env"), "# nothing yet\n\n")
	writeFile(t, filepath.Join(dir, "YurCoin1.gif"), "x")

	c := New(dir, "images.env")
	n, err := c.Bootstrap()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, c.Load(), 1)
}

func TestBootstrapKeepsPopulatedManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "images.env"), "YurCoin10.png\n")
	writeFile(t, filepath.Join(dir, "other.png"), "x")

	c := New(dir, "images.env")
	n, err := c.Bootstrap()
	require.NoError(t, err)
	assert.Zero(t, n)

	data, err := os.ReadFile(c.ManifestPath())
	require.NoError(t, err)
	assert.Equal(t, "YurCoin10.png\n", string(data))
}

func TestBootstrapNoImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "readme.md"), "x")

	c := New(dir, "images.env")
	n, err := c.Bootstrap()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = os.Stat(c.ManifestPath())
	assert.True(t, os.IsNotExist(err))
}
