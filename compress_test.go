package hdpic

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	tables := []struct {
		outDir, imageFile, path string
	}{
		{"/tmp", "foo.png", "/tmp/foo.8xg"},
		{"/tmp", "/some/where/foo.png", "/tmp/foo.8xg"},
		{"/tmp", "foo", "/tmp/foo.8xg"},
		// Only the last extension is replaced
		{"/tmp", "foo.tar.png", "/tmp/foo.tar.8xg"},
		{"/tmp", ".hidden", "/tmp/.hidden.8xg"},
		{".", "foo.jpeg", "foo.8xg"},
		{"/tmp", "", "/tmp/image.8xg"},
	}

	for _, table := range tables {
		assert.Equal(t, filepath.FromSlash(table.path), OutputPath(filepath.FromSlash(table.outDir), table.imageFile))
	}
}

func TestCompressToFile(t *testing.T) {
	tiles, palette := testPayloads()
	b, err := Assemble(tiles, palette)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "foo.8xg")
	require.NoError(t, CompressToFile(b, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	out, err := Decompress(f)
	require.NoError(t, err)
	assert.Equal(t, b, out)

	payloads, err := ReadContainer(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, append(tiles, palette), payloads)

	// Only the final file remains
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "foo.8xg", entries[0].Name())
}

func TestCompressToFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foo.8xg")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xaa}, 1<<16), 0o644))

	require.NoError(t, CompressToFile([]byte("small"), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	out, err := Decompress(f)
	require.NoError(t, err)
	assert.Equal(t, []byte("small"), out)
}

func TestCompressToFileMissingDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "foo.8xg")

	assert.Error(t, CompressToFile([]byte("data"), path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCompressToFileRenameFails(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the destination makes the rename fail
	path := filepath.Join(dir, "foo.8xg")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "x"), 0o755))

	assert.Error(t, CompressToFile([]byte("data"), path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsDir())
}

func TestDecompressInvalid(t *testing.T) {
	_, err := Decompress(bytes.NewReader([]byte("not gzip")))
	assert.Error(t, err)
}
