package hdpic

import (
	"path/filepath"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	c, err := OpenCatalog(filepath.Join(t.TempDir(), "hdpic.db"))
	require.NoError(t, err)
	defer c.Close()

	source := digest.FromString("image bytes")

	conversions, err := c.FindByDigest(source)
	require.NoError(t, err)
	assert.Empty(t, conversions)

	entries := []Entry{
		{Name: "AB0000", Size: 6404},
		{Name: "AB0001", Size: 6404},
		{Name: "ABPAL", Size: 512},
	}
	id, err := c.Record(source, "AB", "/tmp/foo.8xg", entries)
	require.NoError(t, err)

	_, err = c.Record(digest.FromString("other"), "CD", "/tmp/bar.8xg", nil)
	require.NoError(t, err)

	conversions, err = c.FindByDigest(source)
	require.NoError(t, err)
	require.Len(t, conversions, 1)

	conv := conversions[0]
	assert.Equal(t, id, conv.ID)
	assert.Equal(t, source, conv.Source)
	assert.Equal(t, Prefix("AB"), conv.Prefix)
	assert.Equal(t, "/tmp/foo.8xg", conv.Output)
	assert.Equal(t, entries, conv.Entries)
}

func TestCatalogReopen(t *testing.T) {
	file := filepath.Join(t.TempDir(), "hdpic.db")
	source := digest.FromString("image bytes")

	c, err := OpenCatalog(file)
	require.NoError(t, err)
	_, err = c.Record(source, "AB", "foo.8xg", []Entry{{Name: "ABPAL", Size: 512}})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = OpenCatalog(file)
	require.NoError(t, err)
	defer c.Close()

	conversions, err := c.FindByDigest(source)
	require.NoError(t, err)
	require.Len(t, conversions, 1)
	assert.Equal(t, []Entry{{Name: "ABPAL", Size: 512}}, conversions[0].Entries)
}

func TestCatalogInvalidDigest(t *testing.T) {
	c, err := OpenCatalog(filepath.Join(t.TempDir(), "hdpic.db"))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Record(digest.Digest("nonsense"), "AB", "foo.8xg", nil)
	assert.Error(t, err)
}
