package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bodgit/hdpic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("320x240")
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)

	for _, s := range []string{"", "320", "x240", "0x240", "-1x5", "axb"} {
		_, _, err := parseSize(s)
		assert.Error(t, err, s)
	}
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	app, err := newApp()
	require.NoError(t, err)

	out := new(bytes.Buffer)
	app.Writer = out
	app.ErrWriter = out
	app.ExitErrHandler = func(*cli.Context, error) {}

	err = app.Run(append([]string{"hdpic"}, args...))
	return out.String(), err
}

func writePNG(t *testing.T, file string, width, height int) {
	t.Helper()

	m := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.Set(x, y, color.RGBA{uint8(x), uint8(y), 0x80, 0xff})
		}
	}

	f, err := os.Create(file)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, m))
}

func TestConvertBadPrefixWithDB(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	db := filepath.Join(outDir, "hdpic.db")

	for _, prefix := range []string{"a1", "a", "abc"} {
		_, err := runApp(t, "--db", db, "--outdir", outDir, filepath.Join(dir, "foo.png"), prefix)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "var_prefix")

		entries, err := os.ReadDir(outDir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestConvertAndList(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()
	file := filepath.Join(dir, "foo.png")
	writePNG(t, file, 100, 50)

	_, err := runApp(t, "--db", filepath.Join(dir, "hdpic.db"), "-o", outDir, file, "AB")
	require.NoError(t, err)

	group := filepath.Join(outDir, "foo.8xg")
	_, err = os.Stat(group)
	require.NoError(t, err)

	out, err := runApp(t, "list", group)
	require.NoError(t, err)

	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		names = append(names, strings.Fields(line)[0])
	}
	assert.Equal(t, []string{"AB0000.8xv", "AB0001.8xv", "ABPAL.8xv"}, names)
}

func TestConvertMissingImage(t *testing.T) {
	outDir := t.TempDir()

	_, err := runApp(t, "-o", outDir, filepath.Join(outDir, "missing.png"), "AB")
	require.Error(t, err)

	assert.True(t, strings.HasPrefix(err.Error(), hdpic.StageOpen+": "), err.Error())

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.8xg")
	require.NoError(t, os.WriteFile(file, []byte("not gzip"), 0o644))

	_, err := runApp(t, "list", file)
	assert.Error(t, err)
}
