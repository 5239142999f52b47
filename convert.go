package hdpic

import (
	"bufio"
	"bytes"
	_ "crypto/sha256"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"
)

type render func(w io.Writer) error

func (c *Converter) appendPayload(container *Container, buf *bytes.Buffer, name string, f render) (Entry, error) {
	c.progress(name)
	c.logger.Info("packaging appvar", "name", name)

	buf.Reset()
	if err := f(buf); err != nil {
		return Entry{}, stageError(StageRender, err)
	}
	if err := container.Append(Payload{Name: name, Data: buf.Bytes()}); err != nil {
		return Entry{}, stageError(StageArchive, err)
	}

	return Entry{Name: name, Size: buf.Len()}, nil
}

func (c *Converter) load(imageFile string, prefix Prefix) (Image, digest.Digest, error) {
	c.logger.Info("opening image file", "file", imageFile)

	f, err := os.Open(imageFile)
	if err != nil {
		return nil, "", stageError(StageOpen, err)
	}
	defer f.Close()

	d := digest.Canonical.Digester()
	r := io.TeeReader(f, d.Hash())

	image, err := c.decoder(bufio.NewReader(r), filepath.Base(imageFile), prefix)
	if err != nil {
		return nil, "", stageError(StageDecode, err)
	}

	// Decoders may stop short of the end of the file
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, "", stageError(StageOpen, err)
	}

	return image, d.Digest(), nil
}

// Convert packages imageFile as a group file in outDir using prefix to name
// every appvar and returns the path of the group file. The prefix is
// validated before any file is touched.
func (c *Converter) Convert(imageFile, prefix, outDir string) (string, error) {
	p, err := ValidatePrefix(prefix)
	if err != nil {
		return "", stageError(StageValidate, err)
	}

	path := OutputPath(outDir, imageFile)

	image, source, err := c.load(imageFile, p)
	if err != nil {
		return "", err
	}
	c.logger.Debug("decoded image", "digest", source)

	if c.catalog != nil {
		previous, err := c.catalog.FindByDigest(source)
		if err != nil {
			return "", stageError(StageCatalog, err)
		}
		for _, conv := range previous {
			c.logger.Info("image previously packaged", "output", conv.Output, "prefix", conv.Prefix, "created", conv.Created)
		}
	}

	c.logger.Info("quantizing")
	image = image.Quantize()

	c.logger.Info("packaging appvars", "output", path)

	var (
		container = NewContainer()
		buf       = new(bytes.Buffer)
		entries   []Entry
	)

	tiles := image.Tiles()
	for {
		tile, ok := tiles.Next()
		if !ok {
			break
		}
		e, err := c.appendPayload(container, buf, tile.Name(), func(w io.Writer) error {
			_, err := tile.WriteTo(w)
			return err
		})
		if err != nil {
			return "", err
		}
		entries = append(entries, e)
	}

	e, err := c.appendPayload(container, buf, image.PaletteName(), image.WritePalette)
	if err != nil {
		return "", err
	}
	entries = append(entries, e)

	b, err := container.Bytes()
	if err != nil {
		return "", stageError(StageArchive, err)
	}

	if err := CompressToFile(b, path); err != nil {
		return "", stageError(StageCompress, err)
	}
	c.logger.Info("wrote group file", "output", path, "appvars", len(entries), "size", len(b))

	// The group file is already in place, a catalog failure only loses
	// the history entry
	if c.catalog != nil {
		if _, err := c.catalog.Record(source, p, path, entries); err != nil {
			c.logger.Warn("unable to record conversion", "output", path, "error", err)
		}
	}

	return path, nil
}
