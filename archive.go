package hdpic

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bodgit/hdpic/appvar"
)

const (
	// EntrySuffix is appended to every payload name in the archive
	EntrySuffix = appvar.Extension

	// EntryMode is the permission bits recorded for every entry
	EntryMode = 0o644

	// Largest entry ReadContainer will accept
	maxEntrySize = 1 << 20
)

var (
	// ErrDuplicateEntry is returned when two payloads would produce the
	// same archive entry name
	ErrDuplicateEntry = errors.New("duplicate archive entry")
	// ErrContainerClosed is returned when appending to a finished container
	ErrContainerClosed = errors.New("container already finished")
)

// Payload is a named binary blob, one per archive entry.
type Payload struct {
	Name string
	Data []byte
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// appendEntry writes a single regular file entry of b named name. The
// header checksum is computed by the tar writer once every other header
// field is set.
func appendEntry(tw *tar.Writer, name string, b []byte) error {
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Size:     int64(len(b)),
		Mode:     EntryMode,
		ModTime:  time.Unix(0, 0),
		Format:   tar.FormatGNU,
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", name, err)
	}

	cw := &countingWriter{w: tw}
	if _, err := cw.Write(b); err != nil {
		return fmt.Errorf("write data for %s: %w", name, err)
	}
	if cw.n != hdr.Size {
		return fmt.Errorf("write data for %s: %w", name, io.ErrShortWrite)
	}

	return nil
}

// Container is an in-memory tar archive assembled one payload at a time.
type Container struct {
	buf   bytes.Buffer
	tw    *tar.Writer
	names map[string]struct{}
	done  bool
}

// NewContainer returns an empty Container
func NewContainer() *Container {
	c := &Container{
		names: make(map[string]struct{}),
	}
	c.tw = tar.NewWriter(&c.buf)
	return c
}

// Append adds p to the end of the container.
func (c *Container) Append(p Payload) error {
	if c.done {
		return ErrContainerClosed
	}

	name := p.Name + EntrySuffix
	if _, ok := c.names[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	if err := appendEntry(c.tw, name, p.Data); err != nil {
		return err
	}
	c.names[name] = struct{}{}

	return nil
}

// Len returns the number of entries appended so far
func (c *Container) Len() int {
	return len(c.names)
}

// Bytes writes the end-of-archive trailer and returns the complete
// archive. Subsequent calls return the same bytes.
func (c *Container) Bytes() ([]byte, error) {
	if !c.done {
		if err := c.tw.Close(); err != nil {
			return nil, fmt.Errorf("finish archive: %w", err)
		}
		c.done = true
	}
	return c.buf.Bytes(), nil
}

// Assemble builds an archive holding every tile in the order given followed
// by the palette.
func Assemble(tiles []Payload, palette Payload) ([]byte, error) {
	c := NewContainer()
	for _, t := range tiles {
		if err := c.Append(t); err != nil {
			return nil, err
		}
	}
	if err := c.Append(palette); err != nil {
		return nil, err
	}
	return c.Bytes()
}

// ReadContainer decodes every entry of the archive in r in stored order.
// The entry suffix is stripped from each name.
func ReadContainer(r io.Reader) ([]Payload, error) {
	tr := tar.NewReader(r)

	var payloads []Payload
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}

		if hdr.Size < 0 || hdr.Size > maxEntrySize {
			return nil, fmt.Errorf("read %s: invalid size %d", hdr.Name, hdr.Size)
		}

		b := make([]byte, hdr.Size)
		if _, err := io.ReadFull(tr, b); err != nil {
			return nil, fmt.Errorf("read %s: %w", hdr.Name, err)
		}

		payloads = append(payloads, Payload{
			Name: strings.TrimSuffix(hdr.Name, EntrySuffix),
			Data: b,
		})
	}

	return payloads, nil
}
