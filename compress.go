package hdpic

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

// Extension is the filename extension of the compressed group file
const Extension = ".8xg"

// OutputPath returns where the compressed group for imageFile is written
// in outDir.
func OutputPath(outDir, imageFile string) string {
	base := filepath.Base(imageFile)
	stem := base[:len(base)-len(filepath.Ext(base))]
	switch {
	case base == "." || base == ".." || base == string(filepath.Separator):
		stem = "image"
	case stem == "":
		// Dotfiles have no extension
		stem = base
	}
	return filepath.Join(outDir, stem+Extension)
}

func compress(w io.Writer, b []byte) error {
	zw, err := gzip.NewWriterLevel(w, gzip.DefaultCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(b); err != nil {
		zw.Close()
		return fmt.Errorf("write gzip data: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close gzip writer: %w", err)
	}
	return nil
}

// CompressToFile gzips b into the file at path. The stream is written to a
// temporary file in the same directory which is renamed over path only once
// it is complete, so path never holds a partial stream.
func CompressToFile(b []byte, path string) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+"-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err = compress(f, b); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Decompress returns the decompressed contents of the gzip stream in r
func Decompress(r io.Reader) ([]byte, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer zr.Close()

	b := new(bytes.Buffer)
	if _, err := io.Copy(b, zr); err != nil {
		return nil, fmt.Errorf("read gzip data: %w", err)
	}
	return b.Bytes(), nil
}
