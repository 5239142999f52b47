package hdpic

import "io"

// Decoder constructs an Image from the encoded image in r. The name is the
// base name of the source file and prefix seeds every appvar name.
type Decoder func(r io.Reader, name string, prefix Prefix) (Image, error)

// Image is the capability surface the packaging pipeline needs from an
// image converter.
type Image interface {
	// Quantize returns a new Image reduced to a palette
	Quantize() Image
	// Tiles returns an iterator over every tile in a fixed order
	Tiles() TileIterator
	// PaletteName returns the appvar name of the palette
	PaletteName() string
	// WritePalette writes the palette appvar to w
	WritePalette(w io.Writer) error
}

// TileIterator is a finite, ordered iterator that cannot be restarted.
type TileIterator interface {
	// Next returns the next tile, or false once there are no more
	Next() (Tile, bool)
}

// Tile is a single tile of an Image.
type Tile interface {
	// Name returns the appvar name of the tile
	Name() string
	// WriteTo writes the tile appvar to w
	WriteTo(w io.Writer) (int64, error)
}
