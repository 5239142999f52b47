package picture

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/bodgit/hdpic"
	"github.com/bodgit/hdpic/appvar"
)

type tileIterator struct {
	p          *Picture
	i          int
	cols, rows int
}

func (it *tileIterator) Next() (hdpic.Tile, bool) {
	if it.i >= it.cols*it.rows {
		return nil, false
	}

	row, col := it.i/it.cols, it.i%it.cols
	it.i++

	r := image.Rect(col*tileWidth, row*tileHeight, (col+1)*tileWidth, (row+1)*tileHeight).Intersect(it.p.pm.Bounds())

	return &Tile{
		name:    fmt.Sprintf("%s%02X%02X", it.p.prefix, row, col),
		comment: it.p.name,
		m:       it.p.pm.SubImage(r).(*image.Paletted),
	}, true
}

// Tile is a single tile of a quantized picture. It implements hdpic.Tile.
type Tile struct {
	name    string
	comment string
	m       *image.Paletted
}

// Name returns the appvar name of the tile
func (t *Tile) Name() string {
	return t.name
}

// Bounds returns the area of the picture covered by the tile
func (t *Tile) Bounds() image.Rectangle {
	return t.m.Bounds()
}

func (t *Tile) data() []byte {
	b := t.m.Bounds()
	data := make([]byte, 4, 4+b.Dx()*b.Dy())
	binary.LittleEndian.PutUint16(data[0:], uint16(b.Dx()))
	binary.LittleEndian.PutUint16(data[2:], uint16(b.Dy()))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := t.m.PixOffset(b.Min.X, y)
		data = append(data, t.m.Pix[i:i+b.Dx()]...)
	}

	return data
}

// WriteTo writes the tile appvar to w
func (t *Tile) WriteTo(w io.Writer) (int64, error) {
	v := appvar.AppVar{
		Name:     t.name,
		Comment:  t.comment,
		Archived: true,
		Data:     t.data(),
	}
	return v.WriteTo(w)
}

// Pack a color as 1555, the top bit is unused
func packColor(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16(r>>11)<<10 | uint16(g>>11)<<5 | uint16(b>>11)
}

func (p *Picture) paletteData() []byte {
	q := p.quantize()

	// Unused entries are left as black
	data := make([]byte, maxColors*2)
	for i, c := range q.pm.Palette {
		if i >= maxColors {
			break
		}
		binary.LittleEndian.PutUint16(data[i*2:], packColor(c))
	}

	return data
}

// WritePalette writes the palette appvar to w
func (p *Picture) WritePalette(w io.Writer) error {
	v := appvar.AppVar{
		Name:     p.PaletteName(),
		Comment:  p.name,
		Archived: true,
		Data:     p.paletteData(),
	}
	_, err := v.WriteTo(w)
	return err
}
