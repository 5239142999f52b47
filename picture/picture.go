/*
Package picture implements an image converter producing HD picture appvars
for the TI-84 Plus CE.

The picture is reduced to a single palette of up to 256 colors and split
into tiles of 80 by 80 pixels, working left to right and top to bottom.
Tiles on the right and bottom edges are smaller when the picture is not an
exact multiple of the tile size. Each tile is an appvar of a 4 byte header
holding its width and height as little-endian 16-bit values, followed by
one palette index per pixel. The palette is a separate appvar of 256
packed 16-bit 1555 colors.

Tile appvars are named with the two letter prefix followed by the tile row
and column as two hexadecimal digits each, so "AB0102" is the third tile
of the second row. The palette is named with the prefix followed by "PAL".
*/
package picture

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/bodgit/hdpic"
	"github.com/disintegration/gift"
	"github.com/ericpauley/go-quantize/quantize"
)

const (
	tileWidth     = 80
	tileHeight    = tileWidth
	maxTiles      = 0x100
	maxColors     = 256
	paletteSuffix = "PAL"
)

var (
	errEmpty    = errors.New("picture: image is empty")
	errTooLarge = errors.New("picture: image is too large")
)

// Picture is a decoded picture. It implements hdpic.Image.
type Picture struct {
	name   string
	prefix hdpic.Prefix
	m      image.Image
	pm     *image.Paletted
}

type options struct {
	maxWidth, maxHeight int
}

// Option configures decoding
type Option func(*options)

// WithMaxSize scales pictures larger than width by height down to fit,
// preserving the aspect ratio.
func WithMaxSize(width, height int) Option {
	return func(o *options) {
		o.maxWidth, o.maxHeight = width, height
	}
}

func fit(m image.Image, o *options) image.Image {
	b := m.Bounds()
	if o.maxWidth <= 0 || o.maxHeight <= 0 || (b.Dx() <= o.maxWidth && b.Dy() <= o.maxHeight) {
		return m
	}

	g := gift.New(gift.ResizeToFit(o.maxWidth, o.maxHeight, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, m)

	return dst
}

// Decode reads an image in any registered format from r.
func Decode(r io.Reader, name string, prefix hdpic.Prefix, opts ...Option) (*Picture, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	m = fit(m, &o)

	b := m.Bounds()
	if b.Empty() {
		return nil, errEmpty
	}
	if (b.Dx()+tileWidth-1)/tileWidth > maxTiles || (b.Dy()+tileHeight-1)/tileHeight > maxTiles {
		return nil, errTooLarge
	}

	return &Picture{
		name:   name,
		prefix: prefix,
		m:      m,
	}, nil
}

// NewDecoder returns an hdpic.Decoder using Decode with opts
func NewDecoder(opts ...Option) hdpic.Decoder {
	return func(r io.Reader, name string, prefix hdpic.Prefix) (hdpic.Image, error) {
		p, err := Decode(r, name, prefix, opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// Bounds returns the size of the picture
func (p *Picture) Bounds() image.Rectangle {
	return p.m.Bounds().Sub(p.m.Bounds().Min)
}

func quantizeImage(m image.Image) *image.Paletted {
	b := m.Bounds()
	r := b.Sub(b.Min)

	var palette color.Palette
	if pm, ok := m.(*image.Paletted); ok && len(pm.Palette) <= maxColors {
		palette = pm.Palette
	} else if cp, ok := m.ColorModel().(color.Palette); ok && len(cp) <= maxColors {
		palette = cp
	} else {
		q := quantize.MedianCutQuantizer{}
		palette = q.Quantize(make(color.Palette, 0, maxColors), m)
	}

	// Adjust image so that top-left corner is at (0, 0)
	pm := image.NewPaletted(r, palette)
	draw.Draw(pm, r, m, b.Min, draw.Src)

	return pm
}

// Quantize returns a copy of the picture reduced to at most 256 colors.
func (p *Picture) Quantize() hdpic.Image {
	return p.quantize()
}

func (p *Picture) quantize() *Picture {
	if p.pm != nil {
		return p
	}
	return &Picture{
		name:   p.name,
		prefix: p.prefix,
		m:      p.m,
		pm:     quantizeImage(p.m),
	}
}

// Tiles returns an iterator over every tile. The picture is quantized
// first if necessary.
func (p *Picture) Tiles() hdpic.TileIterator {
	q := p.quantize()
	b := q.pm.Bounds()
	return &tileIterator{
		p:    q,
		cols: (b.Dx() + tileWidth - 1) / tileWidth,
		rows: (b.Dy() + tileHeight - 1) / tileHeight,
	}
}

// PaletteName returns the appvar name of the palette
func (p *Picture) PaletteName() string {
	return string(p.prefix) + paletteSuffix
}
