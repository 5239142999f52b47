/*
Package hdpic is a library for packaging pictures as TI-84 Plus CE appvars.

A picture is split into tiles, each tile and the shared palette are rendered
as appvars and every appvar is bundled into a single gzipped tar archive
with an .8xg extension for distribution.
*/
package hdpic

import (
	"github.com/hashicorp/go-hclog"
)

// Converter runs the packaging pipeline using an image Decoder.
type Converter struct {
	decoder  Decoder
	logger   hclog.Logger
	catalog  *Catalog
	progress func(string)
}

// Option configures a Converter
type Option func(*Converter)

// WithLogger sets the logger, the default discards everything
func WithLogger(logger hclog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithCatalog records every successful conversion in catalog
func WithCatalog(catalog *Catalog) Option {
	return func(c *Converter) {
		c.catalog = catalog
	}
}

// WithProgress calls f with the name of each appvar as it is packaged
func WithProgress(f func(name string)) Option {
	return func(c *Converter) {
		if f != nil {
			c.progress = f
		}
	}
}

// New returns a Converter that decodes images with decoder
func New(decoder Decoder, options ...Option) *Converter {
	c := &Converter{
		decoder:  decoder,
		logger:   hclog.NewNullLogger(),
		progress: func(string) {},
	}
	for _, o := range options {
		o(c)
	}
	return c
}
