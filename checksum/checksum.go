/*
Package checksum implements the 16-bit additive checksum used by TI-83 Plus
family variable files.

The checksum is the sum of every byte of the variable entry, truncated to 16
bits. It is stored little-endian after the entry.
*/
package checksum

import "hash"

// Size of the checksum in bytes.
const Size = 2

type digest struct {
	sum uint16
}

// Hash16 is the common interface implemented by the 16-bit checksum.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

// New creates a new Hash16 computing the checksum. Its Sum method will lay
// the value out in little-endian byte order, matching the file format.
func New() Hash16 {
	return &digest{}
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { d.sum = 0 }

func update(sum uint16, p []byte) uint16 {
	for _, b := range p {
		sum += uint16(b)
	}
	return sum
}

// Update returns the result of adding the bytes in p to the sum.
func Update(sum uint16, p []byte) uint16 {
	return update(sum, p)
}

func (d *digest) Write(p []byte) (n int, err error) {
	d.sum = update(d.sum, p)
	return len(p), nil
}

func (d *digest) Sum16() uint16 { return d.sum }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum16()
	return append(in, byte(s), byte(s>>8))
}

// Checksum returns the checksum of data.
func Checksum(data []byte) uint16 { return Update(0, data) }
