/*
Package appvar implements the TI-84 Plus CE application variable (appvar)
file format, normally written to disk with an .8xv extension.

A file is an 11 byte signature, a 42 byte comment and the length of the
variable entry that follows. The entry is a 17 byte header carrying the
variable type, its name and whether it lives in archive memory, then the
variable data which is itself prefixed with its own length. The file ends
with a 16-bit checksum of the entry.
*/
package appvar

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/hdpic/checksum"
)

const (
	// Extension is the conventional filename extension
	Extension = ".8xv"

	// Type is the variable type ID for an appvar
	Type = 0x15

	// MaxNameLength is the longest name a variable can have
	MaxNameLength = 8
	// MaxCommentLength is the size of the comment field, longer comments
	// are truncated
	MaxCommentLength = 42

	signatureSize   = 11
	headerSize      = signatureSize + MaxCommentLength + 2
	entryHeaderSize = 17
	entryMarker     = 0x000d
	flagArchived    = 0x80

	// MaxDataSize is the largest payload that fits in a single appvar
	MaxDataSize = 0xffff - entryHeaderSize - 2
)

var signature = [signatureSize]byte{'*', '*', 'T', 'I', '8', '3', 'F', '*', 0x1a, 0x0a, 0x00}

var (
	errBadSignature = errors.New("appvar: invalid signature")
	errBadChecksum  = errors.New("appvar: checksum mismatch")
	errBadType      = errors.New("appvar: not an appvar")
	errNotEnough    = errors.New("appvar: not enough data")
	errTooMuch      = errors.New("appvar: too much data")
	errBadLength    = errors.New("appvar: inconsistent lengths")
)

// AppVar is a single application variable. It implements the
// encoding.BinaryMarshaler and encoding.BinaryUnmarshaler interfaces.
type AppVar struct {
	Name     string
	Comment  string
	Archived bool
	Data     []byte
}

// ValidName reports whether name can be used as a variable name. Names are
// one to eight ASCII letters or digits and must start with a letter.
func ValidName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLength {
		return fmt.Errorf("appvar: name %q must be 1 to %d characters", name, MaxNameLength)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return fmt.Errorf("appvar: invalid character %q in name %q", c, name)
		}
	}
	return nil
}

func (v *AppVar) entry() ([]byte, error) {
	if err := ValidName(v.Name); err != nil {
		return nil, err
	}
	if len(v.Data) > MaxDataSize {
		return nil, fmt.Errorf("appvar: %d bytes of data exceeds maximum of %d", len(v.Data), MaxDataSize)
	}

	varLength := uint16(len(v.Data) + 2)

	b := new(bytes.Buffer)
	b.Grow(entryHeaderSize + int(varLength))

	var name [MaxNameLength]byte
	copy(name[:], v.Name)

	var flag byte
	if v.Archived {
		flag = flagArchived
	}

	// binary.Write with a fixed-size struct never fails on a bytes.Buffer
	_ = binary.Write(b, binary.LittleEndian, struct {
		Marker   uint16
		Length   uint16
		Type     byte
		Name     [MaxNameLength]byte
		Version  byte
		Flag     byte
		Length2  uint16
		DataSize uint16
	}{entryMarker, varLength, Type, name, 0, flag, varLength, uint16(len(v.Data))})
	b.Write(v.Data)

	return b.Bytes(), nil
}

// MarshalBinary encodes the appvar into its file form and returns the result
func (v *AppVar) MarshalBinary() ([]byte, error) {
	entry, err := v.entry()
	if err != nil {
		return nil, err
	}

	b := new(bytes.Buffer)
	b.Grow(headerSize + len(entry) + checksum.Size)

	var comment [MaxCommentLength]byte
	copy(comment[:], v.Comment)

	b.Write(signature[:])
	b.Write(comment[:])
	_ = binary.Write(b, binary.LittleEndian, uint16(len(entry)))
	b.Write(entry)

	h := checksum.New()
	h.Write(entry)
	b.Write(h.Sum(nil))

	return b.Bytes(), nil
}

// WriteTo writes the encoded appvar to w
func (v *AppVar) WriteTo(w io.Writer) (int64, error) {
	b, err := v.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// UnmarshalBinary decodes the appvar from its file form
func (v *AppVar) UnmarshalBinary(b []byte) error {
	if len(b) < headerSize+entryHeaderSize+checksum.Size {
		return errNotEnough
	}
	if !bytes.Equal(b[:signatureSize], signature[:]) {
		return errBadSignature
	}

	comment := b[signatureSize : signatureSize+MaxCommentLength]
	if i := bytes.IndexByte(comment, 0); i >= 0 {
		comment = comment[:i]
	}

	length := int(binary.LittleEndian.Uint16(b[headerSize-2:]))
	switch rest := len(b) - headerSize - checksum.Size; {
	case rest < length:
		return errNotEnough
	case rest > length:
		return errTooMuch
	}

	entry := b[headerSize : headerSize+length]
	if checksum.Checksum(entry) != binary.LittleEndian.Uint16(b[headerSize+length:]) {
		return errBadChecksum
	}

	if entry[4] != Type {
		return errBadType
	}

	varLength := int(binary.LittleEndian.Uint16(entry[2:]))
	if varLength != int(binary.LittleEndian.Uint16(entry[15:])) || entryHeaderSize+varLength != length || varLength < 2 {
		return errBadLength
	}
	dataSize := int(binary.LittleEndian.Uint16(entry[entryHeaderSize:]))
	if dataSize+2 != varLength {
		return errBadLength
	}

	name := entry[5 : 5+MaxNameLength]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}

	v.Name = string(name)
	v.Comment = string(comment)
	v.Archived = entry[14]&flagArchived != 0
	v.Data = append([]byte(nil), entry[entryHeaderSize+2:]...)

	return nil
}
