package hdpic

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// PrefixLength is the number of characters in a variable prefix
const PrefixLength = 2

// ErrInvalidPrefix is matched by every prefix validation error
var ErrInvalidPrefix = errors.New("invalid var_prefix")

// Prefix is a validated two letter prefix used to derive every appvar name.
type Prefix string

// PrefixLengthError is returned when the prefix is not exactly two
// characters long.
type PrefixLengthError struct {
	Length int
}

func (e *PrefixLengthError) Error() string {
	return fmt.Sprintf("var_prefix must be exactly %d characters, but is %d", PrefixLength, e.Length)
}

// Is makes errors.Is(err, ErrInvalidPrefix) succeed.
func (e *PrefixLengthError) Is(target error) bool { return target == ErrInvalidPrefix }

// PrefixCharacterError is returned when a character of the prefix is not
// an ASCII letter.
type PrefixCharacterError struct {
	Char  rune
	Index int
}

func (e *PrefixCharacterError) Error() string {
	return fmt.Sprintf("%q at var_prefix position %d is not an alphabetic character", e.Char, e.Index)
}

// Is makes errors.Is(err, ErrInvalidPrefix) succeed.
func (e *PrefixCharacterError) Is(target error) bool { return target == ErrInvalidPrefix }

func isASCIIAlpha(r rune) bool {
	return r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
}

// ValidatePrefix checks s is exactly two ASCII letters. Characters are
// counted as runes so multi-byte input is measured correctly.
func ValidatePrefix(s string) (Prefix, error) {
	if n := utf8.RuneCountInString(s); n != PrefixLength {
		return "", &PrefixLengthError{Length: n}
	}

	var i int
	for _, r := range s {
		if !isASCIIAlpha(r) {
			return "", &PrefixCharacterError{Char: r, Index: i}
		}
		i++
	}

	return Prefix(s), nil
}

func (p Prefix) String() string {
	return string(p)
}
