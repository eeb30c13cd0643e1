// Package numeral provides the positional numeral system used to translate
// between 64-bit token ids and token names.
package numeral

import (
	"errors"
	"fmt"
)

// Well-known symbols.
const (
	// Separator delimits a token from its subtoken. It is always digit 0.
	Separator = '.'

	// Hyphen is only legal inside internationalized names. When an
	// alphabet supports it, it is digit 1.
	Hyphen = '-'
)

// Alphabet errors.
var (
	ErrAlphabetTooSmall  = errors.New("numeral: alphabet needs at least 2 symbols")
	ErrAlphabetNotASCII  = errors.New("numeral: alphabet symbols must be ASCII")
	ErrDuplicateSymbol   = errors.New("numeral: duplicate symbol in alphabet")
	ErrSeparatorNotFirst = errors.New("numeral: separator must be the first symbol")
	ErrHyphenNotSecond   = errors.New("numeral: hyphen must be the second symbol")
)

// Alphabet is an immutable ordered set of symbols defining a numeral base.
type Alphabet struct {
	name    string
	symbols string
	values  [256]int16
}

// Predefined alphabets.
var (
	// Standard is the 38 symbol alphabet with hyphen support.
	Standard = MustAlphabet("standard", ".-ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

	// Legacy is the 37 symbol alphabet without hyphen support.
	Legacy = MustAlphabet("legacy", ".ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
)

// NewAlphabet builds an alphabet from an ordered symbol string.
//
// The separator must be at index 0. If the hyphen is present it must be
// at index 1.
func NewAlphabet(name, symbols string) (*Alphabet, error) {
	if len(symbols) < 2 {
		return nil, ErrAlphabetTooSmall
	}
	if symbols[0] != Separator {
		return nil, ErrSeparatorNotFirst
	}

	a := &Alphabet{name: name, symbols: symbols}
	for i := range a.values {
		a.values[i] = -1
	}

	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if c >= 0x80 {
			return nil, ErrAlphabetNotASCII
		}
		if a.values[c] >= 0 {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, c)
		}
		if c == Hyphen && i != 1 {
			return nil, ErrHyphenNotSecond
		}
		a.values[c] = int16(i)
	}

	return a, nil
}

// MustAlphabet is like NewAlphabet but panics on error.
func MustAlphabet(name, symbols string) *Alphabet {
	a, err := NewAlphabet(name, symbols)
	if err != nil {
		panic(err)
	}
	return a
}

// ByName returns a predefined alphabet by name.
func ByName(name string) (*Alphabet, bool) {
	switch name {
	case Standard.name:
		return Standard, true
	case Legacy.name:
		return Legacy, true
	}
	return nil, false
}

// Name returns the alphabet name.
func (a *Alphabet) Name() string {
	return a.name
}

// Base returns the number of symbols.
func (a *Alphabet) Base() uint64 {
	return uint64(len(a.symbols))
}

// Symbols returns the ordered symbol string.
func (a *Alphabet) Symbols() string {
	return a.symbols
}

// Symbol returns the symbol for digit value v. It panics if v >= Base().
func (a *Alphabet) Symbol(v uint64) byte {
	return a.symbols[v]
}

// Value returns the digit value of symbol r, or -1 if r is not in the
// alphabet.
func (a *Alphabet) Value(r rune) int {
	if r < 0 || r >= 0x80 {
		return -1
	}
	return int(a.values[r])
}

// Contains reports whether r is a symbol of the alphabet.
func (a *Alphabet) Contains(r rune) bool {
	return a.Value(r) >= 0
}

// SupportsHyphen reports whether the hyphen symbol is part of the alphabet.
func (a *Alphabet) SupportsHyphen() bool {
	return a.Contains(Hyphen)
}

// Max returns the highest-valued symbol.
func (a *Alphabet) Max() byte {
	return a.symbols[len(a.symbols)-1]
}

// FirstPlain returns the lowest-valued symbol that is neither the
// separator nor the hyphen.
func (a *Alphabet) FirstPlain() byte {
	for i := 0; i < len(a.symbols); i++ {
		if c := a.symbols[i]; c != Separator && c != Hyphen {
			return c
		}
	}
	return a.symbols[len(a.symbols)-1]
}

// String implements fmt.Stringer.
func (a *Alphabet) String() string {
	return fmt.Sprintf("%s(base %d)", a.name, len(a.symbols))
}
