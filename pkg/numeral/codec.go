// Package numeral provides the positional numeral system used to translate
// between 64-bit token ids and token names.
package numeral

import (
	"errors"
	"fmt"
	"math/bits"
)

// Codec errors.
var (
	ErrUnknownSymbol = errors.New("numeral: symbol not in alphabet")
	ErrTooLong       = errors.New("numeral: name too long for 64-bit id")
)

// Codec translates between ids and names for one alphabet.
type Codec struct {
	alphabet *Alphabet
	maxLen   int
}

// NewCodec creates a codec for the given alphabet.
func NewCodec(a *Alphabet) *Codec {
	return &Codec{
		alphabet: a,
		maxLen:   maxDigits(a.Base()),
	}
}

// maxDigits returns the largest n such that base^n fits in a uint64.
func maxDigits(base uint64) int {
	n := 0
	for p := uint64(1); ; n++ {
		hi, lo := bits.Mul64(p, base)
		if hi != 0 {
			return n
		}
		p = lo
	}
}

// Alphabet returns the codec's alphabet.
func (c *Codec) Alphabet() *Alphabet {
	return c.alphabet
}

// MaxLen returns the longest name Encode accepts.
func (c *Codec) MaxLen() int {
	return c.maxLen
}

// Encode converts a name into its id, most significant symbol first.
// The empty name encodes to 0.
func (c *Codec) Encode(name string) (uint64, error) {
	if len(name) > c.maxLen {
		return 0, fmt.Errorf("%w: %d symbols, max %d", ErrTooLong, len(name), c.maxLen)
	}

	base := c.alphabet.Base()
	var id uint64
	for i, r := range name {
		v := c.alphabet.Value(r)
		if v < 0 {
			return 0, fmt.Errorf("%w: %q at position %d", ErrUnknownSymbol, r, i)
		}
		id = id*base + uint64(v)
	}
	return id, nil
}

// MustEncode is like Encode but panics on error.
func (c *Codec) MustEncode(name string) uint64 {
	id, err := c.Encode(name)
	if err != nil {
		panic(err)
	}
	return id
}

// Decode converts an id into its name. Digits are extracted least
// significant first and reversed, so 0 decodes to the empty string and
// the leading symbol of any non-zero id is never the separator.
func (c *Codec) Decode(id uint64) string {
	if id == 0 {
		return ""
	}

	base := c.alphabet.Base()
	buf := make([]byte, 0, c.maxLen+1)
	for n := id; n > 0; n /= base {
		buf = append(buf, c.alphabet.Symbol(n%base))
	}

	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// MaxID returns the id of the longest all-maximum-symbol name, which is
// base^MaxLen - 1.
func (c *Codec) MaxID() uint64 {
	base := c.alphabet.Base()
	var id uint64
	for i := 0; i < c.maxLen; i++ {
		id = id*base + (base - 1)
	}
	return id
}
