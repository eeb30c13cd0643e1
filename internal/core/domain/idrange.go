// Package domain defines the core domain model for token naming.
package domain

import (
	"fmt"
	"strings"

	"github.com/yndnr/artifact-go/pkg/numeral"
)

// IDRange is the closed interval of ids whose decoded names have an
// admissible length. It is a cheap pre-check run before decoding.
type IDRange struct {
	Min uint64 `json:"min"`
	Max uint64 `json:"max"`
}

// NewIDRange derives the range from the codec and the name length bounds.
//
// Min is the id of minLen repetitions of the lowest plain symbol ("AAA"),
// Max the id of maxLen repetitions of the highest symbol. The bounds must
// be the same ones rule 1 of the rule chain enforces.
func NewIDRange(codec *numeral.Codec, minLen, maxLen int) (IDRange, error) {
	if minLen < 1 || maxLen < minLen || maxLen > codec.MaxLen() {
		return IDRange{}, ErrInvalidArgument.WithDetails(
			fmt.Sprintf("length bounds [%d, %d] outside codec limit %d", minLen, maxLen, codec.MaxLen()))
	}

	a := codec.Alphabet()
	lo, err := codec.Encode(strings.Repeat(string(a.FirstPlain()), minLen))
	if err != nil {
		return IDRange{}, err
	}
	hi, err := codec.Encode(strings.Repeat(string(a.Max()), maxLen))
	if err != nil {
		return IDRange{}, err
	}

	return IDRange{Min: lo, Max: hi}, nil
}

// Contains reports whether id lies within the range.
func (r IDRange) Contains(id uint64) bool {
	return id >= r.Min && id <= r.Max
}

// Validate returns ErrIDOutOfRange if id lies outside the range.
func (r IDRange) Validate(id uint64) error {
	if !r.Contains(id) {
		return ErrIDOutOfRange.WithDetails(fmt.Sprintf("%d not in [%d, %d]", id, r.Min, r.Max))
	}
	return nil
}
