// Package numeral provides the positional numeral system used to translate
// between 64-bit token ids and token names.
//
// An Alphabet is an ordered set of distinct ASCII symbols; a symbol's
// position is its digit value and the alphabet length is the base. The
// Codec built on an Alphabet treats a name as a base-B numeral, most
// significant symbol first:
//
//	id("ABC") = digit('A')*B^2 + digit('B')*B + digit('C')
//
// Two alphabets are predefined:
//
//   - Standard: 38 symbols, '.', '-', 'A'-'Z', '0'-'9'
//   - Legacy:   37 symbols, '.', 'A'-'Z', '0'-'9'
//
// Encode and Decode are inverse for names whose leading symbol is not the
// zero-valued symbol. They are not inverse over the full uint64 range.
// Both are pure and safe for concurrent use.
package numeral
