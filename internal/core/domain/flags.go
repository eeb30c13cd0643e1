// Package domain defines the core domain model for token naming.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Flags is the administrative bitmask attached to a token record.
// It is persisted as a plain integer.
type Flags uint32

// Recognized flag bits. Other bits are reserved and preserved as-is.
const (
	// FlagLocked marks a token whose issuance is locked.
	FlagLocked Flags = 1 << iota

	// FlagNamespace marks a token that owns its subtoken namespace.
	FlagNamespace
)

// KnownFlags is the set of recognized bits.
const KnownFlags = FlagLocked | FlagNamespace

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagLocked, "LOCKED"},
	{FlagNamespace, "NAMESPACE"},
}

// Has reports whether all bits of o are set.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

// With returns f with the bits of o set.
func (f Flags) With(o Flags) Flags {
	return f | o
}

// Without returns f with the bits of o cleared.
func (f Flags) Without(o Flags) Flags {
	return f &^ o
}

// Known returns only the recognized bits.
func (f Flags) Known() Flags {
	return f & KnownFlags
}

// Reserved returns only the unrecognized bits.
func (f Flags) Reserved() Flags {
	return f &^ KnownFlags
}

// String returns the flags as "LOCKED|NAMESPACE", with reserved bits in hex.
func (f Flags) String() string {
	if f == 0 {
		return "NONE"
	}

	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if r := f.Reserved(); r != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(r)))
	}
	return strings.Join(parts, "|")
}

// ParseUint parses s as a decimal number, or as hexadecimal when it carries
// a 0x or 0X prefix. Leading zeros stay decimal.
func ParseUint(s string, bitSize int) (uint64, error) {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return strconv.ParseUint(s[2:], 16, bitSize)
	}
	return strconv.ParseUint(s, 10, bitSize)
}

// ParseFlags parses either an integer ("3", "0x2") or a list of flag names
// separated by '|' or ',' ("locked,namespace"). The empty string and
// "NONE" parse to 0.
func ParseFlags(s string) (Flags, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return 0, nil
	}

	if n, err := ParseUint(s, 32); err == nil {
		return Flags(n), nil
	}

	var f Flags
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		matched := false
		for _, fn := range flagNames {
			if strings.EqualFold(part, fn.name) {
				f |= fn.flag
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		n, err := ParseUint(part, 32)
		if err != nil {
			return 0, ErrInvalidFlags.WithDetails(fmt.Sprintf("unknown flag %q", part))
		}
		f |= Flags(n)
	}
	return f, nil
}
