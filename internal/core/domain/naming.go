// Package domain defines the core domain model for token naming.
package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yndnr/artifact-go/pkg/numeral"
)

// Naming defaults.
const (
	DefaultMinLength         = 3
	DefaultMaxLength         = 12
	DefaultMinRootLength     = 3
	DefaultMinSubtokenLength = 5
	DefaultMaxSubtokenLevels = 1
	DefaultIDNPrefix         = "XN--"
)

// DefaultReserved lists the base-layer currency and the network's native
// asset. Both names and their subtokens can never be issued, whatever
// NamingConfig.Reserved holds.
var DefaultReserved = []string{"BTC", "ART"}

// NamingConfig holds every parameter of the naming scheme. The id range
// is derived from the same length bounds the rule chain checks.
type NamingConfig struct {
	Alphabet          *numeral.Alphabet
	MinLength         int
	MaxLength         int
	MinRootLength     int
	MinSubtokenLength int
	MaxSubtokenLevels int

	// Reserved names are forbidden in addition to DefaultReserved.
	Reserved  []string
	IDNPrefix string
}

// DefaultNamingConfig returns the standard 38 symbol naming scheme.
func DefaultNamingConfig() NamingConfig {
	return NamingConfig{
		Alphabet:          numeral.Standard,
		MinLength:         DefaultMinLength,
		MaxLength:         DefaultMaxLength,
		MinRootLength:     DefaultMinRootLength,
		MinSubtokenLength: DefaultMinSubtokenLength,
		MaxSubtokenLevels: DefaultMaxSubtokenLevels,
		Reserved:          append([]string(nil), DefaultReserved...),
		IDNPrefix:         DefaultIDNPrefix,
	}
}

// Naming bundles the alphabet, codec, rule chain and id range of one
// naming scheme. It is immutable and safe for concurrent use.
type Naming struct {
	cfg     NamingConfig
	codec   *numeral.Codec
	rules   *RuleChain
	idRange IDRange
}

// NewNaming validates cfg and builds the naming scheme.
func NewNaming(cfg NamingConfig) (*Naming, error) {
	if cfg.Alphabet == nil {
		return nil, ErrInvalidArgument.WithDetails("naming: alphabet is required")
	}
	if cfg.MinRootLength > cfg.MinLength {
		return nil, ErrInvalidArgument.WithDetails(
			fmt.Sprintf("naming: min root length %d exceeds min length %d", cfg.MinRootLength, cfg.MinLength))
	}
	for _, r := range cfg.Reserved {
		if err := checkReserved(cfg.Alphabet, r); err != nil {
			return nil, err
		}
	}
	cfg.Reserved = reservedNames(cfg.Reserved)

	codec := numeral.NewCodec(cfg.Alphabet)
	idRange, err := NewIDRange(codec, cfg.MinLength, cfg.MaxLength)
	if err != nil {
		return nil, err
	}

	return &Naming{
		cfg:     cfg,
		codec:   codec,
		rules:   NewRuleChain(cfg),
		idRange: idRange,
	}, nil
}

func checkReserved(a *numeral.Alphabet, name string) error {
	if name == "" || strings.ToUpper(name) != name {
		return ErrInvalidArgument.WithDetails(fmt.Sprintf("naming: reserved name %q must be uppercase", name))
	}
	for _, r := range name {
		if !a.Contains(r) {
			return ErrInvalidArgument.WithDetails(
				fmt.Sprintf("naming: reserved name %q contains %q, not in the %s alphabet", name, r, a.Name()))
		}
	}
	return nil
}

// reservedNames returns DefaultReserved followed by the extra names not
// already listed.
func reservedNames(extra []string) []string {
	out := append([]string(nil), DefaultReserved...)
	for _, name := range extra {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// MustNaming is like NewNaming but panics on error.
func MustNaming(cfg NamingConfig) *Naming {
	n, err := NewNaming(cfg)
	if err != nil {
		panic(err)
	}
	return n
}

// Config returns a copy of the naming config.
func (n *Naming) Config() NamingConfig {
	cfg := n.cfg
	cfg.Reserved = append([]string(nil), n.cfg.Reserved...)
	return cfg
}

// Codec returns the numeral codec.
func (n *Naming) Codec() *numeral.Codec {
	return n.codec
}

// Rules returns the rule chain.
func (n *Naming) Rules() *RuleChain {
	return n.rules
}

// IDRange returns the admissible id range.
func (n *Naming) IDRange() IDRange {
	return n.idRange
}

// Validate runs the rule chain on name.
func (n *Naming) Validate(name string) error {
	return n.rules.Validate(name)
}

// NameForID checks the id range, decodes the id and validates the name.
// It never touches storage.
func (n *Naming) NameForID(id uint64) (string, error) {
	if err := n.idRange.Validate(id); err != nil {
		return "", err
	}

	name := n.codec.Decode(id)
	if err := n.rules.Validate(name); err != nil {
		return "", err
	}
	return name, nil
}

// IDForName validates name and encodes it.
func (n *Naming) IDForName(name string) (uint64, error) {
	if err := n.rules.Validate(name); err != nil {
		return 0, err
	}

	return n.EncodeRaw(name)
}

// EncodeRaw encodes name without running the rule chain. Codec failures
// map to ErrNameTooLong or ErrUnknownSymbol.
func (n *Naming) EncodeRaw(name string) (uint64, error) {
	id, err := n.codec.Encode(name)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, numeral.ErrTooLong):
		return 0, ErrNameTooLong.WithCause(err)
	default:
		return 0, ErrUnknownSymbol.WithCause(err)
	}
}
