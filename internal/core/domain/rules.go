// Package domain defines the core domain model for token naming.
package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/yndnr/artifact-go/pkg/numeral"
)

// Rule is one admissibility check of the rule chain.
//
// Valid must be deterministic and side-effect free. Err is returned when
// Valid reports false.
type Rule struct {
	Name  string
	Err   *DomainError
	Valid func(name string) bool
}

// RuleChain evaluates rules strictly in order and reports only the first
// violated rule.
type RuleChain struct {
	rules []Rule
}

// NewRuleChain builds the ordered rule set for the given naming config.
//
// Order:
//
//  1. length at least MinLength
//  2. length at most MaxLength
//  3. root segment (before the first separator) at least MinRootLength
//  4. a name with a separator at least MinSubtokenLength
//  5. at most MaxSubtokenLevels separators
//  6. no leading separator
//  7. no trailing separator
//  8. hyphens only in names with the IDN prefix, never trailing
//  9. not a reserved name or a subtoken of one
//  10. letters uppercase ASCII, or ASCII digits
//  11. letters ASCII alphanumeric
//  12. every symbol in the alphabet
//  13. IDN labels decode as punycode
func NewRuleChain(cfg NamingConfig) *RuleChain {
	alphabet := cfg.Alphabet
	sep := string(numeral.Separator)
	hyphen := string(numeral.Hyphen)
	reserved := reservedNames(cfg.Reserved)

	rules := []Rule{
		{
			Name: "min-length",
			Err:  ErrNameTooShort,
			Valid: func(name string) bool {
				return utf8.RuneCountInString(name) >= cfg.MinLength
			},
		},
		{
			Name: "max-length",
			Err:  ErrNameTooLong,
			Valid: func(name string) bool {
				return utf8.RuneCountInString(name) <= cfg.MaxLength
			},
		},
		{
			Name: "root-length",
			Err:  ErrNameTooShort,
			Valid: func(name string) bool {
				root, _, _ := strings.Cut(name, sep)
				return utf8.RuneCountInString(root) >= cfg.MinRootLength
			},
		},
		{
			Name: "subtoken-length",
			Err:  ErrSubtokenTooShort,
			Valid: func(name string) bool {
				return !strings.Contains(name, sep) || utf8.RuneCountInString(name) >= cfg.MinSubtokenLength
			},
		},
		{
			Name: "subtoken-levels",
			Err:  ErrTooManySubtokenLevels,
			Valid: func(name string) bool {
				return strings.Count(name, sep) <= cfg.MaxSubtokenLevels
			},
		},
		{
			Name: "leading-separator",
			Err:  ErrLeadingSeparator,
			Valid: func(name string) bool {
				return !strings.HasPrefix(name, sep)
			},
		},
		{
			Name: "trailing-separator",
			Err:  ErrTrailingSeparator,
			Valid: func(name string) bool {
				return !strings.HasSuffix(name, sep)
			},
		},
		{
			Name: "hyphen-usage",
			Err:  ErrIllegalHyphenUsage,
			Valid: func(name string) bool {
				if !strings.Contains(name, hyphen) {
					return true
				}
				return strings.HasPrefix(name, cfg.IDNPrefix) && !strings.HasSuffix(name, hyphen)
			},
		},
		{
			Name: "reserved",
			Err:  ErrReservedName,
			Valid: func(name string) bool {
				for _, r := range reserved {
					if name == r || strings.HasPrefix(name, r+sep) {
						return false
					}
				}
				return true
			},
		},
		{
			Name: "letter-case",
			Err:  ErrInvalidLetterCase,
			Valid: func(name string) bool {
				return allPlain(name, func(r rune) bool {
					return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
				})
			},
		},
		{
			Name: "character-class",
			Err:  ErrInvalidCharacterClass,
			Valid: func(name string) bool {
				return allPlain(name, isASCIIAlphanumeric)
			},
		},
		{
			Name: "alphabet",
			Err:  ErrUnknownSymbol,
			Valid: func(name string) bool {
				for _, r := range name {
					if !alphabet.Contains(r) {
						return false
					}
				}
				return true
			},
		},
		{
			Name: "idn-encoding",
			Err:  ErrInvalidIDNEncoding,
			Valid: func(name string) bool {
				for _, label := range strings.Split(name, sep) {
					if !strings.HasPrefix(label, cfg.IDNPrefix) {
						continue
					}
					if _, err := idna.Punycode.ToUnicode(strings.ToLower(label)); err != nil {
						return false
					}
				}
				return true
			},
		},
	}

	return &RuleChain{rules: rules}
}

// allPlain applies fn to every rune that is neither separator nor hyphen.
func allPlain(name string, fn func(rune) bool) bool {
	for _, r := range name {
		if r == numeral.Separator || r == numeral.Hyphen {
			continue
		}
		if !fn(r) {
			return false
		}
	}
	return true
}

func isASCIIAlphanumeric(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Rules returns a copy of the ordered rules.
func (c *RuleChain) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Validate returns nil if name passes every rule, otherwise the error of
// the first violated rule with the rule position and name as details.
func (c *RuleChain) Validate(name string) error {
	for i, r := range c.rules {
		if !r.Valid(name) {
			return r.Err.WithDetails(fmt.Sprintf("rule %d (%s): %q", i+1, r.Name, name))
		}
	}
	return nil
}

// RuleName returns the name of the first violated rule, or "" if name is
// admissible.
func (c *RuleChain) RuleName(name string) string {
	for _, r := range c.rules {
		if !r.Valid(name) {
			return r.Name
		}
	}
	return ""
}
