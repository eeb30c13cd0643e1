package domain

import (
	"errors"
	"slices"
	"testing"

	"github.com/yndnr/artifact-go/pkg/numeral"
)

func TestNewNaming_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NamingConfig)
	}{
		{"nil alphabet", func(c *NamingConfig) { c.Alphabet = nil }},
		{"root longer than min", func(c *NamingConfig) { c.MinRootLength = 4 }},
		{"lowercase reserved", func(c *NamingConfig) { c.Reserved = []string{"btc"} }},
		{"empty reserved", func(c *NamingConfig) { c.Reserved = []string{""} }},
		{"comma joined reserved", func(c *NamingConfig) { c.Reserved = []string{"BTC,ART,XYZ"} }},
		{"reserved outside alphabet", func(c *NamingConfig) {
			c.Alphabet = numeral.Legacy
			c.Reserved = []string{"XN--ABC"}
		}},
		{"max beyond codec", func(c *NamingConfig) { c.MaxLength = 13 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultNamingConfig()
			tt.mutate(&cfg)
			if _, err := NewNaming(cfg); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("NewNaming() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestNaming_ConfigIsCopied(t *testing.T) {
	cfg := DefaultNamingConfig()
	n := MustNaming(cfg)

	cfg.Reserved[0] = "XYZ"
	if err := n.Validate("BTC"); !errors.Is(err, ErrReservedName) {
		t.Fatalf("caller mutation leaked into naming: %v", err)
	}

	got := n.Config()
	got.Reserved[0] = "XYZ"
	if err := n.Validate("BTC"); !errors.Is(err, ErrReservedName) {
		t.Fatalf("Config() mutation leaked into naming: %v", err)
	}
}

func TestNaming_DefaultReservedAlwaysApply(t *testing.T) {
	tests := []struct {
		name     string
		reserved []string
		want     []string
	}{
		{"nil", nil, []string{"BTC", "ART"}},
		{"empty", []string{}, []string{"BTC", "ART"}},
		{"extra only", []string{"FOO"}, []string{"BTC", "ART", "FOO"}},
		{"duplicates", []string{"ART", "FOO", "FOO"}, []string{"BTC", "ART", "FOO"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultNamingConfig()
			cfg.Reserved = tt.reserved
			n, err := NewNaming(cfg)
			if err != nil {
				t.Fatalf("NewNaming() error = %v", err)
			}

			for _, name := range append([]string{"BTC.XYZAB", "ART"}, tt.want...) {
				if err := n.Validate(name); !errors.Is(err, ErrReservedName) {
					t.Errorf("Validate(%q) = %v, want ErrReservedName", name, err)
				}
			}
			if got := n.Config().Reserved; !slices.Equal(got, tt.want) {
				t.Errorf("Config().Reserved = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRuleChain_DefaultReserved(t *testing.T) {
	cfg := DefaultNamingConfig()
	cfg.Reserved = nil
	if err := NewRuleChain(cfg).Validate("BTC"); !errors.Is(err, ErrReservedName) {
		t.Errorf("Validate(BTC) = %v, want ErrReservedName", err)
	}
}

func TestNaming_NameForID(t *testing.T) {
	n := MustNaming(DefaultNamingConfig())

	tests := []struct {
		name    string
		id      uint64
		want    string
		wantErr *DomainError
	}{
		{"zero", 0, "", ErrIDOutOfRange},
		{"below min", 2965, "", ErrIDOutOfRange},
		{"min", 2966, "AAA", nil},
		{"max", 9065737908494995455, "999999999999", nil},
		{"above max", 9065737908494995456, "", ErrIDOutOfRange},
		{"reserved BTC", 5134, "", ErrReservedName},
		{"reserved ART", 3631, "", ErrReservedName},
		{"subtoken", 9050885535637, "ABC.DEFGH", nil},
		{"idn", 159438013446377937, "XN--CQV902D", nil},
		{"trailing hyphen", 112709, "", ErrIllegalHyphenUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.NameForID(tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NameForID(%d) error = %v, want %v", tt.id, err, tt.wantErr)
				}
				if got != "" {
					t.Errorf("NameForID(%d) = %q on error, want empty", tt.id, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NameForID(%d) error = %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("NameForID(%d) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestNaming_IDForName(t *testing.T) {
	n := MustNaming(DefaultNamingConfig())

	id, err := n.IDForName("ABC.DEFGH")
	if err != nil {
		t.Fatalf("IDForName() error = %v", err)
	}
	if id != 9050885535637 {
		t.Errorf("IDForName(ABC.DEFGH) = %d, want 9050885535637", id)
	}

	if _, err := n.IDForName("BTC"); !errors.Is(err, ErrReservedName) {
		t.Errorf("IDForName(BTC) error = %v, want ErrReservedName", err)
	}
}

func TestNaming_EncodeRaw(t *testing.T) {
	n := MustNaming(DefaultNamingConfig())

	tests := []struct {
		name    string
		want    uint64
		wantErr error
	}{
		{"BTC", 5134, nil},
		{"-AB", 1523, nil},
		{"ABCDEFGHIJKLM", 0, ErrNameTooLong},
		{"A$C", 0, ErrUnknownSymbol},
		{"abc", 0, ErrUnknownSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := n.EncodeRaw(tt.name)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("EncodeRaw(%q) error = %v, want %v", tt.name, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodeRaw(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("EncodeRaw(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestNaming_RoundTrip(t *testing.T) {
	n := MustNaming(DefaultNamingConfig())

	for _, name := range []string{"AAA", "ABC.DEFGH", "XN--CQV902D", "ZZZZZZZZZZZZ", "A1B2C3", "XYZ.12345"} {
		id, err := n.IDForName(name)
		if err != nil {
			t.Fatalf("IDForName(%q) error = %v", name, err)
		}
		got, err := n.NameForID(id)
		if err != nil {
			t.Fatalf("NameForID(%d) error = %v", id, err)
		}
		if got != name {
			t.Errorf("round trip %q -> %d -> %q", name, id, got)
		}
	}
}

func TestNaming_Legacy(t *testing.T) {
	cfg := DefaultNamingConfig()
	cfg.Alphabet = numeral.Legacy
	n := MustNaming(cfg)

	if got := n.IDRange().Min; got != 1407 {
		t.Errorf("IDRange().Min = %d, want 1407", got)
	}

	name, err := n.NameForID(1407)
	if err != nil || name != "AAA" {
		t.Fatalf("NameForID(1407) = %q, %v, want AAA", name, err)
	}

	// the legacy alphabet has no hyphen, so IDN names are rejected
	// before encoding.
	if _, err := n.IDForName("XN--CQV902D"); err == nil {
		t.Fatal("IDForName(XN--CQV902D) on legacy alphabet succeeded")
	}
}
