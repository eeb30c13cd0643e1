package numeral

import (
	"errors"
	"strings"
	"testing"
)

func TestNewAlphabet(t *testing.T) {
	tests := []struct {
		name    string
		symbols string
		wantErr error
	}{
		{"standard", ".-ABC", nil},
		{"no hyphen", ".ABC", nil},
		{"too small", ".", ErrAlphabetTooSmall},
		{"separator not first", "A.BC", ErrSeparatorNotFirst},
		{"hyphen not second", ".A-B", ErrHyphenNotSecond},
		{"duplicate", ".ABA", ErrDuplicateSymbol},
		{"non ascii", ".Aé", ErrAlphabetNotASCII},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAlphabet(tt.name, tt.symbols)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("NewAlphabet() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewAlphabet() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAlphabet_Predefined(t *testing.T) {
	if Standard.Base() != 38 {
		t.Errorf("Standard.Base() = %d, want 38", Standard.Base())
	}
	if Legacy.Base() != 37 {
		t.Errorf("Legacy.Base() = %d, want 37", Legacy.Base())
	}
	if !Standard.SupportsHyphen() {
		t.Error("Standard should support hyphen")
	}
	if Legacy.SupportsHyphen() {
		t.Error("Legacy should not support hyphen")
	}
	if Standard.Value('.') != 0 || Standard.Value('-') != 1 || Standard.Value('A') != 2 {
		t.Error("Standard digit values are out of order")
	}
	if Standard.Value('a') != -1 {
		t.Error("lowercase should not be part of Standard")
	}
	if Standard.Value('あ') != -1 {
		t.Error("non-ASCII should not be part of Standard")
	}
	if Standard.FirstPlain() != 'A' || Legacy.FirstPlain() != 'A' {
		t.Error("FirstPlain() should be 'A'")
	}
	if Standard.Max() != '9' {
		t.Errorf("Standard.Max() = %q, want '9'", Standard.Max())
	}

	for _, name := range []string{"standard", "legacy"} {
		if _, ok := ByName(name); !ok {
			t.Errorf("ByName(%q) not found", name)
		}
	}
	if _, ok := ByName("base64"); ok {
		t.Error("ByName(base64) should not be found")
	}
}

func TestCodec_MaxLen(t *testing.T) {
	if got := NewCodec(Standard).MaxLen(); got != 12 {
		t.Errorf("Standard MaxLen() = %d, want 12", got)
	}
	if got := NewCodec(Legacy).MaxLen(); got != 12 {
		t.Errorf("Legacy MaxLen() = %d, want 12", got)
	}
}

func TestCodec_Vectors(t *testing.T) {
	tests := []struct {
		name     string
		alphabet *Alphabet
		token    string
		id       uint64
	}{
		{"legacy single", Legacy, "A", 1},
		{"legacy AAA", Legacy, "AAA", 1407},
		{"legacy BTC", Legacy, "BTC", 3481},
		{"standard AAA", Standard, "AAA", 2966},
		{"standard BTC", Standard, "BTC", 5134},
		{"standard ART", Standard, "ART", 3631},
		{"standard subtoken", Standard, "ABC.DEFGH", 9050885535637},
		{"standard idn", Standard, "XN--CQV902D", 159438013446377937},
		{"standard all Z", Standard, "ZZZZZZZZZZZZ", 6615538473766618305},
		{"standard max", Standard, "999999999999", 9065737908494995455},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCodec(tt.alphabet)

			id, err := c.Encode(tt.token)
			if err != nil {
				t.Fatalf("Encode(%q) error = %v", tt.token, err)
			}
			if id != tt.id {
				t.Errorf("Encode(%q) = %d, want %d", tt.token, id, tt.id)
			}

			if got := c.Decode(tt.id); got != tt.token {
				t.Errorf("Decode(%d) = %q, want %q", tt.id, got, tt.token)
			}
		})
	}
}

func TestCodec_Decode_Zero(t *testing.T) {
	if got := NewCodec(Standard).Decode(0); got != "" {
		t.Errorf("Decode(0) = %q, want empty", got)
	}
	if id, _ := NewCodec(Standard).Encode(""); id != 0 {
		t.Errorf("Encode(\"\") = %d, want 0", id)
	}
}

func TestCodec_Decode_NoLeadingSeparator(t *testing.T) {
	c := NewCodec(Standard)
	for id := uint64(1); id < 60000; id++ {
		name := c.Decode(id)
		if name[0] == Separator {
			t.Fatalf("Decode(%d) = %q starts with separator", id, name)
		}
		back, err := c.Encode(name)
		if err != nil {
			t.Fatalf("Encode(%q) error = %v", name, err)
		}
		if back != id {
			t.Fatalf("Encode(Decode(%d)) = %d", id, back)
		}
	}
}

func TestCodec_Encode_Errors(t *testing.T) {
	c := NewCodec(Standard)

	if _, err := c.Encode("abc"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("Encode(abc) error = %v, want ErrUnknownSymbol", err)
	}
	if _, err := c.Encode("A_B"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("Encode(A_B) error = %v, want ErrUnknownSymbol", err)
	}
	if _, err := c.Encode(strings.Repeat("A", 13)); !errors.Is(err, ErrTooLong) {
		t.Errorf("Encode(13 symbols) error = %v, want ErrTooLong", err)
	}
	if _, err := NewCodec(Legacy).Encode("XN--A"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("Legacy Encode(XN--A) error = %v, want ErrUnknownSymbol", err)
	}
}

func TestCodec_MaxID(t *testing.T) {
	c := NewCodec(Standard)
	if got := c.MaxID(); got != 9065737908494995455 {
		t.Errorf("MaxID() = %d, want 9065737908494995455", got)
	}
	if got := c.MustEncode("999999999999"); got != c.MaxID() {
		t.Errorf("MustEncode(max name) = %d, want %d", got, c.MaxID())
	}
}

func TestCodec_Monotonic(t *testing.T) {
	c := NewCodec(Standard)
	symbols := Standard.Symbols()

	var prev uint64
	for i := 2; i < len(symbols); i++ {
		name := "AB" + string(symbols[i])
		id := c.MustEncode(name)
		if i > 2 && id <= prev {
			t.Fatalf("Encode(%q) = %d, not greater than %d", name, id, prev)
		}
		prev = id
	}
}
