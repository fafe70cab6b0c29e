package decl

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Signedness of an integer literal.  Sized hardware literals (8'hFF) carry no
// signedness of their own.
type Signedness int

const (
	SignednessUndef Signedness = iota
	SignednessSigned
	SignednessUnsigned
)

func (s Signedness) String() string {
	switch s {
	case SignednessSigned:
		return "SIGNED"
	case SignednessUnsigned:
		return "UNSIGNED"
	}
	return "UNDEF"
}

const defaultIntegerWidth = 32

// IntegerWithRadix is a parsed integer literal: an arbitrary precision value
// tagged with the radix it was written in and its declared bit size.
type IntegerWithRadix struct {
	value      *big.Int
	Radix      int
	Size       int
	Signedness Signedness
}

func NewIntegerWithRadix(v *big.Int, radix, size int, signedness Signedness) *IntegerWithRadix {
	return &IntegerWithRadix{value: new(big.Int).Set(v), Radix: radix, Size: size, Signedness: signedness}
}

// Int returns a copy of the literal's value.
func (i *IntegerWithRadix) Int() *big.Int { return new(big.Int).Set(i.value) }

func (i *IntegerWithRadix) String() string { return i.value.String() }

// ParseInteger parses C style (`0x1F`, `0b101`, `017`, `42u`, `7ll`) and
// Verilog style (`8'hFF`, `3'b101`, `32'd5`) integer literals.
func ParseInteger(text string) (*IntegerWithRadix, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("couldn't convert empty string to an integer value")
	}
	if strings.Contains(text, "'") {
		return parseVerilogInteger(text)
	}
	return parseCInteger(text)
}

func parseVerilogInteger(text string) (*IntegerWithRadix, error) {
	sizeStr, rest, _ := strings.Cut(text, "'")
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("invalid size in literal %q", text)
	}
	lower := strings.ToLower(rest)
	if strings.ContainsAny(lower, "ul") {
		return nil, fmt.Errorf("Verilog literals cannot have 'u' and 'l' suffixes: %q", text)
	}
	radix := 10
	digits := lower
	if len(lower) > 0 {
		switch lower[0] {
		case 'h':
			radix, digits = 16, lower[1:]
		case 'b':
			radix, digits = 2, lower[1:]
		case 'o':
			radix, digits = 8, lower[1:]
		case 'd':
			radix, digits = 10, lower[1:]
		}
	}
	v, err := parseDigits(strings.ReplaceAll(digits, "_", ""), radix)
	if err != nil {
		return nil, fmt.Errorf("invalid literal %q: %w", text, err)
	}
	return &IntegerWithRadix{value: v, Radix: radix, Size: size, Signedness: SignednessUndef}, nil
}

func parseCInteger(text string) (*IntegerWithRadix, error) {
	signedness := SignednessSigned
	if strings.ContainsAny(text, "uU") {
		signedness = SignednessUnsigned
	}
	s := strings.ToLower(strings.NewReplacer("u", "", "U", "").Replace(text))
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
		signedness = SignednessSigned
	}

	size := defaultIntegerWidth
	if strings.HasSuffix(s, "ll") {
		size, s = 128, s[:len(s)-2]
	} else if strings.HasSuffix(s, "l") {
		size, s = 64, s[:len(s)-1]
	}

	radix, digits := 10, s
	if strings.HasPrefix(s, "0x") {
		radix, digits = 16, s[2:]
	} else if strings.HasPrefix(s, "0b") {
		radix, digits = 2, s[2:]
	} else if len(s) > 1 && strings.HasPrefix(s, "0") {
		radix, digits = 8, s[1:]
	}
	v, err := parseDigits(digits, radix)
	if err != nil {
		return nil, fmt.Errorf("invalid literal %q: %w", text, err)
	}
	if needed := v.BitLen(); needed > size {
		size = needed
	}
	if negative {
		v.Neg(v)
	}
	return &IntegerWithRadix{value: v, Radix: radix, Size: size, Signedness: signedness}, nil
}

func parseDigits(digits string, radix int) (*big.Int, error) {
	if digits == "" {
		return nil, fmt.Errorf("no digits")
	}
	if digits[0] == '+' || digits[0] == '-' {
		return nil, fmt.Errorf("signed digits %q", digits)
	}
	v, ok := new(big.Int).SetString(digits, radix)
	if !ok {
		return nil, fmt.Errorf("invalid digits %q for radix %d", digits, radix)
	}
	return v, nil
}

// DecimalWithSize is a parsed floating point literal with its declared bit size.
type DecimalWithSize struct {
	Value float64
	Size  int
}

func (d *DecimalWithSize) String() string { return strconv.FormatFloat(d.Value, 'g', -1, 64) }

// ParseDecimal parses a float literal: `1.5` (64 bit), `1.5f` (32 bit),
// `1.5l` (128 bit).  Underscores in digit groups are ignored.
func ParseDecimal(text string) (*DecimalWithSize, error) {
	if len(text) == 0 {
		return nil, fmt.Errorf("couldn't convert empty string to a float value")
	}
	s := strings.ReplaceAll(strings.ToLower(text), "_", "")
	size := 64
	if strings.HasSuffix(s, "l") {
		size, s = 128, s[:len(s)-1]
	} else if strings.HasSuffix(s, "f") {
		size, s = 32, s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid float literal %q: %w", text, err)
	}
	return &DecimalWithSize{Value: v, Size: size}, nil
}
