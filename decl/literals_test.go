package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInteger(t *testing.T) {
	tests := []struct {
		input      string
		value      string
		radix      int
		size       int
		signedness Signedness
	}{
		{"42", "42", 10, 32, SignednessSigned},
		{"0", "0", 10, 32, SignednessSigned},
		{"0x1F", "31", 16, 32, SignednessSigned},
		{"0X1f", "31", 16, 32, SignednessSigned},
		{"0b101", "5", 2, 32, SignednessSigned},
		{"017", "15", 8, 32, SignednessSigned},
		{"42u", "42", 10, 32, SignednessUnsigned},
		{"42U", "42", 10, 32, SignednessUnsigned},
		{"7l", "7", 10, 64, SignednessSigned},
		{"7ll", "7", 10, 128, SignednessSigned},
		{"7ull", "7", 10, 128, SignednessUnsigned},
		{"0x123456789", "4886718345", 16, 33, SignednessSigned},
		{"-5", "-5", 10, 32, SignednessSigned},
		{"8'hFF", "255", 16, 8, SignednessUndef},
		{"8'HFF", "255", 16, 8, SignednessUndef},
		{"3'b101", "5", 2, 3, SignednessUndef},
		{"6'o17", "15", 8, 6, SignednessUndef},
		{"32'd5", "5", 10, 32, SignednessUndef},
		{"12'5", "5", 10, 12, SignednessUndef},
		{"16'hdead_beef", "3735928559", 16, 16, SignednessUndef},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lit, err := ParseInteger(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.value, lit.Int().String())
			assert.Equal(t, tt.radix, lit.Radix)
			assert.Equal(t, tt.size, lit.Size)
			assert.Equal(t, tt.signedness, lit.Signedness)
		})
	}
}

func TestParseIntegerErrors(t *testing.T) {
	for _, input := range []string{"", "0x", "0b102", "08", "abc", "8'hZZ", "8'h", "'hFF", "0'h1", "8'hFFu", "8'd5l", "0x-1F", "8'h-FF", "--5"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseInteger(input)
			assert.Error(t, err)
		})
	}
}

func TestIntegerWithRadixIsImmutable(t *testing.T) {
	lit, err := ParseInteger("10")
	require.NoError(t, err)
	v := lit.Int()
	v.SetInt64(99)
	assert.Equal(t, "10", lit.String())
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input string
		value float64
		size  int
	}{
		{"1.5", 1.5, 64},
		{"1.5f", 1.5, 32},
		{"1.5F", 1.5, 32},
		{"2.25l", 2.25, 128},
		{"1_000.5", 1000.5, 64},
		{"1e3", 1000, 64},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDecimal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.value, d.Value)
			assert.Equal(t, tt.size, d.Size)
		})
	}

	_, err := ParseDecimal("")
	assert.Error(t, err)
	_, err = ParseDecimal("1.2.3")
	assert.Error(t, err)
}

func TestBitValueWidth(t *testing.T) {
	tests := []struct {
		value string
		width int
	}{
		{"0b0000000", 7},
		{"0b000", 3},
		{"0x1F", 8},
		{"5'b10101", 5},
		{"12'hFFF", 12},
		{"0", 32},
		{"zz", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.width, (&BitValue{Value: tt.value}).Width(), tt.value)
	}
}
