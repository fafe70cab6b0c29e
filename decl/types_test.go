package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "INTEGRAL_SIGNED 32", SignedType(32).String())
	assert.Equal(t, "INTEGRAL_UNSIGNED 8", UnsignedType(8).String())
	assert.Equal(t, "FLOAT 64", FloatType(64).String())
	assert.Equal(t, "VOID 0", VoidType.String())
	assert.Equal(t, "COMPOSITE 0", CompositeType().String())
	var nilType *DataType
	assert.Equal(t, "undefined", nilType.String())
}

func TestDataTypeEquals(t *testing.T) {
	assert.True(t, SignedType(32).Equals(SignedType(32)))
	assert.False(t, SignedType(32).Equals(UnsignedType(32)))
	assert.False(t, SignedType(32).Equals(SignedType(16)))
	assert.True(t, BoolType.Equals(SignedType(1)))
	assert.False(t, SignedType(1).Equals(nil))
	assert.True(t, IntegralType(true, 5).Equals(UnsignedType(5)))
	assert.True(t, IntegralType(false, 5).Equals(SignedType(5)))
}

func TestDataTypePredicates(t *testing.T) {
	assert.True(t, SignedType(1).IsIntegral())
	assert.True(t, UnsignedType(64).IsIntegral())
	assert.False(t, SignedType(0).IsIntegral())
	assert.False(t, FloatType(32).IsIntegral())
	assert.False(t, VoidType.IsIntegral())
	assert.True(t, FloatType(32).IsFloat())
	assert.False(t, SignedType(32).IsFloat())
}

func TestIsComparable(t *testing.T) {
	tests := []struct {
		name        string
		left, right *DataType
		expected    bool
	}{
		{"same signed", SignedType(8), SignedType(32), true},
		{"same unsigned", UnsignedType(8), UnsignedType(8), true},
		{"mixed signedness", SignedType(8), UnsignedType(8), false},
		{"floats", FloatType(32), FloatType(64), true},
		{"zero width", SignedType(0), SignedType(8), false},
		{"void", VoidType, VoidType, false},
		{"nil", nil, SignedType(8), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsComparable(tt.left, tt.right))
		})
	}
}
