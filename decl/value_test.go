package decl

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuePayloads(t *testing.T) {
	lit, _ := ParseInteger("0x10")
	v := NewValue(SignedType(32), lit)
	i, ok := v.BigInt()
	assert.True(t, ok)
	assert.Equal(t, int64(16), i.Int64())
	_, ok = v.Float()
	assert.False(t, ok)

	f := FloatValue(FloatType(64), 2.5)
	fv, ok := f.Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, fv)

	n := NewValue(SignedType(32), nil)
	assert.True(t, n.IsNil())
	_, ok = n.BigInt()
	assert.False(t, ok)
}

func TestValueTruth(t *testing.T) {
	truth, known := BoolValue(true).IsTrue()
	assert.True(t, known)
	assert.True(t, truth)

	truth, known = IntValue(SignedType(8), big.NewInt(0)).IsTrue()
	assert.True(t, known)
	assert.False(t, truth)

	_, known = NewValue(SignedType(8), nil).IsTrue()
	assert.False(t, known)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "89 (INTEGRAL_SIGNED 32)", IntValue(SignedType(32), big.NewInt(89)).String())
	assert.Equal(t, "? (INTEGRAL_SIGNED 0)", NewValue(SignedType(0), nil).String())
	var v *Value
	assert.Equal(t, "<not constant>", v.String())
}

func TestValueInt64(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	_, ok := IntValue(SignedType(128), huge).Int64()
	assert.False(t, ok)
	x, ok := IntValue(SignedType(8), big.NewInt(-3)).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(-3), x)
}
