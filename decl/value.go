package decl

import (
	"fmt"
	"math/big"
	"strconv"
)

// Value is a compile-time constant: a static type and an optional payload.
// The payload is one of *IntegerWithRadix, *DecimalWithSize, *big.Int,
// float64 or int64.  Values are never mutated after construction.
type Value struct {
	Type  *DataType
	Value any // The underlying Go value
}

func NewValue(t *DataType, v any) *Value {
	return &Value{Type: t, Value: v}
}

// IntValue wraps an arbitrary precision integer.
func IntValue(t *DataType, v *big.Int) *Value { return &Value{Type: t, Value: v} }

// FloatValue wraps a native float.
func FloatValue(t *DataType, v float64) *Value { return &Value{Type: t, Value: v} }

// BoolValue returns a bool typed value with payload 1 or 0.
func BoolValue(b bool) *Value {
	if b {
		return &Value{Type: BoolType, Value: int64(1)}
	}
	return &Value{Type: BoolType, Value: int64(0)}
}

// IsNil returns true if the value only carries a type.
func (v *Value) IsNil() bool {
	return v == nil || v.Value == nil
}

// BigInt unwraps integer payloads.
func (v *Value) BigInt() (*big.Int, bool) {
	if v == nil {
		return nil, false
	}
	switch p := v.Value.(type) {
	case *IntegerWithRadix:
		return p.Int(), true
	case *big.Int:
		return new(big.Int).Set(p), true
	case int64:
		return big.NewInt(p), true
	}
	return nil, false
}

// Float unwraps floating point payloads.
func (v *Value) Float() (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch p := v.Value.(type) {
	case *DecimalWithSize:
		return p.Value, true
	case float64:
		return p, true
	}
	return 0, false
}

// Int64 returns the payload as an int64 when it is an integer that fits.
func (v *Value) Int64() (int64, bool) {
	i, ok := v.BigInt()
	if !ok || !i.IsInt64() {
		return 0, false
	}
	return i.Int64(), true
}

// IsTrue reports whether the payload compares unequal to zero.  known is
// false when there is no numeric payload to compare.
func (v *Value) IsTrue() (truth bool, known bool) {
	if i, ok := v.BigInt(); ok {
		return i.Sign() != 0, true
	}
	if f, ok := v.Float(); ok {
		return f != 0, true
	}
	return false, false
}

func (v *Value) String() string {
	if v == nil {
		return "<not constant>"
	}
	payload := "?"
	if i, ok := v.BigInt(); ok {
		payload = i.String()
	} else if f, ok := v.Float(); ok {
		payload = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprintf("%s (%s)", payload, v.Type)
}
