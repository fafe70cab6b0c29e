package decl

import (
	"fmt"
)

// TypeKind is the closed set of static type kinds.
type TypeKind int

const (
	TypeKindVoid TypeKind = iota
	TypeKindComposite
	TypeKindSigned
	TypeKindUnsigned
	TypeKindFloat
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindVoid:
		return "VOID"
	case TypeKindComposite:
		return "COMPOSITE"
	case TypeKindSigned:
		return "INTEGRAL_SIGNED"
	case TypeKindUnsigned:
		return "INTEGRAL_UNSIGNED"
	case TypeKindFloat:
		return "FLOAT"
	}
	return fmt.Sprintf("TypeKind(%d)", int(k))
}

// DataType is a resolved static type with a bit width.
type DataType struct {
	Kind  TypeKind
	Width int
}

// --- DataType Factory Functions ---

var (
	BoolType = SignedType(1)
	VoidType = &DataType{Kind: TypeKindVoid}
)

func SignedType(width int) *DataType   { return &DataType{Kind: TypeKindSigned, Width: width} }
func UnsignedType(width int) *DataType { return &DataType{Kind: TypeKindUnsigned, Width: width} }
func FloatType(width int) *DataType    { return &DataType{Kind: TypeKindFloat, Width: width} }
func CompositeType() *DataType         { return &DataType{Kind: TypeKindComposite} }

// IntegralType returns a signed or unsigned integral type of the given width.
func IntegralType(unsigned bool, width int) *DataType {
	if unsigned {
		return UnsignedType(width)
	}
	return SignedType(width)
}

// String representation of the type, eg "INTEGRAL_SIGNED 32".
func (t *DataType) String() string {
	if t == nil {
		return "undefined"
	}
	return fmt.Sprintf("%s %d", t.Kind, t.Width)
}

// Equals is structural: same kind and same width.
func (t *DataType) Equals(another *DataType) bool {
	if t == nil || another == nil {
		return t == another
	}
	return t.Kind == another.Kind && t.Width == another.Width
}

// IsIntegral holds iff the width is positive and the kind is signed or unsigned.
func (t *DataType) IsIntegral() bool {
	return t != nil && t.Width > 0 && (t.Kind == TypeKindSigned || t.Kind == TypeKindUnsigned)
}

func (t *DataType) IsFloat() bool { return t != nil && t.Kind == TypeKindFloat }

// IsComparable returns true if both types have a positive width and are
// either both floats or of identical kind.
func IsComparable(left, right *DataType) bool {
	if left == nil || right == nil {
		return false
	}
	if left.Width > 0 && right.Width > 0 {
		if left.Kind == TypeKindFloat && right.Kind == TypeKindFloat {
			return true
		}
		if left.Kind == right.Kind {
			return true
		}
	}
	return false
}
