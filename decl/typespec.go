package decl

import (
	"fmt"
	"strings"
)

// TypeSpecifier is the syntactic type of a declaration, parameter or cast.
type TypeSpecifier interface {
	Node
	typeSpecNode()
}

type TypeSpecBase struct {
	NodeInfo
}

func (t *TypeSpecBase) typeSpecNode() {}

type BoolTypeSpecifier struct{ TypeSpecBase }

func (b *BoolTypeSpecifier) String() string { return "bool" }

type VoidTypeSpecifier struct{ TypeSpecBase }

func (v *VoidTypeSpecifier) String() string { return "void" }

// IntegerTypeSpecifier is `[signed|unsigned] (char|short|int|long)` or
// `(signed|unsigned)<size>`.
type IntegerTypeSpecifier struct {
	TypeSpecBase
	Signedness string // "", "signed" or "unsigned"
	Shorthand  string // "", "char", "short", "int", "long"
	Size       Expression
}

func (i *IntegerTypeSpecifier) IsUnsigned() bool { return i.Signedness == "unsigned" }

func (i *IntegerTypeSpecifier) String() string {
	var parts []string
	if i.Signedness != "" {
		parts = append(parts, i.Signedness)
	}
	if i.Size != nil {
		return fmt.Sprintf("%s<%s>", strings.Join(parts, " "), i.Size)
	}
	if i.Shorthand != "" {
		parts = append(parts, i.Shorthand)
	}
	return strings.Join(parts, " ")
}

type FloatTypeSpecifier struct {
	TypeSpecBase
	Shorthand string // "float" or "double"
}

func (f *FloatTypeSpecifier) String() string { return f.Shorthand }

// EnumTypeSpecifier is `enum Name`.
type EnumTypeSpecifier struct {
	TypeSpecBase
	Name string
}

func (e *EnumTypeSpecifier) String() string { return strings.TrimSpace("enum " + e.Name) }

// UserTypeSpecifier is an opaque aggregate, `struct Name` or `union Name`.
type UserTypeSpecifier struct {
	TypeSpecBase
	Kind string // "struct" or "union"
	Name string
}

func (u *UserTypeSpecifier) String() string { return fmt.Sprintf("%s %s", u.Kind, u.Name) }
