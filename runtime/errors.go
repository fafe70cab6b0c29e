package runtime

import (
	"errors"
	"fmt"

	"github.com/panyam/coredsl/decl"
)

var (
	ErrNotConstant  = errors.New("expression is not a compile-time constant")
	ErrNoType       = errors.New("expression has no type")
	ErrNoDefinition = errors.New("no enclosing instruction set or core")
	ErrNotFound     = errors.New("declarator not found")
)

// notConstant wraps ErrNotConstant with the offending node and its position.
func notConstant(n decl.Node) error {
	return fmt.Errorf("%s: '%s': %w", n.Pos().LineColStr(), n, ErrNotConstant)
}
