package runtime

import (
	"github.com/panyam/coredsl/decl"
)

// EvaluationContext carries the state of one constant evaluation request:
// the definition effective values are resolved against, a memo of declarator
// values and the set of nodes currently being evaluated.  A context is
// owned by a single caller and must not be shared between goroutines.
type EvaluationContext struct {
	// The instruction set or core against which state is resolved.  May be
	// nil in which case declarators evaluate to their own initializers.
	Definition decl.Definition

	// Optional hint for the type the caller expects.  Folding does not
	// consult it; it is passed down to child contexts for callers.
	ExpectedType *decl.DataType

	parent            *EvaluationContext
	values            map[*decl.Declarator]*decl.Value
	alreadyEvaluating map[decl.Node]bool
}

func NewEvaluationContext(def decl.Definition) *EvaluationContext {
	return &EvaluationContext{
		Definition:        def,
		values:            map[*decl.Declarator]*decl.Value{},
		alreadyEvaluating: map[decl.Node]bool{},
	}
}

// Parent returns the context this one was derived from.
func (c *EvaluationContext) Parent() *EvaluationContext { return c.parent }

// Child derives a context for a nested evaluation.  The child sees the
// values and the in-progress set of all its ancestors but records new values
// only in itself.
func (c *EvaluationContext) Child() *EvaluationContext {
	out := NewEvaluationContext(c.Definition)
	out.parent = c
	out.ExpectedType = c.ExpectedType
	return out
}

// WithExpectedType derives a child context carrying a type hint.
func (c *EvaluationContext) WithExpectedType(t *decl.DataType) *EvaluationContext {
	out := c.Child()
	out.ExpectedType = t
	return out
}

// GetValue returns the memoized value of a declarator.
func (c *EvaluationContext) GetValue(d *decl.Declarator) (*decl.Value, bool) {
	for curr := c; curr != nil; curr = curr.parent {
		if v, ok := curr.values[d]; ok {
			return v, true
		}
	}
	return nil, false
}

// NewValue memoizes v as the value of d and returns it.
func (c *EvaluationContext) NewValue(d *decl.Declarator, v *decl.Value) *decl.Value {
	c.values[d] = v
	return v
}

// CacheSize is the number of values memoized directly in this context.
func (c *EvaluationContext) CacheSize() int { return len(c.values) }

func (c *EvaluationContext) isEvaluating(n decl.Node) bool {
	for curr := c; curr != nil; curr = curr.parent {
		if curr.alreadyEvaluating[n] {
			return true
		}
	}
	return false
}

func (c *EvaluationContext) beginEvaluating(n decl.Node) { c.alreadyEvaluating[n] = true }

func (c *EvaluationContext) endEvaluating(n decl.Node) { delete(c.alreadyEvaluating, n) }
