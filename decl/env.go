package decl

import (
	"fmt"
	"strings"
)

// References to values
type Ref[T any] struct {
	Value T
}

// Env[T] is one level of a lexical scope.  Names are kept in insertion order
// so that listing a scope is deterministic.  Lookups fall through to the
// 'outer' environment.
type Env[T any] struct {
	store map[string]*Ref[T]
	order []string
	outer *Env[T]
}

// NewEnv[T] creates a new environment nested within an outer one.
// If outer is nil then returns a fresh top-level environment.
func NewEnv[T any](outer *Env[T]) *Env[T] {
	s := make(map[string]*Ref[T])
	return &Env[T]{store: s, outer: outer}
}

// Outer returns the enclosing environment or nil.
func (e *Env[T]) Outer() *Env[T] { return e.outer }

// GetRef retrieves a value by name. It checks the current environment first,
// then recursively checks outer environments.
func (e *Env[T]) GetRef(name string) *Ref[T] {
	ref, ok := e.store[name]
	if (!ok || ref == nil) && e.outer != nil {
		ref = e.outer.GetRef(name)
	}
	return ref
}

func (e *Env[T]) Get(name string) (out T, found bool) {
	ref := e.GetRef(name)
	if ref != nil {
		out = ref.Value
		found = true
	}
	return
}

// Set creates or replaces the binding in this level.
func (e *Env[T]) Set(key string, value T) {
	if _, ok := e.store[key]; !ok {
		e.order = append(e.order, key)
	}
	e.store[key] = &Ref[T]{Value: value}
}

// Add binds key only if this level does not already have it.  Returns false
// if the key was already bound.
func (e *Env[T]) Add(key string, value T) bool {
	if _, ok := e.store[key]; ok {
		return false
	}
	e.Set(key, value)
	return true
}

// Push creates a child environment.
func (e *Env[T]) Push() *Env[T] {
	return NewEnv(e)
}

// Depth is the number of levels including this one.
func (e *Env[T]) Depth() int {
	d := 0
	for curr := e; curr != nil; curr = curr.outer {
		d++
	}
	return d
}

// String representation for debugging
func (e *Env[T]) String() string {
	return fmt.Sprintf("Env{%s, outer: %v}", strings.Join(e.order, ", "), e.outer != nil)
}

// Keys returns all keys in this environment (not including outer environments)
func (e *Env[T]) Keys() []string {
	return append([]string(nil), e.order...)
}

// Visible returns the names visible from this level, innermost first, with
// shadowed names listed once.
func (e *Env[T]) Visible() (out []string) {
	seen := map[string]bool{}
	for curr := e; curr != nil; curr = curr.outer {
		for _, k := range curr.order {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return
}
