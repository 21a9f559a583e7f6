// Package topenv implements TopEnv, the session-level binding environment:
// a mapping from fully-qualified names to typed bindings that forms a
// commutative-with-shadowing monoid under right-biased override, with
// stable insertion-order traversal.
package topenv

import (
	"strings"

	"github.com/dex-lang/dexcore/internal/dexir"
)

// Binding is a typed top-level binding: either a value binding or a type
// binding, never both — the closed variant from spec §3.
type Binding struct {
	// Type is the value's type, set when IsType is false.
	Type dexir.Type
	// Atom is the realized value's handle, set when IsType is false.
	Atom Atom
	// IsType marks this as a type binding rather than a value binding.
	IsType bool
	// TypeDef is the aliased type, set when IsType is true.
	TypeDef dexir.Type
}

// Atom is an opaque handle to a runtime value realized by a JIT/codegen
// collaborator (see internal/jitrpc). The core never inspects it directly;
// it is only threaded to load-atom-val.
type Atom interface {
	AtomID() string
}

// TopEnv is an insertion-ordered name -> Binding map. The zero value is the
// empty environment, the monoid identity.
type TopEnv struct {
	order []string
	bind  map[string]Binding
}

// New returns the empty TopEnv (the monoid identity ε).
func New() TopEnv {
	return TopEnv{}
}

// Bind1 builds a single-binding TopEnv, a convenience for pass authors.
func Bind1(name string, b Binding) TopEnv {
	return New().With(name, b)
}

// With returns a new TopEnv extending e with one more binding, overriding
// any existing binding for name in place (preserving its original position
// in traversal order — see Combine for why this matters for associativity).
func (e TopEnv) With(name string, b Binding) TopEnv {
	next := e.clone()
	if _, exists := next.bind[name]; !exists {
		next.order = append(next.order, name)
	}
	next.bind[name] = b
	return next
}

func (e TopEnv) clone() TopEnv {
	bind := make(map[string]Binding, len(e.bind)+1)
	for k, v := range e.bind {
		bind[k] = v
	}
	order := make([]string, len(e.order))
	copy(order, e.order)
	return TopEnv{order: order, bind: bind}
}

// Lookup returns the binding for name, if any.
func (e TopEnv) Lookup(name string) (Binding, bool) {
	b, ok := e.bind[name]
	return b, ok
}

// Len reports the number of distinct bindings.
func (e TopEnv) Len() int { return len(e.order) }

// Names returns the bound names in stable insertion order.
func (e TopEnv) Names() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Pretty renders a deterministic textual form of e's bindings in
// insertion order, used by named-pass to produce eval-jit's PassInfo.
func (e TopEnv) Pretty() string {
	var b strings.Builder
	for _, name := range e.order {
		bind := e.bind[name]
		if bind.IsType {
			b.WriteString("type ")
			b.WriteString(name)
			b.WriteString(" = ")
			b.WriteString(bind.TypeDef.String())
		} else {
			b.WriteString(name)
			b.WriteString(" : ")
			b.WriteString(bind.Type.String())
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Combine implements the monoid operation ⊕ (toppass.Monoid): right-biased
// override on key collision, with the combined traversal order equal to
// e's order followed by any names in other not already present in e. This
// makes Combine associative: (a⊕b)⊕c and a⊕(b⊕c) both yield a's names
// first, then b's new names, then c's new names, in that fixed relative
// order, regardless of how the combination is parenthesized. The zero
// value TopEnv{} is both operands' identity, satisfying the Monoid
// contract without a separate Identity method.
func (e TopEnv) Combine(other TopEnv) TopEnv {
	if len(e.order) == 0 {
		return other
	}
	if len(other.order) == 0 {
		return e
	}
	out := e.clone()
	for _, name := range other.order {
		if _, exists := out.bind[name]; !exists {
			out.order = append(out.order, name)
		}
		out.bind[name] = other.bind[name]
	}
	return out
}
