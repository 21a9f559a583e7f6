package jitrpc

import (
	"fmt"
	"sync/atomic"

	"github.com/dex-lang/dexcore/internal/topenv"
)

var atomCounter int64

// atom is the concrete topenv.Atom realized by an Executor: an opaque
// handle wrapping the Value it stands for, resolved by LoadAtomVal.
type atom struct {
	id  string
	val Value
}

func (a *atom) AtomID() string { return a.id }

func newAtom(val Value) topenv.Atom {
	id := atomic.AddInt64(&atomCounter, 1)
	return &atom{id: fmt.Sprintf("atom%d", id), val: val}
}

// NewBoolAtom realizes a boolean literal as an Atom, exported so a caller
// outside this package (cmd/dex, seeding the ambient TopEnv's built-in
// True/False constants at startup) can construct one without reaching
// into jitrpc's internals.
func NewBoolAtom(v bool) topenv.Atom {
	return newAtom(BoolVal{V: v})
}

// LoadAtomVal realizes an Atom's runtime value (spec's load-atom-val); it
// is total over Atoms produced by this package's Executors and fails for
// any foreign Atom implementation, which cannot happen in this core since
// jitrpc is the sole atom producer.
func LoadAtomVal(a topenv.Atom) (Value, error) {
	la, ok := a.(*atom)
	if !ok {
		return nil, fmt.Errorf("load-atom-val: foreign atom implementation %T", a)
	}
	return la.val, nil
}
