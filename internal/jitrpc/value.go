// Package jitrpc realizes the eval-jit collaborator (spec §6): given an
// imperative module, produce the TopEnv delta binding each top-level
// definition to a runtime Atom. Two Executors are provided: Local, an
// in-process interpreter suitable for a REPL running against its own
// process, and Remote, a gRPC client that ships the same evaluation to an
// out-of-process codegen service via dynamically-described protobuf
// messages — no .pb.go stubs are generated ahead of time; the wire schema
// is parsed from an in-memory .proto source at dial time.
package jitrpc

import (
	"fmt"

	"github.com/dex-lang/dexcore/internal/dexir"
)

// Value is a realized runtime value, the codomain of load-atom-val.
type Value interface {
	valueKind()
	String() string
}

type IntVal struct{ V int64 }

func (IntVal) valueKind()      {}
func (v IntVal) String() string { return fmt.Sprintf("%d", v.V) }

type FloatVal struct{ V float64 }

func (FloatVal) valueKind()      {}
func (v FloatVal) String() string { return fmt.Sprintf("%g", v.V) }

type BoolVal struct{ V bool }

func (BoolVal) valueKind()      {}
func (v BoolVal) String() string { return fmt.Sprintf("%t", v.V) }

// ClosureVal is a lambda's runtime realization: its parameter, its
// captured environment at the point of closure creation, and its body
// statements, ready to be applied by Local's interpreter.
type ClosureVal struct {
	Param    string
	Captures map[string]Value
	Body     *dexir.ImpModule
}

func (ClosureVal) valueKind() {}
func (c ClosureVal) String() string {
	return fmt.Sprintf("<closure \\%s -> ...>", c.Param)
}
