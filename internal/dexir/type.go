// Package dexir implements the intermediate representations the staged
// pipeline threads a source block through: FModule (front-end, pre- and
// post-deshadow), Module (core-typed, then ANF, then simplified), and
// ImpModule (imperative lowering). The individual transformations between
// them are collaborators specified only at their interfaces (spec §1); the
// small, real implementations here exist so the pipeline in
// internal/pipeline has something concrete to sequence and test.
package dexir

import "fmt"

// Type is the closed variant of Dex's (deliberately tiny) type language:
// base scalars and function types. A faithful Dex core would add typed
// index sets and array shapes; those belong to the out-of-scope type
// inference/normalization collaborators this core only calls through.
type Type interface {
	typeKind()
	String() string
}

type TInt struct{}

func (TInt) typeKind()      {}
func (TInt) String() string { return "Int" }

type TFloat struct{}

func (TFloat) typeKind()      {}
func (TFloat) String() string { return "Float" }

type TBool struct{}

func (TBool) typeKind()      {}
func (TBool) String() string { return "Bool" }

type TFun struct {
	Arg Type
	Ret Type
}

func (TFun) typeKind() {}
func (f TFun) String() string {
	return fmt.Sprintf("(%s -> %s)", f.Arg.String(), f.Ret.String())
}

// TypesEqual reports structural equality of two types.
func TypesEqual(a, b Type) bool {
	switch av := a.(type) {
	case TInt:
		_, ok := b.(TInt)
		return ok
	case TFloat:
		_, ok := b.(TFloat)
		return ok
	case TBool:
		_, ok := b.(TBool)
		return ok
	case TFun:
		bv, ok := b.(TFun)
		return ok && TypesEqual(av.Arg, bv.Arg) && TypesEqual(av.Ret, bv.Ret)
	default:
		return false
	}
}
