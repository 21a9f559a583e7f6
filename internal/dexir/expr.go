package dexir

import "fmt"

// Expr is the closed variant of expression nodes shared by the front-end
// and typed IRs. Type annotations, where present, live alongside the node
// (see Var.Type and Lam.ParamType) rather than in a parallel tree, keeping normalize
// and simplify simple tree rewrites.
type Expr interface {
	exprKind()
	String() string
}

type LitInt struct{ Value int64 }

func (LitInt) exprKind()        {}
func (l LitInt) String() string { return fmt.Sprintf("%d", l.Value) }

type LitFloat struct{ Value float64 }

func (LitFloat) exprKind()        {}
func (l LitFloat) String() string { return fmt.Sprintf("%g", l.Value) }

type LitBool struct{ Value bool }

func (LitBool) exprKind()        {}
func (l LitBool) String() string { return fmt.Sprintf("%t", l.Value) }

// Var references a bound name. Type is filled in by type-infer and read by
// every later pass; it is the empty interface value nil before inference.
// Pos is the byte offset of this occurrence within the source block's text,
// when known (frontend.parser sets it; Vars synthesized by a pass, such as
// normalize's fresh names, leave it zero) — the source add-ctx (C7) needs to
// highlight an unbound- or wrong-kind-of-name error at.
type Var struct {
	Name string
	Type Type
	Pos  int
}

func (Var) exprKind()        {}
func (v Var) String() string { return v.Name }

// Let is `let Name = Val in Body`. ANF form (post-normalize) requires Val
// to be atomic (a Var or Lit) at every non-top Let; normalize's job is to
// name every non-atomic intermediate via a chain of Lets.
type Let struct {
	Name string
	Val  Expr
	Body Expr
}

func (Let) exprKind()        {}
func (l Let) String() string { return fmt.Sprintf("(let %s = %s in %s)", l.Name, l.Val, l.Body) }

// Lam is a single-argument lambda. to-imp must never see one directly in a
// non-top position; lambdas become named top-level closures during
// imperative lowering.
type Lam struct {
	Param     string
	ParamType Type
	Body      Expr
}

func (Lam) exprKind() {}
func (l Lam) String() string {
	return fmt.Sprintf("(\\%s -> %s)", l.Param, l.Body)
}

type App struct {
	Fn  Expr
	Arg Expr
}

func (App) exprKind()        {}
func (a App) String() string { return fmt.Sprintf("(%s %s)", a.Fn, a.Arg) }

// BinOp covers the small arithmetic/comparison surface: +, -, *, <, ==.
type BinOp struct {
	Op string
	L  Expr
	R  Expr
}

func (BinOp) exprKind()        {}
func (b BinOp) String() string { return fmt.Sprintf("(%s %s %s)", b.L, b.Op, b.R) }

// IsAtomic reports whether e is already in ANF-atomic position (a variable
// or a literal): no further naming is required.
func IsAtomic(e Expr) bool {
	switch e.(type) {
	case Var, LitInt, LitFloat, LitBool:
		return true
	default:
		return false
	}
}

// FreeVars returns the free variable names of e, used by CheckFModule to
// find unbound references and by to-imp to list a lambda's captures.
func FreeVars(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	collectFreeVars(e, map[string]struct{}{}, out)
	return out
}

func collectFreeVars(e Expr, bound map[string]struct{}, out map[string]struct{}) {
	switch n := e.(type) {
	case Var:
		if _, isBound := bound[n.Name]; !isBound {
			out[n.Name] = struct{}{}
		}
	case Let:
		collectFreeVars(n.Val, bound, out)
		inner := cloneSet(bound)
		inner[n.Name] = struct{}{}
		collectFreeVars(n.Body, inner, out)
	case Lam:
		inner := cloneSet(bound)
		inner[n.Param] = struct{}{}
		collectFreeVars(n.Body, inner, out)
	case App:
		collectFreeVars(n.Fn, bound, out)
		collectFreeVars(n.Arg, bound, out)
	case BinOp:
		collectFreeVars(n.L, bound, out)
		collectFreeVars(n.R, bound, out)
	}
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
