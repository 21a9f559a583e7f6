package passes

import (
	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// Simplify performs two local rewrites over an ANF module: constant-folds
// a BinOp whose operands are both literals, and inlines `let x = v in body`
// when v is itself atomic (a variable or a literal), replacing every
// occurrence of x in body with v directly. Both rewrites preserve ANF: the
// first can only shrink a Let's Val to a literal (still atomic), and the
// second removes a Let outright rather than reintroducing non-atomic Vals.
func Simplify(env topenv.TopEnv, in *dexir.Module) (*dexir.Module, *diagnostics.Err) {
	out := &dexir.Module{}
	for _, d := range in.Defs {
		out.Defs = append(out.Defs, dexir.TypedDef{Name: d.Name, Type: d.Type, Body: simplifyExpr(d.Body)})
	}
	return out, nil
}

func simplifyExpr(e dexir.Expr) dexir.Expr {
	switch n := e.(type) {
	case dexir.Let:
		val := simplifyExpr(n.Val)
		if dexir.IsAtomic(val) {
			return simplifyExpr(substitute(n.Body, n.Name, val))
		}
		return dexir.Let{Name: n.Name, Val: val, Body: simplifyExpr(n.Body)}
	case dexir.BinOp:
		l := simplifyExpr(n.L)
		r := simplifyExpr(n.R)
		if folded, ok := foldBinOp(n.Op, l, r); ok {
			return folded
		}
		return dexir.BinOp{Op: n.Op, L: l, R: r}
	case dexir.App:
		return dexir.App{Fn: simplifyExpr(n.Fn), Arg: simplifyExpr(n.Arg)}
	case dexir.Lam:
		return dexir.Lam{Param: n.Param, ParamType: n.ParamType, Body: simplifyExpr(n.Body)}
	default:
		return e
	}
}

func substitute(e dexir.Expr, name string, val dexir.Expr) dexir.Expr {
	switch n := e.(type) {
	case dexir.Var:
		if n.Name == name {
			return val
		}
		return n
	case dexir.Let:
		if n.Name == name {
			return dexir.Let{Name: n.Name, Val: substitute(n.Val, name, val), Body: n.Body}
		}
		return dexir.Let{Name: n.Name, Val: substitute(n.Val, name, val), Body: substitute(n.Body, name, val)}
	case dexir.Lam:
		if n.Param == name {
			return n
		}
		return dexir.Lam{Param: n.Param, ParamType: n.ParamType, Body: substitute(n.Body, name, val)}
	case dexir.App:
		return dexir.App{Fn: substitute(n.Fn, name, val), Arg: substitute(n.Arg, name, val)}
	case dexir.BinOp:
		return dexir.BinOp{Op: n.Op, L: substitute(n.L, name, val), R: substitute(n.R, name, val)}
	default:
		return e
	}
}

func foldBinOp(op string, l, r dexir.Expr) (dexir.Expr, bool) {
	if li, ok := l.(dexir.LitInt); ok {
		if ri, ok := r.(dexir.LitInt); ok {
			return foldIntOp(op, li.Value, ri.Value)
		}
	}
	if lf, ok := l.(dexir.LitFloat); ok {
		if rf, ok := r.(dexir.LitFloat); ok {
			return foldFloatOp(op, lf.Value, rf.Value)
		}
	}
	return nil, false
}

func foldIntOp(op string, l, r int64) (dexir.Expr, bool) {
	switch op {
	case "+":
		return dexir.LitInt{Value: l + r}, true
	case "-":
		return dexir.LitInt{Value: l - r}, true
	case "*":
		return dexir.LitInt{Value: l * r}, true
	case "<":
		return dexir.LitBool{Value: l < r}, true
	case "==":
		return dexir.LitBool{Value: l == r}, true
	default:
		return nil, false
	}
}

func foldFloatOp(op string, l, r float64) (dexir.Expr, bool) {
	switch op {
	case "+":
		return dexir.LitFloat{Value: l + r}, true
	case "-":
		return dexir.LitFloat{Value: l - r}, true
	case "*":
		return dexir.LitFloat{Value: l * r}, true
	case "<":
		return dexir.LitBool{Value: l < r}, true
	case "==":
		return dexir.LitBool{Value: l == r}, true
	default:
		return nil, false
	}
}
