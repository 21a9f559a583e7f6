package passes

import (
	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/toppass"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// Normalize rewrites a typed Module into administrative normal form: every
// non-atomic subexpression (an App, BinOp, or nested Let) in an operand
// position is named via a fresh Let binding before use, so no non-top-level
// Let binds a non-atomic value and no App/BinOp operand is itself a
// compound expression. Every fresh Var it introduces carries the type of
// the expression it replaces, so the result stays fully typed — to-imp and
// its checker rely on every Var having a non-nil Type. Normalize uses its
// own FreshScope, as every pass must (spec §5): sharing one across passes
// would make deshadow's and normalize's generated names collide.
func Normalize(env topenv.TopEnv, in *dexir.Module) (*dexir.Module, *diagnostics.Err) {
	scope := toppass.NewFreshScope()
	out := &dexir.Module{}
	for _, d := range in.Defs {
		body := anf(d.Body, &scope, func(e dexir.Expr, _ dexir.Type) dexir.Expr { return e })
		out.Defs = append(out.Defs, dexir.TypedDef{Name: d.Name, Type: d.Type, Body: body})
	}
	return out, nil
}

// anf converts e to ANF, delivering the atomic result expression and its
// type to k, the continuation building the rest of the enclosing Let chain.
func anf(e dexir.Expr, scope *toppass.FreshScope, k func(dexir.Expr, dexir.Type) dexir.Expr) dexir.Expr {
	switch n := e.(type) {
	case dexir.LitInt:
		return k(n, dexir.TInt{})
	case dexir.LitFloat:
		return k(n, dexir.TFloat{})
	case dexir.LitBool:
		return k(n, dexir.TBool{})
	case dexir.Var:
		return k(n, n.Type)
	case dexir.Let:
		return anf(n.Val, scope, func(val dexir.Expr, _ dexir.Type) dexir.Expr {
			return dexir.Let{Name: n.Name, Val: val, Body: anf(n.Body, scope, k)}
		})
	case dexir.Lam:
		// A lambda body is its own ANF scope; the lambda itself, once atomic
		// (a Var or literal) elsewhere, is passed through as-is here since
		// to-imp — not normalize — is responsible for lifting it to a
		// top-level closure.
		body := anf(n.Body, scope, func(e dexir.Expr, _ dexir.Type) dexir.Expr { return e })
		retType := bodyType(n.Body)
		return k(dexir.Lam{Param: n.Param, ParamType: n.ParamType, Body: body},
			dexir.TFun{Arg: n.ParamType, Ret: retType})
	case dexir.App:
		return anf(n.Fn, scope, func(fn dexir.Expr, fnTy dexir.Type) dexir.Expr {
			return anf(n.Arg, scope, func(arg dexir.Expr, _ dexir.Type) dexir.Expr {
				retType := dexir.Type(nil)
				if fun, ok := fnTy.(dexir.TFun); ok {
					retType = fun.Ret
				}
				return name(dexir.App{Fn: fn, Arg: arg}, retType, scope, k)
			})
		})
	case dexir.BinOp:
		return anf(n.L, scope, func(l dexir.Expr, lTy dexir.Type) dexir.Expr {
			return anf(n.R, scope, func(r dexir.Expr, _ dexir.Type) dexir.Expr {
				resultType := lTy
				if n.Op == "<" || n.Op == "==" {
					resultType = dexir.TBool{}
				}
				return name(dexir.BinOp{Op: n.Op, L: l, R: r}, resultType, scope, k)
			})
		})
	default:
		return k(e, nil)
	}
}

// bodyType recovers the already-inferred type of a typed expression,
// mirroring the tiny structural cases normalize itself produces. It is
// applied to Lam bodies here and to operands in to-imp, always on IR that
// type-infer has already typed.
func bodyType(e dexir.Expr) dexir.Type {
	switch n := e.(type) {
	case dexir.LitInt:
		return dexir.TInt{}
	case dexir.LitFloat:
		return dexir.TFloat{}
	case dexir.LitBool:
		return dexir.TBool{}
	case dexir.Var:
		return n.Type
	case dexir.Let:
		return bodyType(n.Body)
	case dexir.Lam:
		return dexir.TFun{Arg: n.ParamType, Ret: bodyType(n.Body)}
	case dexir.App:
		if fun, ok := bodyType(n.Fn).(dexir.TFun); ok {
			return fun.Ret
		}
		return nil
	case dexir.BinOp:
		if n.Op == "<" || n.Op == "==" {
			return dexir.TBool{}
		}
		return bodyType(n.L)
	default:
		return nil
	}
}

// name binds a compound expression to a fresh, typed name and continues
// with a reference to it, unless it is already atomic (never true for
// App/BinOp, kept as a defensive branch for future node kinds).
func name(e dexir.Expr, ty dexir.Type, scope *toppass.FreshScope, k func(dexir.Expr, dexir.Type) dexir.Expr) dexir.Expr {
	if dexir.IsAtomic(e) {
		return k(e, ty)
	}
	fresh, next := scope.Next("t")
	*scope = next
	return dexir.Let{Name: fresh, Val: e, Body: k(dexir.Var{Name: fresh, Type: ty}, ty)}
}
