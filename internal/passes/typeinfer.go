package passes

import (
	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// TypeInfer elaborates a deshadowed FModule into a typed Module: every Var
// node gets its Type field filled in from the nearest enclosing binding —
// a local Let/Lam parameter, an earlier definition in the same module, or a
// value binding already present in the ambient session TopEnv — and every
// definition's inferred type is recorded on its TypedDef. A definition
// referencing a name env only knows as a type binding fails with
// TypeErr: a type name is not a value.
func TypeInfer(env topenv.TopEnv, in *dexir.FModule) (*dexir.Module, *diagnostics.Err) {
	ctx := map[string]dexir.Type{}
	for _, name := range env.Names() {
		b, _ := env.Lookup(name)
		if !b.IsType {
			ctx[name] = b.Type
		}
	}

	out := &dexir.Module{}
	for _, d := range in.Defs {
		typed, ty, err := inferExpr(d.Body, ctx, env)
		if err != nil {
			return nil, err
		}
		out.Defs = append(out.Defs, dexir.TypedDef{Name: d.Name, Type: ty, Body: typed})
		ctx[d.Name] = ty
	}
	return out, nil
}

func inferExpr(e dexir.Expr, ctx map[string]dexir.Type, env topenv.TopEnv) (dexir.Expr, dexir.Type, *diagnostics.Err) {
	switch n := e.(type) {
	case dexir.LitInt:
		return n, dexir.TInt{}, nil
	case dexir.LitFloat:
		return n, dexir.TFloat{}, nil
	case dexir.LitBool:
		return n, dexir.TBool{}, nil
	case dexir.Var:
		if ty, ok := ctx[n.Name]; ok {
			return dexir.Var{Name: n.Name, Type: ty, Pos: n.Pos}, ty, nil
		}
		region := &diagnostics.Region{Start: n.Pos, Stop: n.Pos + len(n.Name)}
		if b, ok := env.Lookup(n.Name); ok && b.IsType {
			return nil, nil, diagnostics.New(diagnostics.TypeErr, region,
				"`%s` names a type, not a value", n.Name)
		}
		return nil, nil, diagnostics.New(diagnostics.UnboundVarErr, region,
			"unbound variable `%s`", n.Name)
	case dexir.Let:
		val, valTy, err := inferExpr(n.Val, ctx, env)
		if err != nil {
			return nil, nil, err
		}
		inner := cloneCtx(ctx)
		inner[n.Name] = valTy
		body, bodyTy, err := inferExpr(n.Body, inner, env)
		if err != nil {
			return nil, nil, err
		}
		return dexir.Let{Name: n.Name, Val: val, Body: body}, bodyTy, nil
	case dexir.Lam:
		if n.ParamType == nil {
			return nil, nil, diagnostics.New(diagnostics.TypeErr, nil,
				"lambda parameter `%s` has no type annotation", n.Param)
		}
		inner := cloneCtx(ctx)
		inner[n.Param] = n.ParamType
		body, bodyTy, err := inferExpr(n.Body, inner, env)
		if err != nil {
			return nil, nil, err
		}
		return dexir.Lam{Param: n.Param, ParamType: n.ParamType, Body: body},
			dexir.TFun{Arg: n.ParamType, Ret: bodyTy}, nil
	case dexir.App:
		fn, fnTy, err := inferExpr(n.Fn, ctx, env)
		if err != nil {
			return nil, nil, err
		}
		fun, ok := fnTy.(dexir.TFun)
		if !ok {
			return nil, nil, diagnostics.New(diagnostics.TypeErr, nil,
				"cannot apply non-function type %s", fnTy)
		}
		arg, argTy, err := inferExpr(n.Arg, ctx, env)
		if err != nil {
			return nil, nil, err
		}
		if !dexir.TypesEqual(argTy, fun.Arg) {
			return nil, nil, diagnostics.New(diagnostics.TypeErr, nil,
				"expected argument of type %s, found %s", fun.Arg, argTy)
		}
		return dexir.App{Fn: fn, Arg: arg}, fun.Ret, nil
	case dexir.BinOp:
		l, lTy, err := inferExpr(n.L, ctx, env)
		if err != nil {
			return nil, nil, err
		}
		r, rTy, err := inferExpr(n.R, ctx, env)
		if err != nil {
			return nil, nil, err
		}
		if !dexir.TypesEqual(lTy, rTy) {
			return nil, nil, diagnostics.New(diagnostics.TypeErr, nil,
				"operator `%s` type mismatch: %s vs %s", n.Op, lTy, rTy)
		}
		switch n.Op {
		case "<", "==":
			return dexir.BinOp{Op: n.Op, L: l, R: r}, dexir.TBool{}, nil
		default:
			return dexir.BinOp{Op: n.Op, L: l, R: r}, lTy, nil
		}
	default:
		return nil, nil, diagnostics.New(diagnostics.CompilerErr, nil, "internal: unknown expr node %T", e)
	}
}

func cloneCtx(m map[string]dexir.Type) map[string]dexir.Type {
	out := make(map[string]dexir.Type, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
