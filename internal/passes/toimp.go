package passes

import (
	"sort"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/toppass"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// ToImp lowers a simplified ANF module into imperative form: every Let
// binding becomes an explicit ImpStmt naming its value's operation, and
// every Lam becomes an OpMakeClosure statement capturing its free
// variables, with the lambda's own body lowered recursively into a nested
// ImpModule. No Lam survives in a non-closure-body position afterward
// (spec's imperative-form invariant, enforced by dexir.CheckImpModule).
func ToImp(env topenv.TopEnv, in *dexir.Module) (*dexir.ImpModule, *diagnostics.Err) {
	scope := toppass.NewFreshScope()
	out := &dexir.ImpModule{}
	for _, d := range in.Defs {
		var stmts []dexir.ImpStmt
		result := lowerExpr(d.Body, &stmts, &scope)
		out.Defs = append(out.Defs, dexir.ImpDef{Name: d.Name, Type: d.Type, Stmts: stmts, Result: result})
	}
	return out, nil
}

// lowerExpr appends statements realizing e to *stmts and returns the name
// holding e's final value.
func lowerExpr(e dexir.Expr, stmts *[]dexir.ImpStmt, scope *toppass.FreshScope) string {
	switch n := e.(type) {
	case dexir.LitInt:
		return emit(stmts, scope, dexir.TInt{}, dexir.OpConstInt{Value: n.Value})
	case dexir.LitFloat:
		return emit(stmts, scope, dexir.TFloat{}, dexir.OpConstFloat{Value: n.Value})
	case dexir.LitBool:
		return emit(stmts, scope, dexir.TBool{}, dexir.OpConstBool{Value: n.Value})
	case dexir.Var:
		return emit(stmts, scope, n.Type, dexir.OpLoad{Name: n.Name})
	case dexir.Let:
		valName := lowerExpr(n.Val, stmts, scope)
		return lowerExprWithAlias(n.Body, n.Name, valName, stmts, scope)
	case dexir.Lam:
		captures := freeVarNames(n)
		bodyStmts := []dexir.ImpStmt{}
		bodyScope := toppass.NewFreshScope()
		result := lowerExpr(n.Body, &bodyStmts, &bodyScope)
		retType := bodyType(n.Body)
		body := &dexir.ImpModule{Defs: []dexir.ImpDef{{Name: n.Param, Type: n.ParamType, Stmts: bodyStmts, Result: result}}}
		return emit(stmts, scope, dexir.TFun{Arg: n.ParamType, Ret: retType},
			dexir.OpMakeClosure{Param: n.Param, Captures: captures, Body: body})
	case dexir.App:
		fnName := lowerExpr(n.Fn, stmts, scope)
		argName := lowerExpr(n.Arg, stmts, scope)
		retType := dexir.Type(nil)
		if fun, ok := bodyType(n.Fn).(dexir.TFun); ok {
			retType = fun.Ret
		}
		return emit(stmts, scope, retType, dexir.OpApply{Fn: fnName, Arg: argName})
	case dexir.BinOp:
		lName := lowerExpr(n.L, stmts, scope)
		rName := lowerExpr(n.R, stmts, scope)
		ty := dexir.Type(dexir.TInt{})
		if n.Op == "<" || n.Op == "==" {
			ty = dexir.TBool{}
		} else {
			ty = bodyType(n.L)
		}
		return emit(stmts, scope, ty, dexir.OpBin{Op: n.Op, L: lName, R: rName})
	default:
		return emit(stmts, scope, nil, dexir.OpLoad{Name: "<unknown>"})
	}
}

// lowerExprWithAlias lowers body under the convention that references to
// name should resolve to the already-materialized valName — ANF's Let
// bindings become no-ops in imperative form beyond the initial rename,
// since to-imp never re-copies a value that already has a name.
func lowerExprWithAlias(e dexir.Expr, name, valName string, stmts *[]dexir.ImpStmt, scope *toppass.FreshScope) string {
	return lowerExpr(renameVar(e, name, valName), stmts, scope)
}

func renameVar(e dexir.Expr, from, to string) dexir.Expr {
	switch n := e.(type) {
	case dexir.Var:
		if n.Name == from {
			return dexir.Var{Name: to, Type: n.Type}
		}
		return n
	case dexir.Let:
		if n.Name == from {
			return dexir.Let{Name: n.Name, Val: renameVar(n.Val, from, to), Body: n.Body}
		}
		return dexir.Let{Name: n.Name, Val: renameVar(n.Val, from, to), Body: renameVar(n.Body, from, to)}
	case dexir.Lam:
		if n.Param == from {
			return n
		}
		return dexir.Lam{Param: n.Param, ParamType: n.ParamType, Body: renameVar(n.Body, from, to)}
	case dexir.App:
		return dexir.App{Fn: renameVar(n.Fn, from, to), Arg: renameVar(n.Arg, from, to)}
	case dexir.BinOp:
		return dexir.BinOp{Op: n.Op, L: renameVar(n.L, from, to), R: renameVar(n.R, from, to)}
	default:
		return e
	}
}

func freeVarNames(e dexir.Expr) []string {
	free := dexir.FreeVars(e)
	out := make([]string, 0, len(free))
	for name := range free {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func emit(stmts *[]dexir.ImpStmt, scope *toppass.FreshScope, ty dexir.Type, op dexir.ImpOp) string {
	fresh, next := scope.Next("v")
	*scope = next
	*stmts = append(*stmts, dexir.ImpStmt{Dst: fresh, Type: ty, Op: op})
	return fresh
}
