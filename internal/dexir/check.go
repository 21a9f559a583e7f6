package dexir

import "github.com/dex-lang/dexcore/internal/diagnostics"

// CheckFModule validates scoping: every free variable of every definition
// must resolve to either an earlier top-level definition or a name in
// knownGlobals. This is the checker collaborator for the front-end IR
// (spec §6); the pipeline currently wires it to no-check for deshadow
// (deshadow's own postcondition — full de-shadowing — has nothing
// externally observable to check against), but it is exposed so a future
// stage can opt in.
func CheckFModule(m *FModule, knownGlobals map[string]struct{}) *diagnostics.Err {
	defined := map[string]struct{}{}
	for k := range knownGlobals {
		defined[k] = struct{}{}
	}
	for _, d := range m.Defs {
		for free := range FreeVars(d.Body) {
			if _, ok := defined[free]; !ok {
				return diagnostics.New(diagnostics.UnboundVarErr, nil,
					"unbound variable `%s` referenced by `%s`", free, d.Name)
			}
		}
		defined[d.Name] = struct{}{}
	}
	return nil
}

// CheckModule validates that m is well-typed (every BinOp/App operand
// matches its expected shape) and, when requireANF is true, that every
// non-top-level Let binds an atomic value (spec's ANF canonical form,
// glossary).
func CheckModule(m *Module, requireANF bool) *diagnostics.Err {
	for _, d := range m.Defs {
		if err := checkTyped(d.Body, d.Type); err != nil {
			return err
		}
		if requireANF {
			if err := checkANF(d.Body, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkTyped(e Expr, want Type) *diagnostics.Err {
	got, err := inferType(e)
	if err != nil {
		return err
	}
	if want != nil && !TypesEqual(got, want) {
		return diagnostics.New(diagnostics.TypeErr, nil,
			"expected type %s, found %s in `%s`", want, got, e)
	}
	return nil
}

// inferType re-derives a typed expression's type structurally; it assumes
// Var nodes already carry their Type (as type-infer leaves them).
func inferType(e Expr) (Type, *diagnostics.Err) {
	switch n := e.(type) {
	case LitInt:
		return TInt{}, nil
	case LitFloat:
		return TFloat{}, nil
	case LitBool:
		return TBool{}, nil
	case Var:
		if n.Type == nil {
			return nil, diagnostics.New(diagnostics.CompilerErr, nil,
				"internal: variable `%s` reached type checking untyped", n.Name)
		}
		return n.Type, nil
	case Let:
		valType, err := inferType(n.Val)
		if err != nil {
			return nil, err
		}
		_ = valType
		return inferType(n.Body)
	case Lam:
		retType, err := inferType(n.Body)
		if err != nil {
			return nil, err
		}
		argType := n.ParamType
		if argType == nil {
			argType = TInt{}
		}
		return TFun{Arg: argType, Ret: retType}, nil
	case App:
		fnType, err := inferType(n.Fn)
		if err != nil {
			return nil, err
		}
		fn, ok := fnType.(TFun)
		if !ok {
			return nil, diagnostics.New(diagnostics.TypeErr, nil,
				"cannot apply non-function type %s", fnType)
		}
		return fn.Ret, nil
	case BinOp:
		lt, err := inferType(n.L)
		if err != nil {
			return nil, err
		}
		rt, err := inferType(n.R)
		if err != nil {
			return nil, err
		}
		if !TypesEqual(lt, rt) {
			return nil, diagnostics.New(diagnostics.TypeErr, nil,
				"operator `%s` type mismatch: %s vs %s", n.Op, lt, rt)
		}
		switch n.Op {
		case "<", "==":
			return TBool{}, nil
		default:
			return lt, nil
		}
	default:
		return nil, diagnostics.New(diagnostics.CompilerErr, nil, "internal: unknown expr node %T", e)
	}
}

func checkANF(e Expr, topLevel bool) *diagnostics.Err {
	switch n := e.(type) {
	case Let:
		if !topLevel && !IsAtomic(n.Val) {
			if _, isLet := n.Val.(Let); !isLet {
				return diagnostics.New(diagnostics.CompilerErr, nil,
					"internal: non-ANF let binding `%s` = %s", n.Name, n.Val)
			}
		}
		if err := checkANF(n.Val, false); err != nil {
			return err
		}
		return checkANF(n.Body, topLevel)
	case Lam:
		if topLevel {
			// A def's own body may be a bare lambda (`f = \x -> ...`, the
			// ordinary way to define a function); normalize/simplify leave it
			// as-is rather than naming it. Only its body is checked, still
			// as a top-level position, since a Lam body is itself a def.
			return checkANF(n.Body, true)
		}
		return diagnostics.New(diagnostics.CompilerErr, nil,
			"internal: lambda `%s` survived normalization in ANF position", n.Param)
	default:
		return nil
	}
}

// CheckImpModule validates that every OpBin/OpApply operand references an
// already-assigned name in the same def and that each def's result is
// assigned. An OpMakeClosure's body is checked recursively as a module of
// its own, without its parameter or captures in scope; OpLoad operands are
// not checked here.
func CheckImpModule(m *ImpModule) *diagnostics.Err {
	for _, d := range m.Defs {
		assigned := map[string]struct{}{}
		for _, s := range d.Stmts {
			if err := checkImpOperands(s.Op, assigned); err != nil {
				return err
			}
			assigned[s.Dst] = struct{}{}
		}
		if _, ok := assigned[d.Result]; !ok {
			return diagnostics.New(diagnostics.CompilerErr, nil,
				"internal: result `%s` of def `%s` was never assigned", d.Result, d.Name)
		}
	}
	return nil
}

func checkImpOperands(op ImpOp, assigned map[string]struct{}) *diagnostics.Err {
	require := func(names ...string) *diagnostics.Err {
		for _, n := range names {
			if _, ok := assigned[n]; !ok {
				return diagnostics.New(diagnostics.CompilerErr, nil,
					"internal: statement references unassigned name `%s`", n)
			}
		}
		return nil
	}
	switch o := op.(type) {
	case OpLoad:
		return nil // may reference a top-level or captured name, checked at eval time
	case OpBin:
		return require(o.L, o.R)
	case OpApply:
		return require(o.Fn, o.Arg)
	case OpMakeClosure:
		return CheckImpModule(o.Body)
	default:
		return nil
	}
}
