package jitrpc

import (
	"context"
	"fmt"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// Local evaluates an ImpModule in-process: a straightforward
// straight-line interpreter over ImpStmt/ImpOp, with no actual code
// generation. It is the Executor a REPL running in the same process as
// the core wires by default; Remote is for a codegen service running
// elsewhere.
type Local struct{}

// UnrealizedBindingError is returned when a block references a name whose
// TopEnv binding was restored from a session snapshot (internal/session)
// without a live Atom — sqlite/YAML durability only ever holds a binding's
// type text, never a runtime handle, and there is no lazy re-JIT. The
// distinct error type lets internal/passes.EvalJitWith report this as a
// RuntimeErr naming the culprit, instead of a generic "unbound name" that
// reads identically to a genuine typo.
type UnrealizedBindingError struct{ Name string }

func (e UnrealizedBindingError) Error() string {
	return fmt.Sprintf("%q was restored from a saved session without a realized value; redefine it before referencing it again", e.Name)
}

func (Local) Eval(ctx context.Context, env topenv.TopEnv, m *dexir.ImpModule) (topenv.TopEnv, error) {
	globals := map[string]Value{}
	unrealized := map[string]struct{}{}
	for _, name := range env.Names() {
		b, _ := env.Lookup(name)
		if b.IsType {
			continue
		}
		if b.Atom == nil {
			unrealized[name] = struct{}{}
			continue
		}
		v, err := LoadAtomVal(b.Atom)
		if err != nil {
			return topenv.TopEnv{}, err
		}
		globals[name] = v
	}

	delta := topenv.New()
	for _, def := range m.Defs {
		v, err := evalDef(def, globals, unrealized)
		if err != nil {
			return topenv.TopEnv{}, fmt.Errorf("def %s: %w", def.Name, err)
		}
		globals[def.Name] = v
		delta = delta.With(def.Name, topenv.Binding{Type: def.Type, Atom: newAtom(v)})
	}
	return delta, nil
}

func evalDef(def dexir.ImpDef, globals map[string]Value, unrealized map[string]struct{}) (Value, error) {
	locals := map[string]Value{}
	for _, stmt := range def.Stmts {
		v, err := evalOp(stmt.Op, locals, globals, unrealized)
		if err != nil {
			return nil, err
		}
		locals[stmt.Dst] = v
	}
	if v, ok := locals[def.Result]; ok {
		return v, nil
	}
	if v, ok := globals[def.Result]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("result name %q never assigned", def.Result)
}

func evalOp(op dexir.ImpOp, locals, globals map[string]Value, unrealized map[string]struct{}) (Value, error) {
	switch o := op.(type) {
	case dexir.OpConstInt:
		return IntVal{V: o.Value}, nil
	case dexir.OpConstFloat:
		return FloatVal{V: o.Value}, nil
	case dexir.OpConstBool:
		return BoolVal{V: o.Value}, nil
	case dexir.OpLoad:
		if v, ok := locals[o.Name]; ok {
			return v, nil
		}
		if v, ok := globals[o.Name]; ok {
			return v, nil
		}
		if _, ok := unrealized[o.Name]; ok {
			return nil, UnrealizedBindingError{Name: o.Name}
		}
		return nil, fmt.Errorf("unbound name %q", o.Name)
	case dexir.OpBin:
		l, err := lookup(o.L, locals, globals, unrealized)
		if err != nil {
			return nil, err
		}
		r, err := lookup(o.R, locals, globals, unrealized)
		if err != nil {
			return nil, err
		}
		return evalBin(o.Op, l, r)
	case dexir.OpMakeClosure:
		captures := map[string]Value{}
		for _, name := range o.Captures {
			v, err := lookup(name, locals, globals, unrealized)
			if err != nil {
				return nil, err
			}
			captures[name] = v
		}
		return ClosureVal{Param: o.Param, Captures: captures, Body: o.Body}, nil
	case dexir.OpApply:
		fn, err := lookup(o.Fn, locals, globals, unrealized)
		if err != nil {
			return nil, err
		}
		arg, err := lookup(o.Arg, locals, globals, unrealized)
		if err != nil {
			return nil, err
		}
		return applyClosure(fn, arg)
	default:
		return nil, fmt.Errorf("unhandled op %T", op)
	}
}

func lookup(name string, locals, globals map[string]Value, unrealized map[string]struct{}) (Value, error) {
	if v, ok := locals[name]; ok {
		return v, nil
	}
	if v, ok := globals[name]; ok {
		return v, nil
	}
	if _, ok := unrealized[name]; ok {
		return nil, UnrealizedBindingError{Name: name}
	}
	return nil, fmt.Errorf("unbound name %q", name)
}

func applyClosure(fn Value, arg Value) (Value, error) {
	closure, ok := fn.(ClosureVal)
	if !ok {
		return nil, fmt.Errorf("cannot apply non-function value %v", fn)
	}
	bodyLocals := map[string]Value{closure.Param: arg}
	for k, v := range closure.Captures {
		bodyLocals[k] = v
	}
	if len(closure.Body.Defs) != 1 {
		return nil, fmt.Errorf("internal: closure body must lower to exactly one def")
	}
	def := closure.Body.Defs[0]
	for _, stmt := range def.Stmts {
		v, err := evalOp(stmt.Op, bodyLocals, map[string]Value{}, nil)
		if err != nil {
			return nil, err
		}
		bodyLocals[stmt.Dst] = v
	}
	if v, ok := bodyLocals[def.Result]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("closure result name %q never assigned", def.Result)
}

func evalBin(op string, l, r Value) (Value, error) {
	switch lv := l.(type) {
	case IntVal:
		rv, ok := r.(IntVal)
		if !ok {
			return nil, fmt.Errorf("operand type mismatch for %q", op)
		}
		return intBin(op, lv.V, rv.V)
	case FloatVal:
		rv, ok := r.(FloatVal)
		if !ok {
			return nil, fmt.Errorf("operand type mismatch for %q", op)
		}
		return floatBin(op, lv.V, rv.V)
	default:
		return nil, fmt.Errorf("operator %q not defined for %T", op, l)
	}
}

func intBin(op string, l, r int64) (Value, error) {
	switch op {
	case "+":
		return IntVal{V: l + r}, nil
	case "-":
		return IntVal{V: l - r}, nil
	case "*":
		return IntVal{V: l * r}, nil
	case "<":
		return BoolVal{V: l < r}, nil
	case "==":
		return BoolVal{V: l == r}, nil
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
}

func floatBin(op string, l, r float64) (Value, error) {
	switch op {
	case "+":
		return FloatVal{V: l + r}, nil
	case "-":
		return FloatVal{V: l - r}, nil
	case "*":
		return FloatVal{V: l * r}, nil
	case "<":
		return BoolVal{V: l < r}, nil
	case "==":
		return BoolVal{V: l == r}, nil
	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
}
