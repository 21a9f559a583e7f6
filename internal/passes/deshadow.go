package passes

import (
	"github.com/dex-lang/dexcore/internal/config"
	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/toppass"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// Deshadow alpha-renames every locally bound name (let-binding, lambda
// parameter) to a name unique within the module, using its own
// FreshScope — never a scope shared with any other pass (spec §5). It
// consults env to reject a definition whose name shadows an existing
// session-level type binding, a case that would otherwise silently
// confuse a later name lookup between "the type Foo" and "the value Foo".
//
// The traversal itself is built as a C3 pure pass (toppass.Pass): the
// per-expression rename map is local Go state private to one def's
// recursion, never exposed on the top-level TopPass carrier (spec §4.1's
// "internal bookkeeping that must not leak as top-level state"). Deshadow
// itself is a thin toppass.EvalPass wrapper so its callers keep the plain
// Collaborator shape internal/pipeline.Named expects.
func Deshadow(env topenv.TopEnv, in *dexir.FModule) (*dexir.FModule, *diagnostics.Err) {
	return toppass.EvalPass(env, toppass.NewFreshScope(), toppass.FreshScope{}, DeshadowPass(in))
}

// DeshadowPass is Deshadow's underlying pure pass, exposed so
// internal/pipeline can lift it directly into the eval-module TopPass chain
// via toppass.LiftTopPass instead of going through the plain-function
// Collaborator interface every other stage uses.
func DeshadowPass(in *dexir.FModule) toppass.Pass[topenv.TopEnv, toppass.FreshScope, *dexir.FModule] {
	return func(env topenv.TopEnv, scope toppass.FreshScope, _ toppass.FreshScope) (*dexir.FModule, toppass.FreshScope, toppass.FreshScope, *diagnostics.Err) {
		out := &dexir.FModule{}
		for _, d := range in.Defs {
			if b, ok := env.Lookup(d.Name); ok && b.IsType {
				return nil, scope, toppass.FreshScope{}, diagnostics.New(diagnostics.LinErr, nil,
					"definition `%s` shadows an existing type binding of the same name", d.Name)
			}
			if d.Name == config.TrueConstName || d.Name == config.FalseConstName {
				return nil, scope, toppass.FreshScope{}, diagnostics.New(diagnostics.LinErr, nil,
					"definition `%s` shadows a built-in constant", d.Name)
			}
			body, nextScope, _, err := deshadowExpr(d.Body, map[string]string{})(env, scope, toppass.FreshScope{})
			if err != nil {
				return nil, scope, toppass.FreshScope{}, err
			}
			scope = nextScope
			out.Defs = append(out.Defs, dexir.Def{Name: d.Name, Body: body})
		}
		return out, scope, toppass.FreshScope{}, nil
	}
}

// deshadowExpr builds e's renaming as a pure pass threaded through
// toppass.PureBind/PurePure/PureFail, with the module's FreshScope as this
// pass's State so a fresh name minted for one subexpression is never reused
// by a sibling. subst is this call's local rename map, ordinary recursion
// state rather than anything the Pass carrier threads.
func deshadowExpr(e dexir.Expr, subst map[string]string) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
	switch n := e.(type) {
	case dexir.Var:
		if fresh, ok := subst[n.Name]; ok {
			return toppass.PurePure[topenv.TopEnv, toppass.FreshScope](dexir.Expr(dexir.Var{Name: fresh, Type: n.Type, Pos: n.Pos}))
		}
		return toppass.PurePure[topenv.TopEnv, toppass.FreshScope](e)

	case dexir.Let:
		if n.Name == config.TrueConstName || n.Name == config.FalseConstName {
			return toppass.PureFail[topenv.TopEnv, toppass.FreshScope, dexir.Expr](diagnostics.New(diagnostics.LinErr, nil,
				"let binding `%s` shadows a built-in constant", n.Name))
		}
		return toppass.PureBind(deshadowExpr(n.Val, subst), func(val dexir.Expr) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
			return bindFreshName(n.Name, func(fresh string) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
				inner := cloneSubst(subst)
				inner[n.Name] = fresh
				return toppass.PureBind(deshadowExpr(n.Body, inner), func(body dexir.Expr) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
					return toppass.PurePure[topenv.TopEnv, toppass.FreshScope](dexir.Expr(dexir.Let{Name: fresh, Val: val, Body: body}))
				})
			})
		})

	case dexir.Lam:
		if n.Param == config.TrueConstName || n.Param == config.FalseConstName {
			return toppass.PureFail[topenv.TopEnv, toppass.FreshScope, dexir.Expr](diagnostics.New(diagnostics.LinErr, nil,
				"lambda parameter `%s` shadows a built-in constant", n.Param))
		}
		return bindFreshName(n.Param, func(fresh string) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
			inner := cloneSubst(subst)
			inner[n.Param] = fresh
			return toppass.PureBind(deshadowExpr(n.Body, inner), func(body dexir.Expr) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
				return toppass.PurePure[topenv.TopEnv, toppass.FreshScope](dexir.Expr(dexir.Lam{Param: fresh, ParamType: n.ParamType, Body: body}))
			})
		})

	case dexir.App:
		return toppass.PureBind(deshadowExpr(n.Fn, subst), func(fn dexir.Expr) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
			return toppass.PureBind(deshadowExpr(n.Arg, subst), func(arg dexir.Expr) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
				return toppass.PurePure[topenv.TopEnv, toppass.FreshScope](dexir.Expr(dexir.App{Fn: fn, Arg: arg}))
			})
		})

	case dexir.BinOp:
		return toppass.PureBind(deshadowExpr(n.L, subst), func(l dexir.Expr) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
			return toppass.PureBind(deshadowExpr(n.R, subst), func(r dexir.Expr) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
				return toppass.PurePure[topenv.TopEnv, toppass.FreshScope](dexir.Expr(dexir.BinOp{Op: n.Op, L: l, R: r}))
			})
		})

	default:
		return toppass.PurePure[topenv.TopEnv, toppass.FreshScope](e)
	}
}

// bindFreshName pulls a fresh name for hint out of this pass's FreshScope
// state and continues with k, advancing the scope for every later request —
// the one place deshadowExpr actually consumes State rather than just
// threading it through PureBind.
func bindFreshName(hint string, k func(string) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr]) toppass.Pass[topenv.TopEnv, toppass.FreshScope, dexir.Expr] {
	return func(env topenv.TopEnv, scope toppass.FreshScope, unused toppass.FreshScope) (dexir.Expr, toppass.FreshScope, toppass.FreshScope, *diagnostics.Err) {
		fresh, next := scope.Next(hint)
		return k(fresh)(env, next, unused)
	}
}

func cloneSubst(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
