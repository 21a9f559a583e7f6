package toppass

import "github.com/dex-lang/dexcore/internal/diagnostics"

// Pass[Env, State, A] is the pure variant of the effect carrier: it may
// read an environment, thread mutable State and a FreshScope, and fail,
// but performs no I/O and writes no Output or delta environment. It exists
// so a pass's internal bookkeeping (e.g. a deshadowing rename map) never
// leaks as top-level state (spec §4.1).
type Pass[Env, State, A any] func(env Env, state State, scope FreshScope) (A, State, FreshScope, *diagnostics.Err)

// PurePure lifts a plain value into Pass without touching state or scope.
func PurePure[Env, State, A any](v A) Pass[Env, State, A] {
	return func(env Env, state State, scope FreshScope) (A, State, FreshScope, *diagnostics.Err) {
		return v, state, scope, nil
	}
}

// PureBind sequences two pure passes, threading state and scope.
func PureBind[Env, State, A, B any](m Pass[Env, State, A], f func(A) Pass[Env, State, B]) Pass[Env, State, B] {
	return func(env Env, state State, scope FreshScope) (B, State, FreshScope, *diagnostics.Err) {
		v, state2, scope2, err := m(env, state, scope)
		if err != nil {
			var zero B
			return zero, state2, scope2, err
		}
		return f(v)(env, state2, scope2)
	}
}

// PureFail short-circuits a pure pass with an error.
func PureFail[Env, State, A any](err *diagnostics.Err) Pass[Env, State, A] {
	return func(env Env, state State, scope FreshScope) (A, State, FreshScope, *diagnostics.Err) {
		var zero A
		return zero, state, scope, err
	}
}

// RunPass evaluates m deterministically, returning its terminal state on
// success (C3, run-pass).
func RunPass[Env, State, A any](env Env, state State, scope FreshScope, m Pass[Env, State, A]) (A, State, *diagnostics.Err) {
	v, finalState, _, err := m(env, state, scope)
	return v, finalState, err
}

// EvalPass evaluates m and discards its terminal state.
func EvalPass[Env, State, A any](env Env, state State, scope FreshScope, m Pass[Env, State, A]) (A, *diagnostics.Err) {
	v, _, err := RunPass(env, state, scope, m)
	return v, err
}

// LiftTopPass embeds a pure pass into the effect carrier: it reads the
// ambient environment, runs the pure pass against it (with the given
// initial state and scope), and folds the result or error back into the
// TopPass — without ever contributing a delta or writing an Output, since
// a pure pass has neither (spec §4.3).
func LiftTopPass[Env Monoid[Env], State, A any](state State, scope FreshScope, m Pass[Env, State, A]) TopPass[Env, A] {
	return Bind(GetEnv[Env](), func(env Env) TopPass[Env, A] {
		return func(c *ctx[Env]) (A, *diagnostics.Err) {
			v, _, err := RunPass(env, state, scope, m)
			return v, err
		}
	})
}
