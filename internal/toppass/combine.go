package toppass

import "github.com/dex-lang/dexcore/internal/diagnostics"

// Combine2 is C5, the env composition combinator: given f1: A -> TopPass[E1,B]
// and f2: B -> TopPass[E2,C], it produces a pipeline stage operating over
// the product environment Pair[E1,E2].
//
// Semantics (spec §4.5): read (e1,e2) from the ambient environment; run f1
// against e1; run f2 against the result against e2; contribute the pair of
// resulting deltas as one combined delta; forward both stages' outputs to
// the ambient sink in order. If f1 fails, f2 never runs and nothing is
// contributed. If f2 fails, f1's delta e1' is discarded too — this
// combinator is all-or-nothing, so a partial environment update can never
// leak a half-typed binding into the caller's accumulator.
func Combine2[E1 Monoid[E1], E2 Monoid[E2], A, B, C any](
	f1 func(A) TopPass[E1, B],
	f2 func(B) TopPass[E2, C],
) func(A) TopPass[Pair[E1, E2], C] {
	return func(x A) TopPass[Pair[E1, E2], C] {
		return func(c *ctx[Pair[E1, E2]]) (C, *diagnostics.Err) {
			e1, e2 := c.env.First, c.env.Second

			y, err1, e1prime := Run(c.sink, e1, f1(x))
			if err1 != nil {
				var zero C
				return zero, err1
			}

			z, err2, e2prime := Run(c.sink, e2, f2(y))
			if err2 != nil {
				var zero C
				return zero, err2
			}

			c.delta = c.delta.Combine(Pair[E1, E2]{First: e1prime, Second: e2prime})
			return z, nil
		}
	}
}

// ReindexEnv runs m, a computation over EnvB, inside a computation over
// EnvA: toInner derives m's ambient environment from the outer one, and
// fromInner folds m's delta back into the outer accumulator. It shares the
// outer run's sink, so outputs still interleave in emission order. This is
// what lets a chain of same-typed stages (internal/pipeline's Chain) reuse
// Combine2 — the genuine C5 combinator — while still producing one flat
// delta of the shared Env type, the "practical systems-language
// realization" spec §9 calls out as an accepted alternative to threading
// a growing heterogeneous product type through every caller.
func ReindexEnv[EnvA Monoid[EnvA], EnvB Monoid[EnvB], A any](
	toInner func(EnvA) EnvB,
	fromInner func(EnvB) EnvA,
	m TopPass[EnvB, A],
) TopPass[EnvA, A] {
	return func(c *ctx[EnvA]) (A, *diagnostics.Err) {
		innerEnv := toInner(c.env)
		v, err, delta := Run(c.sink, innerEnv, m)
		if err != nil {
			return v, err
		}
		c.delta = c.delta.Combine(fromInner(delta))
		return v, nil
	}
}
