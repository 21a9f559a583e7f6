// Package pipeline implements C5's concrete specialization for stages that
// all share TopEnv as their environment (C6's staged eval-module), the
// named-pass wrapper, and the pipeline driver eval-block.
package pipeline

import (
	"github.com/dex-lang/dexcore/internal/toppass"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// pairTopEnv is the product environment Combine2 builds for two
// TopEnv-typed stages, before Chain flattens it back down.
type pairTopEnv = toppass.Pair[topenv.TopEnv, topenv.TopEnv]

// Chain is `>+>` specialized to stages that both read and contribute the
// session's TopEnv: it composes f1 and f2 via the genuine C5 combinator
// (toppass.Combine2), then reindexes the resulting product environment
// back down to a flat TopEnv so a linear pipeline of any length can be
// built by left-folding Chain, exactly as spec §4.5's associativity
// requirement describes, without every caller needing to know the
// pipeline's accumulated product-environment type.
func Chain[A, B, C any](
	f1 func(A) toppass.TopPass[topenv.TopEnv, B],
	f2 func(B) toppass.TopPass[topenv.TopEnv, C],
) func(A) toppass.TopPass[topenv.TopEnv, C] {
	combined := toppass.Combine2[topenv.TopEnv, topenv.TopEnv, A, B, C](f1, f2)
	return func(a A) toppass.TopPass[topenv.TopEnv, C] {
		return toppass.ReindexEnv[topenv.TopEnv, pairTopEnv, C](
			func(env topenv.TopEnv) pairTopEnv {
				return pairTopEnv{First: env, Second: env}
			},
			func(p pairTopEnv) topenv.TopEnv {
				return p.First.Combine(p.Second)
			},
			combined(a),
		)
	}
}
