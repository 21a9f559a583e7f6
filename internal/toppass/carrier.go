package toppass

import (
	"github.com/dex-lang/dexcore/internal/block"
	"github.com/dex-lang/dexcore/internal/diagnostics"
)

// Sink is the synchronous output callback a run threads outputs through.
// Implementations must ensure each call completes before the next
// user-visible event (spec §4.1 contract).
type Sink func(block.Output)

// ctx is the exclusive-reference state threaded through one TopPass run:
// the ambient read environment, the accumulating delta, and the sink. It
// is never exposed outside this package; TopPass exposes only the
// primitive operations below, per the design note in spec §9.
type ctx[Env Monoid[Env]] struct {
	env   Env
	delta Env
	sink  Sink
}

// TopPass[Env, A] represents a computation that, given a read-only Env and
// an output sink, produces either a value of type A or an Err, while
// accumulating a delta Env and a sequence of Outputs.
type TopPass[Env Monoid[Env], A any] func(c *ctx[Env]) (A, *diagnostics.Err)

// GetEnv yields the ambient read environment.
func GetEnv[Env Monoid[Env]]() TopPass[Env, Env] {
	return func(c *ctx[Env]) (Env, *diagnostics.Err) {
		return c.env, nil
	}
}

// PutEnv contributes a delta into the accumulator. Contributions combine
// associatively; put-env is not commutative beyond what the Env monoid
// itself guarantees (spec §4.1 contract) — callers must not assume
// reordering changes nothing unless Combine says so.
func PutEnv[Env Monoid[Env]](delta Env) TopPass[Env, struct{}] {
	return func(c *ctx[Env]) (struct{}, *diagnostics.Err) {
		c.delta = c.delta.Combine(delta)
		return struct{}{}, nil
	}
}

// WriteOut appends one Output to the sink. Outputs written before a
// failure are retained; they are never rolled back.
func WriteOut[Env Monoid[Env]](o block.Output) TopPass[Env, struct{}] {
	return func(c *ctx[Env]) (struct{}, *diagnostics.Err) {
		c.sink(o)
		return struct{}{}, nil
	}
}

// Fail short-circuits the computation with an error.
func Fail[Env Monoid[Env], A any](err *diagnostics.Err) TopPass[Env, A] {
	return func(c *ctx[Env]) (A, *diagnostics.Err) {
		var zero A
		return zero, err
	}
}

// Pure lifts a plain value into TopPass without touching env, delta, or
// the sink.
func Pure[Env Monoid[Env], A any](v A) TopPass[Env, A] {
	return func(c *ctx[Env]) (A, *diagnostics.Err) {
		return v, nil
	}
}

// Catch recovers from a failure of m by running handler(err) in its place.
func Catch[Env Monoid[Env], A any](m TopPass[Env, A], handler func(*diagnostics.Err) TopPass[Env, A]) TopPass[Env, A] {
	return func(c *ctx[Env]) (A, *diagnostics.Err) {
		v, err := m(c)
		if err != nil {
			return handler(err)(c)
		}
		return v, nil
	}
}

// LiftIO embeds a side-effecting Go function as a TopPass step: its error,
// if any, is wrapped into a CompilerErr unless it is already a *diagnostics.Err.
func LiftIO[Env Monoid[Env], A any](action func() (A, error)) TopPass[Env, A] {
	return func(c *ctx[Env]) (A, *diagnostics.Err) {
		v, err := action()
		if err != nil {
			return v, diagnostics.Wrap(err)
		}
		return v, nil
	}
}

// Bind sequences m and f, threading env/delta/sink through both. This is
// the composition primitive every helper in this package (and the pass
// combinator in internal/pipeline) is built from; it is not itself part of
// the exposed §4.1 primitive set, but is what makes Go's lack of do-notation
// tolerable.
func Bind[Env Monoid[Env], A, B any](m TopPass[Env, A], f func(A) TopPass[Env, B]) TopPass[Env, B] {
	return func(c *ctx[Env]) (B, *diagnostics.Err) {
		v, err := m(c)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(v)(c)
	}
}

// Then sequences m1 then m2, discarding m1's result.
func Then[Env Monoid[Env], A, B any](m1 TopPass[Env, A], m2 TopPass[Env, B]) TopPass[Env, B] {
	return Bind(m1, func(A) TopPass[Env, B] { return m2 })
}

// Run is the sole primitive execution boundary (C4, run-top-pass). It
// guarantees: every PutEnv contributes to the returned delta exactly once;
// on failure the delta is the accumulation up to the point of failure
// (callers may discard it — the pipeline driver does, via the env
// composition combinator's all-or-nothing semantics); outputs emitted
// during m reach the sink, in emission order, before Run returns.
func Run[Env Monoid[Env], A any](sink Sink, env Env, m TopPass[Env, A]) (result A, err *diagnostics.Err, delta Env) {
	c := &ctx[Env]{env: env, sink: sink}
	result, err = m(c)
	delta = c.delta
	return
}
