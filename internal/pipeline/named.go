package pipeline

import (
	"github.com/dex-lang/dexcore/internal/block"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/toppass"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// Collaborator is a pass collaborator's shape (spec §6): a total function
// from its input IR, plus the ambient top-env, to its output IR or an
// Err. Passes that don't consult the env simply ignore the argument.
type Collaborator[In, Out any] func(env topenv.TopEnv, in In) (Out, *diagnostics.Err)

// Checker validates one IR's invariants after a pass runs.
type Checker[Out any] func(Out) *diagnostics.Err

// NoCheck is the trivial checker used for passes with no externally
// observable postcondition (deshadow, eval-jit).
func NoCheck[Out any](Out) *diagnostics.Err { return nil }

// Named wraps a collaborator into a named pipeline stage (named-pass,
// spec §4.6): on entry the ambient debug context gains the pretty-printed
// input; the collaborator's output is pretty-printed and emitted as a
// PassInfo *before* check runs, since PassInfo must reflect what the pass
// actually produced even if the postcondition check then fails; check
// runs under a separate debug context naming the post-pass stage; any
// host-level panic during the collaborator, the pretty-printer, or the
// checker is caught and converted to a CompilerErr (catch-hard-errors).
func Named[In, Out any](
	name string,
	f Collaborator[In, Out],
	check Checker[Out],
	prettyIn func(In) string,
	prettyOut func(Out) string,
) func(In) toppass.TopPass[topenv.TopEnv, Out] {
	return func(in In) toppass.TopPass[topenv.TopEnv, Out] {
		return toppass.Bind(toppass.GetEnv[topenv.TopEnv](), func(env topenv.TopEnv) toppass.TopPass[topenv.TopEnv, Out] {
			preText, perr := safeString(func() string { return prettyIn(in) })
			preCtx := name + " pass with input:\n" + preText
			if perr != nil {
				return toppass.Fail[topenv.TopEnv, Out](diagnostics.AddDebugCtx(preCtx, perr))
			}

			out, err := safeCall(f, env, in)
			if err != nil {
				return toppass.Fail[topenv.TopEnv, Out](diagnostics.AddDebugCtx(preCtx, err))
			}

			// Forcing full pretty-print evaluation is mandatory: it surfaces
			// latent structural errors (cycles, undefined variants) as compiler
			// errors rather than a crash somewhere downstream.
			outText, operr := safeString(func() string { return prettyOut(out) })
			if operr != nil {
				return toppass.Fail[topenv.TopEnv, Out](diagnostics.AddDebugCtx(preCtx, operr))
			}

			return toppass.Bind(
				toppass.WriteOut[topenv.TopEnv](block.PassInfo{Stage: name, Pretty: outText}),
				func(struct{}) toppass.TopPass[topenv.TopEnv, Out] {
					if check == nil {
						return toppass.Pure[topenv.TopEnv](out)
					}
					postCtx := name + " pass output check:\n" + outText
					cerr := safeCheck(check, out)
					if cerr != nil {
						return toppass.Fail[topenv.TopEnv, Out](diagnostics.AddDebugCtx(postCtx, cerr))
					}
					return toppass.Pure[topenv.TopEnv](out)
				},
			)
		})
	}
}

// NamedPure wraps a C3 pure-pass collaborator into a named pipeline stage,
// the same contract as Named (PassInfo written after success and
// pretty-printed, before check runs) but for a stage whose transformation
// is expressed as a toppass.Pass rather than a plain Collaborator function —
// deshadow's rename-map bookkeeping is exactly this case (spec §4.1): it
// needs a FreshScope threaded as pass State, not a plain (env, in) -> out
// function. NamedPure embeds f via toppass.LiftTopPass rather than calling
// it directly, so the pure pass genuinely runs inside the TopPass carrier
// like every other stage's output.
func NamedPure[In, State, Out any](
	name string,
	initState State,
	f func(in In) toppass.Pass[topenv.TopEnv, State, Out],
	check Checker[Out],
	prettyIn func(In) string,
	prettyOut func(Out) string,
) func(In) toppass.TopPass[topenv.TopEnv, Out] {
	return func(in In) toppass.TopPass[topenv.TopEnv, Out] {
		preText, perr := safeString(func() string { return prettyIn(in) })
		preCtx := name + " pass with input:\n" + preText
		if perr != nil {
			return toppass.Fail[topenv.TopEnv, Out](diagnostics.AddDebugCtx(preCtx, perr))
		}

		safePure := toppass.Pass[topenv.TopEnv, State, Out](func(env topenv.TopEnv, state State, scope toppass.FreshScope) (out Out, s State, sc toppass.FreshScope, err *diagnostics.Err) {
			defer func() {
				if r := recover(); r != nil {
					err = diagnostics.New(diagnostics.CompilerErr, nil, "%v", r)
				}
			}()
			return f(in)(env, state, scope)
		})

		return toppass.Bind(
			toppass.LiftTopPass[topenv.TopEnv, State, Out](initState, toppass.NewFreshScope(), safePure),
			func(out Out) toppass.TopPass[topenv.TopEnv, Out] {
				outText, operr := safeString(func() string { return prettyOut(out) })
				if operr != nil {
					return toppass.Fail[topenv.TopEnv, Out](diagnostics.AddDebugCtx(preCtx, operr))
				}
				return toppass.Bind(
					toppass.WriteOut[topenv.TopEnv](block.PassInfo{Stage: name, Pretty: outText}),
					func(struct{}) toppass.TopPass[topenv.TopEnv, Out] {
						if check == nil {
							return toppass.Pure[topenv.TopEnv](out)
						}
						postCtx := name + " pass output check:\n" + outText
						cerr := safeCheck(check, out)
						if cerr != nil {
							return toppass.Fail[topenv.TopEnv, Out](diagnostics.AddDebugCtx(postCtx, cerr))
						}
						return toppass.Pure[topenv.TopEnv](out)
					},
				)
			},
		)
	}
}

func safeCall[In, Out any](f Collaborator[In, Out], env topenv.TopEnv, in In) (out Out, err *diagnostics.Err) {
	defer func() {
		if r := recover(); r != nil {
			err = diagnostics.New(diagnostics.CompilerErr, nil, "%v", r)
		}
	}()
	return f(env, in)
}

func safeString(f func() string) (s string, err *diagnostics.Err) {
	defer func() {
		if r := recover(); r != nil {
			err = diagnostics.New(diagnostics.CompilerErr, nil, "%v", r)
		}
	}()
	return f(), nil
}

func safeCheck[Out any](check Checker[Out], out Out) (err *diagnostics.Err) {
	defer func() {
		if r := recover(); r != nil {
			err = diagnostics.New(diagnostics.CompilerErr, nil, "%v", r)
		}
	}()
	return check(out)
}
