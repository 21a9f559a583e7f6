package pipeline

import (
	"github.com/dex-lang/dexcore/internal/block"
	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/jitrpc"
	"github.com/dex-lang/dexcore/internal/passes"
	"github.com/dex-lang/dexcore/internal/toppass"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// Backend selects the eval-jit Executor (spec §6). Interp is reserved and
// currently a no-op: it always yields an empty delta without running any
// pass, matching the source's "not wired" state rather than raising an
// error for selecting it.
type Backend int

const (
	Jit Backend = iota
	Interp
)

// Result is eval-block's non-environment half of its (Env-delta, Result)
// return pair: the outputs a block produced and whether it succeeded.
type Result struct {
	Outputs []block.Output
	Err     *diagnostics.Err
}

// EvalModule builds eval-module = infer-types >+> eval-typed exactly as
// spec §4.6 lays it out, by left-folding Chain over the six named stages,
// bound to exec for the terminal jit stage.
func EvalModule(exec jitrpc.Executor) func(*dexir.FModule) toppass.TopPass[topenv.TopEnv, topenv.TopEnv] {
	deshadowStage := NamedPure[*dexir.FModule, toppass.FreshScope, *dexir.FModule]("deshadow", toppass.NewFreshScope(), passes.DeshadowPass, NoCheck[*dexir.FModule], prettyFModule, prettyFModule)
	typeInferStage := Named[*dexir.FModule, *dexir.Module]("type inference", passes.TypeInfer, checkFTyped, prettyFModule, prettyModule)
	normalizeStage := Named[*dexir.Module, *dexir.Module]("normalize", passes.Normalize, checkTypedANF, prettyModule, prettyModule)
	simplifyStage := Named[*dexir.Module, *dexir.Module]("simplify", passes.Simplify, checkTypedANF, prettyModule, prettyModule)
	toImpStage := Named[*dexir.Module, *dexir.ImpModule]("imp", passes.ToImp, checkImp, prettyModule, prettyImpModule)
	jitStage := contributeDelta(Named[*dexir.ImpModule, topenv.TopEnv]("jit", passes.EvalJitWith(exec), NoCheck[topenv.TopEnv], prettyImpModule, prettyTopEnv))

	inferTypes := Chain[*dexir.FModule, *dexir.FModule, *dexir.Module](deshadowStage, typeInferStage)
	inferTypes = Chain[*dexir.FModule, *dexir.Module, *dexir.Module](inferTypes, normalizeStage)
	evalTypedToImp := Chain[*dexir.Module, *dexir.Module, *dexir.ImpModule](simplifyStage, toImpStage)
	evalTyped := Chain[*dexir.Module, *dexir.ImpModule, topenv.TopEnv](evalTypedToImp, jitStage)
	return Chain[*dexir.FModule, *dexir.Module, topenv.TopEnv](inferTypes, evalTyped)
}

// runModule runs eval-module against m, feeding outputs through a
// buffering sink and replaying only those keep accepts to the outer sink —
// spec §5's prescribed implementation for filter-outputs at a pipeline
// boundary ("run the inner pipeline against a buffering sink, then replay
// matches to the outer sink").
func runModule(exec jitrpc.Executor, env topenv.TopEnv, m *dexir.FModule, keep func(block.Output) bool) (topenv.TopEnv, []block.Output, *diagnostics.Err) {
	var buffered []block.Output
	bufferSink := toppass.Sink(func(o block.Output) { buffered = append(buffered, o) })
	_, err, delta := toppass.Run(bufferSink, env, EvalModule(exec)(m))
	if err != nil {
		return topenv.TopEnv{}, block.FilterOutputs(buffered, keep), err
	}
	return delta, block.FilterOutputs(buffered, keep), nil
}

func suppressAll(block.Output) bool { return false }

func onlyPassInfo(o block.Output) bool {
	_, ok := o.(block.PassInfo)
	return ok
}

// stageNames lists eval-module's six named stages, in pipeline order — the
// only values a Command(ShowPass(s), _) may legally name.
var stageNames = []string{"deshadow", "type inference", "normalize", "simplify", "imp", "jit"}

func isKnownStage(stage string) bool {
	for _, s := range stageNames {
		if s == stage {
			return true
		}
	}
	return false
}

func onlyPassInfoStage(stage string) func(block.Output) bool {
	return func(o block.Output) bool {
		pi, ok := o.(block.PassInfo)
		return ok && pi.Stage == stage
	}
}

// EvalBlock is the top-level pipeline entry point (spec §4.6's eval-block):
// it dispatches on blk's kind, evaluates any module the block carries
// through eval-module with the given kind's output filter, and interprets
// the resulting environment for the requested Command. Any error raised by
// running the block's module is passed through add-ctx (C7) against that
// block's own SourceText/SourceOffset before being returned, so a Region
// attached by a pass (e.g. type-infer's UnboundVarErr) is rebased and
// highlighted against the real source it came from; a block with no source
// text (built directly rather than through internal/frontend) leaves add-ctx
// a no-op, since a region-less Err passes through unchanged.
func EvalBlock(backend Backend, exec jitrpc.Executor, env topenv.TopEnv, blk block.Kind) (topenv.TopEnv, Result) {
	if backend == Interp {
		return topenv.New(), Result{}
	}
	switch b := blk.(type) {
	case block.RunModule:
		delta, outs, err := runModule(exec, env, b.Module, suppressAll)
		if err != nil {
			return topenv.TopEnv{}, Result{Outputs: outs, Err: diagnostics.AddCtx(b.SourceText, b.SourceOffset, err)}
		}
		return delta, Result{}

	case block.Command:
		switch cmd := b.Cmd.(type) {
		case block.EvalExpr:
			delta, outs, err := runModule(exec, env, b.Module, suppressAll)
			if err != nil {
				return topenv.TopEnv{}, Result{Outputs: outs, Err: diagnostics.AddCtx(b.SourceText, b.SourceOffset, err)}
			}
			merged := env.Combine(delta)
			binding, ok := merged.Lookup(b.VarName)
			if !ok || binding.IsType {
				return topenv.TopEnv{}, Result{Err: diagnostics.New(diagnostics.UnboundVarErr, nil,
					"`%s` is not a bound value", b.VarName)}
			}
			val, verr := jitrpc.LoadAtomVal(binding.Atom)
			if verr != nil {
				return topenv.TopEnv{}, Result{Err: diagnostics.Wrap(verr)}
			}
			return topenv.New(), Result{Outputs: []block.Output{block.ValOut{Format: cmd.Format, Value: val.String()}}}

		case block.GetType:
			delta, outs, err := runModule(exec, env, b.Module, suppressAll)
			if err != nil {
				return topenv.TopEnv{}, Result{Outputs: outs, Err: diagnostics.AddCtx(b.SourceText, b.SourceOffset, err)}
			}
			merged := env.Combine(delta)
			binding, ok := merged.Lookup(b.VarName)
			if !ok || binding.IsType {
				return topenv.TopEnv{}, Result{Err: diagnostics.New(diagnostics.UnboundVarErr, nil,
					"`%s` is not a bound value", b.VarName)}
			}
			return topenv.New(), Result{Outputs: []block.Output{block.TextOut{Text: binding.Type.String()}}}

		case block.ShowPasses:
			_, outs, err := runModule(exec, env, b.Module, onlyPassInfo)
			if err != nil {
				return topenv.TopEnv{}, Result{Outputs: outs, Err: diagnostics.AddCtx(b.SourceText, b.SourceOffset, err)}
			}
			return topenv.New(), Result{Outputs: outs}

		case block.ShowPass:
			if !isKnownStage(cmd.Stage) {
				return topenv.TopEnv{}, Result{Err: diagnostics.New(diagnostics.CompilerErr, nil,
					"unknown pass stage %q, expected one of %v", cmd.Stage, stageNames)}
			}
			_, outs, err := runModule(exec, env, b.Module, onlyPassInfoStage(cmd.Stage))
			if err != nil {
				return topenv.TopEnv{}, Result{Outputs: outs, Err: diagnostics.AddCtx(b.SourceText, b.SourceOffset, err)}
			}
			return topenv.New(), Result{Outputs: outs}

		default:
			return topenv.New(), Result{}
		}

	case block.UnParseable:
		return topenv.TopEnv{}, Result{Err: diagnostics.New(diagnostics.ParseErr, nil, "%s", b.Reason)}

	case block.IncludeSourceFile:
		return topenv.TopEnv{}, Result{Err: diagnostics.New(diagnostics.NotImplementedErr, nil,
			"include-source-file %q is not supported by this core", b.Path)}

	case block.LoadData:
		return topenv.TopEnv{}, Result{Err: diagnostics.New(diagnostics.NotImplementedErr, nil,
			"load-data %q is not supported by this core", b.Path)}

	default:
		return topenv.New(), Result{}
	}
}

// contributeDelta makes the jit stage's produced TopEnv the pipeline's
// actual delta contribution, via PutEnv, rather than leaving it as a
// return value the pipeline's Env-accumulation machinery never sees. Every
// earlier stage only reads TopEnv; eval-jit is the sole producer of
// bindings, so it is the sole caller of PutEnv.
func contributeDelta(m func(*dexir.ImpModule) toppass.TopPass[topenv.TopEnv, topenv.TopEnv]) func(*dexir.ImpModule) toppass.TopPass[topenv.TopEnv, topenv.TopEnv] {
	return func(in *dexir.ImpModule) toppass.TopPass[topenv.TopEnv, topenv.TopEnv] {
		return toppass.Bind(m(in), func(delta topenv.TopEnv) toppass.TopPass[topenv.TopEnv, topenv.TopEnv] {
			return toppass.Then(toppass.PutEnv[topenv.TopEnv](delta), toppass.Pure[topenv.TopEnv](delta))
		})
	}
}
