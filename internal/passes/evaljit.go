package passes

import (
	"context"
	"errors"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/jitrpc"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// EvalJitWith returns the eval-jit collaborator bound to the given
// Executor (Local for in-process evaluation, Remote for the out-of-process
// codegen service). It is the one collaborator in the staged pipeline that
// performs I/O (spec §6's "emits I/O" column); named-pass's
// catch-hard-errors is what turns a panicking or failing Executor into a
// normal CompilerErr rather than a process crash.
func EvalJitWith(exec jitrpc.Executor) func(topenv.TopEnv, *dexir.ImpModule) (topenv.TopEnv, *diagnostics.Err) {
	return func(env topenv.TopEnv, in *dexir.ImpModule) (topenv.TopEnv, *diagnostics.Err) {
		delta, err := exec.Eval(context.Background(), env, in)
		if err != nil {
			var unrealized jitrpc.UnrealizedBindingError
			if errors.As(err, &unrealized) {
				return topenv.TopEnv{}, diagnostics.New(diagnostics.RuntimeErr, nil, "%s", err.Error())
			}
			return topenv.TopEnv{}, diagnostics.New(diagnostics.CompilerErr, nil, "%s", err.Error())
		}
		return delta, nil
	}
}
