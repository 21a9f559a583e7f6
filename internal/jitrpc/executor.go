package jitrpc

import (
	"context"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// Executor is the eval-jit collaborator's I/O boundary: given the
// imperative module, realize every top-level definition as an Atom and
// return the TopEnv delta binding each def's name to it. cmd/dex picks
// Local or Remote from the config's JitTarget (Remote when it is set); the
// pipeline's Jit/Interp Backend selector is separate from this choice.
type Executor interface {
	Eval(ctx context.Context, env topenv.TopEnv, m *dexir.ImpModule) (topenv.TopEnv, error)
}
