package pipeline

import (
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/topenv"
)

func prettyFModule(m *dexir.FModule) string     { return m.Pretty() }
func prettyModule(m *dexir.Module) string       { return m.Pretty() }
func prettyImpModule(m *dexir.ImpModule) string { return m.Pretty() }
func prettyTopEnv(e topenv.TopEnv) string       { return e.Pretty() }

func checkFTyped(m *dexir.Module) *diagnostics.Err   { return dexir.CheckModule(m, false) }
func checkTypedANF(m *dexir.Module) *diagnostics.Err { return dexir.CheckModule(m, true) }
func checkImp(m *dexir.ImpModule) *diagnostics.Err   { return dexir.CheckImpModule(m) }
