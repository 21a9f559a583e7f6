package jitrpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/topenv"
)

func TestLoadAtomValRoundTrips(t *testing.T) {
	a := newAtom(IntVal{V: 42})
	v, err := LoadAtomVal(a)
	require.NoError(t, err)
	assert.Equal(t, IntVal{V: 42}, v)
}

func TestLoadAtomValRejectsForeignAtom(t *testing.T) {
	_, err := LoadAtomVal(foreignAtom{})
	assert.Error(t, err)
}

type foreignAtom struct{}

func (foreignAtom) AtomID() string { return "foreign" }

func TestValueStrings(t *testing.T) {
	assert.Equal(t, "1", IntVal{V: 1}.String())
	assert.Equal(t, "3.5", FloatVal{V: 3.5}.String())
	assert.Equal(t, "true", BoolVal{V: true}.String())
}

func TestLocalEvalConstAndBin(t *testing.T) {
	m := &dexir.ImpModule{Defs: []dexir.ImpDef{{
		Name: "x",
		Type: dexir.TInt{},
		Stmts: []dexir.ImpStmt{
			{Dst: "v0", Type: dexir.TInt{}, Op: dexir.OpConstInt{Value: 2}},
			{Dst: "v1", Type: dexir.TInt{}, Op: dexir.OpConstInt{Value: 3}},
			{Dst: "v2", Type: dexir.TInt{}, Op: dexir.OpBin{Op: "+", L: "v0", R: "v1"}},
		},
		Result: "v2",
	}}}
	delta, err := (Local{}).Eval(context.Background(), topenv.New(), m)
	require.NoError(t, err)
	b, ok := delta.Lookup("x")
	require.True(t, ok)
	v, verr := LoadAtomVal(b.Atom)
	require.NoError(t, verr)
	assert.Equal(t, IntVal{V: 5}, v)
}

func TestLocalEvalClosureApplication(t *testing.T) {
	// f = \x -> x + 1; f applied to 41.
	closureBody := &dexir.ImpModule{Defs: []dexir.ImpDef{{
		Name: "x",
		Type: dexir.TInt{},
		Stmts: []dexir.ImpStmt{
			{Dst: "one", Type: dexir.TInt{}, Op: dexir.OpConstInt{Value: 1}},
			{Dst: "sum", Type: dexir.TInt{}, Op: dexir.OpBin{Op: "+", L: "x", R: "one"}},
		},
		Result: "sum",
	}}}
	m := &dexir.ImpModule{Defs: []dexir.ImpDef{
		{
			Name: "f",
			Type: dexir.TFun{Arg: dexir.TInt{}, Ret: dexir.TInt{}},
			Stmts: []dexir.ImpStmt{
				{Dst: "c0", Type: dexir.TFun{Arg: dexir.TInt{}, Ret: dexir.TInt{}},
					Op: dexir.OpMakeClosure{Param: "x", Captures: nil, Body: closureBody}},
			},
			Result: "c0",
		},
		{
			Name: "result",
			Type: dexir.TInt{},
			Stmts: []dexir.ImpStmt{
				{Dst: "fn", Type: dexir.TFun{Arg: dexir.TInt{}, Ret: dexir.TInt{}}, Op: dexir.OpLoad{Name: "f"}},
				{Dst: "arg", Type: dexir.TInt{}, Op: dexir.OpConstInt{Value: 41}},
				{Dst: "app", Type: dexir.TInt{}, Op: dexir.OpApply{Fn: "fn", Arg: "arg"}},
			},
			Result: "app",
		},
	}}
	delta, err := (Local{}).Eval(context.Background(), topenv.New(), m)
	require.NoError(t, err)
	b, ok := delta.Lookup("result")
	require.True(t, ok)
	v, verr := LoadAtomVal(b.Atom)
	require.NoError(t, verr)
	assert.Equal(t, IntVal{V: 42}, v)
}

func TestLocalEvalReadsAmbientEnvGlobals(t *testing.T) {
	seeded := topenv.New().With("g", topenv.Binding{Type: dexir.TInt{}, Atom: newAtom(IntVal{V: 10})})
	m := &dexir.ImpModule{Defs: []dexir.ImpDef{{
		Name:   "x",
		Type:   dexir.TInt{},
		Stmts:  []dexir.ImpStmt{{Dst: "v0", Type: dexir.TInt{}, Op: dexir.OpLoad{Name: "g"}}},
		Result: "v0",
	}}}
	delta, err := (Local{}).Eval(context.Background(), seeded, m)
	require.NoError(t, err)
	b, ok := delta.Lookup("x")
	require.True(t, ok)
	v, verr := LoadAtomVal(b.Atom)
	require.NoError(t, verr)
	assert.Equal(t, IntVal{V: 10}, v)
}

func TestLocalEvalReportsUnrealizedBindingOnRestoredSession(t *testing.T) {
	restored := topenv.New().With("g", topenv.Binding{Type: dexir.TInt{}})
	m := &dexir.ImpModule{Defs: []dexir.ImpDef{{
		Name:   "x",
		Type:   dexir.TInt{},
		Stmts:  []dexir.ImpStmt{{Dst: "v0", Type: dexir.TInt{}, Op: dexir.OpLoad{Name: "g"}}},
		Result: "v0",
	}}}
	_, err := (Local{}).Eval(context.Background(), restored, m)
	require.Error(t, err)
	var unrealized UnrealizedBindingError
	require.ErrorAs(t, err, &unrealized)
	assert.Equal(t, "g", unrealized.Name)
}
