package passes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/diagnostics"
	"github.com/dex-lang/dexcore/internal/topenv"
)

func TestDeshadowRenamesShadowingLet(t *testing.T) {
	in := &dexir.FModule{Defs: []dexir.Def{{
		Name: "f",
		Body: dexir.Let{Name: "x", Val: dexir.LitInt{Value: 1},
			Body: dexir.Let{Name: "x", Val: dexir.LitInt{Value: 2}, Body: dexir.Var{Name: "x"}}},
	}}}
	out, err := Deshadow(topenv.New(), in)
	require.Nil(t, err)
	outer := out.Defs[0].Body.(dexir.Let)
	inner := outer.Body.(dexir.Let)
	assert.NotEqual(t, outer.Name, inner.Name)
	innerRef := inner.Body.(dexir.Var)
	assert.Equal(t, inner.Name, innerRef.Name)
}

func TestDeshadowRejectsShadowingTypeBinding(t *testing.T) {
	env := topenv.Bind1("Foo", topenv.Binding{IsType: true, TypeDef: dexir.TInt{}})
	in := &dexir.FModule{Defs: []dexir.Def{{Name: "Foo", Body: dexir.LitInt{Value: 1}}}}
	_, err := Deshadow(env, in)
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.LinErr, err.Kind)
}

func TestTypeInferAssignsLiteralTypes(t *testing.T) {
	in := &dexir.FModule{Defs: []dexir.Def{{Name: "x", Body: dexir.LitInt{Value: 1}}}}
	out, err := TypeInfer(topenv.New(), in)
	require.Nil(t, err)
	assert.Equal(t, dexir.TInt{}, out.Defs[0].Type)
}

func TestTypeInferResolvesEarlierDef(t *testing.T) {
	in := &dexir.FModule{Defs: []dexir.Def{
		{Name: "x", Body: dexir.LitInt{Value: 1}},
		{Name: "y", Body: dexir.Var{Name: "x"}},
	}}
	out, err := TypeInfer(topenv.New(), in)
	require.Nil(t, err)
	assert.Equal(t, dexir.TInt{}, out.Defs[1].Type)
}

func TestTypeInferUnboundVariable(t *testing.T) {
	in := &dexir.FModule{Defs: []dexir.Def{{Name: "x", Body: dexir.Var{Name: "nope"}}}}
	_, err := TypeInfer(topenv.New(), in)
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.UnboundVarErr, err.Kind)
}

func TestTypeInferRejectsReferenceToTypeName(t *testing.T) {
	env := topenv.Bind1("Foo", topenv.Binding{IsType: true, TypeDef: dexir.TInt{}})
	in := &dexir.FModule{Defs: []dexir.Def{{Name: "x", Body: dexir.Var{Name: "Foo"}}}}
	_, err := TypeInfer(env, in)
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.TypeErr, err.Kind)
}

func TestTypeInferLambdaRequiresParamType(t *testing.T) {
	in := &dexir.FModule{Defs: []dexir.Def{{Name: "f", Body: dexir.Lam{Param: "x", Body: dexir.Var{Name: "x"}}}}}
	_, err := TypeInfer(topenv.New(), in)
	require.NotNil(t, err)
}

func TestTypeInferBinOpMismatch(t *testing.T) {
	in := &dexir.FModule{Defs: []dexir.Def{{Name: "x", Body: dexir.BinOp{Op: "+", L: dexir.LitInt{Value: 1}, R: dexir.LitBool{Value: true}}}}}
	_, err := TypeInfer(topenv.New(), in)
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.TypeErr, err.Kind)
}

func TestNormalizeNamesCompoundBinOp(t *testing.T) {
	in := &dexir.Module{Defs: []dexir.TypedDef{{
		Name: "x",
		Type: dexir.TInt{},
		Body: dexir.BinOp{Op: "+",
			L: dexir.BinOp{Op: "*", L: dexir.LitInt{Value: 2}, R: dexir.LitInt{Value: 3}},
			R: dexir.LitInt{Value: 1}},
	}}}
	out, err := Normalize(topenv.New(), in)
	require.Nil(t, err)
	require.Nil(t, dexir.CheckModule(out, true))
}

func TestNormalizePreservesTypedVars(t *testing.T) {
	in := &dexir.Module{Defs: []dexir.TypedDef{{
		Name: "x",
		Type: dexir.TInt{},
		Body: dexir.BinOp{Op: "+", L: dexir.LitInt{Value: 1}, R: dexir.LitInt{Value: 2}},
	}}}
	out, err := Normalize(topenv.New(), in)
	require.Nil(t, err)
	let, ok := out.Defs[0].Body.(dexir.Let)
	require.True(t, ok)
	v, ok := let.Body.(dexir.Var)
	require.True(t, ok)
	assert.Equal(t, dexir.TInt{}, v.Type)
}

func TestSimplifyConstantFolds(t *testing.T) {
	in := &dexir.Module{Defs: []dexir.TypedDef{{
		Name: "x",
		Type: dexir.TInt{},
		Body: dexir.BinOp{Op: "+", L: dexir.LitInt{Value: 2}, R: dexir.LitInt{Value: 3}},
	}}}
	out, err := Simplify(topenv.New(), in)
	require.Nil(t, err)
	lit, ok := out.Defs[0].Body.(dexir.LitInt)
	require.True(t, ok)
	assert.Equal(t, int64(5), lit.Value)
}

func TestSimplifyInlinesAtomicLet(t *testing.T) {
	in := &dexir.Module{Defs: []dexir.TypedDef{{
		Name: "x",
		Type: dexir.TInt{},
		Body: dexir.Let{Name: "t", Val: dexir.LitInt{Value: 7}, Body: dexir.Var{Name: "t", Type: dexir.TInt{}}},
	}}}
	out, err := Simplify(topenv.New(), in)
	require.Nil(t, err)
	lit, ok := out.Defs[0].Body.(dexir.LitInt)
	require.True(t, ok)
	assert.Equal(t, int64(7), lit.Value)
}

func TestToImpProducesWellFormedModule(t *testing.T) {
	in := &dexir.Module{Defs: []dexir.TypedDef{{
		Name: "x",
		Type: dexir.TInt{},
		Body: dexir.Let{Name: "t", Val: dexir.BinOp{Op: "+", L: dexir.LitInt{Value: 1}, R: dexir.LitInt{Value: 2}}, Body: dexir.Var{Name: "t", Type: dexir.TInt{}}},
	}}}
	out, err := ToImp(topenv.New(), in)
	require.Nil(t, err)
	require.Nil(t, dexir.CheckImpModule(out))
}

func TestToImpClosureCapturesSortedFreeVars(t *testing.T) {
	in := &dexir.Module{Defs: []dexir.TypedDef{{
		Name: "f",
		Type: dexir.TFun{Arg: dexir.TInt{}, Ret: dexir.TInt{}},
		Body: dexir.Lam{Param: "x", ParamType: dexir.TInt{},
			Body: dexir.BinOp{Op: "+", L: dexir.Var{Name: "x", Type: dexir.TInt{}}, R: dexir.Var{Name: "z", Type: dexir.TInt{}}}},
	}}}
	out, err := ToImp(topenv.New(), in)
	require.Nil(t, err)
	require.Len(t, out.Defs[0].Stmts, 1)
	closure, ok := out.Defs[0].Stmts[0].Op.(dexir.OpMakeClosure)
	require.True(t, ok)
	assert.Equal(t, []string{"z"}, closure.Captures)
}
