package toppass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dex-lang/dexcore/internal/block"
	"github.com/dex-lang/dexcore/internal/diagnostics"
)

// intEnv is a trivial Monoid[intEnv] used to exercise the carrier without
// pulling in topenv.
type intEnv struct{ n int }

func (e intEnv) Combine(other intEnv) intEnv { return intEnv{n: e.n + other.n} }

func TestPutEnvAccumulatesIntoDelta(t *testing.T) {
	m := Bind(PutEnv(intEnv{n: 1}), func(struct{}) TopPass[intEnv, struct{}] {
		return PutEnv(intEnv{n: 2})
	})
	_, err, delta := Run[intEnv, struct{}](func(block.Output) {}, intEnv{}, m)
	require.Nil(t, err)
	assert.Equal(t, 3, delta.n)
}

func TestFailShortCircuitsBind(t *testing.T) {
	called := false
	wantErr := diagnostics.New(diagnostics.TypeErr, nil, "boom")
	m := Bind(Fail[intEnv, int](wantErr), func(int) TopPass[intEnv, int] {
		called = true
		return Pure[intEnv](0)
	})
	_, err, _ := Run[intEnv, int](func(block.Output) {}, intEnv{}, m)
	assert.False(t, called)
	require.NotNil(t, err)
	assert.Equal(t, "boom", err.Message)
}

func TestOutputsPreservedOnFailureAfterWrite(t *testing.T) {
	var seen []block.Output
	sink := func(o block.Output) { seen = append(seen, o) }
	m := Then(
		WriteOut[intEnv](block.TextOut{Text: "before"}),
		Fail[intEnv, struct{}](diagnostics.New(diagnostics.CompilerErr, nil, "fail")),
	)
	_, err, _ := Run[intEnv, struct{}](sink, intEnv{}, m)
	require.NotNil(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, block.TextOut{Text: "before"}, seen[0])
}

func TestOutputOrderingIsEmissionOrder(t *testing.T) {
	var seen []string
	sink := func(o block.Output) { seen = append(seen, o.(block.TextOut).Text) }
	m := Then(
		WriteOut[intEnv](block.TextOut{Text: "a"}),
		Then(
			WriteOut[intEnv](block.TextOut{Text: "b"}),
			WriteOut[intEnv](block.TextOut{Text: "c"}),
		),
	)
	_, err, _ := Run[intEnv, struct{}](sink, intEnv{}, m)
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestCatchRecovers(t *testing.T) {
	m := Catch(
		Fail[intEnv, int](diagnostics.New(diagnostics.RuntimeErr, nil, "oops")),
		func(*diagnostics.Err) TopPass[intEnv, int] { return Pure[intEnv](42) },
	)
	v, err, _ := Run[intEnv, int](func(block.Output) {}, intEnv{}, m)
	require.Nil(t, err)
	assert.Equal(t, 42, v)
}

func TestGetEnvReadsAmbient(t *testing.T) {
	v, err, _ := Run[intEnv, int](func(block.Output) {}, intEnv{n: 7}, Bind(GetEnv[intEnv](), func(e intEnv) TopPass[intEnv, int] {
		return Pure[intEnv](e.n)
	}))
	require.Nil(t, err)
	assert.Equal(t, 7, v)
}

func TestLiftIOWrapsError(t *testing.T) {
	m := LiftIO[intEnv](func() (int, error) {
		return 0, assertErr{}
	})
	_, err, _ := Run[intEnv, int](func(block.Output) {}, intEnv{}, m)
	require.NotNil(t, err)
	assert.Equal(t, diagnostics.CompilerErr, err.Kind)
}

type assertErr struct{}

func (assertErr) Error() string { return "io failure" }

func TestFreshScopeNamesAreDistinctWithinAScope(t *testing.T) {
	scope := NewFreshScope()
	n1, scope := scope.Next("t")
	n2, _ := scope.Next("t")
	assert.NotEqual(t, n1, n2)
}

func TestFreshScopesAreIndependentAcrossInstances(t *testing.T) {
	a := NewFreshScope()
	b := NewFreshScope()
	na, _ := a.Next("t")
	nb, _ := b.Next("t")
	assert.NotEqual(t, na, nb)
}

func TestPairCombineIsComponentwise(t *testing.T) {
	p1 := Pair[intEnv, intEnv]{First: intEnv{n: 1}, Second: intEnv{n: 10}}
	p2 := Pair[intEnv, intEnv]{First: intEnv{n: 2}, Second: intEnv{n: 20}}
	merged := p1.Combine(p2)
	assert.Equal(t, 3, merged.First.n)
	assert.Equal(t, 30, merged.Second.n)
}

func TestCombine2AllOrNothingOnSecondStageFailure(t *testing.T) {
	f1 := func(int) TopPass[intEnv, int] { return Then(PutEnv(intEnv{n: 100}), Pure[intEnv](1)) }
	f2 := func(int) TopPass[intEnv, int] {
		return Then(PutEnv(intEnv{n: 999}), Fail[intEnv, int](diagnostics.New(diagnostics.CompilerErr, nil, "stage2 failed")))
	}
	combined := Combine2[intEnv, intEnv, int, int, int](f1, f2)
	_, err, delta := Run[Pair[intEnv, intEnv], int](func(block.Output) {}, Pair[intEnv, intEnv]{}, combined(0))
	require.NotNil(t, err)
	assert.Equal(t, 0, delta.First.n)
	assert.Equal(t, 0, delta.Second.n)
}

func TestCombine2ContributesBothDeltasOnSuccess(t *testing.T) {
	f1 := func(int) TopPass[intEnv, int] { return Then(PutEnv(intEnv{n: 1}), Pure[intEnv](2)) }
	f2 := func(int) TopPass[intEnv, int] { return Then(PutEnv(intEnv{n: 10}), Pure[intEnv](3)) }
	combined := Combine2[intEnv, intEnv, int, int, int](f1, f2)
	v, err, delta := Run[Pair[intEnv, intEnv], int](func(block.Output) {}, Pair[intEnv, intEnv]{}, combined(0))
	require.Nil(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, delta.First.n)
	assert.Equal(t, 10, delta.Second.n)
}

func TestReindexEnvSharesSink(t *testing.T) {
	var seen []string
	sink := func(o block.Output) { seen = append(seen, o.(block.TextOut).Text) }
	inner := WriteOut[intEnv](block.TextOut{Text: "inner"})
	outer := ReindexEnv[intEnv, intEnv, struct{}](
		func(e intEnv) intEnv { return e },
		func(e intEnv) intEnv { return e },
		inner,
	)
	_, err, _ := Run[intEnv, struct{}](sink, intEnv{}, outer)
	require.Nil(t, err)
	assert.Equal(t, []string{"inner"}, seen)
}
