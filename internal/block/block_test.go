package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterOutputsPreservesOrder(t *testing.T) {
	outs := []Output{
		PassInfo{Stage: "a"},
		TextOut{Text: "skip me"},
		PassInfo{Stage: "b"},
	}
	keep := func(o Output) bool { _, ok := o.(PassInfo); return ok }
	filtered := FilterOutputs(outs, keep)
	assert.Equal(t, []Output{PassInfo{Stage: "a"}, PassInfo{Stage: "b"}}, filtered)
}

func TestFilterOutputsIsIdempotent(t *testing.T) {
	outs := []Output{PassInfo{Stage: "a"}, TextOut{Text: "x"}, PassInfo{Stage: "b"}}
	keep := func(o Output) bool { _, ok := o.(PassInfo); return ok }
	once := FilterOutputs(outs, keep)
	twice := FilterOutputs(once, keep)
	assert.Equal(t, once, twice)
}

func TestFilterOutputsEmptyInputYieldsEmptySlice(t *testing.T) {
	filtered := FilterOutputs(nil, func(Output) bool { return true })
	assert.Empty(t, filtered)
}

func TestFilterOutputsRejectAllYieldsEmpty(t *testing.T) {
	outs := []Output{TextOut{Text: "x"}}
	filtered := FilterOutputs(outs, func(Output) bool { return false })
	assert.Empty(t, filtered)
}
