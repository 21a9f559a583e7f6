package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dex-lang/dexcore/internal/block"
	"github.com/dex-lang/dexcore/internal/dexir"
)

func TestTrimComment(t *testing.T) {
	assert.Equal(t, "x = 1 ", TrimComment("x = 1 -- a comment"))
	assert.Equal(t, "x = 1", TrimComment("x = 1"))
}

func TestParseExprArithmeticPrecedence(t *testing.T) {
	e, err := parseExprString("1 + 2 * 3")
	require.NoError(t, err)
	bin, ok := e.(dexir.BinOp)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	rhs, ok := bin.R.(dexir.BinOp)
	require.True(t, ok)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseExprApplicationBindsTighterThanOperators(t *testing.T) {
	e, err := parseExprString("f x + 1")
	require.NoError(t, err)
	bin, ok := e.(dexir.BinOp)
	require.True(t, ok)
	app, ok := bin.L.(dexir.App)
	require.True(t, ok)
	assert.Equal(t, dexir.Var{Name: "f"}, app.Fn)
}

func TestParseExprLambdaWithTypeAnnotation(t *testing.T) {
	e, err := parseExprString(`\x : Int -> x + 1`)
	require.NoError(t, err)
	lam, ok := e.(dexir.Lam)
	require.True(t, ok)
	assert.Equal(t, "x", lam.Param)
	assert.Equal(t, dexir.TInt{}, lam.ParamType)
}

func TestParseExprLet(t *testing.T) {
	e, err := parseExprString("let x = 1 in x + 1")
	require.NoError(t, err)
	let, ok := e.(dexir.Let)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)
}

func TestParseExprParenthesized(t *testing.T) {
	e, err := parseExprString("(1 + 2) * 3")
	require.NoError(t, err)
	bin, ok := e.(dexir.BinOp)
	require.True(t, ok)
	assert.Equal(t, "*", bin.Op)
	_, ok = bin.L.(dexir.BinOp)
	assert.True(t, ok)
}

func TestParseExprRejectsTrailingGarbage(t *testing.T) {
	_, err := parseExprString("1 + 2 )")
	assert.Error(t, err)
}

func TestParseLineDefProducesRunModule(t *testing.T) {
	blk, err := ParseLine("x = 1 + 2")
	require.NoError(t, err)
	rm, ok := blk.(block.RunModule)
	require.True(t, ok)
	assert.Equal(t, "x", rm.Module.Defs[0].Name)
}

func TestParseLineBareExprProducesEvalExprCommand(t *testing.T) {
	blk, err := ParseLine("1 + 2")
	require.NoError(t, err)
	cmd, ok := blk.(block.Command)
	require.True(t, ok)
	_, isEval := cmd.Cmd.(block.EvalExpr)
	assert.True(t, isEval)
	assert.Equal(t, "_", cmd.VarName)
}

func TestParseLineTypeCommandOnBareName(t *testing.T) {
	blk, err := ParseLine(":t x")
	require.NoError(t, err)
	cmd, ok := blk.(block.Command)
	require.True(t, ok)
	_, isGetType := cmd.Cmd.(block.GetType)
	assert.True(t, isGetType)
	assert.Equal(t, "x", cmd.VarName)
	assert.Empty(t, cmd.Module.Defs)
}

func TestParseLineShowPasses(t *testing.T) {
	blk, err := ParseLine(":show-passes 1 + 1")
	require.NoError(t, err)
	cmd, ok := blk.(block.Command)
	require.True(t, ok)
	_, isShowPasses := cmd.Cmd.(block.ShowPasses)
	assert.True(t, isShowPasses)
}

func TestParseLinePassStage(t *testing.T) {
	blk, err := ParseLine(":pass normalize 1 + 1")
	require.NoError(t, err)
	cmd, ok := blk.(block.Command)
	require.True(t, ok)
	sp, isShowPass := cmd.Cmd.(block.ShowPass)
	require.True(t, isShowPass)
	assert.Equal(t, "normalize", sp.Stage)
}

func TestParseLineMalformedIsUnParseable(t *testing.T) {
	blk, err := ParseLine("x = (1 +")
	require.NoError(t, err)
	_, ok := blk.(block.UnParseable)
	assert.True(t, ok)
}

func TestParseLineBlankIsOther(t *testing.T) {
	blk, err := ParseLine("   ")
	require.NoError(t, err)
	_, ok := blk.(block.Other)
	assert.True(t, ok)
}

func TestParseFileCollectsMultipleDefs(t *testing.T) {
	src := "x = 1\n-- comment\ny = x + 1\n"
	m, err := ParseFile(src)
	require.NoError(t, err)
	require.Len(t, m.Defs, 2)
	assert.Equal(t, "x", m.Defs[0].Name)
	assert.Equal(t, "y", m.Defs[1].Name)
}

func TestParseFileRejectsNonDefLine(t *testing.T) {
	_, err := ParseFile("1 + 1\n")
	assert.Error(t, err)
}
