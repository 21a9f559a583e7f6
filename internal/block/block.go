// Package block defines SourceBlock, the unit of input the pipeline driver
// (C6) consumes, and Output, the tagged record the pipeline emits.
package block

import "github.com/dex-lang/dexcore/internal/dexir"

// Kind is the closed variant of what a SourceBlock can contain. It is
// sealed: the only implementations are the ones in this file.
type Kind interface {
	blockKind()
}

// RunModule evaluates m for its side effects (top-level definitions),
// discarding all Output it would otherwise produce. SourceText/SourceOffset
// carry the raw text m.Defs' bodies were parsed from, when known, so the
// pipeline driver can run add-ctx (C7) against a real error's Region; a
// block built without a frontend parser (e.g. directly by a test) simply
// leaves them zero, and add-ctx degrades to a no-op-safe empty highlight.
type RunModule struct {
	Module       *dexir.FModule
	SourceText   string
	SourceOffset int
}

func (RunModule) blockKind() {}

// Command runs m and then interprets Cmd against the resulting environment,
// optionally naming the variable VarName the command targets. SourceText/
// SourceOffset mirror RunModule's.
type Command struct {
	Cmd          CommandKind
	VarName      string
	Module       *dexir.FModule
	SourceText   string
	SourceOffset int
}

func (Command) blockKind() {}

// IncludeSourceFile and LoadData are explicitly unsupported by this core;
// they always fail with NotImplementedErr (spec §4.6, Open Question a).
type IncludeSourceFile struct{ Path string }

func (IncludeSourceFile) blockKind() {}

type LoadData struct{ Path string }

func (LoadData) blockKind() {}

// UnParseable carries the reason parsing failed upstream of the core.
type UnParseable struct{ Reason string }

func (UnParseable) blockKind() {}

// Other is the catch-all for block kinds this core does not recognize; it
// no-ops with an empty delta, per the spec's explicit (if not maximally
// strict) design.
type Other struct{}

func (Other) blockKind() {}

// CommandKind is the closed variant of what a Command can ask for.
type CommandKind interface {
	commandKind()
}

// OutputFormat selects how EvalExpr should render its result.
type OutputFormat string

const (
	FormatDefault OutputFormat = "default"
	FormatHTML    OutputFormat = "html"
)

type EvalExpr struct{ Format OutputFormat }

func (EvalExpr) commandKind() {}

type GetType struct{}

func (GetType) commandKind() {}

type ShowPasses struct{}

func (ShowPasses) commandKind() {}

type ShowPass struct{ Stage string }

func (ShowPass) commandKind() {}

// OtherCommand covers any command variant this core doesn't specifically
// interpret (spec §4.6 Command(other, ...) => no-op).
type OtherCommand struct{ Name string }

func (OtherCommand) commandKind() {}
