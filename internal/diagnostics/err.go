// Package diagnostics defines the structured error type shared by every
// pass in the evaluation pipeline and the source-region contextualizer
// (C7) that annotates errors with a highlighted slice of the offending
// block's text.
package diagnostics

import "fmt"

// Kind classifies an Err. The set is closed: callers should not invent new
// kinds outside this list, since CompilerErr is the only one C7 enriches
// with pipeline-internal debug context.
type Kind string

const (
	ParseErr          Kind = "ParseErr"
	TypeErr           Kind = "TypeErr"
	LinErr            Kind = "LinErr"
	UnboundVarErr     Kind = "UnboundVarErr"
	CompilerErr       Kind = "CompilerErr"
	NotImplementedErr Kind = "NotImplementedErr"
	RuntimeErr        Kind = "RuntimeErr"
)

// Region is a half-open [Start, Stop) byte range into the enclosing file's
// text. Byte offsets, not character offsets — see highlightRegion for the
// UTF-8 boundary handling this implies.
type Region struct {
	Start int
	Stop  int
}

// Rebase shifts a region from absolute file coordinates onto a block's own
// text by subtracting the block's starting offset.
func (r Region) Rebase(blockOffset int) Region {
	return Region{Start: r.Start - blockOffset, Stop: r.Stop - blockOffset}
}

// Err is the structured error propagated out of a pass. Exactly one of a
// pass's two outcomes ever holds: a result value, or one Err — never both.
type Err struct {
	Kind    Kind
	Region  *Region
	Message string
}

func (e *Err) Error() string {
	return e.Message
}

// New builds an Err with a message assembled the way fmt.Sprintf would.
func New(kind Kind, region *Region, format string, args ...any) *Err {
	return &Err{Kind: kind, Region: region, Message: fmt.Sprintf(format, args...)}
}

// Wrap adapts a host error (e.g. a native panic recovered by named-pass, or
// a gRPC transport failure from the JIT collaborator) into a CompilerErr.
func Wrap(err error) *Err {
	if de, ok := err.(*Err); ok {
		return de
	}
	return &Err{Kind: CompilerErr, Message: err.Error()}
}
