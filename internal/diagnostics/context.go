package diagnostics

import (
	"unicode/utf8"

	"github.com/kr/pretty"
)

// AddCtx implements C7's add-ctx: if err carries a region, rebase it onto
// the block (by subtracting blockOffset) and append a rendered highlight of
// that slice of blockText to the message. A region-less error is returned
// unchanged, per spec §4.7.
func AddCtx(blockText string, blockOffset int, err *Err) *Err {
	if err == nil || err.Region == nil {
		return err
	}
	rebased := err.Region.Rebase(blockOffset)
	highlighted := highlightRegion(blockText, rebased)
	return &Err{
		Kind:    err.Kind,
		Region:  &rebased,
		Message: err.Message + "\n" + highlighted,
	}
}

// AddDebugCtx implements C7's add-debug-ctx: only a CompilerErr is enriched
// with pipeline-internal debug context, since a type error should never be
// polluted with an internal pretty-printed IR dump.
func AddDebugCtx(ctx string, err *Err) *Err {
	if err == nil || err.Kind != CompilerErr {
		return err
	}
	return &Err{
		Kind:    err.Kind,
		Region:  err.Region,
		Message: err.Message + "\n=== context ===\n" + ctx,
	}
}

// PrettyCtx renders a pre-pass IR snapshot for use as add-debug-ctx's ctx
// argument, in the manner named-pass uses before invoking a pass.
func PrettyCtx(label string, v any) string {
	return label + ":\n" + pretty.Sprint(v)
}

// highlightRegion returns a byte-indexed slice of text bracketed by region,
// with both offsets moved back to the start of the rune they fall in, so a
// multi-byte character is never split: one straddling the start offset is
// included, one straddling the stop offset is left out.
func highlightRegion(text string, region Region) string {
	start, stop := region.Start, region.Stop
	if start < 0 {
		start = 0
	}
	if stop > len(text) {
		stop = len(text)
	}
	if stop < start {
		stop = start
	}
	start = snapToRuneStart(text, start)
	stop = snapToRuneStart(text, stop)
	return text[start:stop]
}

// snapToRuneStart walks backward from i until it lands on a UTF-8 rune
// boundary, so a highlighted slice never cuts a multi-byte character.
func snapToRuneStart(text string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}
