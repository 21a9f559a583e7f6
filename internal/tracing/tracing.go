// Package tracing formats PassInfo output for a human-facing REPL: timing
// lines with the output size rendered via go-humanize, and TTY-gated ANSI
// colouring of PassInfo stage headers via go-isatty, mirroring how the source detects
// terminal color support before writing anything decorated to stdout.
package tracing

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/dex-lang/dexcore/internal/block"
)

// ColorEnabled reports whether stdout is a real terminal and the user
// hasn't opted out via NO_COLOR (https://no-color.org/), unless override
// pins the answer (config.Config.Color).
func ColorEnabled(override *bool) bool {
	if override != nil {
		return *override
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// PassTiming records how long one timed step took, for --trace-passes
// output; cmd/dex times each whole eval-block with it.
type PassTiming struct {
	Stage    string
	Elapsed  time.Duration
	OutBytes int
}

// FormatTiming renders a timing line: stage name, human-readable duration,
// and the pretty-printed output's size, e.g. "normalize   1.2ms   340 B".
func FormatTiming(t PassTiming) string {
	return fmt.Sprintf("%-16s %8s   %s", t.Stage, t.Elapsed.Round(time.Microsecond), humanize.Bytes(uint64(t.OutBytes)))
}

// FormatPassInfo renders one PassInfo output for the REPL, colorizing the
// stage name when color is enabled.
func FormatPassInfo(pi block.PassInfo, color bool) string {
	header := pi.Stage
	if color {
		header = "\x1b[1;36m" + header + "\x1b[0m"
	}
	return fmt.Sprintf("=== %s ===\n%s", header, pi.Pretty)
}

// TimePass runs f, returning its result alongside a PassTiming sized off
// outText's byte length.
func TimePass(stage string, outText string, f func() error) (PassTiming, error) {
	start := time.Now()
	err := f()
	return PassTiming{Stage: stage, Elapsed: time.Since(start), OutBytes: len(outText)}, err
}
