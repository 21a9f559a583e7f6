// Command dex is the CLI front end for dexcore: a REPL over the evaluation
// pipeline, and a runner for .dx source files. Argument handling is
// hand-parsed from os.Args, in the same style as the source's own CLI
// entry point, since no CLI framework was among the retrieved dependencies.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/dex-lang/dexcore/internal/block"
	"github.com/dex-lang/dexcore/internal/config"
	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/frontend"
	"github.com/dex-lang/dexcore/internal/jitrpc"
	"github.com/dex-lang/dexcore/internal/pipeline"
	"github.com/dex-lang/dexcore/internal/session"
	"github.com/dex-lang/dexcore/internal/topenv"
	"github.com/dex-lang/dexcore/internal/tracing"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEX_DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			os.Exit(1)
		}
	}()

	if len(os.Args) >= 2 && os.Args[1] == "test" {
		config.IsTestMode = true
	}

	cfgPath := "dex.yaml"
	watch := false
	trace := false
	var scriptPath string
	for _, arg := range os.Args[1:] {
		switch {
		case arg == "-watch" || arg == "--watch":
			watch = true
		case arg == "-trace-passes" || arg == "--trace-passes":
			trace = true
		case strings.HasPrefix(arg, "-config="):
			cfgPath = strings.TrimPrefix(arg, "-config=")
		case arg == "-help" || arg == "--help":
			printHelp()
			return
		case strings.HasPrefix(arg, "-"):
			fmt.Fprintf(os.Stderr, "unrecognized flag %q\n", arg)
			os.Exit(1)
		default:
			scriptPath = arg
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.Watch = cfg.Watch || watch

	store, err := session.Open(cfg.SessionDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening session store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	exec, err := buildExecutor(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiring jit backend: %v\n", err)
		os.Exit(1)
	}
	if closer, ok := exec.(*jitrpc.Remote); ok {
		defer closer.Close()
	}

	backend := pipeline.Jit
	if cfg.Backend == "interp" {
		backend = pipeline.Interp
	}

	env, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading session: %v\n", err)
		os.Exit(1)
	}
	env = seedBuiltinConsts(env)

	color := tracing.ColorEnabled(cfg.Color)

	if scriptPath != "" {
		if !hasRecognizedExt(scriptPath) {
			fmt.Fprintf(os.Stderr, "warning: %s does not have a recognized source extension (expected one of %v)\n", scriptPath, config.SourceFileExtensions)
		}
		runFile(backend, exec, store, env, scriptPath, color, trace)
		if cfg.Watch {
			watchFile(backend, exec, store, env, scriptPath, color, trace)
		}
		return
	}

	repl(backend, exec, store, env, color, trace)
}

// seedBuiltinConsts binds the core's built-in True/False constants into env
// before any block runs, so a block can reference them like any other
// top-level name instead of the frontend special-casing the literals.
func seedBuiltinConsts(env topenv.TopEnv) topenv.TopEnv {
	env = env.With(config.TrueConstName, topenv.Binding{Type: dexir.TBool{}, Atom: jitrpc.NewBoolAtom(true)})
	env = env.With(config.FalseConstName, topenv.Binding{Type: dexir.TBool{}, Atom: jitrpc.NewBoolAtom(false)})
	return env
}

// hasRecognizedExt reports whether path's extension is one of
// config.SourceFileExtensions.
func hasRecognizedExt(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range config.SourceFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// evalTraced wraps pipeline.EvalBlock with tracing.TimePass when trace is
// set, printing the elapsed time and total output size to stderr via
// tracing.FormatTiming. The block's actual output bytes aren't known until
// EvalBlock returns, so the PassTiming TimePass produces (sized off the
// empty string passed as outText) has its OutBytes corrected afterward
// rather than computed inside the timed closure.
func evalTraced(backend pipeline.Backend, exec jitrpc.Executor, env topenv.TopEnv, blk block.Kind, trace bool) (topenv.TopEnv, pipeline.Result) {
	if !trace {
		return pipeline.EvalBlock(backend, exec, env, blk)
	}
	var delta topenv.TopEnv
	var result pipeline.Result
	timing, _ := tracing.TimePass("eval-block", "", func() error {
		delta, result = pipeline.EvalBlock(backend, exec, env, blk)
		return nil
	})
	timing.OutBytes = outputBytes(result)
	fmt.Fprintln(os.Stderr, tracing.FormatTiming(timing))
	return delta, result
}

func outputBytes(result pipeline.Result) int {
	n := 0
	for _, o := range result.Outputs {
		switch out := o.(type) {
		case block.ValOut:
			n += len(out.Value)
		case block.TextOut:
			n += len(out.Text)
		case block.PassInfo:
			n += len(out.Pretty)
		}
	}
	return n
}

func buildExecutor(cfg config.Config) (jitrpc.Executor, error) {
	if cfg.JitTarget == "" {
		return jitrpc.Local{}, nil
	}
	remote := &jitrpc.Remote{Target: cfg.JitTarget}
	if err := remote.Dial(); err != nil {
		return nil, err
	}
	return remote, nil
}

func runFile(backend pipeline.Backend, exec jitrpc.Executor, store *session.Store, env topenv.TopEnv, path string, color, trace bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading %s: %v\n", path, err)
		os.Exit(1)
	}
	m, err := frontend.ParseFile(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		os.Exit(1)
	}
	delta, result := evalTraced(backend, exec, env, block.RunModule{Module: m}, trace)
	printResult(result, color)
	if result.Err != nil {
		return
	}
	merged := env.Combine(delta)
	if err := store.Save(merged); err != nil {
		fmt.Fprintf(os.Stderr, "saving session: %v\n", err)
	}
}

// watchFile re-runs path on every write, using fsnotify the way the
// source's own virtual filesystem watcher does — one event channel drained
// in a loop, filtered to Write/Create.
func watchFile(backend pipeline.Backend, exec jitrpc.Executor, store *session.Store, env topenv.TopEnv, path string, color, trace bool) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "starting watcher: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		fmt.Fprintf(os.Stderr, "watching %s: %v\n", path, err)
		os.Exit(1)
	}
	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				current, loadErr := store.Load()
				if loadErr != nil {
					fmt.Fprintf(os.Stderr, "loading session: %v\n", loadErr)
					continue
				}
				runFile(backend, exec, store, seedBuiltinConsts(current), path, color, trace)
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", werr)
		}
	}
}

func repl(backend pipeline.Backend, exec jitrpc.Executor, store *session.Store, env topenv.TopEnv, color, trace bool) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("dex> ")
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == ":q" || trimmed == ":quit" {
			return
		}
		if trimmed == "" {
			fmt.Print("dex> ")
			continue
		}

		blk, err := frontend.ParseLine(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			fmt.Print("dex> ")
			continue
		}

		delta, result := evalTraced(backend, exec, env, blk, trace)
		printResult(result, color)
		if result.Err == nil {
			env = env.Combine(delta)
			if err := store.Save(env); err != nil {
				fmt.Fprintf(os.Stderr, "saving session: %v\n", err)
			}
		}
		fmt.Print("dex> ")
	}
}

func printResult(result pipeline.Result, color bool) {
	if result.Err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", result.Err.Kind, result.Err.Error())
		return
	}
	for _, o := range result.Outputs {
		switch out := o.(type) {
		case block.ValOut:
			fmt.Println(out.Value)
		case block.TextOut:
			fmt.Println(out.Text)
		case block.PassInfo:
			fmt.Println(tracing.FormatPassInfo(out, color))
		}
	}
}

func printHelp() {
	fmt.Printf(`dex - the dexcore CLI

Usage:
  dex [flags] [file%s]

Flags:
  -config=PATH    load configuration from PATH (default dex.yaml)
  -watch          re-run file%s on every save
  -trace-passes   print per-block timing to stderr as each block runs
  -help           show this message

With no file argument, dex starts an interactive REPL. REPL lines are
either "name = expr" definitions or bare expressions; ":t", ":show-passes"
and ":pass <stage>" are meta-commands, ":q" exits.
`, config.SourceFileExt, config.SourceFileExt)
}
