// Package config holds dexcore's fixed constants and its loaded
// dex.yaml session configuration.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// SourceFileExt is the canonical Dex source extension.
const SourceFileExt = ".dx"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".dx"}

// IsTestMode indicates if the program is running in test mode. Set once
// at startup in cmd/dex when handling the test subcommand.
var IsTestMode = false

// Built-in top-level names the core's ambient TopEnv seeds before any
// block runs.
const (
	TrueConstName  = "True"
	FalseConstName = "False"
)

// Config is the session's persisted/loadable configuration, read from
// dex.yaml at startup (spec's ambient stack: the source config layer,
// generalized to this core's session driver).
type Config struct {
	// Backend selects Jit or Interp; see internal/pipeline.Backend.
	Backend string `yaml:"backend"`
	// JitTarget is the gRPC address of the out-of-process codegen service
	// used when Backend is "jit" and jitrpc.Remote is wired instead of
	// jitrpc.Local.
	JitTarget string `yaml:"jit_target"`
	// SessionDB is the sqlite file path internal/session persists the
	// accumulated TopEnv to between CLI invocations.
	SessionDB string `yaml:"session_db"`
	// Watch enables cmd/dex's fsnotify-driven re-evaluation of a source
	// file on save.
	Watch bool `yaml:"watch"`
	// Color forces ANSI highlight colorization on or off; nil defers to
	// the go-isatty TTY probe in internal/tracing.
	Color *bool `yaml:"color"`
}

// Default returns the configuration used when no dex.yaml is present.
func Default() Config {
	return Config{
		Backend:   "jit",
		SessionDB: "dex_session.db",
	}
}

// Load reads and parses a dex.yaml file at path. A missing file is not an
// error: it yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
