// Package session persists a REPL's accumulated TopEnv across process
// invocations. Store uses a modernc.org/sqlite-backed database/sql
// connection (a pure-Go driver, no cgo); Export/Import round-trip a
// snapshot through YAML, using the same yaml.v3 encoding internal/config
// uses for dex.yaml. No REPL command or CLI flag of cmd/dex calls them.
package session

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
	"gopkg.in/yaml.v3"

	"github.com/dex-lang/dexcore/internal/dexir"
	"github.com/dex-lang/dexcore/internal/topenv"
)

// Store persists a session's TopEnv bindings to a sqlite database.
// Bindings are stored as their pretty-printed type text (the value_text
// column is written empty), not their live Atom: sqlite is a durability layer for what a REPL displays across
// restarts, not a serialization format for a running Executor's runtime
// values.
type Store struct {
	db *sql.DB
}

// Open connects to (creating if absent) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bindings (
			name        TEXT PRIMARY KEY,
			seq         INTEGER NOT NULL,
			is_type     INTEGER NOT NULL,
			type_text   TEXT NOT NULL,
			value_text  TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save persists env's bindings, replacing any prior snapshot.
func (s *Store) Save(env topenv.TopEnv) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM bindings`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO bindings (name, seq, is_type, type_text, value_text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, name := range env.Names() {
		b, _ := env.Lookup(name)
		typeText, valueText := "", ""
		isType := 0
		if b.IsType {
			isType = 1
			typeText = b.TypeDef.String()
		} else if b.Type != nil {
			typeText = b.Type.String()
		}
		if _, err := stmt.Exec(name, i, isType, typeText, valueText); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load rebuilds a TopEnv directly from the sqlite snapshot, for restoring a
// REPL's bindings at startup without a YAML round-trip.
func (s *Store) Load() (topenv.TopEnv, error) {
	rows, err := s.db.Query(`SELECT name, is_type, type_text FROM bindings ORDER BY seq ASC`)
	if err != nil {
		return topenv.TopEnv{}, err
	}
	defer rows.Close()

	env := topenv.New()
	for rows.Next() {
		var name, typeText string
		var isType int
		if err := rows.Scan(&name, &isType, &typeText); err != nil {
			return topenv.TopEnv{}, err
		}
		if isType != 0 {
			env = env.With(name, topenv.Binding{IsType: true, TypeDef: parseTypeName(typeText)})
		} else {
			env = env.With(name, topenv.Binding{Type: parseTypeName(typeText)})
		}
	}
	if err := rows.Err(); err != nil {
		return topenv.TopEnv{}, err
	}
	return env, nil
}

// snapshotEntry is one row of a persisted session, and the shape Export
// serializes to YAML.
type snapshotEntry struct {
	Name   string `yaml:"name"`
	IsType bool   `yaml:"is_type"`
	Type   string `yaml:"type"`
}

// Export renders the current sqlite snapshot as YAML, in the original
// insertion order, for :save-style human-readable dumps.
func (s *Store) Export() ([]byte, error) {
	rows, err := s.db.Query(`SELECT name, seq, is_type, type_text FROM bindings ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []snapshotEntry
	for rows.Next() {
		var name, typeText string
		var seq, isType int
		if err := rows.Scan(&name, &seq, &isType, &typeText); err != nil {
			return nil, err
		}
		entries = append(entries, snapshotEntry{Name: name, IsType: isType != 0, Type: typeText})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return yaml.Marshal(entries)
}

// Import parses a YAML snapshot produced by Export back into type-only
// bindings: no realized Atom is restored, since sqlite/YAML only durably
// hold the pretty-printed type/value text, not a live Executor handle.
// There is no lazy re-JIT: a block that goes on to reference a restored
// name before redefining it fails with a specific RuntimeErr from
// internal/jitrpc.Local ("restored from a saved session without a
// realized value"), not a plain "unbound name" indistinguishable from an
// actual typo. Session only owns type-shape durability; realizing a value
// again is the ordinary eval-jit path any fresh definition already takes.
func Import(data []byte) (topenv.TopEnv, error) {
	var entries []snapshotEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return topenv.TopEnv{}, err
	}
	env := topenv.New()
	for _, e := range entries {
		if e.IsType {
			env = env.With(e.Name, topenv.Binding{IsType: true, TypeDef: parseTypeName(e.Type)})
		} else {
			env = env.With(e.Name, topenv.Binding{Type: parseTypeName(e.Type)})
		}
	}
	return env, nil
}

func parseTypeName(name string) dexir.Type {
	switch name {
	case "Int":
		return dexir.TInt{}
	case "Float":
		return dexir.TFloat{}
	case "Bool":
		return dexir.TBool{}
	default:
		return nil
	}
}
