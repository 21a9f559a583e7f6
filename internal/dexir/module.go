package dexir

import "strings"

// Def is one top-level definition, `def Name = Body`, before type
// inference.
type Def struct {
	Name string
	Body Expr
}

// FModule is the front-end IR: post-parse always, and post-deshadow once
// the deshadow pass has run over it (spec §3). Both states share this
// type; only the uniqueness of bound names differs.
type FModule struct {
	Defs []Def
}

// Pretty renders a total, deterministic textual form, as every IR must
// (spec §3): named-pass pretty-prints each pass's output to force full
// evaluation and to produce the PassInfo record.
func (m *FModule) Pretty() string {
	var b strings.Builder
	for _, d := range m.Defs {
		b.WriteString("def ")
		b.WriteString(d.Name)
		b.WriteString(" = ")
		b.WriteString(d.Body.String())
		b.WriteString("\n")
	}
	return b.String()
}

// TypedDef is a top-level definition after type-infer: its Type is the
// inferred type of Body.
type TypedDef struct {
	Name string
	Type Type
	Body Expr
}

// Module is the core-typed IR, produced by type-infer and rewritten in
// place by normalize (into ANF) and simplify.
type Module struct {
	Defs []TypedDef
}

func (m *Module) Pretty() string {
	var b strings.Builder
	for _, d := range m.Defs {
		b.WriteString("def ")
		b.WriteString(d.Name)
		b.WriteString(" : ")
		b.WriteString(d.Type.String())
		b.WriteString(" = ")
		b.WriteString(d.Body.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Lookup returns the typed body and type of name, if defined.
func (m *Module) Lookup(name string) (TypedDef, bool) {
	for _, d := range m.Defs {
		if d.Name == name {
			return d, true
		}
	}
	return TypedDef{}, false
}

// ImpOp is the closed variant of imperative operations: explicit,
// side-effect-free "memory operations" over already-named atoms, per the
// glossary's definition of imperative form.
type ImpOp interface {
	impOpKind()
	String() string
}

type OpConstInt struct{ Value int64 }

func (OpConstInt) impOpKind()       {}
func (o OpConstInt) String() string { return LitInt{Value: o.Value}.String() }

type OpConstFloat struct{ Value float64 }

func (OpConstFloat) impOpKind()       {}
func (o OpConstFloat) String() string { return LitFloat{Value: o.Value}.String() }

type OpConstBool struct{ Value bool }

func (OpConstBool) impOpKind()       {}
func (o OpConstBool) String() string { return LitBool{Value: o.Value}.String() }

// OpLoad reads a previously assigned name (a local statement result or a
// top-level binding).
type OpLoad struct{ Name string }

func (OpLoad) impOpKind()      {}
func (o OpLoad) String() string { return "load " + o.Name }

type OpBin struct {
	Op   string
	L, R string
}

func (OpBin) impOpKind()      {}
func (o OpBin) String() string { return "bin " + o.Op + " " + o.L + " " + o.R }

// OpMakeClosure allocates a closure value capturing the named free
// variables, for a lambda with the given parameter and body statements.
type OpMakeClosure struct {
	Param   string
	Captures []string
	Body    *ImpModule
}

func (OpMakeClosure) impOpKind()      {}
func (o OpMakeClosure) String() string { return "closure(\\" + o.Param + " -> ...)" }

type OpApply struct {
	Fn  string
	Arg string
}

func (OpApply) impOpKind()      {}
func (o OpApply) String() string { return "apply " + o.Fn + " " + o.Arg }

// ImpStmt assigns the result of one ImpOp to a fresh name.
type ImpStmt struct {
	Dst  string
	Type Type
	Op   ImpOp
}

// ImpModule is the imperative lowering: an ordered list of top-level
// definitions, each a straight-line sequence of statements with no
// lambdas remaining at any non-closure-body position.
type ImpModule struct {
	Defs []ImpDef
}

type ImpDef struct {
	Name  string
	Type  Type
	Stmts []ImpStmt
	// Result is the Dst of the last statement, the def's value.
	Result string
}

func (m *ImpModule) Pretty() string {
	var b strings.Builder
	for _, d := range m.Defs {
		b.WriteString("def ")
		b.WriteString(d.Name)
		b.WriteString(" : ")
		b.WriteString(d.Type.String())
		b.WriteString(" {\n")
		for _, s := range d.Stmts {
			b.WriteString("  ")
			b.WriteString(s.Dst)
			b.WriteString(" = ")
			b.WriteString(s.Op.String())
			b.WriteString("\n")
		}
		b.WriteString("  return ")
		b.WriteString(d.Result)
		b.WriteString("\n}\n")
	}
	return b.String()
}
