package frontend

import (
	"fmt"
	"strings"

	"github.com/dex-lang/dexcore/internal/block"
	"github.com/dex-lang/dexcore/internal/dexir"
)

// ParseLine turns one REPL line into a SourceBlock kind. Recognized forms:
//
//	name = expr            -> RunModule{def name = expr}
//	expr                   -> Command(EvalExpr, ("_", def _ = expr))
//	:t expr                -> Command(GetType, ("_", def _ = expr))
//	:t name                -> Command(GetType, (name, {})), looked up in the
//	                          ambient session environment
//	:show-passes expr      -> Command(ShowPasses, ("_", def _ = expr))
//	:pass <stage> expr     -> Command(ShowPass(stage), ("_", def _ = expr))
//	:q, :quit              -> not a block; the REPL loop handles this itself
//
// A parse failure is surfaced to eval-block as block.UnParseable, exactly
// as spec §4.6 requires (this core never silently drops malformed input).
func ParseLine(raw string) (block.Kind, error) {
	line := strings.TrimSpace(TrimComment(raw))
	if line == "" {
		return block.Other{}, nil
	}

	if strings.HasPrefix(line, ":t ") {
		return parseCommandLine(strings.TrimSpace(line[len(":t "):]), block.GetType{})
	}
	if strings.HasPrefix(line, ":show-passes") {
		return parseCommandLine(strings.TrimSpace(line[len(":show-passes"):]), block.ShowPasses{})
	}
	if strings.HasPrefix(line, ":pass ") {
		rest := strings.TrimSpace(line[len(":pass "):])
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) != 2 {
			return block.UnParseable{Reason: ":pass requires a stage name and an expression"}, nil
		}
		return parseCommandLine(strings.TrimSpace(parts[1]), block.ShowPass{Stage: parts[0]})
	}

	if name, expr, ok := splitDef(line); ok {
		e, err := parseExprString(expr)
		if err != nil {
			return block.UnParseable{Reason: err.Error()}, nil
		}
		return block.RunModule{
			Module:     &dexir.FModule{Defs: []dexir.Def{{Name: name, Body: e}}},
			SourceText: expr,
		}, nil
	}

	e, err := parseExprString(line)
	if err != nil {
		return block.UnParseable{Reason: err.Error()}, nil
	}
	return block.Command{
		Cmd:        block.EvalExpr{Format: block.FormatDefault},
		VarName:    "_",
		Module:     &dexir.FModule{Defs: []dexir.Def{{Name: "_", Body: e}}},
		SourceText: line,
	}, nil
}

// parseCommandLine builds a Command block for cmd against either a bare
// name (looked up in the ambient session env, empty module) or a full
// expression (bound to the synthetic name "_" in a fresh, single-def
// module).
func parseCommandLine(rest string, cmd block.CommandKind) (block.Kind, error) {
	if rest == "" {
		return block.UnParseable{Reason: "expected a name or expression"}, nil
	}
	if isBareName(rest) {
		return block.Command{Cmd: cmd, VarName: rest, Module: &dexir.FModule{}}, nil
	}
	e, err := parseExprString(rest)
	if err != nil {
		return block.UnParseable{Reason: err.Error()}, nil
	}
	return block.Command{
		Cmd:        cmd,
		VarName:    "_",
		Module:     &dexir.FModule{Defs: []dexir.Def{{Name: "_", Body: e}}},
		SourceText: rest,
	}, nil
}

func isBareName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !(r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')) {
			return false
		}
		if i > 0 && !(r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')) {
			return false
		}
	}
	return true
}

// splitDef recognizes "name = expr" at the top level (not inside a nested
// let/lambda), returning the definition's name and its body text.
func splitDef(line string) (name, body string, ok bool) {
	depth := 0
	for i, r := range line {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case '=':
			if depth == 0 && !(i+1 < len(line) && line[i+1] == '=') && !(i > 0 && line[i-1] == '=') {
				candidate := strings.TrimSpace(line[:i])
				if isBareName(candidate) {
					return candidate, strings.TrimSpace(line[i+1:]), true
				}
				return "", "", false
			}
		}
	}
	return "", "", false
}

// ParseFile parses a whole .dx source file into one FModule: one `name =
// expr` definition per non-blank, non-comment line. This is deliberately
// the same tiny surface syntax ParseLine's def form accepts — the core
// itself is agnostic to whether a def arrived from a file or a REPL line.
func ParseFile(src string) (*dexir.FModule, error) {
	m := &dexir.FModule{}
	for i, raw := range strings.Split(src, "\n") {
		line := strings.TrimSpace(TrimComment(raw))
		if line == "" {
			continue
		}
		name, expr, ok := splitDef(line)
		if !ok {
			return nil, fmt.Errorf("line %d: expected `name = expr`", i+1)
		}
		e, err := parseExprString(expr)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		m.Defs = append(m.Defs, dexir.Def{Name: name, Body: e})
	}
	return m, nil
}

func parseExprString(s string) (dexir.Expr, error) {
	lx := newLexer(s)
	toks, err := lx.tokens()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, fmt.Errorf("unexpected trailing input at token %d", p.pos)
	}
	return e, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) cur() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

var precedence = map[string]int{"<": 1, "==": 1, "+": 2, "-": 2, "*": 3}

// parseExpr implements precedence climbing over the small binary operator
// set, with application (juxtaposition) binding tighter than any operator.
func (p *parser) parseExpr(minPrec int) (dexir.Expr, error) {
	left, err := p.parseApp()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokOp {
		op := p.cur().text
		prec, ok := precedence[op]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = dexir.BinOp{Op: op, L: left, R: right}
	}
	return left, nil
}

// parseApp parses left-associative application f x y = (f x) y.
func (p *parser) parseApp() (dexir.Expr, error) {
	fn, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for isAtomStart(p.cur()) {
		arg, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		fn = dexir.App{Fn: fn, Arg: arg}
	}
	return fn, nil
}

func isAtomStart(t token) bool {
	switch t.kind {
	case tokIdent, tokInt, tokFloat, tokTrue, tokFalse, tokLParen, tokBackslash, tokLet:
		return true
	default:
		return false
	}
}

func (p *parser) parseAtom() (dexir.Expr, error) {
	t := p.cur()
	switch t.kind {
	case tokInt:
		p.advance()
		v, err := parseIntLiteral(t.text)
		if err != nil {
			return nil, err
		}
		return dexir.LitInt{Value: v}, nil
	case tokFloat:
		p.advance()
		v, err := parseFloatLiteral(t.text)
		if err != nil {
			return nil, err
		}
		return dexir.LitFloat{Value: v}, nil
	case tokTrue:
		p.advance()
		return dexir.LitBool{Value: true}, nil
	case tokFalse:
		p.advance()
		return dexir.LitBool{Value: false}, nil
	case tokIdent:
		p.advance()
		return dexir.Var{Name: t.text, Pos: t.pos}, nil
	case tokLParen:
		p.advance()
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.cur().kind != tokRParen {
			return nil, fmt.Errorf("expected ')'")
		}
		p.advance()
		return e, nil
	case tokBackslash:
		return p.parseLambda()
	case tokLet:
		return p.parseLet()
	default:
		return nil, fmt.Errorf("unexpected token in expression")
	}
}

// parseLambda parses `\param : Type -> body`.
func (p *parser) parseLambda() (dexir.Expr, error) {
	p.advance() // backslash
	if p.cur().kind != tokIdent {
		return nil, fmt.Errorf("expected parameter name after '\\'")
	}
	param := p.advance().text
	var paramType dexir.Type
	if p.cur().kind == tokColon {
		p.advance()
		ty, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		paramType = ty
	}
	if p.cur().kind != tokArrow {
		return nil, fmt.Errorf("expected '->' in lambda")
	}
	p.advance()
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return dexir.Lam{Param: param, ParamType: paramType, Body: body}, nil
}

// parseLet parses `let name = val in body`.
func (p *parser) parseLet() (dexir.Expr, error) {
	p.advance() // let
	if p.cur().kind != tokIdent {
		return nil, fmt.Errorf("expected name after 'let'")
	}
	name := p.advance().text
	if p.cur().kind != tokEquals {
		return nil, fmt.Errorf("expected '=' in let")
	}
	p.advance()
	val, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokIn {
		return nil, fmt.Errorf("expected 'in' in let")
	}
	p.advance()
	body, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return dexir.Let{Name: name, Val: val, Body: body}, nil
}

func (p *parser) parseTypeName() (dexir.Type, error) {
	if p.cur().kind != tokIdent {
		return nil, fmt.Errorf("expected a type name")
	}
	name := p.advance().text
	switch name {
	case "Int":
		return dexir.TInt{}, nil
	case "Float":
		return dexir.TFloat{}, nil
	case "Bool":
		return dexir.TBool{}, nil
	default:
		return nil, fmt.Errorf("unknown type %q", name)
	}
}
