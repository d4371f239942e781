// Package parser implements the recursive-descent, Pratt-precedence parser
// that turns a token stream into an AST, with panic-mode error recovery.
package parser

import (
	"errors"
	"fmt"

	"github.com/brief-lang/brief/lang/ast"
	"github.com/brief-lang/brief/lang/lexer"
	"github.com/brief-lang/brief/lang/token"
)

// maxErrors caps the number of errors a single parse will record before it
// stops accumulating (it keeps synchronizing and parsing regardless).
const maxErrors = 50

// Error is a single structured parse error: a message, a primary span, and
// zero or more secondary labels pointing at related spans.
type Error struct {
	Msg     string
	Span    token.Span
	Labels  []Label
}

// Label is a secondary annotation attached to an Error.
type Label struct {
	Msg  string
	Span token.Span
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Span, e.Msg) }

// errPanicMode is the sentinel panicked with by expect/fail, recovered at
// the nearest statement or declaration boundary to synchronize.
var errPanicMode = errors.New("parser: panic mode")

// Parse parses a complete program from src, returning the best-effort AST
// (possibly containing Bad* placeholder nodes) and any errors recorded.
func Parse(file token.FileID, src string) (*ast.Program, []*Error) {
	toks, lexErrs := lexer.Tokenize(file, src)
	var p parser
	p.file = file
	p.toks = toks
	for _, le := range lexErrs {
		p.errors = append(p.errors, &Error{Msg: le.Msg, Span: le.Span})
	}
	p.advance()
	prog := p.parseProgram()
	return prog, p.errors
}

type parser struct {
	file   token.FileID
	toks   []lexer.Tok
	pos    int
	cur    lexer.Tok
	errors []*Error
}

func (p *parser) advance() {
	if p.pos < len(p.toks) {
		p.cur = p.toks[p.pos]
		p.pos++
	}
}

// skipNewlines consumes zero or more NEWLINE tokens, used between
// declarations/statements where blank logical lines are not significant.
func (p *parser) skipNewlines() {
	for p.cur.Kind == token.NEWLINE {
		p.advance()
	}
}

func (p *parser) at(k token.Token) bool { return p.cur.Kind == k }

func (p *parser) match(k token.Token) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches k, otherwise records an
// error and panics with errPanicMode to unwind to the nearest recovery
// point.
func (p *parser) expect(k token.Token) token.Position {
	pos := p.cur.Span.Start
	if !p.at(k) {
		p.errorf(p.cur.Span, "expected %s, found %s", k.GoString(), p.cur.Kind.GoString())
		panic(errPanicMode)
	}
	p.advance()
	return pos
}

func (p *parser) errorf(span token.Span, format string, args ...interface{}) {
	if len(p.errors) >= maxErrors {
		return
	}
	p.errors = append(p.errors, &Error{Msg: fmt.Sprintf(format, args...), Span: span})
}

func (p *parser) fail(span token.Span, format string, args ...interface{}) {
	p.errorf(span, format, args...)
	panic(errPanicMode)
}

// syncTokens are the token kinds considered safe synchronization points
// after a parse error: statement/declaration terminators, block closers,
// and keywords that start a new construct.
var syncTokens = map[token.Token]bool{
	token.NEWLINE:  true,
	token.DEDENT:   true,
	token.RPAREN:   true,
	token.RBRACK:   true,
	token.RBRACE:   true,
	token.ELSE:     true,
	token.CASE:     true,
	token.MATCH:    true,
	token.DEF:      true,
	token.CLS:      true,
	token.EOF:      true,
}

// synchronize advances the token stream until a safe recovery point, and
// returns the position just past the synchronization point (or its start,
// for tokens that should not themselves be consumed).
func (p *parser) synchronize() token.Position {
	for !syncTokens[p.cur.Kind] {
		p.advance()
	}
	if p.cur.Kind == token.NEWLINE || p.cur.Kind == token.DEDENT {
		pos := p.cur.Span.End
		p.advance()
		return pos
	}
	return p.cur.Span.Start
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{File: p.file}
	p.skipNewlines()
	for !p.at(token.EOF) {
		if d := p.parseDecl(); d != nil {
			prog.Decls = append(prog.Decls, d)
		}
		p.skipNewlines()
	}
	prog.End = p.cur.Span.Start
	return prog
}

// parseBlock parses a statement block, either as an Indent…Dedent-delimited
// sequence of newline-separated statements, or — when no Indent follows the
// header's Newline — a single statement on the same logical line.
func (p *parser) parseBlock() *ast.Block {
	block := &ast.Block{BraceSpan: token.SingleSpan(p.file, p.cur.Span.Start)}

	if p.at(token.NEWLINE) {
		startPos := p.cur.Span.Start
		p.advance()
		if p.at(token.INDENT) {
			p.advance()
			p.skipNewlines()
			for !p.at(token.DEDENT) && !p.at(token.EOF) {
				if s := p.parseStmt(); s != nil {
					block.Stmts = append(block.Stmts, s)
				}
				p.skipNewlines()
			}
			endPos := p.cur.Span.Start
			if p.at(token.DEDENT) {
				p.advance()
			}
			block.BraceSpan = token.NewSpan(p.file, startPos, endPos)
			return block
		}
		// No indented body followed: an empty block (e.g. `match` with no cases).
		block.BraceSpan = token.NewSpan(p.file, startPos, startPos)
		return block
	}

	// Single-line body: exactly one statement follows immediately.
	start := p.cur.Span.Start
	if s := p.parseStmt(); s != nil {
		block.Stmts = append(block.Stmts, s)
	}
	block.BraceSpan = token.NewSpan(p.file, start, p.cur.Span.Start)
	return block
}
