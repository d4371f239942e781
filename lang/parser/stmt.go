package parser

import (
	"github.com/brief-lang/brief/lang/ast"
	"github.com/brief-lang/brief/lang/token"
)

// peek returns the kind of the token after cur without consuming either,
// used for the two-token `for`-loop lookahead. At end of stream it returns
// cur's own kind (Eof), which is never mistaken for Ident or In.
func (p *parser) peek() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].Kind
	}
	return p.cur.Kind
}

// parseStmt parses a single statement. A parse failure anywhere inside is
// caught here, recorded, and converted into a BadStmt synchronized to the
// next safe recovery point — this is the panic-mode boundary that keeps one
// malformed statement from aborting the rest of the enclosing block.
func (p *parser) parseStmt() (stmt ast.Stmt) {
	start := p.cur.Span.Start
	defer func() {
		if r := recover(); r != nil {
			if r == errPanicMode {
				stmt = &ast.BadStmt{File: p.file, Start: start, End: p.synchronize()}
				return
			}
			panic(r)
		}
	}()

	switch {
	case p.at(token.IF):
		return p.parseIfStmt()
	case p.at(token.WHILE):
		return p.parseWhileStmt()
	case p.at(token.FOR):
		return p.parseForLikeStmt()
	case p.at(token.MATCH):
		return p.parseMatchStmt()
	case p.at(token.RET):
		return p.parseReturnStmt()
	case p.at(token.BREAK):
		return p.parseBreakStmt()
	case p.at(token.CONTINUE):
		return p.parseContinueStmt()
	case primitiveTypeTokens[p.cur.Kind]:
		return p.parseVarDecl()
	default:
		return p.parseSimpleStmt()
	}
}

func (p *parser) parseIfStmt() *ast.IfStmt {
	kw := p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	then := p.parseBlock()
	var els *ast.Block
	if p.match(token.ELSE) {
		els = p.parseBlock()
	}
	return &ast.IfStmt{Kw: kw, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseWhileStmt() *ast.WhileStmt {
	kw := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.WhileStmt{Kw: kw, Cond: cond, Body: body}
}

// parseForLikeStmt disambiguates for-in from the C-style three-clause for
// using a two-token lookahead: `for (<ident> in ...)` is for-in, anything
// else is C-style.
func (p *parser) parseForLikeStmt() ast.Stmt {
	kw := p.expect(token.FOR)
	p.expect(token.LPAREN)
	if p.at(token.IDENT) && p.peek() == token.IN {
		v := p.parseIdent()
		p.expect(token.IN)
		iter := p.parseExpr()
		p.expect(token.RPAREN)
		body := p.parseBlock()
		return &ast.ForInStmt{Kw: kw, Var: v, Iter: iter, Body: body}
	}
	return p.parseForThreePartStmt(kw)
}

// parseForThreePartStmt parses the three semicolon-separated clauses of a
// C-style for, each individually optional: `for (init; cond; inc) body`.
func (p *parser) parseForThreePartStmt(kw token.Position) *ast.ForStmt {
	var init ast.Stmt
	if !p.at(token.SEMICOLON) {
		init = p.parseForClauseInit()
	}
	p.expect(token.SEMICOLON)

	var cond ast.Expr
	if !p.at(token.SEMICOLON) {
		cond = p.parseExpr()
	}
	p.expect(token.SEMICOLON)

	var post ast.Expr
	if !p.at(token.RPAREN) {
		post = p.parseExpr()
	}
	p.expect(token.RPAREN)

	body := p.parseBlock()
	return &ast.ForStmt{Kw: kw, Init: init, Cond: cond, Post: post, Body: body}
}

// parseForClauseInit parses the for-loop init clause, which may be a typed
// variable declaration or a bare expression (almost always an assignment).
func (p *parser) parseForClauseInit() ast.Stmt {
	if primitiveTypeTokens[p.cur.Kind] {
		return p.parseVarDecl()
	}
	return &ast.ExprStmt{X: p.parseExpr()}
}

// parseMatchStmt parses `match (scrutinee) case p1, p2: body ... else body`.
// Like parseBlock, a header Newline not followed by an Indent means an
// empty body: no cases and no else clause.
func (p *parser) parseMatchStmt() *ast.MatchStmt {
	kw := p.expect(token.MATCH)
	p.expect(token.LPAREN)
	scrutinee := p.parseExpr()
	p.expect(token.RPAREN)

	m := &ast.MatchStmt{Kw: kw, Scrutinee: scrutinee, End: p.cur.Span.Start}
	if !p.at(token.NEWLINE) {
		return m
	}
	p.advance()
	if !p.at(token.INDENT) {
		return m
	}
	p.advance()
	p.skipNewlines()
	for p.at(token.CASE) {
		m.Cases = append(m.Cases, p.parseMatchCase())
		p.skipNewlines()
	}
	if p.match(token.ELSE) {
		m.Else = p.parseBlock()
		p.skipNewlines()
	}
	m.End = p.cur.Span.Start
	p.expect(token.DEDENT)
	return m
}

func (p *parser) parseMatchCase() *ast.MatchCase {
	kw := p.expect(token.CASE)
	patterns := []ast.Expr{p.parseExpr()}
	for p.match(token.COMMA) {
		patterns = append(patterns, p.parseExpr())
	}
	p.expect(token.COLON)
	body := p.parseBlock()
	return &ast.MatchCase{Kw: kw, Patterns: patterns, Body: body}
}

func (p *parser) parseReturnStmt() *ast.ReturnStmt {
	kw := p.expect(token.RET)
	end := p.cur.Span.Start
	var value ast.Expr
	if !p.at(token.NEWLINE) && !p.at(token.DEDENT) && !p.at(token.EOF) {
		value = p.parseExpr()
		end = value.Span().End
	}
	return &ast.ReturnStmt{Kw: kw, Value: value, End: end}
}

func (p *parser) parseBreakStmt() *ast.BreakStmt {
	end := p.cur.Span.End
	kw := p.expect(token.BREAK)
	return &ast.BreakStmt{File: p.file, Kw: kw, End: end}
}

func (p *parser) parseContinueStmt() *ast.ContinueStmt {
	end := p.cur.Span.End
	kw := p.expect(token.CONTINUE)
	return &ast.ContinueStmt{File: p.file, Kw: kw, End: end}
}

// parseSimpleStmt parses an expression statement. Any expression is
// accepted: typically a call (optionally prefixed by try/must), a postfix
// increment/decrement, an assignment, or a body's trailing value expression.
// Untyped declarations (`name := expr`) fall out of this naturally, since
// `:=` is parsed as an AssignExpr by parseAssignExpr.
func (p *parser) parseSimpleStmt() *ast.ExprStmt {
	return &ast.ExprStmt{X: p.parseExpr()}
}
