package parser

import (
	"strings"

	"github.com/brief-lang/brief/lang/ast"
	"github.com/brief-lang/brief/lang/lexer"
	"github.com/brief-lang/brief/lang/token"
)

// assignOps are the assignment operators, loosest-binding and right-
// associative.
var assignOps = map[token.Token]bool{
	token.ASSIGN: true, token.DEFINE: true, token.PLUS_EQ: true, token.MINUS_EQ: true,
	token.STAR_EQ: true, token.SLASH_EQ: true, token.PERCENT_EQ: true, token.POW_EQ: true,
}

var orOps = map[token.Token]bool{token.PIPEPIPE: true}
var andOps = map[token.Token]bool{token.AMPAMP: true}
var bitOrOps = map[token.Token]bool{token.PIPE: true}
var bitXorOps = map[token.Token]bool{token.CIRCUMFLEX: true}
var bitAndOps = map[token.Token]bool{token.AMPERSAND: true}
var eqOps = map[token.Token]bool{token.EQL: true, token.NEQ: true}
var relOps = map[token.Token]bool{token.LT: true, token.LE: true, token.GT: true, token.GE: true}
var shiftOps = map[token.Token]bool{token.LTLT: true, token.GTGT: true}
var addOps = map[token.Token]bool{token.PLUS: true, token.MINUS: true}
var mulOps = map[token.Token]bool{token.STAR: true, token.SLASH: true, token.PERCENT: true}
var unaryOps = map[token.Token]bool{
	token.BANG: true, token.TILDE: true, token.MINUS: true, token.PLUS: true,
	token.TRY: true, token.MUST: true,
}

// parseExpr parses a full expression, starting at the loosest-binding
// assignment level.
func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignExpr()
}

// parseAssignExpr parses assignment, right-associative and loosest-binding:
// `x = y`, `x := y`, `x += y`, etc.
func (p *parser) parseAssignExpr() ast.Expr {
	left := p.parseTernaryExpr()
	if assignOps[p.cur.Kind] {
		op := p.cur.Kind
		opPos := p.cur.Span.Start
		p.advance()
		if !ast.IsAssignable(left) {
			p.errorf(left.Span(), "left side of assignment is not assignable")
		}
		value := p.parseAssignExpr()
		return &ast.AssignExpr{Target: left, Op: op, OpPos: opPos, Value: value}
	}
	return left
}

// parseTernaryExpr parses `cond ? then : else`, right-associative.
func (p *parser) parseTernaryExpr() ast.Expr {
	cond := p.parseBinaryExpr(0)
	if p.match(token.QUESTION) {
		then := p.parseAssignExpr()
		p.expect(token.COLON)
		els := p.parseTernaryExpr()
		return &ast.Ternary{Cond: cond, Then: then, Else: els}
	}
	return cond
}

// binaryLevels lists the binary-operator precedence levels from loosest to
// tightest, excluding power (handled separately since it is right-
// associative; its operands are unary expressions, so -2 ** 2 is (-2) ** 2).
var binaryLevels = []map[token.Token]bool{
	orOps, andOps, bitOrOps, bitXorOps, bitAndOps, eqOps, relOps, shiftOps, addOps, mulOps,
}

// parseBinaryExpr implements left-associative precedence climbing over
// binaryLevels, bottoming out at the right-associative power level and then
// unary/postfix expressions.
func (p *parser) parseBinaryExpr(level int) ast.Expr {
	if level >= len(binaryLevels) {
		return p.parsePowerExpr()
	}
	left := p.parseBinaryExpr(level + 1)
	ops := binaryLevels[level]
	for ops[p.cur.Kind] {
		op := p.cur.Kind
		opPos := p.cur.Span.Start
		p.advance()
		right := p.parseBinaryExpr(level + 1)
		left = &ast.BinaryExpr{Left: left, Op: op, OpPos: opPos, Right: right}
	}
	return left
}

// parsePowerExpr parses `**`, right-associative and binding tighter than any
// other binary operator but looser than unary prefix operators.
func (p *parser) parsePowerExpr() ast.Expr {
	left := p.parseUnaryExpr()
	if p.at(token.STARSTAR) {
		opPos := p.cur.Span.Start
		p.advance()
		right := p.parsePowerExpr()
		return &ast.BinaryExpr{Left: left, Op: token.STARSTAR, OpPos: opPos, Right: right}
	}
	return left
}

// parseUnaryExpr parses a unary prefix operator (!, ~, -, +, try, must)
// applied to another unary expression, bottoming out at postfix expressions.
func (p *parser) parseUnaryExpr() ast.Expr {
	if unaryOps[p.cur.Kind] {
		op := p.cur.Kind
		opPos := p.cur.Span.Start
		p.advance()
		right := p.parseUnaryExpr()
		return &ast.UnaryExpr{Op: op, OpPos: opPos, Right: right}
	}
	return p.parsePostfixExpr()
}

// parsePostfixExpr parses a primary expression followed by zero or more
// postfix operators: ++/--, call, member access, method call, indexing, and
// a trailing type cast.
func (p *parser) parsePostfixExpr() ast.Expr {
	e := p.parsePrimaryExpr()
	for {
		switch {
		case p.at(token.INCR) || p.at(token.DECR):
			op := p.cur.Kind
			end := p.cur.Span.End
			p.advance()
			e = &ast.PostfixExpr{Left: e, Op: op, End: end}
		case p.at(token.LPAREN):
			e = p.parseCall(e)
		case p.at(token.LBRACK):
			lbrack := p.expect(token.LBRACK)
			idx := p.parseExpr()
			rbrack := p.expect(token.RBRACK)
			e = &ast.IndexExpr{Prefix: e, Lbrack: lbrack, Index: idx, Rbrack: rbrack}
		case p.at(token.DOT):
			dot := p.expect(token.DOT)
			name := p.parseIdent()
			if p.at(token.LPAREN) {
				lparen := p.expect(token.LPAREN)
				args := p.parseArgs()
				rparen := p.expect(token.RPAREN)
				e = &ast.MethodCallExpr{Recv: e, Dot: dot, Method: name, Lparen: lparen, Args: args, Rparen: rparen}
			} else {
				e = &ast.MemberExpr{Left: e, Dot: dot, Right: name}
			}
		case primitiveTypeTokens[p.cur.Kind]:
			to := p.parseType()
			e = &ast.CastExpr{Expr: e, To: to}
		default:
			return e
		}
	}
}

func (p *parser) parseCall(fn ast.Expr) *ast.CallExpr {
	lparen := p.expect(token.LPAREN)
	args := p.parseArgs()
	rparen := p.expect(token.RPAREN)
	return &ast.CallExpr{Fn: fn, Lparen: lparen, Args: args, Rparen: rparen}
}

func (p *parser) parseArgs() []ast.Expr {
	var args []ast.Expr
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		args = append(args, p.parseExpr())
		if !p.match(token.COMMA) {
			break
		}
	}
	return args
}

// parsePrimaryExpr parses a literal, identifier, interpolated string,
// parenthesized expression, or lambda.
func (p *parser) parsePrimaryExpr() ast.Expr {
	start := p.cur.Span.Start
	switch {
	case p.at(token.INTEGER):
		return p.parseIntLiteral()
	case p.at(token.DOUBLE):
		return p.parseDoubleLiteral()
	case p.at(token.CHARACTER):
		return p.parseCharLiteral()
	case p.at(token.TRUE), p.at(token.FALSE):
		v := p.at(token.TRUE)
		kind := p.cur.Kind
		raw := p.cur.Raw
		p.advance()
		return &ast.LiteralExpr{File: p.file, Type: kind, Start: start, Raw: raw, Value: v}
	case p.at(token.NULL):
		raw := p.cur.Raw
		p.advance()
		return &ast.LiteralExpr{File: p.file, Type: token.NULL, Start: start, Raw: raw, Value: nil}
	case p.at(token.STR_PART) || p.at(token.INTERP_IDENT) || p.at(token.INTERP_PATH):
		return p.parseInterpolation()
	case p.at(token.IDENT):
		return p.parseIdent()
	case p.at(token.OBJ):
		// Inside a constructor or instance method body, `obj` refers to the
		// implicit receiver; it resolves like any other identifier.
		name := &ast.IdentExpr{File: p.file, Start: start, Name: "obj"}
		p.advance()
		return name
	case p.at(token.LPAREN):
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	case p.at(token.DEF):
		return p.parseLambda()
	default:
		p.fail(p.cur.Span, "expected an expression, found %s", p.cur.Kind.GoString())
		return nil
	}
}

func (p *parser) parseIntLiteral() *ast.LiteralExpr {
	start := p.cur.Span.Start
	raw := p.cur.Raw
	v := p.cur.Value
	p.advance()
	return &ast.LiteralExpr{File: p.file, Type: token.INTEGER, Start: start, Raw: raw, Value: v}
}

func (p *parser) parseDoubleLiteral() *ast.LiteralExpr {
	start := p.cur.Span.Start
	raw := p.cur.Raw
	v := p.cur.Value
	p.advance()
	return &ast.LiteralExpr{File: p.file, Type: token.DOUBLE, Start: start, Raw: raw, Value: v}
}

func (p *parser) parseCharLiteral() *ast.LiteralExpr {
	start := p.cur.Span.Start
	raw := p.cur.Raw
	v := p.cur.Value
	p.advance()
	return &ast.LiteralExpr{File: p.file, Type: token.CHARACTER, Start: start, Raw: raw, Value: v}
}

// parseInterpolation assembles the STR_PART/INTERP_IDENT/INTERP_PATH token
// run produced by the lexer for a single (possibly interpolated) string
// literal into an *ast.Interpolation. Empty text parts are dropped; a
// dotted INTERP_PATH hole is expanded into a chain of MemberExprs rooted at
// an IdentExpr.
func (p *parser) parseInterpolation() *ast.Interpolation {
	start := p.cur.Span.Start
	interp := &ast.Interpolation{File: p.file, Start: start}
	var lastEnd token.Position
	for p.at(token.STR_PART) || p.at(token.INTERP_IDENT) || p.at(token.INTERP_PATH) {
		tok := p.cur
		lastEnd = tok.Span.End
		switch tok.Kind {
		case token.STR_PART:
			if tok.Raw != "" {
				interp.Parts = append(interp.Parts, ast.InterpPart{Text: tok.Raw, Span: tok.Span})
			}
		case token.INTERP_IDENT:
			hole := &ast.IdentExpr{File: p.file, Start: tok.Span.Start, Name: tok.Raw}
			interp.Parts = append(interp.Parts, ast.InterpPart{Hole: hole, Span: tok.Span})
		case token.INTERP_PATH:
			interp.Parts = append(interp.Parts, ast.InterpPart{Hole: p.parseInterpPath(tok), Span: tok.Span})
		}
		p.advance()
	}
	interp.End = lastEnd
	return interp
}

// parseInterpPath expands a dotted interpolation hole like `user.age` into
// a chain of MemberExprs rooted at an IdentExpr.
func (p *parser) parseInterpPath(tok lexer.Tok) ast.Expr {
	segs := strings.Split(tok.Raw, ".")
	pos := tok.Span.Start
	var e ast.Expr = &ast.IdentExpr{File: p.file, Start: pos, Name: segs[0]}
	for _, seg := range segs[1:] {
		e = &ast.MemberExpr{Left: e, Dot: pos, Right: &ast.IdentExpr{File: p.file, Start: pos, Name: seg}}
	}
	return e
}

func (p *parser) parseLambda() *ast.Lambda {
	start := p.expect(token.DEF)
	params := p.parseParamList()
	body := p.parseBlock()
	return &ast.Lambda{Start: start, Params: params, Body: body, End: body.Span().End}
}
