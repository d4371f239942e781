package parser

import (
	"github.com/brief-lang/brief/lang/ast"
	"github.com/brief-lang/brief/lang/token"
)

var primitiveTypeTokens = map[token.Token]bool{
	token.INT: true, token.CHAR: true, token.STR: true, token.DUB: true, token.BOOL: true,
}

// parseDecl parses one top-level declaration: def, cls, const, import, or a
// variable declaration (a type keyword or bare identifier).
func (p *parser) parseDecl() (decl ast.Decl) {
	start := p.cur.Span.Start
	defer func() {
		if r := recover(); r != nil {
			if r == errPanicMode {
				decl = &ast.BadDecl{File: p.file, Start: start, End: p.synchronize()}
				return
			}
			panic(r)
		}
	}()

	switch {
	case p.at(token.DEF):
		return p.parseFuncDecl()
	case p.at(token.CLS):
		return p.parseClassDecl()
	case p.at(token.CONST):
		return p.parseConstDecl()
	case p.at(token.IMPORT):
		return p.parseImportDecl()
	case primitiveTypeTokens[p.cur.Kind] || p.at(token.IDENT):
		return p.parseVarDecl()
	default:
		p.fail(p.cur.Span, "expected a declaration, found %s", p.cur.Kind.GoString())
		return nil
	}
}

func (p *parser) parseIdent() *ast.IdentExpr {
	start := p.cur.Span.Start
	name := p.cur.Raw
	p.expect(token.IDENT)
	return &ast.IdentExpr{File: p.file, Start: start, Name: name}
}

// parseVarDecl parses `[type] name [:= expr]`, used both at the top level
// (as a Decl) and inside a function/method/constructor body (as a Stmt).
func (p *parser) parseVarDecl() *ast.VarDecl {
	kw := p.cur.Span.Start
	var typ ast.Type
	if primitiveTypeTokens[p.cur.Kind] {
		typ = p.parseType()
	}
	name := p.parseIdent()

	var init ast.Expr
	if p.match(token.DEFINE) {
		init = p.parseExpr()
	}
	end := name.Span().End
	if init != nil {
		end = init.Span().End
	}
	return &ast.VarDecl{Kw: kw, Name: name, Type: typ, Init: init, End: end}
}

func (p *parser) parseConstDecl() *ast.ConstDecl {
	kw := p.expect(token.CONST)
	name := p.parseIdent()
	p.expect(token.DEFINE)
	init := p.parseExpr()
	return &ast.ConstDecl{Kw: kw, Name: name, Init: init}
}

func (p *parser) parseImportDecl() *ast.ImportDecl {
	kw := p.expect(token.IMPORT)
	modules := []*ast.IdentExpr{p.parseIdent()}
	for p.match(token.COMMA) {
		modules = append(modules, p.parseIdent())
	}
	end := modules[len(modules)-1].Span().End
	return &ast.ImportDecl{Kw: kw, Modules: modules, End: end}
}

func (p *parser) parseFuncDecl() *ast.FuncDecl {
	kw := p.expect(token.DEF)
	name := p.parseIdent()
	params := p.parseParamList()
	var ret ast.Type
	if p.match(token.ARROW) {
		ret = p.parseType()
	}
	body := p.parseBlock()
	return &ast.FuncDecl{Kw: kw, Name: name, Params: params, Ret: ret, Body: body}
}

// parseParamList parses `(type name, type name, ...)`, mirroring the
// `[type] name` order used by variable declarations; the type is optional
// only in positions where it can be inferred (never for parameters, but the
// parser still tolerates a bare-identifier name defensively).
func (p *parser) parseParamList() []*ast.Param {
	p.expect(token.LPAREN)
	var params []*ast.Param
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		var typ ast.Type
		if primitiveTypeTokens[p.cur.Kind] || p.at(token.LBRACE) || p.at(token.DEF) {
			typ = p.parseType()
		}
		name := p.parseIdent()
		params = append(params, &ast.Param{Name: name, Type: typ})
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return params
}

// parseClassDecl parses a class declaration: `cls Name` followed by an
// indented body of constructor and method members.
func (p *parser) parseClassDecl() *ast.ClassDecl {
	kw := p.expect(token.CLS)
	name := p.parseIdent()

	cd := &ast.ClassDecl{Kw: kw, Name: name}
	p.expect(token.NEWLINE)
	p.expect(token.INDENT)
	p.skipNewlines()
	for !p.at(token.DEDENT) && !p.at(token.EOF) {
		p.parseClassMember(cd, name)
		p.skipNewlines()
	}
	cd.End = p.cur.Span.Start
	if p.at(token.DEDENT) {
		p.advance()
	}
	return cd
}

// parseClassMember parses one `obj ClassName(...)` constructor, one
// `obj def name(...)` instance method, or one `def name(...)` static method,
// appending it to cd. A parse failure synchronizes to the next member
// boundary and does not abort the enclosing class body.
func (p *parser) parseClassMember(cd *ast.ClassDecl, className *ast.IdentExpr) {
	defer func() {
		if r := recover(); r != nil {
			if r == errPanicMode {
				p.synchronize()
				return
			}
			panic(r)
		}
	}()

	switch {
	case p.at(token.OBJ):
		obj := p.expect(token.OBJ)
		if p.at(token.DEF) {
			def := p.expect(token.DEF)
			name := p.parseIdent()
			params := p.parseParamList()
			var ret ast.Type
			if p.match(token.ARROW) {
				ret = p.parseType()
			}
			body := p.parseBlock()
			cd.Methods = append(cd.Methods, &ast.MethodDecl{
				Obj: obj, Def: def, Name: name, Params: params, Ret: ret, Body: body,
			})
			return
		}
		name := p.parseIdent()
		if name.Name != className.Name {
			p.errorf(name.Span(), "constructor name %q must match class name %q", name.Name, className.Name)
		}
		params := p.parseParamList()
		body := p.parseBlock()
		if cd.Ctor != nil {
			p.errorf(name.Span(), "class %q already has a constructor", className.Name)
		}
		cd.Ctor = &ast.CtorDecl{Obj: obj, Name: name, Params: params, Body: body}
	case p.at(token.DEF):
		def := p.expect(token.DEF)
		name := p.parseIdent()
		params := p.parseParamList()
		var ret ast.Type
		if p.match(token.ARROW) {
			ret = p.parseType()
		}
		body := p.parseBlock()
		cd.Methods = append(cd.Methods, &ast.MethodDecl{
			Def: def, Name: name, Params: params, Ret: ret, Body: body,
		})
	default:
		p.fail(p.cur.Span, "expected a class member (obj or def), found %s", p.cur.Kind.GoString())
	}
}

var arrayDimKeyword = map[string]ast.ArrayDimKind{
	"stack": ast.Stack,
	"queue": ast.Queue,
}

// parseType parses a primitive type (optionally followed by one or more
// array dimensions), a map type, or a function type.
func (p *parser) parseType() ast.Type {
	switch {
	case primitiveTypeTokens[p.cur.Kind]:
		tok := p.cur.Kind
		pos := p.cur.Span.Start
		p.advance()
		pt := &ast.PrimitiveType{File: p.file, Type: tok, Pos: pos}
		if p.at(token.LBRACK) {
			return p.parseArrayType(pt)
		}
		return pt
	case p.at(token.LBRACE):
		return p.parseMapType()
	case p.at(token.DEF):
		return p.parseFuncType()
	default:
		p.fail(p.cur.Span, "expected a type, found %s", p.cur.Kind.GoString())
		return nil
	}
}

func (p *parser) parseArrayType(elem ast.Type) *ast.ArrayType {
	var dims []ast.ArrayDim
	for p.at(token.LBRACK) {
		start := p.expect(token.LBRACK)
		dim := ast.ArrayDim{Kind: ast.Dynamic}
		switch {
		case p.at(token.RBRACK):
			// dynamic, no size
		case p.at(token.IDENT) && arrayDimKeyword[p.cur.Raw] != 0:
			dim.Kind = arrayDimKeyword[p.cur.Raw]
			p.advance()
		default:
			dim.Kind = ast.FixedSize
			dim.Size = p.parseExpr()
		}
		end := p.expect(token.RBRACK)
		dim.Span = token.NewSpan(p.file, start, end)
		dims = append(dims, dim)
	}
	end := dims[len(dims)-1].Span.End
	return &ast.ArrayType{Elem: elem, Dims: dims, End: end}
}

func (p *parser) parseMapType() *ast.MapType {
	start := p.expect(token.LBRACE)
	key := p.parseType()
	p.expect(token.COLON)
	value := p.parseType()
	end := p.expect(token.RBRACE)
	return &ast.MapType{Start: start, Key: key, Value: value, End: end}
}

func (p *parser) parseFuncType() *ast.FuncType {
	start := p.expect(token.DEF)
	p.expect(token.LPAREN)
	var params []ast.Type
	for !p.at(token.RPAREN) && !p.at(token.EOF) {
		params = append(params, p.parseType())
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	var ret ast.Type
	end := p.cur.Span.Start
	if p.match(token.ARROW) {
		ret = p.parseType()
		end = ret.Span().End
	}
	return &ast.FuncType{Start: start, Params: params, Ret: ret, End: end}
}
