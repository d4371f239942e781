// Package hir implements the high-level intermediate representation: a tree
// structurally similar to the AST but with postfix increment/decrement,
// for-in, and match rewritten away, and every name-bearing node carrying a
// resolved SymbolRef once Resolve has run.
//
// Lowering from the AST is two passes, always run in this order: Desugar
// then Resolve. Either pass may accumulate errors; a caller should not feed
// the result of a failed Resolve to the emitter.
package hir

import (
	"fmt"

	"github.com/brief-lang/brief/lang/ast"
	"github.com/brief-lang/brief/lang/token"
)

// Node is any HIR tree node.
type Node interface {
	Span() token.Span
}

// Decl is a top-level HIR declaration.
type Decl interface {
	Node
	decl()
}

// Stmt is an HIR statement.
type Stmt interface {
	Node
	stmt()
}

// Expr is an HIR expression.
type Expr interface {
	Node
	expr()
}

type span struct{ sp token.Span }

func (s span) Span() token.Span { return s.sp }

// Program is the root of a lowered HIR tree. Locals is populated by Resolve
// with every module-scope variable, constant, function, and class name:
// module scope is simply the outermost chunk, so the emitter sizes its
// register file from this table exactly as it does for a function body.
type Program struct {
	span
	Decls  []Decl
	Locals *SymbolTable
}

// Param is a function, method, constructor, or lambda parameter.
type Param struct {
	span
	Name   string
	Symbol SymbolRef
	Type   ast.Type
}

// Block is a sequence of statements; every AST block becomes exactly one of
// these, with its own lexical scope at resolution time.
type Block struct {
	span
	Stmts []Stmt
}

// VarDecl implements both Decl (top-level) and Stmt (inside a body), exactly
// as its AST counterpart does.
type VarDecl struct {
	span
	Name   string
	Symbol SymbolRef
	Type   ast.Type
	Init   Expr
}

func (*VarDecl) decl() {}
func (*VarDecl) stmt() {}

// ConstDecl implements both Decl and Stmt.
type ConstDecl struct {
	span
	Name   string
	Symbol SymbolRef
	Init   Expr
}

func (*ConstDecl) decl() {}
func (*ConstDecl) stmt() {}

// FuncDecl is a top-level function declaration. Locals is populated during
// resolution with every parameter and local variable declared anywhere in
// Body, register-numbered starting right after the parameters.
type FuncDecl struct {
	span
	Name   string
	Symbol SymbolRef
	Params []*Param
	Ret    ast.Type
	Body   *Block
	Locals *SymbolTable
}

func (*FuncDecl) decl() {}

// CtorDecl is a class constructor (`obj ClassName(params)`). Body has
// already had its implicit `obj.param = param` assignments prepended by the
// time desugaring returns.
type CtorDecl struct {
	span
	Params []*Param
	Body   *Block
	Locals *SymbolTable
}

// MethodDecl is an instance (`obj def`) or static (`def`) class method.
type MethodDecl struct {
	span
	Name       string
	Symbol     SymbolRef
	IsInstance bool
	Params     []*Param
	Ret        ast.Type
	Body       *Block
	Locals     *SymbolTable
}

// ClassDecl is a class declaration.
type ClassDecl struct {
	span
	Name   string
	Symbol SymbolRef
	Ctor   *CtorDecl
	Methods []*MethodDecl
}

func (*ClassDecl) decl() {}

// ImportDecl is carried through desugaring untouched.
type ImportDecl struct {
	span
	Modules []string
}

func (*ImportDecl) decl() {}

// BadDecl stands in for a declaration the parser could not recover.
type BadDecl struct{ span }

func (*BadDecl) decl() {}

// IfStmt, WhileStmt survive desugaring unchanged in shape.
type IfStmt struct {
	span
	Cond Expr
	Then *Block
	Else *Block
}

func (*IfStmt) stmt() {}

type WhileStmt struct {
	span
	Cond Expr
	Body *Block
}

func (*WhileStmt) stmt() {}

// ForStmt is the C-style three-clause for loop. Unlike for-in, it is
// preserved as its own HIR node: the emitter lowers each clause directly
// (see spec's bytecode-emitter control-flow section), rather than being
// pre-flattened into a VarDecl+While pair the way for-in is.
type ForStmt struct {
	span
	Init Stmt // nil if the clause was omitted
	Cond Expr // nil if omitted
	Post Expr // nil if omitted
	Body *Block
}

func (*ForStmt) stmt() {}

type ReturnStmt struct {
	span
	Value Expr // nil for a bare `ret`
}

func (*ReturnStmt) stmt() {}

type BreakStmt struct{ span }

func (*BreakStmt) stmt() {}

type ContinueStmt struct{ span }

func (*ContinueStmt) stmt() {}

type ExprStmt struct {
	span
	X Expr
}

func (*ExprStmt) stmt() {}

type BadStmt struct{ span }

func (*BadStmt) stmt() {}

// Literal unifies int/double/character/bool/null literals, the way
// ast.LiteralExpr already does; Kind names which one (token.INTEGER,
// token.DOUBLE, token.CHARACTER, token.TRUE, token.FALSE, or token.NULL).
type Literal struct {
	span
	Kind  token.Token
	Value any
}

func (*Literal) expr() {}

// Variable is a name reference, resolved to Symbol once Resolve has run.
type Variable struct {
	span
	Name   string
	Symbol SymbolRef
}

func (*Variable) expr() {}

type MemberAccess struct {
	span
	Object Expr
	Member string
}

func (*MemberAccess) expr() {}

type Index struct {
	span
	Object Expr
	Idx    Expr
}

func (*Index) expr() {}

type BinaryOp struct {
	span
	Left  Expr
	Op    token.Token
	Right Expr
}

func (*BinaryOp) expr() {}

type UnaryOp struct {
	span
	Op Token
	X  Expr
}

func (*UnaryOp) expr() {}

// Token is an alias kept for readability in this file; it is token.Token.
type Token = token.Token

// Assign is the one HIR form for `=`, compound assignment operators, and
// postfix `++`/`--` (all desugared into it), plus the bare `name := value`
// short-declaration form. Declare is true only for the last case: it tells
// Resolve to declare-or-reuse the target name instead of requiring it to
// already be bound (see resolve.go).
type Assign struct {
	span
	Target  Expr
	Value   Expr
	Declare bool
}

func (*Assign) expr() {}

type Call struct {
	span
	Callee Expr
	Args   []Expr
}

func (*Call) expr() {}

type MethodCall struct {
	span
	Object Expr
	Method string
	Args   []Expr
}

func (*MethodCall) expr() {}

type Cast struct {
	span
	X  Expr
	To ast.Type
}

func (*Cast) expr() {}

// Interpolation keeps its parts at the AST level rather than lowering them
// to HIR: the current emitter only supports a text-only interpolation
// (collapsed to a single string constant) and leaves any interpolation with
// a hole unimplemented, so there is nothing for Resolve to usefully do with
// the hole expressions yet.
type Interpolation struct {
	span
	Parts []ast.InterpPart
}

func (*Interpolation) expr() {}

type Ternary struct {
	span
	Cond, Then, Else Expr
}

func (*Ternary) expr() {}

// Lambda keeps a block body (unlike the expression-bodied lambda of the
// grounding reference) since that is the surface syntax this grammar
// actually parses (`def(params) body`, see lang/parser). Captures is always
// empty: Resolve resolves the parameters and body but does not discover
// captures (see the emitter, which rejects lambdas outright).
type Lambda struct {
	span
	Params   []*Param
	Captures []Upvalue
	Body     *Block
}

func (*Lambda) expr() {}

type BadExpr struct{ span }

func (*BadExpr) expr() {}

// Desugar lowers a parsed AST into HIR, rewriting postfix inc/dec, for-in,
// and match away. It never fails; malformed input already became BadDecl/
// BadStmt/BadExpr placeholders during parsing and is carried through as the
// corresponding HIR Bad* node.
func Desugar(prog *ast.Program) *Program {
	d := &desugarer{}
	decls := make([]Decl, len(prog.Decls))
	for i, decl := range prog.Decls {
		decls[i] = d.decl(decl)
	}
	return &Program{span: span{prog.Span()}, Decls: decls}
}

type desugarer struct {
	tempCounter int
}

func (d *desugarer) nextTemp() string {
	name := fmt.Sprintf("__temp_%d", d.tempCounter)
	d.tempCounter++
	return name
}

func (d *desugarer) decl(n ast.Decl) Decl {
	switch n := n.(type) {
	case *ast.VarDecl:
		return d.varDecl(n)
	case *ast.ConstDecl:
		return d.constDecl(n)
	case *ast.FuncDecl:
		return d.funcDecl(n)
	case *ast.ClassDecl:
		return d.classDecl(n)
	case *ast.ImportDecl:
		mods := make([]string, len(n.Modules))
		for i, m := range n.Modules {
			mods[i] = m.Name
		}
		return &ImportDecl{span: span{n.Span()}, Modules: mods}
	case *ast.BadDecl:
		return &BadDecl{span{n.Span()}}
	default:
		return &BadDecl{span{n.Span()}}
	}
}

func (d *desugarer) varDecl(n *ast.VarDecl) *VarDecl {
	v := &VarDecl{span: span{n.Span()}, Name: n.Name.Name, Type: n.Type}
	if n.Init != nil {
		v.Init = d.expr(n.Init)
	}
	return v
}

func (d *desugarer) constDecl(n *ast.ConstDecl) *ConstDecl {
	return &ConstDecl{span: span{n.Span()}, Name: n.Name.Name, Init: d.expr(n.Init)}
}

func (d *desugarer) params(ps []*ast.Param) []*Param {
	out := make([]*Param, len(ps))
	for i, p := range ps {
		out[i] = &Param{span: span{p.Name.Span()}, Name: p.Name.Name, Type: p.Type}
	}
	return out
}

func (d *desugarer) funcDecl(n *ast.FuncDecl) *FuncDecl {
	return &FuncDecl{
		span:   span{n.Span()},
		Name:   n.Name.Name,
		Params: d.params(n.Params),
		Ret:    n.Ret,
		Body:   d.block(n.Body),
		Locals: NewSymbolTable(),
	}
}

func (d *desugarer) classDecl(n *ast.ClassDecl) *ClassDecl {
	cd := &ClassDecl{span: span{n.Span()}, Name: n.Name.Name}
	if n.Ctor != nil {
		cd.Ctor = d.ctorDecl(n.Ctor)
	}
	for _, m := range n.Methods {
		cd.Methods = append(cd.Methods, d.methodDecl(m))
	}
	return cd
}

// ctorDecl desugars a constructor body and then prepends, for each
// parameter not already explicitly assigned to the matching `obj` field,
// an implicit `obj.param = param` assignment statement.
func (d *desugarer) ctorDecl(n *ast.CtorDecl) *CtorDecl {
	body := d.block(n.Body)
	params := d.params(n.Params)

	assigned := make(map[string]bool, len(params))
	for _, s := range body.Stmts {
		es, ok := s.(*ExprStmt)
		if !ok {
			continue
		}
		as, ok := es.X.(*Assign)
		if !ok {
			continue
		}
		ma, ok := as.Target.(*MemberAccess)
		if !ok {
			continue
		}
		assigned[ma.Member] = true
	}

	var implicit []Stmt
	for _, p := range params {
		if assigned[p.Name] {
			continue
		}
		objExpr := &Variable{span: span{p.Span()}, Name: "obj"}
		target := &MemberAccess{span: span{p.Span()}, Object: objExpr, Member: p.Name}
		value := &Variable{span: span{p.Span()}, Name: p.Name}
		assign := &Assign{span: span{p.Span()}, Target: target, Value: value}
		implicit = append(implicit, &ExprStmt{span: span{p.Span()}, X: assign})
	}
	body.Stmts = append(implicit, body.Stmts...)

	return &CtorDecl{span: span{n.Span()}, Params: params, Body: body, Locals: NewSymbolTable()}
}

func (d *desugarer) methodDecl(n *ast.MethodDecl) *MethodDecl {
	return &MethodDecl{
		span:       span{n.Span()},
		Name:       n.Name.Name,
		IsInstance: !n.IsStatic(),
		Params:     d.params(n.Params),
		Ret:        n.Ret,
		Body:       d.block(n.Body),
		Locals:     NewSymbolTable(),
	}
}

func (d *desugarer) block(n *ast.Block) *Block {
	b := &Block{span: span{n.Span()}}
	for _, s := range n.Stmts {
		b.Stmts = append(b.Stmts, d.stmt(s)...)
	}
	return b
}

// stmt desugars one AST statement into zero or more HIR statements: for-in
// and match each expand into several sibling statements, everything else
// maps one-to-one.
func (d *desugarer) stmt(n ast.Stmt) []Stmt {
	switch n := n.(type) {
	case *ast.VarDecl:
		return []Stmt{d.varDecl(n)}
	case *ast.ConstDecl:
		return []Stmt{d.constDecl(n)}
	case *ast.IfStmt:
		s := &IfStmt{span: span{n.Span()}, Cond: d.expr(n.Cond), Then: d.block(n.Then)}
		if n.Else != nil {
			s.Else = d.block(n.Else)
		}
		return []Stmt{s}
	case *ast.WhileStmt:
		return []Stmt{&WhileStmt{span: span{n.Span()}, Cond: d.expr(n.Cond), Body: d.block(n.Body)}}
	case *ast.ForStmt:
		s := &ForStmt{span: span{n.Span()}, Body: d.block(n.Body)}
		if n.Init != nil {
			init := d.stmt(n.Init)
			if len(init) == 1 {
				s.Init = init[0]
			}
		}
		if n.Cond != nil {
			s.Cond = d.expr(n.Cond)
		}
		if n.Post != nil {
			s.Post = d.expr(n.Post)
		}
		return []Stmt{s}
	case *ast.ForInStmt:
		return d.forIn(n)
	case *ast.MatchStmt:
		return d.match(n)
	case *ast.ReturnStmt:
		r := &ReturnStmt{span: span{n.Span()}}
		if n.Value != nil {
			r.Value = d.expr(n.Value)
		}
		return []Stmt{r}
	case *ast.BreakStmt:
		return []Stmt{&BreakStmt{span{n.Span()}}}
	case *ast.ContinueStmt:
		return []Stmt{&ContinueStmt{span{n.Span()}}}
	case *ast.ExprStmt:
		return []Stmt{&ExprStmt{span: span{n.Span()}, X: d.expr(n.X)}}
	case *ast.BadStmt:
		return []Stmt{&BadStmt{span{n.Span()}}}
	default:
		return []Stmt{&BadStmt{span{n.Span()}}}
	}
}

// forIn desugars `for (v in e) body` into:
//
//	__temp_N := 0
//	while (__temp_N < len(e))
//	    v := e[__temp_N]
//	    <body>
//	    __temp_N = __temp_N + 1
func (d *desugarer) forIn(n *ast.ForInStmt) []Stmt {
	sp := span{n.Span()}
	idxName := d.nextTemp()
	iter := d.expr(n.Iter)

	idxInit := &VarDecl{span: sp, Name: idxName, Init: &Literal{span: sp, Kind: token.INTEGER, Value: int64(0)}}
	idxVar := &Variable{span: sp, Name: idxName}

	loopVarInit := &VarDecl{
		span: sp,
		Name: n.Var.Name,
		Init: &Index{span: sp, Object: iter, Idx: idxVar},
	}

	lenCall := &Call{span: sp, Callee: &Variable{span: sp, Name: "len"}, Args: []Expr{iter}}
	cond := &BinaryOp{span: sp, Left: idxVar, Op: token.LT, Right: lenCall}

	increment := &Assign{
		span:   sp,
		Target: idxVar,
		Value: &BinaryOp{
			span: sp, Left: idxVar, Op: token.PLUS,
			Right: &Literal{span: sp, Kind: token.INTEGER, Value: int64(1)},
		},
	}

	body := d.block(n.Body)
	body.Stmts = append([]Stmt{loopVarInit}, body.Stmts...)
	body.Stmts = append(body.Stmts, &ExprStmt{span: sp, X: increment})

	return []Stmt{idxInit, &WhileStmt{span: sp, Cond: cond, Body: body}}
}

// match desugars `match (s) case p1,p2: a case p3: b else: c` into:
//
//	__temp_N := s
//	if (__temp_N == p1 || __temp_N == p2) a else if (__temp_N == p3) b else c
func (d *desugarer) match(n *ast.MatchStmt) []Stmt {
	sp := span{n.Span()}
	tempName := d.nextTemp()
	scrutinee := d.expr(n.Scrutinee)
	tempInit := &VarDecl{span: sp, Name: tempName, Init: scrutinee}

	var elseBlock *Block
	if n.Else != nil {
		elseBlock = d.block(n.Else)
	}

	chain := d.matchIfChain(tempName, n.Cases, elseBlock, sp)
	return append([]Stmt{tempInit}, chain...)
}

func (d *desugarer) matchIfChain(tempName string, cases []*ast.MatchCase, elseBlock *Block, sp span) []Stmt {
	if len(cases) == 0 {
		if elseBlock != nil {
			return elseBlock.Stmts
		}
		return nil
	}

	c := cases[0]
	rest := cases[1:]
	body := d.block(c.Body)

	var cond Expr
	for _, pat := range c.Patterns {
		eq := &BinaryOp{span: sp, Left: &Variable{span: sp, Name: tempName}, Op: token.EQL, Right: d.expr(pat)}
		if cond == nil {
			cond = eq
		} else {
			cond = &BinaryOp{span: sp, Left: cond, Op: token.PIPEPIPE, Right: eq}
		}
	}

	var elseOut *Block
	if len(rest) == 0 {
		elseOut = elseBlock
	} else {
		elseOut = &Block{span: sp, Stmts: d.matchIfChain(tempName, rest, elseBlock, sp)}
	}

	return []Stmt{&IfStmt{span: sp, Cond: cond, Then: body, Else: elseOut}}
}

func (d *desugarer) expr(n ast.Expr) Expr {
	switch n := n.(type) {
	case *ast.LiteralExpr:
		return &Literal{span: span{n.Span()}, Kind: n.Type, Value: n.Value}
	case *ast.IdentExpr:
		return &Variable{span: span{n.Span()}, Name: n.Name}
	case *ast.MemberExpr:
		return &MemberAccess{span: span{n.Span()}, Object: d.expr(n.Left), Member: n.Right.Name}
	case *ast.IndexExpr:
		return &Index{span: span{n.Span()}, Object: d.expr(n.Prefix), Idx: d.expr(n.Index)}
	case *ast.BinaryExpr:
		return &BinaryOp{span: span{n.Span()}, Left: d.expr(n.Left), Op: n.Op, Right: d.expr(n.Right)}
	case *ast.UnaryExpr:
		return &UnaryOp{span: span{n.Span()}, Op: n.Op, X: d.expr(n.Right)}
	case *ast.PostfixExpr:
		return d.postfix(n)
	case *ast.AssignExpr:
		return d.assign(n)
	case *ast.CallExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = d.expr(a)
		}
		return &Call{span: span{n.Span()}, Callee: d.expr(n.Fn), Args: args}
	case *ast.MethodCallExpr:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = d.expr(a)
		}
		return &MethodCall{span: span{n.Span()}, Object: d.expr(n.Recv), Method: n.Method.Name, Args: args}
	case *ast.CastExpr:
		return &Cast{span: span{n.Span()}, X: d.expr(n.Expr), To: n.To}
	case *ast.Interpolation:
		return &Interpolation{span: span{n.Span()}, Parts: n.Parts}
	case *ast.Ternary:
		return &Ternary{span: span{n.Span()}, Cond: d.expr(n.Cond), Then: d.expr(n.Then), Else: d.expr(n.Else)}
	case *ast.Lambda:
		return &Lambda{span: span{n.Span()}, Params: d.params(n.Params), Body: d.block(n.Body)}
	case *ast.BadExpr:
		return &BadExpr{span{n.Span()}}
	default:
		return &BadExpr{span{n.Span()}}
	}
}

// postfix desugars `x++`/`x--` into `x = x + 1`/`x = x - 1`.
func (d *desugarer) postfix(n *ast.PostfixExpr) Expr {
	left := d.expr(n.Left)
	op := token.PLUS
	if n.Op == token.DECR {
		op = token.MINUS
	}
	sp := span{n.Span()}
	return &Assign{
		span:   sp,
		Target: left,
		Value:  &BinaryOp{span: sp, Left: left, Op: op, Right: &Literal{span: sp, Kind: token.INTEGER, Value: int64(1)}},
	}
}

// assign desugars every assignment-flavored operator into a plain Assign.
// Compound operators (+=, -=, ...) become `target = target OP value`; `:=`
// is marked Declare so Resolve declares-or-reuses the target instead of
// requiring a prior binding; `=` maps straight across.
func (d *desugarer) assign(n *ast.AssignExpr) Expr {
	target := d.expr(n.Target)
	value := d.expr(n.Value)
	sp := span{n.Span()}

	switch n.Op {
	case token.ASSIGN:
		return &Assign{span: sp, Target: target, Value: value}
	case token.DEFINE:
		return &Assign{span: sp, Target: target, Value: value, Declare: true}
	default:
		op, ok := compoundOps[n.Op]
		if !ok {
			return &Assign{span: sp, Target: target, Value: value}
		}
		return &Assign{span: sp, Target: target, Value: &BinaryOp{span: sp, Left: target, Op: op, Right: value}}
	}
}

var compoundOps = map[token.Token]token.Token{
	token.PLUS_EQ:    token.PLUS,
	token.MINUS_EQ:   token.MINUS,
	token.STAR_EQ:    token.STAR,
	token.SLASH_EQ:   token.SLASH,
	token.PERCENT_EQ: token.PERCENT,
	token.POW_EQ:     token.STARSTAR,
}
