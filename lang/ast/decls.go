package ast

import (
	"fmt"

	"github.com/brief-lang/brief/lang/token"
)

type (
	// VarDecl represents a variable declaration, e.g. `int x := 1` or `x := 1`.
	// It implements both Decl (at the top level) and Stmt (inside a
	// function/method/constructor body).
	VarDecl struct {
		Kw   token.Position // position of the type keyword or the identifier, whichever comes first
		Name *IdentExpr
		Type Type // nil if untyped
		Init Expr // nil if no initializer
		End  token.Position
	}

	// ConstDecl represents a constant declaration, e.g. `const pi := 3.14`.
	ConstDecl struct {
		Kw   token.Position
		Name *IdentExpr
		Init Expr
	}

	// FuncDecl represents a top-level function declaration.
	FuncDecl struct {
		Kw     token.Position // position of 'def'
		Name   *IdentExpr
		Params []*Param
		Ret    Type // nil if no return type annotation
		Body   *Block
	}

	// CtorDecl represents a class constructor (`obj ClassName(params)`).
	CtorDecl struct {
		Obj    token.Position
		Name   *IdentExpr // must match the enclosing class's name
		Params []*Param
		Body   *Block
	}

	// MethodDecl represents a class method, either an instance method
	// (`obj def name(...)`) or a static method (`def name(...)`).
	MethodDecl struct {
		Obj    token.Position // zero Position if static
		Def    token.Position
		Name   *IdentExpr
		Params []*Param
		Ret    Type
		Body   *Block
	}

	// ClassDecl represents a class declaration.
	ClassDecl struct {
		Kw      token.Position // position of 'cls'
		Name    *IdentExpr
		Ctor    *CtorDecl // nil if the class has no explicit constructor
		Methods []*MethodDecl
		End     token.Position
	}

	// ImportDecl represents an import declaration naming one or more modules.
	ImportDecl struct {
		Kw      token.Position
		Modules []*IdentExpr
		End     token.Position
	}

	// BadDecl represents a declaration that failed to parse.
	BadDecl struct {
		File       token.FileID
		Start, End token.Position
	}
)

func (n *VarDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "var "+n.Name.Name, nil) }
func (n *VarDecl) Span() token.Span {
	start := n.Name.Span()
	return token.NewSpan(start.File, n.Kw, n.End)
}
func (n *VarDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Type != nil {
		Walk(v, n.Type)
	}
	if n.Init != nil {
		Walk(v, n.Init)
	}
}
func (n *VarDecl) decl()             {}
func (n *VarDecl) BlockEnding() bool { return false }

func (n *ConstDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "const "+n.Name.Name, nil) }
func (n *ConstDecl) Span() token.Span              { return token.NewSpan(n.Name.Span().File, n.Kw, n.Init.Span().End) }
func (n *ConstDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	Walk(v, n.Init)
}
func (n *ConstDecl) decl()             {}
func (n *ConstDecl) BlockEnding() bool { return false }

func (n *FuncDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "def "+n.Name.Name, map[string]int{"params": len(n.Params)})
}
func (n *FuncDecl) Span() token.Span { return token.NewSpan(n.Name.Span().File, n.Kw, n.Body.Span().End) }
func (n *FuncDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Ret != nil {
		Walk(v, n.Ret)
	}
	Walk(v, n.Body)
}
func (n *FuncDecl) decl() {}

func (n *CtorDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "obj "+n.Name.Name, map[string]int{"params": len(n.Params)})
}
func (n *CtorDecl) Span() token.Span {
	return token.NewSpan(n.Name.Span().File, n.Obj, n.Body.Span().End)
}
func (n *CtorDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	Walk(v, n.Body)
}

func (n *MethodDecl) Format(f fmt.State, verb rune) {
	lbl := "def " + n.Name.Name
	if n.Obj.IsValid() {
		lbl = "obj " + lbl
	}
	format(f, verb, n, lbl, map[string]int{"params": len(n.Params)})
}
func (n *MethodDecl) Span() token.Span {
	start := n.Def
	if n.Obj.IsValid() {
		start = n.Obj
	}
	return token.NewSpan(n.Name.Span().File, start, n.Body.Span().End)
}
func (n *MethodDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Ret != nil {
		Walk(v, n.Ret)
	}
	Walk(v, n.Body)
}

// IsStatic reports whether the method has no receiver (`def name(...)`
// without a leading `obj`).
func (n *MethodDecl) IsStatic() bool { return !n.Obj.IsValid() }

func (n *ClassDecl) Format(f fmt.State, verb rune) {
	var ctors int
	if n.Ctor != nil {
		ctors = 1
	}
	format(f, verb, n, "cls "+n.Name.Name, map[string]int{"ctor": ctors, "methods": len(n.Methods)})
}
func (n *ClassDecl) Span() token.Span { return token.NewSpan(n.Name.Span().File, n.Kw, n.End) }
func (n *ClassDecl) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Ctor != nil {
		n.Ctor.Walk(v)
	}
	for _, m := range n.Methods {
		Walk(v, m)
	}
}
func (n *ClassDecl) decl() {}

func (n *ImportDecl) Format(f fmt.State, verb rune) {
	format(f, verb, n, "import", map[string]int{"modules": len(n.Modules)})
}
func (n *ImportDecl) Span() token.Span {
	var file token.FileID
	if len(n.Modules) > 0 {
		file = n.Modules[0].Span().File
	}
	return token.NewSpan(file, n.Kw, n.End)
}
func (n *ImportDecl) Walk(v Visitor) {
	for _, m := range n.Modules {
		Walk(v, m)
	}
}
func (n *ImportDecl) decl() {}

func (n *BadDecl) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad decl!", nil) }
func (n *BadDecl) Span() token.Span              { return token.NewSpan(n.File, n.Start, n.End) }
func (n *BadDecl) Walk(v Visitor)                {}
func (n *BadDecl) decl()                         {}
