package ast

import (
	"fmt"

	"github.com/brief-lang/brief/lang/token"
)

// Unwrap strips redundant information and is reserved for future use by
// callers that need to see through trivial wrapper nodes; currently a no-op
// since the grammar has no paren-expression wrapper distinct from its
// operand's own span.
func Unwrap(e Expr) Expr { return e }

// IsAssignable reports whether e can appear on the left of an assignment:
// an identifier, a member access, or an index expression whose own prefix
// is assignable.
func IsAssignable(e Expr) bool {
	switch e := e.(type) {
	case *IdentExpr:
		return true
	case *MemberExpr:
		return IsAssignable(e.Left)
	case *IndexExpr:
		return IsAssignable(e.Prefix)
	default:
		return false
	}
}

type (
	// BadExpr represents an expression that failed to parse.
	BadExpr struct {
		File       token.FileID
		Start, End token.Position
	}

	// LiteralExpr represents an integer, double, character, string, boolean or
	// null literal.
	LiteralExpr struct {
		File  token.FileID
		Type  token.Token // INTEGER, DOUBLE, CHARACTER, STR_PART, TRUE, FALSE or NULL
		Start token.Position
		Raw   string      // uninterpreted source text
		Value interface{} // int64 | float64 | rune | string | bool | nil
	}

	// IdentExpr represents an identifier reference.
	IdentExpr struct {
		File  token.FileID
		Start token.Position
		Name  string
	}

	// MemberExpr represents member access, e.g. x.y.
	MemberExpr struct {
		Left  Expr
		Dot   token.Position
		Right *IdentExpr
	}

	// IndexExpr represents indexing, e.g. x[y].
	IndexExpr struct {
		Prefix Expr
		Lbrack token.Position
		Index  Expr
		Rbrack token.Position
	}

	// BinaryExpr represents a binary operator expression, e.g. x + y.
	BinaryExpr struct {
		Left  Expr
		Op    token.Token
		OpPos token.Position
		Right Expr
	}

	// UnaryExpr represents a unary prefix operator expression, e.g. -x, !x,
	// try x, must x.
	UnaryExpr struct {
		Op    token.Token
		OpPos token.Position
		Right Expr
	}

	// PostfixExpr represents a postfix ++ or -- expression.
	PostfixExpr struct {
		Left Expr
		Op   token.Token // INCR or DECR
		End  token.Position
	}

	// CallExpr represents a function call, e.g. f(x, y).
	CallExpr struct {
		Fn     Expr
		Lparen token.Position
		Args   []Expr
		Rparen token.Position
	}

	// MethodCallExpr represents a method call on an object, e.g. x.m(y).
	MethodCallExpr struct {
		Recv   Expr
		Dot    token.Position
		Method *IdentExpr
		Lparen token.Position
		Args   []Expr
		Rparen token.Position
	}

	// CastExpr represents a primary expression followed directly by a type
	// keyword, e.g. x int.
	CastExpr struct {
		Expr Expr
		To   Type
	}

	// InterpPart is one element of an Interpolation: either a literal text
	// fragment (Hole == nil) or a hole expression.
	InterpPart struct {
		Text string     // set when Hole == nil
		Hole Expr       // *IdentExpr, or a *MemberExpr chain for a dotted path
		Span token.Span
	}

	// Interpolation represents a string literal with one or more
	// interpolation holes, e.g. "hello &name".
	Interpolation struct {
		File       token.FileID
		Start, End token.Position
		Parts      []InterpPart
	}

	// Ternary represents a `cond ? then : else` expression.
	Ternary struct {
		Cond, Then, Else Expr
	}

	// Param is a single function, method, constructor or lambda parameter.
	Param struct {
		Name *IdentExpr
		Type Type // nil if untyped
	}

	// Lambda represents a lambda literal. It carries no capture list; the
	// lowered hir.Lambda has a Captures field, which Resolve leaves empty.
	Lambda struct {
		Start  token.Position
		Params []*Param
		Body   *Block
		End    token.Position
	}

	// AssignExpr represents an assignment used as an expression, e.g. x = y,
	// x := y or x += y, including inside a for-loop increment clause. A
	// postfix x++ is a PostfixExpr, not an AssignExpr.
	AssignExpr struct {
		Target Expr
		Op     token.Token // ASSIGN, DEFINE, PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ, PERCENT_EQ, POW_EQ
		OpPos  token.Position
		Value  Expr
	}
)

func (n *BadExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad expr!", nil) }
func (n *BadExpr) Span() token.Span              { return token.NewSpan(n.File, n.Start, n.End) }
func (n *BadExpr) Walk(v Visitor)                {}
func (n *BadExpr) expr()                         {}

func (n *LiteralExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, n.Type.String()+" "+n.Raw, nil)
}
func (n *LiteralExpr) Span() token.Span {
	end := n.Start
	end.Col += uint32(len(n.Raw))
	return token.NewSpan(n.File, n.Start, end)
}
func (n *LiteralExpr) Walk(v Visitor) {}
func (n *LiteralExpr) expr()          {}

func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *IdentExpr) Span() token.Span {
	end := n.Start
	end.Col += uint32(len(n.Name))
	return token.NewSpan(n.File, n.Start, end)
}
func (n *IdentExpr) Walk(v Visitor) {}
func (n *IdentExpr) expr()          {}

func (n *MemberExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr.ident", nil) }
func (n *MemberExpr) Span() token.Span {
	start := n.Left.Span()
	end := n.Right.Span()
	return start.Join(end)
}
func (n *MemberExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *MemberExpr) expr() {}

func (n *IndexExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "expr[index]", nil) }
func (n *IndexExpr) Span() token.Span {
	start := n.Prefix.Span()
	return token.NewSpan(start.File, start.Start, n.Rbrack)
}
func (n *IndexExpr) Walk(v Visitor) {
	Walk(v, n.Prefix)
	Walk(v, n.Index)
}
func (n *IndexExpr) expr() {}

func (n *BinaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "binary "+n.Op.GoString(), nil)
}
func (n *BinaryExpr) Span() token.Span { return n.Left.Span().Join(n.Right.Span()) }
func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (n *BinaryExpr) expr() {}

func (n *UnaryExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "unary "+n.Op.GoString(), nil)
}
func (n *UnaryExpr) Span() token.Span {
	right := n.Right.Span()
	return token.NewSpan(right.File, n.OpPos, right.End)
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.Right) }
func (n *UnaryExpr) expr()          {}

func (n *PostfixExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "postfix "+n.Op.GoString(), nil)
}
func (n *PostfixExpr) Span() token.Span {
	left := n.Left.Span()
	return token.NewSpan(left.File, left.Start, n.End)
}
func (n *PostfixExpr) Walk(v Visitor) { Walk(v, n.Left) }
func (n *PostfixExpr) expr()          {}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args)})
}
func (n *CallExpr) Span() token.Span {
	start := n.Fn.Span()
	return token.NewSpan(start.File, start.Start, n.Rparen)
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Fn)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *CallExpr) expr() {}

func (n *MethodCallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "method call", map[string]int{"args": len(n.Args)})
}
func (n *MethodCallExpr) Span() token.Span {
	start := n.Recv.Span()
	return token.NewSpan(start.File, start.Start, n.Rparen)
}
func (n *MethodCallExpr) Walk(v Visitor) {
	Walk(v, n.Recv)
	Walk(v, n.Method)
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (n *MethodCallExpr) expr() {}

func (n *CastExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "cast", nil) }
func (n *CastExpr) Span() token.Span              { return n.Expr.Span().Join(n.To.Span()) }
func (n *CastExpr) Walk(v Visitor) {
	Walk(v, n.Expr)
	Walk(v, n.To)
}
func (n *CastExpr) expr() {}

func (n *Interpolation) Format(f fmt.State, verb rune) {
	format(f, verb, n, "interpolation", map[string]int{"parts": len(n.Parts)})
}
func (n *Interpolation) Span() token.Span { return token.NewSpan(n.File, n.Start, n.End) }
func (n *Interpolation) Walk(v Visitor) {
	for _, p := range n.Parts {
		if p.Hole != nil {
			Walk(v, p.Hole)
		}
	}
}
func (n *Interpolation) expr() {}

func (n *Ternary) Format(f fmt.State, verb rune) { format(f, verb, n, "ternary", nil) }
func (n *Ternary) Span() token.Span              { return n.Cond.Span().Join(n.Else.Span()) }
func (n *Ternary) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}
func (n *Ternary) expr() {}

func (n *Param) Format(f fmt.State, verb rune) { format(f, verb, n, "param "+n.Name.Name, nil) }
func (n *Param) Span() token.Span {
	if n.Type != nil {
		return n.Name.Span().Join(n.Type.Span())
	}
	return n.Name.Span()
}
func (n *Param) Walk(v Visitor) {
	Walk(v, n.Name)
	if n.Type != nil {
		Walk(v, n.Type)
	}
}

func (n *Lambda) Format(f fmt.State, verb rune) {
	format(f, verb, n, "lambda", map[string]int{"params": len(n.Params)})
}
func (n *Lambda) Span() token.Span {
	body := n.Body.Span()
	return token.NewSpan(body.File, n.Start, n.End)
}
func (n *Lambda) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	Walk(v, n.Body)
}
func (n *Lambda) expr() {}

func (n *AssignExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "assign "+n.Op.GoString(), nil)
}
func (n *AssignExpr) Span() token.Span { return n.Target.Span().Join(n.Value.Span()) }
func (n *AssignExpr) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Value)
}
func (n *AssignExpr) expr() {}
