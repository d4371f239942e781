package ast

import (
	"fmt"

	"github.com/brief-lang/brief/lang/token"
)

type (
	// ExprStmt represents an expression used as a statement. The parser
	// accepts any expression here: typically a call, an assignment or a
	// postfix ++/--, or a body's trailing value expression.
	ExprStmt struct {
		X Expr
	}

	// IfStmt represents `if (cond) then [else else]`.
	IfStmt struct {
		Kw   token.Position
		Cond Expr
		Then *Block
		Else *Block // nil if no else clause; may itself contain a single IfStmt for `else if`
	}

	// WhileStmt represents `while (cond) body`.
	WhileStmt struct {
		Kw   token.Position
		Cond Expr
		Body *Block
	}

	// ForStmt represents a C-style `for (init; cond; post) body`. Each clause
	// is individually optional.
	ForStmt struct {
		Kw   token.Position
		Init Stmt // *VarDecl or *ExprStmt, or nil
		Cond Expr // nil if omitted
		Post Expr // nil if omitted
		Body *Block
	}

	// ForInStmt represents `for (v in iter) body`.
	ForInStmt struct {
		Kw   token.Position
		Var  *IdentExpr
		Iter Expr
		Body *Block
	}

	// MatchCase is a single `case p1, p2, ...: body` clause of a MatchStmt.
	MatchCase struct {
		Kw       token.Position
		Patterns []Expr
		Body     *Block
	}

	// MatchStmt represents `match (scrutinee) case ... else ...`.
	MatchStmt struct {
		Kw        token.Position
		Scrutinee Expr
		Cases     []*MatchCase
		Else      *Block // nil if no else clause
		End       token.Position
	}

	// ReturnStmt represents `ret [expr]`.
	ReturnStmt struct {
		Kw    token.Position
		Value Expr // nil if bare `ret`
		End   token.Position
	}

	// BreakStmt represents `break`.
	BreakStmt struct {
		File token.FileID
		Kw   token.Position
		End  token.Position
	}

	// ContinueStmt represents `continue`.
	ContinueStmt struct {
		File token.FileID
		Kw   token.Position
		End  token.Position
	}

	// BadStmt represents a statement that failed to parse.
	BadStmt struct {
		File       token.FileID
		Start, End token.Position
	}
)

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr stmt", nil) }
func (n *ExprStmt) Span() token.Span              { return n.X.Span() }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.X) }
func (n *ExprStmt) BlockEnding() bool             { return false }

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Span() token.Span {
	end := n.Then.Span().End
	if n.Else != nil {
		end = n.Else.Span().End
	}
	return token.NewSpan(n.Cond.Span().File, n.Kw, end)
}
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *IfStmt) BlockEnding() bool { return false }

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() token.Span {
	return token.NewSpan(n.Cond.Span().File, n.Kw, n.Body.Span().End)
}
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}
func (n *WhileStmt) BlockEnding() bool { return false }

func (n *ForStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "for", nil) }
func (n *ForStmt) Span() token.Span              { return token.NewSpan(n.Body.Span().File, n.Kw, n.Body.Span().End) }
func (n *ForStmt) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
	if n.Cond != nil {
		Walk(v, n.Cond)
	}
	if n.Post != nil {
		Walk(v, n.Post)
	}
	Walk(v, n.Body)
}
func (n *ForStmt) BlockEnding() bool { return false }

func (n *ForInStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "for-in", nil) }
func (n *ForInStmt) Span() token.Span {
	return token.NewSpan(n.Body.Span().File, n.Kw, n.Body.Span().End)
}
func (n *ForInStmt) Walk(v Visitor) {
	Walk(v, n.Var)
	Walk(v, n.Iter)
	Walk(v, n.Body)
}
func (n *ForInStmt) BlockEnding() bool { return false }

func (n *MatchCase) Format(f fmt.State, verb rune) {
	format(f, verb, n, "case", map[string]int{"patterns": len(n.Patterns)})
}
func (n *MatchCase) Span() token.Span {
	return token.NewSpan(n.Body.Span().File, n.Kw, n.Body.Span().End)
}
func (n *MatchCase) Walk(v Visitor) {
	for _, p := range n.Patterns {
		Walk(v, p)
	}
	Walk(v, n.Body)
}

func (n *MatchStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "match", map[string]int{"cases": len(n.Cases)})
}
func (n *MatchStmt) Span() token.Span { return token.NewSpan(n.Scrutinee.Span().File, n.Kw, n.End) }
func (n *MatchStmt) Walk(v Visitor) {
	Walk(v, n.Scrutinee)
	for _, c := range n.Cases {
		Walk(v, c)
	}
	if n.Else != nil {
		Walk(v, n.Else)
	}
}
func (n *MatchStmt) BlockEnding() bool { return false }

func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "ret", nil) }
func (n *ReturnStmt) Span() token.Span {
	var file token.FileID
	if n.Value != nil {
		file = n.Value.Span().File
	}
	return token.NewSpan(file, n.Kw, n.End)
}
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}
func (n *ReturnStmt) BlockEnding() bool { return true }

func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() token.Span              { return token.NewSpan(n.File, n.Kw, n.End) }
func (n *BreakStmt) Walk(v Visitor)                {}
func (n *BreakStmt) BlockEnding() bool             { return true }

func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Span() token.Span              { return token.NewSpan(n.File, n.Kw, n.End) }
func (n *ContinueStmt) Walk(v Visitor)                {}
func (n *ContinueStmt) BlockEnding() bool             { return true }

func (n *BadStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad stmt!", nil) }
func (n *BadStmt) Span() token.Span              { return token.NewSpan(n.File, n.Start, n.End) }
func (n *BadStmt) Walk(v Visitor)                {}
func (n *BadStmt) BlockEnding() bool              { return false }
