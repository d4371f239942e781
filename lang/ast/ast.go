// Package ast defines the types representing the abstract syntax tree (AST)
// of the source language: an ordered sequence of declarations built from
// statements, expressions and type annotations, each carrying its own
// token.Span.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brief-lang/brief/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements fmt.Formatter so it can print a description of
	// itself. The only supported verbs are 'v' and 's'; the '#' flag adds
	// child-count information.
	fmt.Formatter

	// Span reports the span of source text this node covers.
	Span() token.Span

	// Walk enters each child node to implement the Visitor pattern.
	Walk(v Visitor)
}

// Decl represents a top-level declaration.
type Decl interface {
	Node
	decl()
}

// Stmt represents a statement.
type Stmt interface {
	Node

	// BlockEnding reports whether the statement may only appear as the last
	// statement of a block (return, break, continue).
	BlockEnding() bool
}

// Expr represents an expression.
type Expr interface {
	Node
	expr()
}

// Type represents a type annotation.
type Type interface {
	Node
	typ()
}

// Program is the root node of a parsed file: an ordered list of
// declarations.
type Program struct {
	File  token.FileID
	Decls []Decl
	End   token.Position // position of EOF, used for empty programs
}

func (n *Program) Format(f fmt.State, verb rune) {
	format(f, verb, n, "program", map[string]int{"decls": len(n.Decls)})
}

func (n *Program) Span() token.Span {
	if len(n.Decls) == 0 {
		return token.SingleSpan(n.File, n.End)
	}
	start := n.Decls[0].Span()
	end := n.Decls[len(n.Decls)-1].Span()
	return start.Join(end)
}

func (n *Program) Walk(v Visitor) {
	for _, d := range n.Decls {
		Walk(v, d)
	}
}

// Block is an indentation-delimited sequence of statements.
type Block struct {
	BraceSpan token.Span // span of the Indent/Dedent pair, or of the single inline statement
	Stmts     []Stmt
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() token.Span { return n.BraceSpan }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

// format implements the common node-description printing shared by every
// node type: it writes a label, optionally truncated/padded to the verb's
// requested width, followed by child-count information when the '#' flag is
// set.
func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		if len(runes) >= w {
			runes = runes[:w]
		} else if minus {
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		} else if !plus {
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
