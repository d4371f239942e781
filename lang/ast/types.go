package ast

import (
	"fmt"

	"github.com/brief-lang/brief/lang/token"
)

// ArrayDimKind classifies a single dimension of an array type.
type ArrayDimKind int

const (
	// FixedSize is an array dimension with a known constant size, e.g. [4].
	FixedSize ArrayDimKind = iota
	// Dynamic is a dynamically-sized array dimension, e.g. [].
	Dynamic
	// Stack is a stack-discipline dimension, e.g. [stack].
	Stack
	// Queue is a queue-discipline dimension, e.g. [queue].
	Queue
)

func (k ArrayDimKind) String() string {
	switch k {
	case FixedSize:
		return "fixed"
	case Dynamic:
		return "dynamic"
	case Stack:
		return "stack"
	case Queue:
		return "queue"
	default:
		return "invalid"
	}
}

// ArrayDim is a single dimension in an ArrayType.
type ArrayDim struct {
	Kind ArrayDimKind
	Size Expr // non-nil only when Kind == FixedSize
	Span token.Span
}

type (
	// PrimitiveType is one of the five primitive types: int, dub, char, str,
	// bool.
	PrimitiveType struct {
		File token.FileID
		Type token.Token // INT, DUB, CHAR, STR or BOOL
		Pos  token.Position
	}

	// ArrayType represents an array type with an ordered list of dimensions.
	ArrayType struct {
		Elem Type
		Dims []ArrayDim
		End  token.Position
	}

	// MapType represents a map type, e.g. {str:int}.
	MapType struct {
		Start      token.Position
		Key, Value Type
		End        token.Position
	}

	// FuncType represents a function type, e.g. def(int, str) -> bool.
	FuncType struct {
		Start  token.Position
		Params []Type
		Ret    Type // nil if no return type annotation
		End    token.Position
	}

	// BadType represents a type that failed to parse.
	BadType struct {
		File       token.FileID
		Start, End token.Position
	}
)

func (n *PrimitiveType) Format(f fmt.State, verb rune) { format(f, verb, n, n.Type.String(), nil) }
func (n *PrimitiveType) Span() token.Span              { return token.SingleSpan(n.File, n.Pos) }
func (n *PrimitiveType) Walk(v Visitor)                {}
func (n *PrimitiveType) typ()                          {}

func (n *ArrayType) Format(f fmt.State, verb rune) {
	format(f, verb, n, "array type", map[string]int{"dims": len(n.Dims)})
}
func (n *ArrayType) Span() token.Span {
	start := n.Elem.Span()
	return token.NewSpan(start.File, start.Start, n.End)
}
func (n *ArrayType) Walk(v Visitor) { Walk(v, n.Elem) }
func (n *ArrayType) typ()           {}

func (n *MapType) Format(f fmt.State, verb rune) { format(f, verb, n, "map type", nil) }
func (n *MapType) Span() token.Span {
	start := n.Key.Span()
	return token.NewSpan(start.File, n.Start, n.End)
}
func (n *MapType) Walk(v Visitor) {
	Walk(v, n.Key)
	Walk(v, n.Value)
}
func (n *MapType) typ() {}

func (n *FuncType) Format(f fmt.State, verb rune) {
	format(f, verb, n, "func type", map[string]int{"params": len(n.Params)})
}
func (n *FuncType) Span() token.Span {
	var file token.FileID
	if len(n.Params) > 0 {
		file = n.Params[0].Span().File
	} else if n.Ret != nil {
		file = n.Ret.Span().File
	}
	return token.NewSpan(file, n.Start, n.End)
}
func (n *FuncType) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	if n.Ret != nil {
		Walk(v, n.Ret)
	}
}
func (n *FuncType) typ() {}

func (n *BadType) Format(f fmt.State, verb rune) { format(f, verb, n, "!bad type!", nil) }
func (n *BadType) Span() token.Span              { return token.NewSpan(n.File, n.Start, n.End) }
func (n *BadType) Walk(v Visitor)                {}
func (n *BadType) typ()                          {}
