// Package vm implements the register-based virtual machine that executes
// bytecode chunks produced by the emitter, plus the runtime value
// representation and built-in function dispatch it depends on.
package vm

import "strconv"

// Kind tags which variant a Value holds.
type Kind uint8

const (
	KindInt Kind = iota
	KindDouble
	KindBool
	KindStr
	KindNull
)

// Value is the runtime representation of every value the VM manipulates.
// There is deliberately no object/reference variant: the emitter already
// rejects every HIR construct (field access, indexing, lambdas) that would
// need one, so the register file only ever holds these five shapes.
type Value struct {
	Kind Kind
	I    int64
	D    float64
	B    bool
	S    string
}

func Int(v int64) Value    { return Value{Kind: KindInt, I: v} }
func Double(v float64) Value { return Value{Kind: KindDouble, D: v} }
func Bool(v bool) Value    { return Value{Kind: KindBool, B: v} }
func Str(v string) Value   { return Value{Kind: KindStr, S: v} }

// Null is the singular null value.
var Null = Value{Kind: KindNull}

// IsTruthy reports this value's truthiness: only false and null are falsy,
// every other value (including zero and the empty string) is truthy.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindNull:
		return false
	default:
		return true
	}
}

// Type names the value's kind, for error messages.
func (v Value) Type() string {
	switch v.Kind {
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	default:
		return "null"
	}
}

// String renders the value's canonical display form: Int/Double use their
// natural textual representation, Bool prints true/false, Str prints
// unescaped, Null prints "null".
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.I, 10)
	case KindDouble:
		return strconv.FormatFloat(v.D, 'g', -1, 64)
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	case KindStr:
		return v.S
	default:
		return "null"
	}
}

// Equal implements the structural equality CMP_EQ/CMP_NE use: values of
// differing kinds are never equal, including across Int/Double (no implicit
// numeric promotion for equality, unlike the arithmetic operators).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.I == o.I
	case KindDouble:
		return v.D == o.D
	case KindBool:
		return v.B == o.B
	case KindStr:
		return v.S == o.S
	default: // KindNull
		return true
	}
}
