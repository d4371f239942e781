// Package bytecode defines the fixed-width instruction encoding, opcode
// table, and chunk/constant-pool container the emitter writes into and the
// VM reads back out of.
package bytecode

import "fmt"

// Opcode identifies the operation a single Instruction performs. Numeric
// values follow declaration order so a dispatch table can be indexed
// directly by Opcode, per the emitter/VM contract.
type Opcode uint8

const (
	LOADK  Opcode = iota // a = register, b = constant index
	LOADKX               // reserved: extended constant, operand in the following word

	MOVE // a = destination, b = source

	ADD  // a = b + c
	SUB  // a = b - c
	MUL  // a = b * c
	DIVF // a = b / c (float)
	DIVI // a = b / c (truncating int)
	MOD  // a = b % c
	POW  // a = b ** c

	CMP_EQ
	CMP_NE
	CMP_LT
	CMP_LE
	CMP_GT
	CMP_GE

	NEG // a = -b
	NOT // a = !b

	JIF // if falsy(a), jump by signed disp(b,c)
	JMP // jump by signed disp(b,c)

	CALL // a = call(callee=reg[b], argc=c, args starting at b+1)
	RET  // return reg[a]

	PRINT // print reg[a]

	EXT // reserved: extended opcode, operand in the following word

	opcodeCount
)

var opcodeNames = [...]string{
	LOADK:  "loadk",
	LOADKX: "loadkx",
	MOVE:   "move",
	ADD:    "add",
	SUB:    "sub",
	MUL:    "mul",
	DIVF:   "divf",
	DIVI:   "divi",
	MOD:    "mod",
	POW:    "pow",
	CMP_EQ: "cmp_eq",
	CMP_NE: "cmp_ne",
	CMP_LT: "cmp_lt",
	CMP_LE: "cmp_le",
	CMP_GT: "cmp_gt",
	CMP_GE: "cmp_ge",
	NEG:    "neg",
	NOT:    "not",
	JIF:    "jif",
	JMP:    "jmp",
	CALL:   "call",
	RET:    "ret",
	PRINT:  "print",
	EXT:    "ext",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("opcode(%d)", uint8(op))
}

// IsJump reports whether op's B/C fields encode a signed branch
// displacement rather than ordinary operands.
func (op Opcode) IsJump() bool { return op == JIF || op == JMP }
