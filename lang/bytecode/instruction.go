package bytecode

import "fmt"

// Instruction is a fixed-size 32-bit instruction word, laid out as
// [op:8][a:8][b:8][c:8] from low to high byte.
type Instruction uint32

// NewInstruction packs an opcode and three 8-bit operands into one word.
func NewInstruction(op Opcode, a, b, c uint8) Instruction {
	return Instruction(uint32(op) | uint32(a)<<8 | uint32(b)<<16 | uint32(c)<<24)
}

// New2 packs an instruction with only A and B operands (C = 0).
func New2(op Opcode, a, b uint8) Instruction { return NewInstruction(op, a, b, 0) }

// New1 packs an instruction with only an A operand (B = C = 0).
func New1(op Opcode, a uint8) Instruction { return NewInstruction(op, a, 0, 0) }

// NewJump packs a jump/conditional-jump instruction, encoding disp into the
// combined B/C field (see Offset).
func NewJump(op Opcode, a uint8, disp int16) Instruction {
	in := NewInstruction(op, a, 0, 0)
	in.SetOffset(disp)
	return in
}

func (in Instruction) Op() Opcode { return Opcode(in & 0xFF) }
func (in Instruction) A() uint8   { return uint8((in >> 8) & 0xFF) }
func (in Instruction) B() uint8   { return uint8((in >> 16) & 0xFF) }
func (in Instruction) C() uint8   { return uint8((in >> 24) & 0xFF) }

// Offset interprets the combined B/C fields as a 16-bit signed displacement,
// used by JIF/JMP. B holds the low byte, C the high byte.
func (in Instruction) Offset() int16 {
	combined := uint16(in.B()) | uint16(in.C())<<8
	return int16(combined)
}

// SetOffset rewrites the combined B/C fields from a signed displacement,
// leaving Op and A untouched. Used by the emitter to patch a forward jump
// once its target address is known.
func (in *Instruction) SetOffset(disp int16) {
	u := uint16(disp)
	*in = (*in &^ (0xFFFF << 16)) | Instruction(u)<<16
}

func (in Instruction) String() string {
	if in.Op().IsJump() {
		return fmt.Sprintf("%s a=%d disp=%d", in.Op(), in.A(), in.Offset())
	}
	return fmt.Sprintf("%s a=%d b=%d c=%d", in.Op(), in.A(), in.B(), in.C())
}
