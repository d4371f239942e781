package bytecode

import (
	"fmt"
	"strings"
)

// maxConstants is the hard cap on a chunk's constant pool: constant indices
// are encoded in an 8-bit operand field.
const maxConstants = 256

// Chunk is one compiled unit: a top-level module body, a function, a
// method, a constructor, or a lambda.
type Chunk struct {
	Name          string
	Code          []Instruction
	Constants     []Constant
	MaxRegisters  uint8
	UpvalueCount  uint8
	ParamCount    uint8
}

func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

// Emit appends an instruction and returns its address (ip), letting the
// emitter remember jump-patch sites.
func (c *Chunk) Emit(in Instruction) int {
	c.Code = append(c.Code, in)
	return len(c.Code) - 1
}

// Patch overwrites the instruction at ip, used to back-patch a jump
// displacement once the branch target address is known.
func (c *Chunk) Patch(ip int, in Instruction) {
	if ip >= 0 && ip < len(c.Code) {
		c.Code[ip] = in
	}
}

// Len reports the current instruction-pointer position (end of code),
// i.e. the address the next Emit would use.
func (c *Chunk) Len() int { return len(c.Code) }

// AddConstant interns v into the pool, returning its index; an existing
// structurally-equal entry is reused rather than duplicated. Panics if the
// pool would grow past maxConstants, mirroring the 8-bit index field's hard
// limit.
func (c *Chunk) AddConstant(v Constant) uint8 {
	for i, existing := range c.Constants {
		if existing.Equal(v) {
			return uint8(i)
		}
	}
	if len(c.Constants) >= maxConstants {
		panic(fmt.Sprintf("chunk %q: too many constants (max %d)", c.Name, maxConstants))
	}
	c.Constants = append(c.Constants, v)
	return uint8(len(c.Constants) - 1)
}

func (c *Chunk) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "chunk %s\n", c.Name)
	fmt.Fprintf(&b, "  params: %d  max_regs: %d  upvalues: %d\n", c.ParamCount, c.MaxRegisters, c.UpvalueCount)
	b.WriteString("  constants:\n")
	for i, k := range c.Constants {
		fmt.Fprintf(&b, "    [%d] %s\n", i, k)
	}
	b.WriteString("  code:\n")
	for ip, in := range c.Code {
		fmt.Fprintf(&b, "    %04d %s\n", ip, in)
	}
	return b.String()
}
