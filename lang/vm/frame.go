package vm

import "github.com/brief-lang/brief/lang/bytecode"

// frame is one call's execution context: its chunk, instruction pointer,
// and register file. Register count is sized from the chunk's
// MaxRegisters, matching what the emitter computed for it.
type frame struct {
	chunk *bytecode.Chunk
	ip    int
	regs  []Value
}

func newFrame(chunk *bytecode.Chunk) *frame {
	return &frame{
		chunk: chunk,
		regs:  make([]Value, chunk.MaxRegisters),
	}
}

func (fr *frame) current() (bytecode.Instruction, bool) {
	if fr.ip >= len(fr.chunk.Code) {
		return 0, false
	}
	return fr.chunk.Code[fr.ip], true
}

func (fr *frame) advance() { fr.ip++ }

func (fr *frame) get(reg uint8) (Value, error) {
	if int(reg) >= len(fr.regs) {
		return Value{}, errInvalidRegister(reg)
	}
	return fr.regs[reg], nil
}

func (fr *frame) set(reg uint8, v Value) error {
	if int(reg) >= len(fr.regs) {
		return errInvalidRegister(reg)
	}
	fr.regs[reg] = v
	return nil
}
