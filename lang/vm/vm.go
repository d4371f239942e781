package vm

import (
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/brief-lang/brief/lang/bytecode"
)

// VM is a register-based virtual machine for bytecode.Chunk programs. It
// owns its frame stack, register files, globals map, and built-in runtime
// handle exclusively; the runtime is the only externally-mutable resource
// it depends on.
//
// Nested CALL never pushes a new frame: the opcode only ever dispatches to
// the built-in runtime (no opcode exists to invoke a user-defined
// function), so in the current core the frame stack never holds more than
// one entry. The stack is kept anyway, rather than collapsed to a single
// field, so a future CALL variant that does invoke chunks directly has
// somewhere to push onto.
type VM struct {
	// Stdout is where PRINT writes. Defaults to os.Stdout.
	Stdout io.Writer
	// MaxSteps bounds the number of executed instructions before Run aborts
	// with a stack-overflow-shaped error; 0 means unbounded. This is the
	// concrete mechanism for the host-enforced timeout the design leaves
	// external.
	MaxSteps int
	// Runtime backs CALL's builtin dispatch. Defaults to a DefaultRuntime
	// writing to Stdout.
	Runtime BuiltinRuntime

	frames  []*frame
	globals *swiss.Map[string, Value]
	steps   int
}

// New returns a VM ready to run chunks, with a DefaultRuntime writing to
// os.Stdout.
func New() *VM {
	return &VM{
		Stdout:  os.Stdout,
		globals: swiss.NewMap[string, Value](0),
	}
}

func (vm *VM) runtime() BuiltinRuntime {
	if vm.Runtime != nil {
		return vm.Runtime
	}
	out := vm.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &DefaultRuntime{Stdout: out}
}

// PushFrame pushes a new call frame for chunk onto the frame stack.
func (vm *VM) PushFrame(chunk *bytecode.Chunk) {
	vm.frames = append(vm.frames, newFrame(chunk))
}

func (vm *VM) currentFrame() (*frame, error) {
	if len(vm.frames) == 0 {
		return nil, &RuntimeError{Kind: ErrStackUnderflow}
	}
	return vm.frames[len(vm.frames)-1], nil
}

func (vm *VM) popFrame() {
	vm.frames = vm.frames[:len(vm.frames)-1]
}

// Run drives the VM until the outermost frame returns, yielding the value
// passed to its RET, or until an instruction raises an error. At least one
// frame must already be pushed via PushFrame.
func (vm *VM) Run() (Value, error) {
	rt := vm.runtime()
	for {
		fr, err := vm.currentFrame()
		if err != nil {
			return Value{}, err
		}

		in, ok := fr.current()
		if !ok {
			// Fell off the end of the chunk without an explicit RET: same as
			// returning null.
			vm.popFrame()
			if len(vm.frames) == 0 {
				return Null, nil
			}
			continue
		}
		fr.advance()

		if vm.MaxSteps > 0 {
			vm.steps++
			if vm.steps > vm.MaxSteps {
				return Value{}, &RuntimeError{Kind: ErrStackOverflow}
			}
		}

		switch in.Op() {
		case bytecode.LOADK:
			if err := vm.execLoadk(fr, in); err != nil {
				return Value{}, err
			}
		case bytecode.MOVE:
			v, err := fr.get(in.B())
			if err != nil {
				return Value{}, err
			}
			if err := fr.set(in.A(), v); err != nil {
				return Value{}, err
			}
		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIVF, bytecode.DIVI,
			bytecode.MOD, bytecode.POW,
			bytecode.CMP_EQ, bytecode.CMP_NE, bytecode.CMP_LT, bytecode.CMP_LE,
			bytecode.CMP_GT, bytecode.CMP_GE:
			if err := vm.execBinary(fr, in); err != nil {
				return Value{}, err
			}
		case bytecode.NEG:
			v, err := fr.get(in.B())
			if err != nil {
				return Value{}, err
			}
			r, err := negValue(v)
			if err != nil {
				return Value{}, err
			}
			if err := fr.set(in.A(), r); err != nil {
				return Value{}, err
			}
		case bytecode.NOT:
			v, err := fr.get(in.B())
			if err != nil {
				return Value{}, err
			}
			if err := fr.set(in.A(), Bool(!v.IsTruthy())); err != nil {
				return Value{}, err
			}
		case bytecode.JIF:
			cond, err := fr.get(in.A())
			if err != nil {
				return Value{}, err
			}
			if !cond.IsTruthy() {
				if err := jump(fr, in.Offset()); err != nil {
					return Value{}, err
				}
			}
		case bytecode.JMP:
			if err := jump(fr, in.Offset()); err != nil {
				return Value{}, err
			}
		case bytecode.CALL:
			if err := vm.execCall(fr, in, rt); err != nil {
				return Value{}, err
			}
		case bytecode.RET:
			v, err := fr.get(in.A())
			if err != nil {
				return Value{}, err
			}
			vm.popFrame()
			if len(vm.frames) == 0 {
				return v, nil
			}
			// A nested RET can't currently occur (CALL never pushes a frame),
			// but if it ever does, the caller frame simply resumes; the
			// returned value is not written anywhere (no opcode addresses it).
		case bytecode.PRINT:
			v, err := fr.get(in.A())
			if err != nil {
				return Value{}, err
			}
			if _, err := rt.CallBuiltin("print", []Value{v}); err != nil {
				return Value{}, err
			}
		default:
			return Value{}, &RuntimeError{Kind: ErrUnknownOpcode}
		}
	}
}

func (vm *VM) execLoadk(fr *frame, in bytecode.Instruction) error {
	idx := in.B()
	if int(idx) >= len(fr.chunk.Constants) {
		return errInvalidConstantIndex(idx)
	}
	c := fr.chunk.Constants[idx]
	var v Value
	switch c.Kind {
	case bytecode.ConstInt:
		v = Int(c.I)
	case bytecode.ConstDouble:
		v = Double(c.D)
	case bytecode.ConstBool:
		v = Bool(c.B)
	case bytecode.ConstStr:
		v = Str(c.S)
	default:
		v = Null
	}
	return fr.set(in.A(), v)
}

func (vm *VM) execBinary(fr *frame, in bytecode.Instruction) error {
	left, err := fr.get(in.B())
	if err != nil {
		return err
	}
	right, err := fr.get(in.C())
	if err != nil {
		return err
	}
	var result Value
	switch in.Op() {
	case bytecode.ADD:
		result, err = addValue(left, right)
	case bytecode.SUB:
		result, err = subValue(left, right)
	case bytecode.MUL:
		result, err = mulValue(left, right)
	case bytecode.DIVF:
		result, err = divfValue(left, right)
	case bytecode.DIVI:
		result, err = diviValue(left, right)
	case bytecode.MOD:
		result, err = modValue(left, right)
	case bytecode.POW:
		result, err = powValue(left, right)
	case bytecode.CMP_EQ:
		result = Bool(left.Equal(right))
	case bytecode.CMP_NE:
		result = Bool(!left.Equal(right))
	case bytecode.CMP_LT:
		result, err = cmpValue(left, right, func(a, b float64) bool { return a < b })
	case bytecode.CMP_LE:
		result, err = cmpValue(left, right, func(a, b float64) bool { return a <= b })
	case bytecode.CMP_GT:
		result, err = cmpValue(left, right, func(a, b float64) bool { return a > b })
	case bytecode.CMP_GE:
		result, err = cmpValue(left, right, func(a, b float64) bool { return a >= b })
	}
	if err != nil {
		return err
	}
	return fr.set(in.A(), result)
}

func (vm *VM) execCall(fr *frame, in bytecode.Instruction, rt BuiltinRuntime) error {
	calleeReg, argCount := in.B(), in.C()
	callee, err := fr.get(calleeReg)
	if err != nil {
		return err
	}
	if callee.Kind != KindStr {
		return errCall("callee in register %d is not a string value", calleeReg)
	}
	args := make([]Value, argCount)
	for i := uint8(0); i < argCount; i++ {
		a, err := fr.get(calleeReg + 1 + i)
		if err != nil {
			return err
		}
		args[i] = a
	}
	if !rt.IsBuiltin(callee.S) {
		return errCall("%q is not a builtin function", callee.S)
	}
	result, err := rt.CallBuiltin(callee.S, args)
	if err != nil {
		return err
	}
	return fr.set(in.A(), result)
}

func jump(fr *frame, disp int16) error {
	target := fr.ip + int(disp)
	if target < 0 || target > len(fr.chunk.Code) {
		return errCall("jump out of bounds")
	}
	fr.ip = target
	return nil
}
