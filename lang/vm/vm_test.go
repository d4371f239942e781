package vm_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brief-lang/brief/lang/bytecode"
	"github.com/brief-lang/brief/lang/emitter"
	"github.com/brief-lang/brief/lang/hir"
	"github.com/brief-lang/brief/lang/parser"
	"github.com/brief-lang/brief/lang/token"
	"github.com/brief-lang/brief/lang/vm"
)

func testChunk() *bytecode.Chunk {
	c := bytecode.NewChunk("test")
	c.MaxRegisters = 10
	return c
}

func TestRunLoadConstant(t *testing.T) {
	c := testChunk()
	idx := c.AddConstant(bytecode.IntConstant(42))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, idx))
	c.Emit(bytecode.New1(bytecode.RET, 0))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(42), result)
}

func TestRunAddIntegers(t *testing.T) {
	c := testChunk()
	i1 := c.AddConstant(bytecode.IntConstant(10))
	i2 := c.AddConstant(bytecode.IntConstant(20))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, i1))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, i2))
	c.Emit(bytecode.NewInstruction(bytecode.ADD, 2, 0, 1))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(30), result)
}

func TestRunSubtractIntegers(t *testing.T) {
	c := testChunk()
	i1 := c.AddConstant(bytecode.IntConstant(20))
	i2 := c.AddConstant(bytecode.IntConstant(10))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, i1))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, i2))
	c.Emit(bytecode.NewInstruction(bytecode.SUB, 2, 0, 1))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(10), result)
}

func TestRunMultiplyIntegers(t *testing.T) {
	c := testChunk()
	i1 := c.AddConstant(bytecode.IntConstant(5))
	i2 := c.AddConstant(bytecode.IntConstant(6))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, i1))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, i2))
	c.Emit(bytecode.NewInstruction(bytecode.MUL, 2, 0, 1))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(30), result)
}

func TestRunCompareEquals(t *testing.T) {
	c := testChunk()
	i1 := c.AddConstant(bytecode.IntConstant(5))
	i2 := c.AddConstant(bytecode.IntConstant(5))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, i1))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, i2))
	c.Emit(bytecode.NewInstruction(bytecode.CMP_EQ, 2, 0, 1))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Bool(true), result)
}

func TestRunCompareNotEquals(t *testing.T) {
	c := testChunk()
	i1 := c.AddConstant(bytecode.IntConstant(5))
	i2 := c.AddConstant(bytecode.IntConstant(10))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, i1))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, i2))
	c.Emit(bytecode.NewInstruction(bytecode.CMP_NE, 2, 0, 1))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Bool(true), result)
}

func TestRunNegate(t *testing.T) {
	c := testChunk()
	idx := c.AddConstant(bytecode.IntConstant(42))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, idx))
	c.Emit(bytecode.New2(bytecode.NEG, 1, 0))
	c.Emit(bytecode.New1(bytecode.RET, 1))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(-42), result)
}

func TestRunNotOperator(t *testing.T) {
	c := testChunk()
	idx := c.AddConstant(bytecode.BoolConstant(false))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, idx))
	c.Emit(bytecode.New2(bytecode.NOT, 1, 0))
	c.Emit(bytecode.New1(bytecode.RET, 1))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Bool(true), result)
}

// TestRunJumpIfFalse mirrors the hand-assembled jump test: loading false
// into reg 0, JIF past a LOADK-true, landing on a LOADK-false that is the
// value actually returned.
func TestRunJumpIfFalse(t *testing.T) {
	c := testChunk()
	falseIdx := c.AddConstant(bytecode.BoolConstant(false))
	trueIdx := c.AddConstant(bytecode.BoolConstant(true))

	c.Emit(bytecode.New2(bytecode.LOADK, 0, falseIdx))
	jmpIP := c.Emit(bytecode.New2(bytecode.JIF, 0, 0))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, trueIdx))
	c.Emit(bytecode.New1(bytecode.RET, 1))

	skipToIP := c.Len()
	offset := int16(skipToIP - jmpIP - 1)
	jmp := c.Code[jmpIP]
	jmp.SetOffset(offset)
	c.Patch(jmpIP, jmp)

	c.Emit(bytecode.New2(bytecode.LOADK, 2, falseIdx))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Bool(false), result)
}

func TestRunMoveRegister(t *testing.T) {
	c := testChunk()
	idx := c.AddConstant(bytecode.IntConstant(42))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, idx))
	c.Emit(bytecode.New2(bytecode.MOVE, 1, 0))
	c.Emit(bytecode.New1(bytecode.RET, 1))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(42), result)
}

func TestRunDivisionByZeroIsError(t *testing.T) {
	c := testChunk()
	i1 := c.AddConstant(bytecode.IntConstant(10))
	i2 := c.AddConstant(bytecode.IntConstant(0))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, i1))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, i2))
	c.Emit(bytecode.NewInstruction(bytecode.DIVF, 2, 0, 1))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	_, err := m.Run()
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, vm.ErrDivisionByZero, rerr.Kind)
}

func TestRunDivfPromotesIntsToDouble(t *testing.T) {
	c := testChunk()
	i1 := c.AddConstant(bytecode.IntConstant(10))
	i2 := c.AddConstant(bytecode.IntConstant(4))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, i1))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, i2))
	c.Emit(bytecode.NewInstruction(bytecode.DIVF, 2, 0, 1))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Double(2.5), result)
}

func TestRunStringConcatenationViaAdd(t *testing.T) {
	c := testChunk()
	s1 := c.AddConstant(bytecode.StrConstant("foo"))
	s2 := c.AddConstant(bytecode.StrConstant("bar"))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, s1))
	c.Emit(bytecode.New2(bytecode.LOADK, 1, s2))
	c.Emit(bytecode.NewInstruction(bytecode.ADD, 2, 0, 1))
	c.Emit(bytecode.New1(bytecode.RET, 2))

	m := vm.New()
	m.PushFrame(c)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Str("foobar"), result)
}

func TestRunInvalidRegisterIsError(t *testing.T) {
	c := testChunk()
	c.Emit(bytecode.New1(bytecode.RET, 200))

	m := vm.New()
	m.PushFrame(c)
	_, err := m.Run()
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, vm.ErrInvalidRegister, rerr.Kind)
}

func TestRunCallRejectsNonStringCallee(t *testing.T) {
	c := testChunk()
	idx := c.AddConstant(bytecode.IntConstant(1))
	c.Emit(bytecode.New2(bytecode.LOADK, 0, idx))
	c.Emit(bytecode.NewInstruction(bytecode.CALL, 1, 0, 0))
	c.Emit(bytecode.New1(bytecode.RET, 1))

	m := vm.New()
	m.PushFrame(c)
	_, err := m.Run()
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, vm.ErrCallError, rerr.Kind)
}

func TestRunMaxStepsAborts(t *testing.T) {
	c := testChunk()
	idx := c.AddConstant(bytecode.IntConstant(1))
	jmp := c.Emit(bytecode.New2(bytecode.LOADK, 0, idx))
	c.Emit(bytecode.New2(bytecode.JMP, 0, 0))
	backOffset := int16(jmp - c.Len())
	last := c.Code[len(c.Code)-1]
	last.SetOffset(backOffset)
	c.Patch(len(c.Code)-1, last)

	m := vm.New()
	m.MaxSteps = 50
	m.PushFrame(c)
	_, err := m.Run()
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, vm.ErrStackOverflow, rerr.Kind)
}

// Builtin runtime dispatch.

func TestDefaultRuntimeLen(t *testing.T) {
	rt := &vm.DefaultRuntime{Stdout: &bytes.Buffer{}}
	result, err := rt.CallBuiltin("len", []vm.Value{vm.Str("hello")})
	require.NoError(t, err)
	require.Equal(t, vm.Int(5), result)
}

func TestDefaultRuntimeIntParsesString(t *testing.T) {
	rt := &vm.DefaultRuntime{Stdout: &bytes.Buffer{}}
	result, err := rt.CallBuiltin("int", []vm.Value{vm.Str("42")})
	require.NoError(t, err)
	require.Equal(t, vm.Int(42), result)
}

func TestDefaultRuntimeIntRejectsUnparsable(t *testing.T) {
	rt := &vm.DefaultRuntime{Stdout: &bytes.Buffer{}}
	_, err := rt.CallBuiltin("int", []vm.Value{vm.Str("nope")})
	require.Error(t, err)
}

func TestDefaultRuntimeConcat(t *testing.T) {
	rt := &vm.DefaultRuntime{Stdout: &bytes.Buffer{}}
	result, err := rt.CallBuiltin("rt_concat3", []vm.Value{vm.Str("a"), vm.Int(1), vm.Bool(true)})
	require.NoError(t, err)
	require.Equal(t, vm.Str("a1true"), result)
}

func TestDefaultRuntimePrintWritesDisplayForm(t *testing.T) {
	var buf bytes.Buffer
	rt := &vm.DefaultRuntime{Stdout: &buf}
	_, err := rt.CallBuiltin("print", []vm.Value{vm.Int(7)})
	require.NoError(t, err)
	require.Equal(t, "7\n", buf.String())
}

func TestDefaultRuntimeArityError(t *testing.T) {
	rt := &vm.DefaultRuntime{Stdout: &bytes.Buffer{}}
	_, err := rt.CallBuiltin("rt_concat2", []vm.Value{vm.Int(1)})
	require.Error(t, err)
}

// End-to-end: compile real source through the whole pipeline and execute
// the resulting chunk.

func compileFunc(t *testing.T, src, fnName string) *bytecode.Chunk {
	t.Helper()
	prog, perrs := parser.Parse(token.FileID(1), src)
	require.Empty(t, perrs)
	h := hir.Desugar(prog)
	rerrs := hir.Resolve(h)
	require.Empty(t, rerrs)
	chunks, err := emitter.Emit(h)
	require.NoError(t, err)
	for _, c := range chunks {
		if c.Name == fnName {
			return c
		}
	}
	t.Fatalf("no chunk named %q among %d chunks", fnName, len(chunks))
	return nil
}

func TestCompileAndRunArithmetic(t *testing.T) {
	src := "def calc()\n\tint x := 2 + 3\n\tret x * 4\n"
	chunk := compileFunc(t, src, "calc")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(20), result)
}

func TestCompileAndRunDivisionYieldsDouble(t *testing.T) {
	src := "def calc()\n\tret 10 / 4\n"
	chunk := compileFunc(t, src, "calc")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Double(2.5), result)
}

func TestCompileAndRunIfElseTakesTrueBranch(t *testing.T) {
	src := "def f()\n\tif (true)\n\t\tret 1\n\telse\n\t\tret 2\n\tret 0\n"
	chunk := compileFunc(t, src, "f")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(1), result)
}

func TestCompileAndRunWhileLoopSums(t *testing.T) {
	src := "def f()\n\tint i := 0\n\tint sum := 0\n\twhile (i < 5)\n\t\tsum := sum + i\n\t\ti := i + 1\n\tret sum\n"
	chunk := compileFunc(t, src, "f")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(10), result) // 0+1+2+3+4
}

func TestCompileAndRunForLoopSums(t *testing.T) {
	src := "def f()\n\tint sum := 0\n\tfor (int i := 0; i < 5; i := i + 1)\n\t\tsum := sum + i\n\tret sum\n"
	chunk := compileFunc(t, src, "f")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(10), result)
}

func TestCompileAndRunPrintBuiltinWritesStdout(t *testing.T) {
	src := "def f()\n\tprint(\"hi\")\n"
	chunk := compileFunc(t, src, "f")

	var buf bytes.Buffer
	m := vm.New()
	m.Stdout = &buf
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Null, result)
	require.Equal(t, "hi\n", buf.String())
}

func TestCompileAndRunBuiltinCallLen(t *testing.T) {
	src := "def f()\n\tret len(\"hello\")\n"
	chunk := compileFunc(t, src, "f")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(5), result)
}

func TestCompileAndRunLogicalAndShortCircuits(t *testing.T) {
	src := "def f()\n\tret false && (1 / 0 > 0)\n"
	chunk := compileFunc(t, src, "f")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Bool(false), result)
}

// The tests below reproduce the tail-expression scenarios directly: none of
// these bodies ends in an explicit ret, so their result must come from the
// last statement's value (see emitter.emitBlock's tailReturn handling).

func TestCompileAndRunTailExpressionAddition(t *testing.T) {
	src := "def test()\n\t5 + 3\n"
	chunk := compileFunc(t, src, "test")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(8), result)
}

func TestCompileAndRunTailExpressionUsesPriorLocal(t *testing.T) {
	src := "def test()\n\tint x := 10\n\tx + 5\n"
	chunk := compileFunc(t, src, "test")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(15), result)
}

func TestCompileAndRunTailExpressionComparison(t *testing.T) {
	src := "def test()\n\t5 == 5\n"
	chunk := compileFunc(t, src, "test")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Bool(true), result)
}

func TestCompileAndRunTailIfElseTakesTrueBranch(t *testing.T) {
	src := "def test()\n\tif (5 > 3)\n\t\t10\n\telse\n\t\t20\n"
	chunk := compileFunc(t, src, "test")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(10), result)
}

func TestCompileAndRunTailIfElseTakesFalseBranch(t *testing.T) {
	src := "def test()\n\tif (5 < 3)\n\t\t10\n\telse\n\t\t20\n"
	chunk := compileFunc(t, src, "test")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(20), result)
}

func TestCompileAndRunTailExpressionBuiltinCall(t *testing.T) {
	src := "def test()\n\tint(3.14)\n"
	chunk := compileFunc(t, src, "test")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Int(3), result)
}

func TestCompileAndRunTailExpressionStringConcatenation(t *testing.T) {
	src := "def test()\n\t\"Hello\" + \" \" + \"World\"\n"
	chunk := compileFunc(t, src, "test")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Str("Hello World"), result)
}

func TestCompileAndRunModuleChunkRunsWithoutError(t *testing.T) {
	src := "int x := 1\nint y := x + 1\n"
	chunk := compileFunc(t, src, "<module>")

	m := vm.New()
	m.PushFrame(chunk)
	result, err := m.Run()
	require.NoError(t, err)
	require.Equal(t, vm.Null, result)
}
