package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brief-lang/brief/lang/bytecode"
)

func TestInstructionEncoding(t *testing.T) {
	in := bytecode.NewInstruction(bytecode.ADD, 1, 2, 3)
	require.Equal(t, bytecode.ADD, in.Op())
	require.EqualValues(t, 1, in.A())
	require.EqualValues(t, 2, in.B())
	require.EqualValues(t, 3, in.C())
}

func TestInstructionTwoOperands(t *testing.T) {
	in := bytecode.New2(bytecode.MOVE, 5, 10)
	require.Equal(t, bytecode.MOVE, in.Op())
	require.EqualValues(t, 5, in.A())
	require.EqualValues(t, 10, in.B())
	require.EqualValues(t, 0, in.C())
}

func TestInstructionOneOperand(t *testing.T) {
	in := bytecode.New1(bytecode.RET, 7)
	require.Equal(t, bytecode.RET, in.Op())
	require.EqualValues(t, 7, in.A())
	require.EqualValues(t, 0, in.B())
	require.EqualValues(t, 0, in.C())
}

func TestJumpOffsetRoundTrips(t *testing.T) {
	in := bytecode.NewInstruction(bytecode.JMP, 0, 0, 0)
	in.SetOffset(42)
	require.EqualValues(t, 42, in.Offset())

	in.SetOffset(-10)
	require.EqualValues(t, -10, in.Offset())
}

func TestJumpOffsetLeavesOpAndAIntact(t *testing.T) {
	in := bytecode.NewJump(bytecode.JIF, 3, -100)
	require.Equal(t, bytecode.JIF, in.Op())
	require.EqualValues(t, 3, in.A())
	require.EqualValues(t, -100, in.Offset())
}

func TestChunkEmitAndConstants(t *testing.T) {
	c := bytecode.NewChunk("test")

	idx1 := c.AddConstant(bytecode.IntConstant(42))
	idx2 := c.AddConstant(bytecode.StrConstant("hello"))

	ip1 := c.Emit(bytecode.New2(bytecode.LOADK, 0, idx1))
	ip2 := c.Emit(bytecode.New2(bytecode.LOADK, 1, idx2))
	ip3 := c.Emit(bytecode.NewInstruction(bytecode.ADD, 2, 0, 1))

	require.Equal(t, 0, ip1)
	require.Equal(t, 1, ip2)
	require.Equal(t, 2, ip3)
	require.Len(t, c.Code, 3)
	require.Len(t, c.Constants, 2)
}

func TestChunkConstantDeduplication(t *testing.T) {
	c := bytecode.NewChunk("test")

	idx1 := c.AddConstant(bytecode.IntConstant(42))
	idx2 := c.AddConstant(bytecode.IntConstant(42))

	require.Equal(t, idx1, idx2)
	require.Len(t, c.Constants, 1)
}

func TestChunkConstantDistinguishesKindAcrossEqualBitPatterns(t *testing.T) {
	c := bytecode.NewChunk("test")

	idxInt := c.AddConstant(bytecode.IntConstant(0))
	idxBool := c.AddConstant(bytecode.BoolConstant(false))
	idxNull := c.AddConstant(bytecode.NullConstant())

	require.Len(t, c.Constants, 3)
	require.NotEqual(t, idxInt, idxBool)
	require.NotEqual(t, idxBool, idxNull)
}

func TestChunkPatchOverwritesInstruction(t *testing.T) {
	c := bytecode.NewChunk("test")
	ip := c.Emit(bytecode.NewInstruction(bytecode.JMP, 0, 0, 0))
	c.Patch(ip, bytecode.NewJump(bytecode.JMP, 0, 7))

	require.EqualValues(t, 7, c.Code[ip].Offset())
}

func TestChunkAddConstantPanicsPastCapacity(t *testing.T) {
	c := bytecode.NewChunk("test")
	for i := 0; i < 256; i++ {
		c.AddConstant(bytecode.IntConstant(int64(i)))
	}
	require.Panics(t, func() {
		c.AddConstant(bytecode.IntConstant(256))
	})
}

func TestOpcodeStringRoundTrip(t *testing.T) {
	require.Equal(t, "add", bytecode.ADD.String())
	require.Equal(t, "cmp_eq", bytecode.CMP_EQ.String())
	require.True(t, bytecode.JIF.IsJump())
	require.True(t, bytecode.JMP.IsJump())
	require.False(t, bytecode.CALL.IsJump())
}
