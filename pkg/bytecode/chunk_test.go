package bytecode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/blox/pkg/value"
)

func TestChunkLineTableRoundTrips(t *testing.T) {
	c := New()
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpNil, 2)
	c.WriteOp(OpReturn, 4) // line 3 emits nothing: blank/comment-only line

	assert.Equal(t, 1, c.LineAt(0))
	assert.Equal(t, 1, c.LineAt(1))
	assert.Equal(t, 2, c.LineAt(2))
	assert.Equal(t, 4, c.LineAt(3))
}

func TestChunkAddConstantReusesNothingButIndexesSequentially(t *testing.T) {
	c := New()
	i0, err := c.AddConstant(value.Number(1))
	require.NoError(t, err)
	i1, err := c.AddConstant(value.Number(2))
	require.NoError(t, err)

	assert.Equal(t, byte(0), i0)
	assert.Equal(t, byte(1), i1)
	assert.Len(t, c.Constants, 2)
}

func TestChunkAddConstantOverflow(t *testing.T) {
	c := New()
	for i := 0; i < 256; i++ {
		_, err := c.AddConstant(value.Number(float64(i)))
		require.NoError(t, err)
	}
	_, err := c.AddConstant(value.Number(256))
	assert.ErrorIs(t, err, ErrTooManyConstants)
}

func TestChunkPatchJumpLandsOnCurrentEnd(t *testing.T) {
	c := New()
	jumpOffset := c.WriteJump(OpJumpIfFalse, 1)
	c.WriteOp(OpPop, 1)
	c.WriteOp(OpNil, 1)
	require.NoError(t, c.PatchJump(jumpOffset))

	hi, lo := c.Code[jumpOffset+1], c.Code[jumpOffset+2]
	jump := int(hi)<<8 | int(lo)
	assert.Equal(t, len(c.Code)-jumpOffset-3, jump)
}

func TestChunkWriteLoopJumpsBackward(t *testing.T) {
	c := New()
	loopStart := len(c.Code)
	c.WriteOp(OpNil, 1)
	require.NoError(t, c.WriteLoop(loopStart, 1))

	// Replaying the VM's OpLoop arithmetic (offset+3-jump) must land
	// exactly on loopStart.
	opOffset := len(c.Code) - 3
	hi, lo := c.Code[opOffset+1], c.Code[opOffset+2]
	jump := int(hi)<<8 | int(lo)
	assert.Equal(t, loopStart, opOffset+3-jump)
}

func TestDisassembleHeaderAndConstant(t *testing.T) {
	c := New()
	idx, err := c.AddConstant(value.Number(7))
	require.NoError(t, err)
	c.WriteOpByte(OpConstant, idx, 1)
	c.WriteOp(OpReturn, 1)

	out := c.Disassemble("test chunk")
	require.True(t, strings.HasPrefix(out, "== test chunk ==\n"))
	assert.Contains(t, out, "OP_CONSTANT")
	assert.Contains(t, out, "'7'")
	assert.Contains(t, out, "OP_RETURN")
}

func TestDisassembleRepeatingLinePrintsPipe(t *testing.T) {
	c := New()
	c.WriteOp(OpNil, 5)
	c.WriteOp(OpReturn, 5)

	out := c.Disassemble("c")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "    5 ")
	assert.Contains(t, lines[2], "    | ")
}
