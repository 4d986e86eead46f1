package blox

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source string) (stdout, stderr string, kind Kind) {
	t.Helper()
	var out, errOut bytes.Buffer
	s := NewSession(&out, &errOut)
	kind = s.Interpret(source)
	if kind == Runtime {
		errOut.WriteString(s.LastErr.Error())
	}
	return out.String(), errOut.String(), kind
}

func TestInterpretArithmeticPrecedence(t *testing.T) {
	out, _, kind := run(t, "print 1 + 2 * 3;")
	assert.Equal(t, Success, kind)
	assert.Equal(t, "7\n", out)
}

func TestInterpretStringConcatenation(t *testing.T) {
	out, _, kind := run(t, `var a = "hi"; var b = " there"; print a + b;`)
	assert.Equal(t, Success, kind)
	assert.Equal(t, "\"hi there\"\n", out)
}

func TestInterpretReassigningValIsCompileError(t *testing.T) {
	_, stderr, kind := run(t, "val x = 10; x = 20;")
	assert.Equal(t, Compile, kind)
	assert.Contains(t, stderr, "Cannot reassign to value.")
}

func TestInterpretNestedScopeShadowing(t *testing.T) {
	out, _, kind := run(t, `{ var a = 1; { var a = 2; print a; } print a; }`)
	assert.Equal(t, Success, kind)
	assert.Equal(t, "2\n1\n", out)
}

func TestInterpretWhileLoop(t *testing.T) {
	out, _, kind := run(t, "var i = 0; while (i < 3) { print i; i = i + 1; }")
	assert.Equal(t, Success, kind)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestInterpretOrWithFalseyOperands(t *testing.T) {
	out, _, kind := run(t, `if (nil or false) print "y"; else print "n";`)
	assert.Equal(t, Success, kind)
	assert.Equal(t, "\"n\"\n", out)
}

func TestInterpretSwitchStatement(t *testing.T) {
	out, _, kind := run(t, `switch (2) { case 1: print "a"; case 2: print "b"; default: print "d"; }`)
	assert.Equal(t, Success, kind)
	assert.Equal(t, "\"b\"\n", out)
}

func TestInterpretSwitchCaseLocalsStayBalanced(t *testing.T) {
	// Matching case 1 skips case 2's body entirely, so case 2's local `b`
	// is never pushed; the enclosing block must not try to pop it.
	out, _, kind := run(t, `{ switch (1) { case 1: print "a"; case 2: var b = 2; print b; } print "after"; }`)
	assert.Equal(t, Success, kind)
	assert.Equal(t, "\"a\"\n\"after\"\n", out)
}

func TestInterpretSwitchCaseWithLocalInMatchedBranch(t *testing.T) {
	out, _, kind := run(t, `{ switch (2) { case 1: print "a"; case 2: var b = 7; print b; default: print "d"; } print "after"; }`)
	assert.Equal(t, Success, kind)
	assert.Equal(t, "7\n\"after\"\n", out)
}

func TestInterpretSwitchDefaultWithLocal(t *testing.T) {
	out, _, kind := run(t, `{ switch (9) { case 1: print "a"; default: var d = 3; print d; } print "after"; }`)
	assert.Equal(t, Success, kind)
	assert.Equal(t, "3\n\"after\"\n", out)
}

func TestInterpretUndefinedVariableIsRuntimeError(t *testing.T) {
	_, stderr, kind := run(t, "print undefined_name;")
	assert.Equal(t, Runtime, kind)
	assert.Contains(t, stderr, "Undefined variable undefined_name")
}

func TestInterpretDeterminism(t *testing.T) {
	source := `var total = 0; for (var i = 0; i < 5; i = i + 1) { total = total + i; } print total;`
	out1, _, kind1 := run(t, source)
	out2, _, kind2 := run(t, source)
	require.Equal(t, Success, kind1)
	require.Equal(t, Success, kind2)
	assert.Equal(t, out1, out2)
}

func TestReplQuitsOnQ(t *testing.T) {
	in := bytes.NewBufferString("print 1;\nq\n")
	var out, errOut bytes.Buffer
	err := Repl(in, &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), banner)
	assert.Contains(t, out.String(), "1\n")
}

func TestRunFileMissingPathIsIOError(t *testing.T) {
	var out, errOut bytes.Buffer
	kind, err := RunFile("/nonexistent/path/to/script.blox", false, false, &out, &errOut)
	assert.Equal(t, IOErr, kind)
	assert.Error(t, err)
}

func TestReplPrintsRuntimeErrorsAndContinues(t *testing.T) {
	in := bytes.NewBufferString("print undefined_name;\nprint 1;\nq\n")
	var out, errOut bytes.Buffer
	err := Repl(in, &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Undefined variable undefined_name")
	assert.Contains(t, out.String(), "1\n")
}

func TestReplTranscriptSnapshot(t *testing.T) {
	in := bytes.NewBufferString("var x = 1 + 2;\nprint x;\nprint undefined_name;\nq\n")
	var out, errOut bytes.Buffer
	err := Repl(in, &out, &errOut)
	require.NoError(t, err)
	snaps.MatchSnapshot(t, out.String())
}
