package compiler

import (
	"bytes"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/blox/pkg/bytecode"
	"github.com/kristofer/blox/pkg/value"
)

func compileSource(t *testing.T, source string) (*value.Function, string, bool) {
	t.Helper()
	var stderr bytes.Buffer
	fn, ok := Compile(source, value.NewHeap(), &stderr)
	return fn, stderr.String(), ok
}

func TestCompileArithmeticExpression(t *testing.T) {
	fn, stderr, ok := compileSource(t, "print 1 + 2 * 3;")
	require.True(t, ok, stderr)
	chunk := fn.Chunk.(*bytecode.Chunk)
	snaps.MatchSnapshot(t, chunk.Disassemble("script"))
}

func TestCompileRejectsReassigningValue(t *testing.T) {
	_, stderr, ok := compileSource(t, "val x = 10; x = 20;")
	assert.False(t, ok)
	assert.Contains(t, stderr, "Cannot reassign to value.")
}

func TestCompileAllowsReassigningVar(t *testing.T) {
	_, stderr, ok := compileSource(t, "var x = 10; x = 20;")
	assert.True(t, ok, stderr)
}

func TestCompileRejectsSelfReferenceInLocalInitializer(t *testing.T) {
	_, stderr, ok := compileSource(t, "{ var x = x; }")
	assert.False(t, ok)
	assert.Contains(t, stderr, "Can't read local variable in its own initializer.")
}

func TestCompileRejectsShadowingWithinSameScope(t *testing.T) {
	_, stderr, ok := compileSource(t, "{ var a = 1; var a = 2; }")
	assert.False(t, ok)
	assert.Contains(t, stderr, "Already a variable with this name in this scope.")
}

func TestCompileAllowsShadowingAcrossNestedScopes(t *testing.T) {
	_, stderr, ok := compileSource(t, "{ var a = 1; { var a = 2; print a; } print a; }")
	assert.True(t, ok, stderr)
}

func TestCompileRejectsInvalidAssignmentTarget(t *testing.T) {
	_, stderr, ok := compileSource(t, "1 + 2 = 3;")
	assert.False(t, ok)
	assert.Contains(t, stderr, "Invalid assignment target.")
}

func TestCompileGlobalIdentifierReusesTagAcrossReferences(t *testing.T) {
	fn, stderr, ok := compileSource(t, "val greeting = \"hi\"; print greeting;")
	require.True(t, ok, stderr)
	chunk := fn.Chunk.(*bytecode.Chunk)

	count := 0
	for _, c := range chunk.Constants {
		if _, ok := c.(value.ValIdent); ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "the same ValIdent entry should be reused by DefineGlobal and GetGlobal")
}

func TestCompileSwitchStatement(t *testing.T) {
	fn, stderr, ok := compileSource(t, `switch (2) { case 1: print "a"; case 2: print "b"; default: print "d"; }`)
	require.True(t, ok, stderr)
	chunk := fn.Chunk.(*bytecode.Chunk)
	snaps.MatchSnapshot(t, chunk.Disassemble("script"))
}

func TestCompileSwitchCaseBodiesScopeTheirOwnLocals(t *testing.T) {
	// A local declared in one case body must be popped inside that branch,
	// before its jump to the end of the switch. If it leaked into the
	// enclosing block's locals, the block's endScope would emit a Pop for a
	// value that only exists when that particular case matched.
	fn, stderr, ok := compileSource(t, `{ switch (1) { case 1: print "a"; case 2: var b = 2; print b; } }`)
	require.True(t, ok, stderr)
	chunk := fn.Chunk.(*bytecode.Chunk)
	snaps.MatchSnapshot(t, chunk.Disassemble("script"))
}

func TestCompileWhileLoop(t *testing.T) {
	_, stderr, ok := compileSource(t, "var i = 0; while (i < 3) { print i; i = i + 1; }")
	assert.True(t, ok, stderr)
}

func TestCompileForLoopDesugars(t *testing.T) {
	_, stderr, ok := compileSource(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	assert.True(t, ok, stderr)
}

func TestCompileSynchronizesAfterErrorAndKeepsParsing(t *testing.T) {
	// The first statement's reassignment error should not cascade into a
	// second, unrelated diagnostic for the next statement.
	_, stderr, ok := compileSource(t, "val x = 1; x = 2; print 1;")
	assert.False(t, ok)
	assert.Equal(t, 1, countOccurrences(stderr, "Error"))
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
		}
	}
	return count
}
