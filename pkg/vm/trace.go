package vm

import (
	"fmt"
	"strings"

	"github.com/kristofer/blox/pkg/bytecode"
)

// printTrace prints one execution-trace step: the current value stack (one
// "[ v ]" per slot, prefixed by eleven spaces) followed by the disassembled
// instruction about to execute. The trace is non-interactive; every step
// prints unconditionally while the -t flag is on, with no pause for input.
func (vm *VM) printTrace(chunk *bytecode.Chunk, f *callFrame) {
	var b strings.Builder
	b.WriteString("           ")
	for _, v := range vm.stack {
		fmt.Fprintf(&b, "[ %s ]", v.String())
	}
	fmt.Fprintln(vm.stdout, b.String())

	line, _ := chunk.DisassembleInstruction(f.ip)
	fmt.Fprintln(vm.stdout, line)
}
