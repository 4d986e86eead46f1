// Command blox is the CLI: REPL with no arguments, or compile and execute
// a single source file, with optional disassembly (-p) and execution
// tracing (-t).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kristofer/blox/pkg/blox"
)

// Process exit codes, one per outcome kind.
const (
	exitSuccess      = 0
	exitCompileError = 65
	exitRuntimeError = 70
	exitIOError      = 74
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitIOError)
	}
}

func newRootCmd() *cobra.Command {
	var printCode bool
	var trace bool

	root := &cobra.Command{
		Use:           "blox [path]",
		Short:         "blox runs a small bytecode-compiled scripting language",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return blox.Repl(os.Stdin, os.Stdout, os.Stderr)
			}
			return runFile(args[0], printCode, trace)
		},
	}

	root.Flags().BoolVarP(&printCode, "print-code", "p", false, "disassemble compiled bytecode before executing")
	root.Flags().BoolVarP(&trace, "trace", "t", false, "print a stack/instruction trace for every executed step")

	return root
}

func runFile(path string, printCode, trace bool) error {
	kind, err := blox.RunFile(path, printCode, trace, os.Stdout, os.Stderr)
	switch kind {
	case blox.Success:
		return nil
	case blox.Compile:
		os.Exit(exitCompileError)
	case blox.Runtime:
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitRuntimeError)
	case blox.IOErr:
		fmt.Fprintf(os.Stderr, "blox: %v\n", err)
		os.Exit(exitIOError)
	}
	return nil
}
