// Package blox is the embedding API: one entry point, Interpret, plus the
// RunFile and Repl adapters the CLI builds on.
package blox

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kristofer/blox/pkg/bytecode"
	"github.com/kristofer/blox/pkg/compiler"
	"github.com/kristofer/blox/pkg/value"
	"github.com/kristofer/blox/pkg/vm"
)

// Kind is one of the disjoint outcomes a run can report: success, or a
// compile, runtime, or I/O failure.
type Kind int

const (
	Success Kind = iota
	Compile
	Runtime
	IOErr
)

// Session holds everything that should persist across multiple Interpret
// calls in a REPL: the globals table and the heap-object list. A one-shot
// RunFile invocation uses a Session internally but discards it afterward.
type Session struct {
	Stdout io.Writer
	Stderr io.Writer

	DebugPrintCode bool
	DebugTrace     bool

	globals map[string]value.Value
	heap    *value.Heap

	// LastErr is set after Interpret returns Runtime; it holds the
	// formatted "<msg>\n[line L] in script" runtime error.
	LastErr error
}

// NewSession returns a Session with fresh globals and an empty heap.
func NewSession(stdout, stderr io.Writer) *Session {
	return &Session{
		Stdout:  stdout,
		Stderr:  stderr,
		globals: make(map[string]value.Value),
		heap:    value.NewHeap(),
	}
}

// Interpret compiles and runs source against this session's state,
// reporting one of Success, Compile, or Runtime. Diagnostics for a Compile
// outcome have already been written to Stderr by the time Interpret
// returns.
func (s *Session) Interpret(source string) Kind {
	s.LastErr = nil

	fn, ok := compiler.Compile(source, s.heap, s.Stderr)
	if !ok {
		return Compile
	}

	if s.DebugPrintCode {
		chunk := fn.Chunk.(*bytecode.Chunk)
		name := fn.Name
		if name == "" {
			name = "script"
		}
		fmt.Fprint(s.Stdout, chunk.Disassemble(name))
	}

	// The heap-object list transfers from compiler to VM along with the
	// chunk; everything tracked during this run is released when the run
	// finishes, whatever its outcome.
	runHeap := s.heap.Take()
	defer runHeap.Release()

	machine := vm.New(s.Stdout, s.globals, runHeap)
	machine.SetTrace(s.DebugTrace)
	if err := machine.Run(fn); err != nil {
		s.LastErr = err
		return Runtime
	}
	return Success
}

// Interpret is the package-level, single-shot entry point: one fresh
// session, one source string, one outcome.
func Interpret(source string, stdout, stderr io.Writer, debugPrintCode, debugTrace bool) Kind {
	s := NewSession(stdout, stderr)
	s.DebugPrintCode = debugPrintCode
	s.DebugTrace = debugTrace
	return s.Interpret(source)
}

// RunFile reads the source at path and interprets it in a fresh session.
// A read failure is reported as IOErr rather than Compile/Runtime.
func RunFile(path string, debugPrintCode, debugTrace bool, stdout, stderr io.Writer) (Kind, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return IOErr, err
	}

	s := NewSession(stdout, stderr)
	s.DebugPrintCode = debugPrintCode
	s.DebugTrace = debugTrace
	kind := s.Interpret(string(source))
	if kind == Runtime {
		return Runtime, s.LastErr
	}
	return kind, nil
}

const banner = "=== Welcome to blox v1.0"
const quitHint = "=== Enter 'q' or 'Q' to quit"
const prompt = "> "

// Repl runs the interactive read-eval-print loop: prints the banner, reads
// lines until 'q'/'Q' or EOF, interpreting each. Runtime errors print to
// stdout and the loop continues; a read failure on stdin is reported as an
// I/O error and ends the session.
func Repl(stdin io.Reader, stdout, stderr io.Writer) error {
	fmt.Fprintln(stdout, banner)
	fmt.Fprintln(stdout, quitHint)

	s := NewSession(stdout, stderr)
	scanner := bufio.NewScanner(stdin)

	for {
		fmt.Fprint(stdout, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil
		}

		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); trimmed == "q" || trimmed == "Q" {
			return nil
		}

		switch s.Interpret(line) {
		case Runtime:
			fmt.Fprintln(stdout, s.LastErr.Error())
		}
	}
}
