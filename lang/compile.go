// Package lang ties the pipeline stages (lexer, parser, hir, emitter, vm)
// together into the single entry point a host embeds: compile a source
// string and run it, all the way from text to a runtime value.
package lang

import (
	"github.com/brief-lang/brief/lang/emitter"
	"github.com/brief-lang/brief/lang/hir"
	"github.com/brief-lang/brief/lang/parser"
	"github.com/brief-lang/brief/lang/token"
	"github.com/brief-lang/brief/lang/vm"
)

// CompileAndRun parses, lowers, resolves, and emits source, then runs the
// synthesized module chunk (chunks[0], see lang/emitter's "Top-level code"
// decision) to completion, returning its value. Each stage's errors abort
// the pipeline before the next stage runs: a broken parse is never
// resolved, a broken resolve is never emitted.
//
// maxSteps bounds the number of VM instructions executed before aborting
// with a stack-overflow-shaped runtime error; 0 means unbounded.
func CompileAndRun(source string, file token.FileID, maxSteps int) (vm.Value, []error) {
	prog, perrs := parser.Parse(file, source)
	if len(perrs) > 0 {
		errs := make([]error, len(perrs))
		for i, e := range perrs {
			errs[i] = e
		}
		return vm.Value{}, errs
	}

	h := hir.Desugar(prog)
	if rerrs := hir.Resolve(h); len(rerrs) > 0 {
		errs := make([]error, len(rerrs))
		for i, e := range rerrs {
			errs[i] = e
		}
		return vm.Value{}, errs
	}

	chunks, err := emitter.Emit(h)
	if err != nil {
		return vm.Value{}, []error{err}
	}

	m := vm.New()
	m.MaxSteps = maxSteps
	m.PushFrame(chunks[0])
	result, err := m.Run()
	if err != nil {
		return vm.Value{}, []error{err}
	}
	return result, nil
}
