package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/brief-lang/brief/lang/emitter"
	"github.com/brief-lang/brief/lang/hir"
	"github.com/brief-lang/brief/lang/parser"
	"github.com/brief-lang/brief/lang/token"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return CompileFiles(stdio, args...)
}

// CompileFiles runs each file all the way through emission and prints the
// disassembly of every resulting chunk (module chunk first, then one per
// function/constructor/method, in source order).
func CompileFiles(stdio mainer.Stdio, files ...string) error {
	var failed bool
	for i, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}

		prog, perrs := parser.Parse(token.FileID(i+1), string(src))
		if len(perrs) > 0 {
			for _, e := range perrs {
				fmt.Fprintln(stdio.Stderr, e)
			}
			failed = true
			continue
		}

		h := hir.Desugar(prog)
		if rerrs := hir.Resolve(h); len(rerrs) > 0 {
			for _, e := range rerrs {
				fmt.Fprintln(stdio.Stderr, e)
			}
			failed = true
			continue
		}

		chunks, err := emitter.Emit(h)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		for _, ch := range chunks {
			fmt.Fprint(stdio.Stdout, ch.String())
		}
	}
	if failed {
		return fmt.Errorf("compile: completed with errors")
	}
	return nil
}
