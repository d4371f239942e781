package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/brief-lang/brief/lang"
	"github.com/brief-lang/brief/lang/token"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return RunFiles(stdio, c.MaxSteps, args...)
}

// RunFiles compiles and runs each file's module-level code in turn,
// printing the resulting value's display form to stdout.
func RunFiles(stdio mainer.Stdio, maxSteps int, files ...string) error {
	var failed bool
	for i, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		result, errs := lang.CompileAndRun(string(src), token.FileID(i+1), maxSteps)
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(stdio.Stderr, e)
			}
			failed = true
			continue
		}
		fmt.Fprintln(stdio.Stdout, result.String())
	}
	if failed {
		return fmt.Errorf("run: completed with errors")
	}
	return nil
}
