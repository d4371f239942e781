package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/brief-lang/brief/lang/ast"
	"github.com/brief-lang/brief/lang/parser"
	"github.com/brief-lang/brief/lang/token"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(stdio, args...)
}

// ParseFiles parses each file independently and prints its resulting AST.
// Parse errors are collected via panic-mode synchronization rather than
// aborting the whole file, so a file with errors still prints whatever
// tree the parser recovered.
func ParseFiles(stdio mainer.Stdio, files ...string) error {
	printer := ast.Printer{Output: stdio.Stdout}
	var failed bool
	for i, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		prog, errs := parser.Parse(token.FileID(i+1), string(src))
		if err := printer.Print(prog); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		for _, e := range errs {
			fmt.Fprintln(stdio.Stderr, e)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("parse: completed with errors")
	}
	return nil
}
