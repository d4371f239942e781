package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/brief-lang/brief/lang/lexer"
	"github.com/brief-lang/brief/lang/token"
)

func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TokenizeFiles(stdio, args...)
}

// TokenizeFiles runs the lexer over each file in turn and prints one line
// per token. Lex errors are non-fatal (the lexer keeps producing tokens
// after one), so all files are tokenized even if some report errors; the
// command still reports failure if any file had one.
func TokenizeFiles(stdio mainer.Stdio, files ...string) error {
	var failed bool
	for i, path := range files {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
			continue
		}
		toks, errs := lexer.Tokenize(token.FileID(i+1), string(src))
		for _, tok := range toks {
			fmt.Fprintf(stdio.Stdout, "%s: %s", tok.Span, tok.Kind)
			if tok.Raw != "" {
				fmt.Fprintf(stdio.Stdout, " %q", tok.Raw)
			}
			fmt.Fprintln(stdio.Stdout)
		}
		for _, e := range errs {
			fmt.Fprintln(stdio.Stderr, e)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("tokenize: completed with errors")
	}
	return nil
}
