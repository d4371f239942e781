package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/brief-lang/brief/lang/hir"
	"github.com/brief-lang/brief/lang/parser"
	"github.com/brief-lang/brief/lang/token"
)

func (c *Cmd) Resolve(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ResolveFiles(stdio, args...)
}

// ResolveFiles parses, lowers, and resolves each file, then prints the
// module-scope symbol table (names, kinds, and the fixed register or
// global name each resolved to). A file with parse errors is not resolved
// at all, matching the rest of the pipeline's "no resolving a broken
// tree" rule.
func ResolveFiles(stdio mainer.Stdio, files ...string) error {
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
		rerrs := hir.Resolve(h)
		fmt.Fprintf(stdio.Stdout, "%s:\n", path)
		if h.Locals != nil {
			for _, sym := range h.Locals.Symbols {
				fmt.Fprintf(stdio.Stdout, "  %s %s", symbolKindName(sym.Kind), sym.Name)
				if sym.Kind == hir.KindGlobal {
					fmt.Fprintf(stdio.Stdout, " -> global %s\n", sym.Gname)
				} else {
					fmt.Fprintf(stdio.Stdout, " -> r%d\n", sym.Index)
				}
			}
		}
		for _, e := range rerrs {
			fmt.Fprintln(stdio.Stderr, e)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("resolve: completed with errors")
	}
	return nil
}

func symbolKindName(k hir.SymbolKind) string {
	switch k {
	case hir.KindLocal:
		return "local"
	case hir.KindParam:
		return "param"
	case hir.KindUpvalue:
		return "upvalue"
	case hir.KindGlobal:
		return "global"
	default:
		return "builtin"
	}
}
