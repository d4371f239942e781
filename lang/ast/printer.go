package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer controls pretty-printing of AST nodes as an indented tree, one
// node per line.
type Printer struct {
	// Output is the io.Writer to print to.
	Output io.Writer

	// WithSpans includes each node's source span in the output when true.
	WithSpans bool

	// NodeFmt is the format verb used to print each node. Must be "%v" or
	// "%s", optionally with a width and the '#'/'-' flags (see Node.Format).
	// Defaults to "%v".
	NodeFmt string
}

// Print pretty-prints the AST node n.
func (p *Printer) Print(n Node) error {
	pp := &printer{w: p.Output, withSpans: p.WithSpans, nodeFmt: p.NodeFmt}
	if pp.nodeFmt == "" {
		pp.nodeFmt = "%v"
	}
	Walk(pp, n)
	return pp.err
}

type printer struct {
	w         io.Writer
	withSpans bool
	nodeFmt   string
	depth     int
	err       error
}

func (p *printer) Visit(n Node, dir VisitDirection) Visitor {
	if dir == VisitExit || p.err != nil {
		p.depth--
		return nil
	}
	p.depth++
	p.printNode(n, p.depth-1)
	return p
}

func (p *printer) printNode(n Node, indent int) {
	if p.err != nil {
		return
	}
	format := "%s"
	args := []interface{}{strings.Repeat(". ", indent)}
	if p.withSpans {
		format += "[%s] "
		args = append(args, n.Span())
	}
	format += p.nodeFmt + "\n"
	args = append(args, n)
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
