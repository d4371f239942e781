package hir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brief-lang/brief/lang/hir"
	"github.com/brief-lang/brief/lang/parser"
	"github.com/brief-lang/brief/lang/token"
)

func lowerSource(t *testing.T, src string) *hir.Program {
	t.Helper()
	prog, errs := parser.Parse(token.FileID(1), src)
	require.Empty(t, errs)
	return hir.Desugar(prog)
}

func TestDesugarPostfixIncrement(t *testing.T) {
	prog := lowerSource(t, "def f()\n\tint x := 1\n\tx++\n")
	fn := prog.Decls[0].(*hir.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)

	es, ok := fn.Body.Stmts[1].(*hir.ExprStmt)
	require.True(t, ok)
	assign, ok := es.X.(*hir.Assign)
	require.True(t, ok)
	require.False(t, assign.Declare)

	bin, ok := assign.Value.(*hir.BinaryOp)
	require.True(t, ok)
	require.Equal(t, token.PLUS, bin.Op)
}

func TestDesugarPostfixDecrement(t *testing.T) {
	prog := lowerSource(t, "def f()\n\tint x := 1\n\tx--\n")
	fn := prog.Decls[0].(*hir.FuncDecl)
	es := fn.Body.Stmts[1].(*hir.ExprStmt)
	assign := es.X.(*hir.Assign)
	bin := assign.Value.(*hir.BinaryOp)
	require.Equal(t, token.MINUS, bin.Op)
}

func TestDesugarForInExpandsToIndexedWhile(t *testing.T) {
	prog := lowerSource(t, "def f(int[] xs)\n\tfor (v in xs)\n\t\tprint(v)\n")
	fn := prog.Decls[0].(*hir.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)

	_, ok := fn.Body.Stmts[0].(*hir.VarDecl)
	require.True(t, ok, "expected the synthesized index variable declaration first")

	ws, ok := fn.Body.Stmts[1].(*hir.WhileStmt)
	require.True(t, ok, "expected a while loop replacing the for-in")

	cond, ok := ws.Cond.(*hir.BinaryOp)
	require.True(t, ok)
	require.Equal(t, token.LT, cond.Op)

	// loop var decl, body statement(s), then the index increment
	require.GreaterOrEqual(t, len(ws.Body.Stmts), 3)
	_, ok = ws.Body.Stmts[0].(*hir.VarDecl)
	require.True(t, ok, "expected the loop variable declared first in the body")

	last := ws.Body.Stmts[len(ws.Body.Stmts)-1]
	lastEs, ok := last.(*hir.ExprStmt)
	require.True(t, ok)
	_, ok = lastEs.X.(*hir.Assign)
	require.True(t, ok, "expected the index increment appended last")
}

func TestDesugarMatchBuildsIfChainInSourceOrder(t *testing.T) {
	src := "def f(int x)\n" +
		"\tmatch (x)\n" +
		"\t\tcase 1:\n" +
		"\t\t\tprint(\"one\")\n" +
		"\t\tcase 2, 3:\n" +
		"\t\t\tprint(\"two or three\")\n" +
		"\t\telse\n" +
		"\t\t\tprint(\"other\")\n"
	prog := lowerSource(t, src)
	fn := prog.Decls[0].(*hir.FuncDecl)
	require.Len(t, fn.Body.Stmts, 2)

	_, ok := fn.Body.Stmts[0].(*hir.VarDecl)
	require.True(t, ok, "expected the synthesized scrutinee temp first")

	outer, ok := fn.Body.Stmts[1].(*hir.IfStmt)
	require.True(t, ok)

	// The outer if must test the FIRST case in source order, even though
	// the chain is built by recursing from the last case backward.
	eq, ok := outer.Cond.(*hir.BinaryOp)
	require.True(t, ok)
	require.Equal(t, token.EQL, eq.Op)
	lit, ok := eq.Right.(*hir.Literal)
	require.True(t, ok)
	require.EqualValues(t, 1, lit.Value)

	require.NotNil(t, outer.Else)
	nested, ok := outer.Else.Stmts[0].(*hir.IfStmt)
	require.True(t, ok, "expected the second case nested in the else branch")

	orCond, ok := nested.Cond.(*hir.BinaryOp)
	require.True(t, ok)
	require.Equal(t, token.PIPEPIPE, orCond.Op, "multiple patterns on one case combine with ||")
}

func TestDesugarConstructorImplicitFieldInit(t *testing.T) {
	src := "cls Point\n" +
		"\tobj Point(int x, int y)\n" +
		"\t\tobj.x = x\n"
	prog := lowerSource(t, src)
	cls := prog.Decls[0].(*hir.ClassDecl)
	require.NotNil(t, cls.Ctor)

	// x is already explicitly assigned, so only y should get an implicit
	// `obj.y = y` prepended ahead of the explicit `obj.x = x`.
	require.Len(t, cls.Ctor.Body.Stmts, 2)

	first := cls.Ctor.Body.Stmts[0].(*hir.ExprStmt)
	firstAssign := first.X.(*hir.Assign)
	firstTarget := firstAssign.Target.(*hir.MemberAccess)
	require.Equal(t, "y", firstTarget.Member, "the implicit init for the unassigned param comes first")

	second := cls.Ctor.Body.Stmts[1].(*hir.ExprStmt)
	secondAssign := second.X.(*hir.Assign)
	secondTarget := secondAssign.Target.(*hir.MemberAccess)
	require.Equal(t, "x", secondTarget.Member, "the explicit assignment from source is preserved")
}

func TestDesugarCStyleForPreservedAsForStmt(t *testing.T) {
	src := "def f()\n\tfor (int i := 0; i < 10; i++)\n\t\tprint(i)\n"
	prog := lowerSource(t, src)
	fn := prog.Decls[0].(*hir.FuncDecl)
	require.Len(t, fn.Body.Stmts, 1)

	fs, ok := fn.Body.Stmts[0].(*hir.ForStmt)
	require.True(t, ok, "a three-clause for loop must survive desugaring as hir.ForStmt, not be flattened")
	require.NotNil(t, fs.Init)
	require.NotNil(t, fs.Cond)
	require.NotNil(t, fs.Post)
}
