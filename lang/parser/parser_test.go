package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brief-lang/brief/lang/ast"
	"github.com/brief-lang/brief/lang/parser"
	"github.com/brief-lang/brief/lang/token"
)

func TestParseVarDeclWithInitializer(t *testing.T) {
	prog, errs := parser.Parse(1, "int x := 1\n")
	require.Empty(t, errs)
	require.Len(t, prog.Decls, 1)
	vd, ok := prog.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", vd.Name.Name)
	require.NotNil(t, vd.Type)
	require.NotNil(t, vd.Init)
	lit, ok := vd.Init.(*ast.LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, token.INTEGER, lit.Type)
}

func TestParseUntypedTopLevelVarDecl(t *testing.T) {
	prog, errs := parser.Parse(1, "x := 1\n")
	require.Empty(t, errs)
	require.Len(t, prog.Decls, 1)
	vd, ok := prog.Decls[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", vd.Name.Name)
	assert.Nil(t, vd.Type)
}

func TestParseConstDecl(t *testing.T) {
	prog, errs := parser.Parse(1, "const pi := 3.14\n")
	require.Empty(t, errs)
	require.Len(t, prog.Decls, 1)
	cd, ok := prog.Decls[0].(*ast.ConstDecl)
	require.True(t, ok)
	assert.Equal(t, "pi", cd.Name.Name)
}

func TestParseFuncDeclWithReturnType(t *testing.T) {
	src := "def add(int a, int b) -> int\n\tret a + b\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	require.Len(t, prog.Decls, 1)
	fd, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "add", fd.Name.Name)
	require.Len(t, fd.Params, 2)
	assert.Equal(t, "a", fd.Params[0].Name.Name)
	require.NotNil(t, fd.Ret)
	require.Len(t, fd.Body.Stmts, 1)
	ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	require.True(t, ok)
	bin, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.PLUS, bin.Op)
}

func TestParseIfElseStmt(t *testing.T) {
	src := "def f()\n\tif (x)\n\t\tret 1\n\telse\n\t\tret 2\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	require.Len(t, fd.Body.Stmts, 1)
	ifs, ok := fd.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.Then.Stmts, 1)
	require.NotNil(t, ifs.Else)
	require.Len(t, ifs.Else.Stmts, 1)
}

func TestParseElseIfChain(t *testing.T) {
	src := "def f()\n\tif (a)\n\t\tret 1\n\telse if (b)\n\t\tret 2\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	ifs := fd.Body.Stmts[0].(*ast.IfStmt)
	require.NotNil(t, ifs.Else)
	require.Len(t, ifs.Else.Stmts, 1)
	_, ok := ifs.Else.Stmts[0].(*ast.IfStmt)
	assert.True(t, ok, "else-if should parse as a single IfStmt inside the else block")
}

func TestParseWhileStmt(t *testing.T) {
	src := "def f()\n\twhile (x < 10)\n\t\tx := x + 1\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	ws, ok := fd.Body.Stmts[0].(*ast.WhileStmt)
	require.True(t, ok)
	_, ok = ws.Cond.(*ast.BinaryExpr)
	assert.True(t, ok)
}

func TestParseForInStmt(t *testing.T) {
	src := "def f()\n\tfor (v in xs)\n\t\tprint(v)\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	fis, ok := fd.Body.Stmts[0].(*ast.ForInStmt)
	require.True(t, ok)
	assert.Equal(t, "v", fis.Var.Name)
	ident, ok := fis.Iter.(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, "xs", ident.Name)
}

func TestParseForThreePartStmt(t *testing.T) {
	src := "def f()\n\tfor (int i := 0; i < 10; i := i + 1)\n\t\tprint(i)\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	fs, ok := fd.Body.Stmts[0].(*ast.ForStmt)
	require.True(t, ok)
	require.NotNil(t, fs.Init)
	require.NotNil(t, fs.Cond)
	require.NotNil(t, fs.Post)
	_, ok = fs.Init.(*ast.VarDecl)
	assert.True(t, ok)
}

func TestParseForThreePartStmtAllClausesOptional(t *testing.T) {
	src := "def f()\n\tfor (;;)\n\t\tbreak\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	fs, ok := fd.Body.Stmts[0].(*ast.ForStmt)
	require.True(t, ok)
	assert.Nil(t, fs.Init)
	assert.Nil(t, fs.Cond)
	assert.Nil(t, fs.Post)
}

func TestParseMatchStmt(t *testing.T) {
	src := "def f()\n\tmatch (x)\n\t\tcase 1, 2:\n\t\t\tret 1\n\t\telse\n\t\t\tret 0\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	ms, ok := fd.Body.Stmts[0].(*ast.MatchStmt)
	require.True(t, ok)
	require.Len(t, ms.Cases, 1)
	assert.Len(t, ms.Cases[0].Patterns, 2)
	require.NotNil(t, ms.Else)
}

func TestParseMatchStmtNoCasesNoElse(t *testing.T) {
	// `ret 0` sits at the same indent level as `match`, so match's header
	// Newline is not followed by an Indent: the match body is empty.
	src := "def f()\n\tmatch (x)\n\tret 0\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	require.Len(t, fd.Body.Stmts, 2)
	ms, ok := fd.Body.Stmts[0].(*ast.MatchStmt)
	require.True(t, ok)
	assert.Empty(t, ms.Cases)
	assert.Nil(t, ms.Else)
}

func TestParseClassDeclWithCtorAndMethods(t *testing.T) {
	src := "cls Point\n\tobj Point(int x, int y)\n\t\tobj.x = x\n\tobj def dist() -> int\n\t\tret obj.x\n\tdef origin() -> int\n\t\tret 0\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	require.Len(t, prog.Decls, 1)
	cd, ok := prog.Decls[0].(*ast.ClassDecl)
	require.True(t, ok)
	assert.Equal(t, "Point", cd.Name.Name)
	require.NotNil(t, cd.Ctor)
	require.Len(t, cd.Ctor.Params, 2)
	require.Len(t, cd.Methods, 2)
	assert.False(t, cd.Methods[0].IsStatic())
	assert.True(t, cd.Methods[1].IsStatic())
}

func TestParseStringInterpolationExpr(t *testing.T) {
	prog, errs := parser.Parse(1, "str s := \"hi &name, &user.age\"\n")
	require.Empty(t, errs)
	vd := prog.Decls[0].(*ast.VarDecl)
	interp, ok := vd.Init.(*ast.Interpolation)
	require.True(t, ok)
	require.Len(t, interp.Parts, 4)
	assert.Equal(t, "hi ", interp.Parts[0].Text)
	ident, ok := interp.Parts[1].Hole.(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, "name", ident.Name)
	assert.Equal(t, ", ", interp.Parts[2].Text)
	member, ok := interp.Parts[3].Hole.(*ast.MemberExpr)
	require.True(t, ok)
	assert.Equal(t, "age", member.Right.Name)
	left, ok := member.Left.(*ast.IdentExpr)
	require.True(t, ok)
	assert.Equal(t, "user", left.Name)
}

func TestParsePlainStringHasSinglePart(t *testing.T) {
	prog, errs := parser.Parse(1, "str s := \"hello\"\n")
	require.Empty(t, errs)
	vd := prog.Decls[0].(*ast.VarDecl)
	interp := vd.Init.(*ast.Interpolation)
	require.Len(t, interp.Parts, 1)
	assert.Equal(t, "hello", interp.Parts[0].Text)
}

func TestParseTernaryIsRightAssociative(t *testing.T) {
	prog, errs := parser.Parse(1, "int x := a ? b : c ? d : e\n")
	require.Empty(t, errs)
	vd := prog.Decls[0].(*ast.VarDecl)
	top, ok := vd.Init.(*ast.Ternary)
	require.True(t, ok)
	_, elseIsTernary := top.Else.(*ast.Ternary)
	assert.True(t, elseIsTernary)
}

func TestParsePowerIsRightAssociativeAndTighterThanMul(t *testing.T) {
	prog, errs := parser.Parse(1, "int x := 2 * 3 ** 2\n")
	require.Empty(t, errs)
	vd := prog.Decls[0].(*ast.VarDecl)
	top, ok := vd.Init.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STAR, top.Op)
	rhs, ok := top.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, token.STARSTAR, rhs.Op)
}

func TestParseCallMemberAndIndexChain(t *testing.T) {
	prog, errs := parser.Parse(1, "int x := a.b[0].c()\n")
	require.Empty(t, errs)
	vd := prog.Decls[0].(*ast.VarDecl)
	call, ok := vd.Init.(*ast.MethodCallExpr)
	require.True(t, ok)
	assert.Equal(t, "c", call.Method.Name)
	idx, ok := call.Recv.(*ast.IndexExpr)
	require.True(t, ok)
	_, ok = idx.Prefix.(*ast.MemberExpr)
	assert.True(t, ok)
}

func TestParseBadStmtRecoversAndContinues(t *testing.T) {
	src := "def f()\n\t+ + +\n\tret 1\n"
	prog, errs := parser.Parse(1, src)
	assert.NotEmpty(t, errs)
	fd, ok := prog.Decls[0].(*ast.FuncDecl)
	require.True(t, ok)
	require.Len(t, fd.Body.Stmts, 2)
	_, ok = fd.Body.Stmts[0].(*ast.BadStmt)
	assert.True(t, ok)
	ret, ok := fd.Body.Stmts[1].(*ast.ReturnStmt)
	require.True(t, ok)
	lit, ok := ret.Value.(*ast.LiteralExpr)
	require.True(t, ok)
	assert.Equal(t, "1", lit.Raw)
}

func TestParseEmptyProgramProducesNoDecls(t *testing.T) {
	prog, errs := parser.Parse(1, "")
	require.Empty(t, errs)
	assert.Empty(t, prog.Decls)
}

func TestParseSingleLineIfBody(t *testing.T) {
	src := "def f()\n\tif (x) ret 1\n"
	prog, errs := parser.Parse(1, src)
	require.Empty(t, errs)
	fd := prog.Decls[0].(*ast.FuncDecl)
	ifs, ok := fd.Body.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifs.Then.Stmts, 1)
	_, ok = ifs.Then.Stmts[0].(*ast.ReturnStmt)
	assert.True(t, ok)
}

func TestParseImportDecl(t *testing.T) {
	prog, errs := parser.Parse(1, "import io, math\n")
	require.Empty(t, errs)
	id, ok := prog.Decls[0].(*ast.ImportDecl)
	require.True(t, ok)
	require.Len(t, id.Modules, 2)
	assert.Equal(t, "io", id.Modules[0].Name)
	assert.Equal(t, "math", id.Modules[1].Name)
}
