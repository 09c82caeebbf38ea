package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesium-lang/cesium/internal/ast"
	"github.com/cesium-lang/cesium/internal/diagnostics"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := New(src)
	require.NoError(t, err)
	prog, err := p.Parse()
	require.NoError(t, err)
	return prog
}

func TestParseVarDeclWithInitializer(t *testing.T) {
	prog := parse(t, "int a = 2 + 3 * 4;")
	require.Len(t, prog.Statements, 1)
	decl, ok := prog.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "int", decl.Type)
	assert.Equal(t, "a", decl.Name)
	bin, ok := decl.Init.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestPrecedenceMultiplicationBindsTighterThanAddition(t *testing.T) {
	prog := parse(t, "int a = 2 + 3 * 4;")
	decl := prog.Statements[0].(*ast.VarDecl)
	top := decl.Init.(*ast.Binary)
	assert.Equal(t, "+", top.Op)
	_, leftIsLiteral := top.Left.(*ast.Literal)
	assert.True(t, leftIsLiteral)
	right, ok := top.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)
}

func TestLeftAssociativity(t *testing.T) {
	prog := parse(t, "int a = 1 - 2 - 3;")
	decl := prog.Statements[0].(*ast.VarDecl)
	top := decl.Init.(*ast.Binary)
	assert.Equal(t, "-", top.Op)
	left, ok := top.Left.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, "-", left.Op)
}

func TestIfElse(t *testing.T) {
	prog := parse(t, `if (1 < 2) { print(1); } else { print(0); }`)
	ifStmt, ok := prog.Statements[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Else)
	assert.Len(t, ifStmt.Then.Statements, 1)
	assert.Len(t, ifStmt.Else.Statements, 1)
}

func TestIfWithoutElse(t *testing.T) {
	prog := parse(t, `if (1 < 2) { print(1); }`)
	ifStmt := prog.Statements[0].(*ast.If)
	assert.Nil(t, ifStmt.Else)
}

func TestForLoop(t *testing.T) {
	prog := parse(t, `for (int i = 0; i < 3; i = i + 1) { print(i); }`)
	forStmt, ok := prog.Statements[0].(*ast.For)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Update)
	_, initIsDecl := forStmt.Init.(*ast.VarDecl)
	assert.True(t, initIsDecl)
	_, updateIsAssign := forStmt.Update.(*ast.Assignment)
	assert.True(t, updateIsAssign)
}

func TestForLoopAllClausesOptional(t *testing.T) {
	prog := parse(t, `for (;;) { print(1); }`)
	forStmt := prog.Statements[0].(*ast.For)
	assert.Nil(t, forStmt.Init)
	assert.Nil(t, forStmt.Cond)
	assert.Nil(t, forStmt.Update)
}

func TestWhileLoop(t *testing.T) {
	prog := parse(t, `while (false) { print(99); }`)
	_, ok := prog.Statements[0].(*ast.While)
	assert.True(t, ok)
}

func TestFunctionDeclEmptyBody(t *testing.T) {
	prog := parse(t, `function f() {}`)
	fn, ok := prog.Statements[0].(*ast.FuncDecl)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)
	assert.Empty(t, fn.Body.Statements)
}

func TestFunctionDeclWithParams(t *testing.T) {
	prog := parse(t, `function add(int a, int b) { return a + b; }`)
	fn := prog.Statements[0].(*ast.FuncDecl)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, ast.Parameter{Type: "int", Name: "a"}, fn.Params[0])
	assert.Equal(t, ast.Parameter{Type: "int", Name: "b"}, fn.Params[1])
}

func TestAssignmentVsExpressionStatementDisambiguation(t *testing.T) {
	prog := parse(t, `int x; x = 5; print(x);`)
	require.Len(t, prog.Statements, 3)
	_, ok := prog.Statements[1].(*ast.Assignment)
	assert.True(t, ok)
}

func TestCallStatement(t *testing.T) {
	prog := parse(t, `foo(1, 2);`)
	stmt, ok := prog.Statements[0].(*ast.ExpressionStmt)
	require.True(t, ok)
	call, ok := stmt.Expr.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "foo", call.Name)
	assert.Len(t, call.Args, 2)
}

func TestMissingSemicolonIsParseError(t *testing.T) {
	p, err := New("int x = 1")
	require.NoError(t, err)
	_, err = p.Parse()
	require.Error(t, err)
	var parseErr *diagnostics.ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestMissingExpressionIsParseError(t *testing.T) {
	_, err := parseErrProgram(t, "int x; x = ;")
	require.Error(t, err)
}

func TestUnterminatedParenIsParseError(t *testing.T) {
	_, err := parseErrProgram(t, "int x = (1 + 2;")
	require.Error(t, err)
}

func parseErrProgram(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	p, err := New(src)
	require.NoError(t, err)
	return p.Parse()
}

func TestReactiveKeywordNeverParses(t *testing.T) {
	_, err := parseErrProgram(t, "reactive x;")
	require.Error(t, err)
}

func TestStreamAndReactiveDeclarations(t *testing.T) {
	prog := parse(t, `Stream s = 5; Reactive r = s * 2;`)
	require.Len(t, prog.Statements, 2)
	s := prog.Statements[0].(*ast.VarDecl)
	assert.Equal(t, "Stream", s.Type)
	r := prog.Statements[1].(*ast.VarDecl)
	assert.Equal(t, "Reactive", r.Type)
}
