package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesium-lang/cesium/internal/ast"
	"github.com/cesium-lang/cesium/internal/parser"
)

func simplifySource(t *testing.T, src string) *ast.Program {
	t.Helper()
	p, err := parser.New(src)
	require.NoError(t, err)
	prog, err := p.Parse()
	require.NoError(t, err)
	return Simplify(prog)
}

func TestConstantFoldingArithmeticIntegerExact(t *testing.T) {
	prog := simplifySource(t, "int a = 2 + 3 * 4;")
	decl := prog.Statements[0].(*ast.VarDecl)
	lit, ok := decl.Init.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "int", lit.Kind)
	assert.Equal(t, "14", lit.Lexeme)
}

func TestConstantFoldingProducesFloatWhenNotExact(t *testing.T) {
	prog := simplifySource(t, "float a = 7 / 2;")
	decl := prog.Statements[0].(*ast.VarDecl)
	lit := decl.Init.(*ast.Literal)
	assert.Equal(t, "float", lit.Kind)
	assert.Equal(t, "3.5", lit.Lexeme)
}

func TestDivisionByZeroLeftIntact(t *testing.T) {
	prog := simplifySource(t, "int a = 1 / 0;")
	decl := prog.Statements[0].(*ast.VarDecl)
	_, isBinary := decl.Init.(*ast.Binary)
	assert.True(t, isBinary)
}

func TestComparisonFoldsToCanonicalZeroOne(t *testing.T) {
	prog := simplifySource(t, "int a = 1 < 2;")
	decl := prog.Statements[0].(*ast.VarDecl)
	lit := decl.Init.(*ast.Literal)
	assert.Equal(t, "int", lit.Kind)
	assert.Equal(t, "1", lit.Lexeme)

	prog2 := simplifySource(t, "int a = 1 > 2;")
	decl2 := prog2.Statements[0].(*ast.VarDecl)
	lit2 := decl2.Init.(*ast.Literal)
	assert.Equal(t, "0", lit2.Lexeme)
}

func TestUnaryNegationFlipsSign(t *testing.T) {
	prog := simplifySource(t, "int a = -5;")
	decl := prog.Statements[0].(*ast.VarDecl)
	lit, ok := decl.Init.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, "-5", lit.Lexeme)
}

func TestUnaryNotFoldsToCanonicalZeroOne(t *testing.T) {
	prog := simplifySource(t, "int a = !0;")
	decl := prog.Statements[0].(*ast.VarDecl)
	lit := decl.Init.(*ast.Literal)
	assert.Equal(t, "1", lit.Lexeme)
}

func TestIfTrueKeepsOnlyThen(t *testing.T) {
	prog := simplifySource(t, `if (1 < 2) { print(1); } else { print(0); }`)
	require.Len(t, prog.Statements, 1)
	block, ok := prog.Statements[0].(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Statements, 1)
	print, ok := block.Statements[0].(*ast.Print)
	require.True(t, ok)
	lit := print.Expr.(*ast.Literal)
	assert.Equal(t, "1", lit.Lexeme)
}

func TestIfFalseKeepsOnlyElse(t *testing.T) {
	prog := simplifySource(t, `if (1 > 2) { print(1); } else { print(0); }`)
	block := prog.Statements[0].(*ast.Block)
	print := block.Statements[0].(*ast.Print)
	lit := print.Expr.(*ast.Literal)
	assert.Equal(t, "0", lit.Lexeme)
}

func TestIfFalseWithNoElseDropsEntirely(t *testing.T) {
	prog := simplifySource(t, `if (1 > 2) { print(1); } print(9);`)
	require.Len(t, prog.Statements, 1)
	print, ok := prog.Statements[0].(*ast.Print)
	require.True(t, ok)
	lit := print.Expr.(*ast.Literal)
	assert.Equal(t, "9", lit.Lexeme)
}

func TestWhileFalseIsDropped(t *testing.T) {
	prog := simplifySource(t, `while (false) { print(99); } print(1);`)
	require.Len(t, prog.Statements, 1)
	print, ok := prog.Statements[0].(*ast.Print)
	require.True(t, ok)
	lit := print.Expr.(*ast.Literal)
	assert.Equal(t, "1", lit.Lexeme)
}

func TestForFalseConditionPreservesInitOnly(t *testing.T) {
	prog := simplifySource(t, `for (int i = 0; false; i = i + 1) { print(i); }`)
	require.Len(t, prog.Statements, 1)
	block, ok := prog.Statements[0].(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Statements, 1)
	decl, ok := block.Statements[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "i", decl.Name)
}

func TestForLoopUnaffectedWhenConditionNotConstant(t *testing.T) {
	prog := simplifySource(t, `for (int i = 0; i < 3; i = i + 1) { print(i); }`)
	_, ok := prog.Statements[0].(*ast.For)
	assert.True(t, ok)
}

func TestNonLiteralConditionNotEvaluated(t *testing.T) {
	prog := simplifySource(t, `int x; if (x) { print(1); }`)
	require.Len(t, prog.Statements, 2)
	_, ok := prog.Statements[1].(*ast.If)
	assert.True(t, ok)
}

func TestIdempotent(t *testing.T) {
	src := `int a = 2 + 3 * 4; if (1 < 2) { print(a); } else { print(0); } while (false) { print(9); } for (int i = 0; false; i = i + 1) { print(i); }`
	p, err := parser.New(src)
	require.NoError(t, err)
	prog, err := p.Parse()
	require.NoError(t, err)

	once := Simplify(prog)
	twice := Simplify(once)
	assert.Equal(t, once, twice)
}

func TestCallArgumentsAreSimplifiedButCallIsNeverFolded(t *testing.T) {
	prog := simplifySource(t, `foo(1 + 2);`)
	stmt := prog.Statements[0].(*ast.ExpressionStmt)
	call := stmt.Expr.(*ast.Call)
	lit := call.Args[0].(*ast.Literal)
	assert.Equal(t, "3", lit.Lexeme)
}
