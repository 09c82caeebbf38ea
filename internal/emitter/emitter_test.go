package emitter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cesium-lang/cesium/internal/classfile"
	"github.com/cesium-lang/cesium/internal/diagnostics"
	"github.com/cesium-lang/cesium/internal/emitter"
	"github.com/cesium-lang/cesium/internal/optimizer"
	"github.com/cesium-lang/cesium/internal/parser"
)

func compile(t *testing.T, src string) (*classfile.ClassFile, error) {
	t.Helper()
	p, err := parser.New(src)
	require.NoError(t, err)
	prog, err := p.Parse()
	require.NoError(t, err)
	optimized := optimizer.Simplify(prog)
	return emitter.Emit(optimized, "Program")
}

func mainDisasm(t *testing.T, cf *classfile.ClassFile) []string {
	t.Helper()
	for _, m := range cf.Methods {
		if m.Name == "main" {
			return classfile.Disassemble(m.Code)
		}
	}
	t.Fatal("no main method emitted")
	return nil
}

func TestScenario1ConstantFoldedArithmetic(t *testing.T) {
	cf, err := compile(t, `int a = 2 + 3 * 4; print(a);`)
	require.NoError(t, err)
	lines := mainDisasm(t, cf)
	joined := ""
	for _, l := range lines {
		joined += l + "\n"
	}
	assert.Contains(t, joined, "bipush 14")
}

func TestScenarioStreamReactiveSetValue(t *testing.T) {
	cf, err := compile(t, `Stream s = 5; Reactive r = s * 2; print(r); setValue(s, 7); print(r);`)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(cf.Methods), 2)
}

func TestScenarioIfConditionElidesElse(t *testing.T) {
	cf, err := compile(t, `if (1 < 2) { print(1); } else { print(0); }`)
	require.NoError(t, err)
	lines := mainDisasm(t, cf)
	for _, l := range lines {
		assert.NotContains(t, l, "unknown")
		// The else branch's print(0) would push iconst_0.
		assert.NotContains(t, l, "iconst_0")
	}
}

func TestScenarioForLoopCounting(t *testing.T) {
	cf, err := compile(t, `for (int i = 0; i < 3; i = i + 1) { print(i); }`)
	require.NoError(t, err)
	lines := mainDisasm(t, cf)
	assert.NotEmpty(t, lines)
}

func TestScenarioWhileFalseDropped(t *testing.T) {
	cf, err := compile(t, `while (false) { print(99); } print(1);`)
	require.NoError(t, err)
	lines := mainDisasm(t, cf)
	joined := ""
	for _, l := range lines {
		joined += l + "\n"
	}
	assert.NotContains(t, joined, "99")
}

func TestUndeclaredVariablePrintIsCodegenError(t *testing.T) {
	_, err := compile(t, `print(x);`)
	require.Error(t, err)
	var cerr *diagnostics.CodegenError
	assert.ErrorAs(t, err, &cerr)
}

func TestUndefinedFunctionCallIsCodegenError(t *testing.T) {
	_, err := compile(t, `int a = missing(1);`)
	require.Error(t, err)
	var cerr *diagnostics.CodegenError
	assert.ErrorAs(t, err, &cerr)
}

func TestStringConcatenationIsRejected(t *testing.T) {
	_, err := compile(t, `string a = "x"; string b = "y"; string c = a + b;`)
	require.Error(t, err)
	var cerr *diagnostics.CodegenError
	assert.ErrorAs(t, err, &cerr)
}

func TestEmptyFunctionReturnsIntZero(t *testing.T) {
	cf, err := compile(t, `function f() {}`)
	require.NoError(t, err)
	var fn *classfile.Method
	for _, m := range cf.Methods {
		if m.Name == "f" {
			fn = m
		}
	}
	require.NotNil(t, fn)
	lines := classfile.Disassemble(fn.Code)
	require.GreaterOrEqual(t, len(lines), 2)
	last := lines[len(lines)-1]
	secondLast := lines[len(lines)-2]
	assert.Contains(t, secondLast, "iconst_0")
	assert.Contains(t, last, "ireturn")
}

func TestDeclaredIntWithoutInitializerPrintsZero(t *testing.T) {
	cf, err := compile(t, `int x; print(x);`)
	require.NoError(t, err)
	lines := mainDisasm(t, cf)
	assert.Contains(t, lines[0], "iconst_0")
}

func TestReactiveOperandMustBeLeftOperand(t *testing.T) {
	_, err := compile(t, `Stream s = 1; int a = 2; Reactive r = a + s;`)
	require.Error(t, err)
}

func TestRedeclaredVariableIsCodegenError(t *testing.T) {
	_, err := compile(t, `int a = 1; int a = 2;`)
	require.Error(t, err)
}

func TestRedeclaredFunctionIsCodegenError(t *testing.T) {
	_, err := compile(t, `function f() { return 1; } function f() { return 2; }`)
	require.Error(t, err)
}

func TestFunctionCallWidensIntArgToFloatParam(t *testing.T) {
	cf, err := compile(t, `function f(float x) { return x; } int a = f(2);`)
	require.NoError(t, err)
	lines := mainDisasm(t, cf)
	joined := ""
	for _, l := range lines {
		joined += l + "\n"
	}
	assert.Contains(t, joined, "i2f")
}
