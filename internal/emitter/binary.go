package emitter

import (
	"github.com/cesium-lang/cesium/internal/ast"
	"github.com/cesium-lang/cesium/internal/classfile"
	"github.com/cesium-lang/cesium/internal/diagnostics"
)

// emitBinary dispatches a binary expression to its arithmetic, reactive,
// comparison, or logical lowering, per spec.md §4.4.
func (e *Emitter) emitBinary(cb *classfile.CodeBuilder, b *ast.Binary) (string, error) {
	switch {
	case logicalOps[b.Op]:
		return e.emitLogical(cb, b)
	case comparisonOps[b.Op]:
		return e.emitComparison(cb, b)
	default:
		return e.emitArithmetic(cb, b)
	}
}

var reactiveOpMethod = map[string]string{
	"+": "add", "-": "subtract", "*": "multiply", "/": "divide",
}

// emitArithmetic lowers +, -, *, /. When the left operand is Stream or
// Reactive it emits the matching ReactiveOps static call instead of a raw
// arithmetic instruction (spec.md §4.4's "Reactive arithmetic").
func (e *Emitter) emitArithmetic(cb *classfile.CodeBuilder, b *ast.Binary) (string, error) {
	leftType, err := e.inferType(b.Left)
	if err != nil {
		return "", err
	}
	rightType, err := e.inferType(b.Right)
	if err != nil {
		return "", err
	}

	if isReactiveLike(leftType) {
		if rightType != "int" {
			return "", diagnostics.NewCodegenError(b.LineNo, "reactive arithmetic requires an int right operand, found %s", rightType)
		}
		method, ok := reactiveOpMethod[b.Op]
		if !ok {
			return "", diagnostics.NewCodegenError(b.LineNo, "unsupported reactive operator %q", b.Op)
		}
		if _, err := e.emitExpr(cb, b.Left); err != nil {
			return "", err
		}
		if _, err := e.emitExpr(cb, b.Right); err != nil {
			return "", err
		}
		leftClass := classStream
		if leftType == "Reactive" {
			leftClass = classReactive
		}
		descriptor := "(L" + leftClass + ";I)L" + classReactive + ";"
		cb.InvokeStatic(classReactiveOps, method, descriptor, 2, true)
		return "Reactive", nil
	}
	if isReactiveLike(rightType) {
		return "", diagnostics.NewCodegenError(b.LineNo, "reactive operand must be the left operand of %q", b.Op)
	}
	if !isNumeric(leftType) || !isNumeric(rightType) {
		return "", diagnostics.NewCodegenError(b.LineNo, "arithmetic on non-numeric operand (%s %s %s)", leftType, b.Op, rightType)
	}

	resultType := "int"
	if leftType == "float" || rightType == "float" {
		resultType = "float"
	}

	if _, err := e.emitExpr(cb, b.Left); err != nil {
		return "", err
	}
	if resultType == "float" && leftType == "int" {
		cb.I2F()
	}
	if _, err := e.emitExpr(cb, b.Right); err != nil {
		return "", err
	}
	if resultType == "float" && rightType == "int" {
		cb.I2F()
	}

	switch {
	case resultType == "int" && b.Op == "+":
		cb.IAdd()
	case resultType == "int" && b.Op == "-":
		cb.ISub()
	case resultType == "int" && b.Op == "*":
		cb.IMul()
	case resultType == "int" && b.Op == "/":
		cb.IDiv()
	case resultType == "float" && b.Op == "+":
		cb.FAdd()
	case resultType == "float" && b.Op == "-":
		cb.FSub()
	case resultType == "float" && b.Op == "*":
		cb.FMul()
	case resultType == "float" && b.Op == "/":
		cb.FDiv()
	default:
		return "", diagnostics.NewCodegenError(b.LineNo, "unsupported arithmetic operator %q", b.Op)
	}
	return resultType, nil
}

// emitComparison lowers ==, !=, <, >, <=, >= via the branch-and-select
// idiom: the operands are compared, and exactly one of two forward
// branches pushes the int 0 or 1 result (spec.md §4.4's "Comparison
// lowering").
func (e *Emitter) emitComparison(cb *classfile.CodeBuilder, b *ast.Binary) (string, error) {
	leftType, err := e.inferType(b.Left)
	if err != nil {
		return "", err
	}
	rightType, err := e.inferType(b.Right)
	if err != nil {
		return "", err
	}
	if !isNumeric(leftType) || !isNumeric(rightType) {
		return "", diagnostics.NewCodegenError(b.LineNo, "comparison on non-numeric operand (%s %s %s)", leftType, b.Op, rightType)
	}

	trueLabel, endLabel := cb.NewLabel(), cb.NewLabel()

	if leftType == "float" || rightType == "float" {
		if _, err := e.emitExpr(cb, b.Left); err != nil {
			return "", err
		}
		if leftType == "int" {
			cb.I2F()
		}
		if _, err := e.emitExpr(cb, b.Right); err != nil {
			return "", err
		}
		if rightType == "int" {
			cb.I2F()
		}
		// fcmpg treats NaN as "greater", fcmpl as "less" — javac's own
		// choice for < / <= versus > / >=; == and != don't depend on it.
		switch b.Op {
		case "<", "<=", "==", "!=":
			cb.FCmpG()
		default:
			cb.FCmpL()
		}
		if err := branchOnZeroComparison(cb, b.Op, trueLabel); err != nil {
			return "", diagnostics.NewCodegenError(b.LineNo, "%s", err)
		}
	} else {
		if _, err := e.emitExpr(cb, b.Left); err != nil {
			return "", err
		}
		if _, err := e.emitExpr(cb, b.Right); err != nil {
			return "", err
		}
		op, err := intCompareOpcode(b.Op)
		if err != nil {
			return "", diagnostics.NewCodegenError(b.LineNo, "%s", err)
		}
		cb.IfIcmp(op, trueLabel)
	}

	cb.PushInt(0)
	cb.Goto(endLabel)
	cb.Bind(trueLabel)
	cb.PushInt(1)
	cb.Bind(endLabel)
	return "int", nil
}

func intCompareOpcode(op string) (classfile.Op, error) {
	switch op {
	case "==":
		return classfile.OpIfIcmpeq, nil
	case "!=":
		return classfile.OpIfIcmpne, nil
	case "<":
		return classfile.OpIfIcmplt, nil
	case ">":
		return classfile.OpIfIcmpgt, nil
	case "<=":
		return classfile.OpIfIcmple, nil
	case ">=":
		return classfile.OpIfIcmpge, nil
	default:
		return 0, &diagnostics.CodegenError{Message: "unsupported comparison operator " + op}
	}
}

// branchOnZeroComparison branches to trueLabel based on the -1/0/1 result
// an fcmp instruction just left on the stack.
func branchOnZeroComparison(cb *classfile.CodeBuilder, op string, trueLabel *classfile.Label) error {
	switch op {
	case "==":
		cb.IfEqZero(trueLabel)
	case "!=":
		cb.IfNeZero(trueLabel)
	case "<":
		cb.IfLtZero(trueLabel)
	case ">":
		cb.IfGtZero(trueLabel)
	case "<=":
		cb.IfLeZero(trueLabel)
	case ">=":
		cb.IfGeZero(trueLabel)
	default:
		return &diagnostics.CodegenError{Message: "unsupported comparison operator " + op}
	}
	return nil
}

// emitLogical lowers && and || with short-circuit evaluation (spec.md
// §4.4's "Logical lowering").
func (e *Emitter) emitLogical(cb *classfile.CodeBuilder, b *ast.Binary) (string, error) {
	leftType, err := e.inferType(b.Left)
	if err != nil {
		return "", err
	}
	rightType, err := e.inferType(b.Right)
	if err != nil {
		return "", err
	}
	if leftType != "int" || rightType != "int" {
		return "", diagnostics.NewCodegenError(b.LineNo, "logical %q requires int operands, found %s and %s", b.Op, leftType, rightType)
	}

	shortCircuit, endLabel := cb.NewLabel(), cb.NewLabel()
	if _, err := e.emitExpr(cb, b.Left); err != nil {
		return "", err
	}

	switch b.Op {
	case "&&":
		cb.IfEqZero(shortCircuit)
		if _, err := e.emitExpr(cb, b.Right); err != nil {
			return "", err
		}
		cb.IfEqZero(shortCircuit)
		cb.PushInt(1)
		cb.Goto(endLabel)
		cb.Bind(shortCircuit)
		cb.PushInt(0)
		cb.Bind(endLabel)
	case "||":
		cb.IfNeZero(shortCircuit)
		if _, err := e.emitExpr(cb, b.Right); err != nil {
			return "", err
		}
		cb.IfNeZero(shortCircuit)
		cb.PushInt(0)
		cb.Goto(endLabel)
		cb.Bind(shortCircuit)
		cb.PushInt(1)
		cb.Bind(endLabel)
	default:
		return "", diagnostics.NewCodegenError(b.LineNo, "unsupported logical operator %q", b.Op)
	}
	return "int", nil
}
