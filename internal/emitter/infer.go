package emitter

import (
	"github.com/cesium-lang/cesium/internal/ast"
	"github.com/cesium-lang/cesium/internal/diagnostics"
)

// inferType walks an expression post-order and returns its static type,
// exactly the table in spec.md §4.4's "Type inference" section. It is
// pure — no code is emitted — so it can run ahead of emitExpr to decide
// widening, overload selection, and println dispatch, and it is also the
// point undeclared-variable and undefined-function CodegenErrors surface.
func (e *Emitter) inferType(expr ast.Expression) (string, error) {
	switch x := expr.(type) {
	case *ast.Literal:
		switch x.Kind {
		case "int", "float", "string":
			return x.Kind, nil
		case "bool":
			return "int", nil
		default:
			return "", diagnostics.NewCodegenError(x.LineNo, "unsupported literal kind %q", x.Kind)
		}

	case *ast.Variable:
		f := e.current()
		typ, ok := f.types[x.Name]
		if !ok {
			return "", diagnostics.NewCodegenError(x.LineNo, "undeclared variable %q", x.Name)
		}
		return typ, nil

	case *ast.Unary:
		operandType, err := e.inferType(x.Operand)
		if err != nil {
			return "", err
		}
		switch x.Op {
		case "!":
			return "int", nil
		case "-":
			if !isNumeric(operandType) {
				return "", diagnostics.NewCodegenError(x.LineNo, "unary - requires a numeric operand, found %s", operandType)
			}
			return operandType, nil
		default:
			return "", diagnostics.NewCodegenError(x.LineNo, "unsupported unary operator %q", x.Op)
		}

	case *ast.Binary:
		return e.inferBinaryType(x)

	case *ast.Call:
		if x.Name == "setValue" {
			return "", diagnostics.NewCodegenError(x.LineNo, "setValue has no value and cannot be used as an expression")
		}
		if _, ok := e.functions[x.Name]; !ok {
			return "", diagnostics.NewCodegenError(x.LineNo, "call to undefined function %q", x.Name)
		}
		return "int", nil

	default:
		return "", diagnostics.NewCodegenError(expr.Line(), "unsupported expression type %T", expr)
	}
}

var comparisonOps = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}
var logicalOps = map[string]bool{"&&": true, "||": true}

func (e *Emitter) inferBinaryType(b *ast.Binary) (string, error) {
	leftType, err := e.inferType(b.Left)
	if err != nil {
		return "", err
	}
	rightType, err := e.inferType(b.Right)
	if err != nil {
		return "", err
	}

	if comparisonOps[b.Op] || logicalOps[b.Op] {
		return "int", nil
	}

	// Arithmetic.
	if isReactiveLike(leftType) {
		if rightType != "int" {
			return "", diagnostics.NewCodegenError(b.LineNo, "reactive arithmetic requires an int right operand, found %s", rightType)
		}
		return "Reactive", nil
	}
	if isReactiveLike(rightType) {
		return "", diagnostics.NewCodegenError(b.LineNo, "reactive operand must be the left operand of %q", b.Op)
	}
	if !isNumeric(leftType) || !isNumeric(rightType) {
		return "", diagnostics.NewCodegenError(b.LineNo, "arithmetic on non-numeric operand (%s %s %s)", leftType, b.Op, rightType)
	}
	if leftType == "float" || rightType == "float" {
		return "float", nil
	}
	return "int", nil
}
