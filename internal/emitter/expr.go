package emitter

import (
	"strconv"

	"github.com/cesium-lang/cesium/internal/ast"
	"github.com/cesium-lang/cesium/internal/classfile"
	"github.com/cesium-lang/cesium/internal/diagnostics"
)

// emitExpr lowers an expression, leaving its value on the operand stack,
// and returns the type inferType would assign it.
func (e *Emitter) emitExpr(cb *classfile.CodeBuilder, expr ast.Expression) (string, error) {
	switch x := expr.(type) {
	case *ast.Literal:
		return e.emitLiteral(cb, x)
	case *ast.Variable:
		return e.emitVariable(cb, x)
	case *ast.Unary:
		return e.emitUnary(cb, x)
	case *ast.Binary:
		return e.emitBinary(cb, x)
	case *ast.Call:
		return e.emitCall(cb, x)
	default:
		return "", diagnostics.NewCodegenError(expr.Line(), "unsupported expression type %T", expr)
	}
}

func (e *Emitter) emitLiteral(cb *classfile.CodeBuilder, lit *ast.Literal) (string, error) {
	switch lit.Kind {
	case "int":
		v, err := strconv.ParseInt(lit.Lexeme, 10, 32)
		if err != nil {
			return "", diagnostics.NewCodegenError(lit.LineNo, "malformed integer literal %q", lit.Lexeme)
		}
		cb.PushInt(int32(v))
		return "int", nil
	case "float":
		v, err := strconv.ParseFloat(lit.Lexeme, 32)
		if err != nil {
			return "", diagnostics.NewCodegenError(lit.LineNo, "malformed float literal %q", lit.Lexeme)
		}
		cb.PushFloat(float32(v))
		return "float", nil
	case "string":
		cb.PushString(lit.Lexeme)
		return "string", nil
	case "bool":
		if lit.Lexeme == "true" {
			cb.PushInt(1)
		} else {
			cb.PushInt(0)
		}
		return "int", nil
	default:
		return "", diagnostics.NewCodegenError(lit.LineNo, "unsupported literal kind %q", lit.Kind)
	}
}

func (e *Emitter) emitVariable(cb *classfile.CodeBuilder, v *ast.Variable) (string, error) {
	f := e.current()
	typ, ok := f.types[v.Name]
	if !ok {
		return "", diagnostics.NewCodegenError(v.LineNo, "undeclared variable %q", v.Name)
	}
	slot := f.slots[v.Name]
	switch typ {
	case "int":
		cb.LoadInt(slot)
	case "float":
		cb.LoadFloat(slot)
	case "string", "Stream", "Reactive":
		cb.LoadRef(slot)
	default:
		return "", diagnostics.NewCodegenError(v.LineNo, "unsupported type %q", typ)
	}
	return typ, nil
}

func (e *Emitter) emitUnary(cb *classfile.CodeBuilder, u *ast.Unary) (string, error) {
	switch u.Op {
	case "!":
		operandType, err := e.inferType(u.Operand)
		if err != nil {
			return "", err
		}
		if operandType != "int" {
			return "", diagnostics.NewCodegenError(u.LineNo, "! requires an int operand, found %s", operandType)
		}
		if _, err := e.emitExpr(cb, u.Operand); err != nil {
			return "", err
		}
		trueLabel, endLabel := cb.NewLabel(), cb.NewLabel()
		cb.IfEqZero(trueLabel)
		cb.PushInt(0)
		cb.Goto(endLabel)
		cb.Bind(trueLabel)
		cb.PushInt(1)
		cb.Bind(endLabel)
		return "int", nil

	case "-":
		operandType, err := e.emitExpr(cb, u.Operand)
		if err != nil {
			return "", err
		}
		switch operandType {
		case "int":
			cb.INeg()
		case "float":
			cb.FNeg()
		default:
			return "", diagnostics.NewCodegenError(u.LineNo, "unary - requires a numeric operand, found %s", operandType)
		}
		return operandType, nil

	default:
		return "", diagnostics.NewCodegenError(u.LineNo, "unsupported unary operator %q", u.Op)
	}
}

func (e *Emitter) emitCall(cb *classfile.CodeBuilder, call *ast.Call) (string, error) {
	if call.Name == "setValue" {
		return "", diagnostics.NewCodegenError(call.LineNo, "setValue has no value and cannot be used as an expression")
	}
	sig, ok := e.functions[call.Name]
	if !ok {
		return "", diagnostics.NewCodegenError(call.LineNo, "call to undefined function %q", call.Name)
	}
	if len(call.Args) != len(sig.ParamTypes) {
		return "", diagnostics.NewCodegenError(call.LineNo, "function %q expects %d arguments, found %d", call.Name, len(sig.ParamTypes), len(call.Args))
	}
	for i, arg := range call.Args {
		argType, err := e.emitExpr(cb, arg)
		if err != nil {
			return "", err
		}
		paramType := sig.ParamTypes[i]
		if argType == paramType {
			continue
		}
		if paramType == "float" && argType == "int" {
			cb.I2F()
			continue
		}
		return "", diagnostics.NewCodegenError(call.LineNo, "argument %d to %q: cannot use %s as %s", i+1, call.Name, argType, paramType)
	}
	cb.InvokeStatic(e.className, call.Name, sig.Descriptor, len(sig.ParamTypes), true)
	return "int", nil
}
