package emitter

import (
	"strconv"

	"github.com/cesium-lang/cesium/internal/ast"
	"github.com/cesium-lang/cesium/internal/classfile"
	"github.com/cesium-lang/cesium/internal/diagnostics"
)

// emitStatement lowers one statement into cb, mutating the current frame
// for declarations.
func (e *Emitter) emitStatement(cb *classfile.CodeBuilder, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return e.emitVarDecl(cb, s)
	case *ast.Assignment:
		return e.emitAssignment(cb, s)
	case *ast.ExpressionStmt:
		return e.emitExpressionStmt(cb, s)
	case *ast.Print:
		return e.emitPrint(cb, s)
	case *ast.If:
		return e.emitIf(cb, s)
	case *ast.While:
		return e.emitWhile(cb, s)
	case *ast.For:
		return e.emitFor(cb, s)
	case *ast.Return:
		return e.emitReturn(cb, s)
	case *ast.Block:
		for _, inner := range s.Statements {
			if err := e.emitStatement(cb, inner); err != nil {
				return err
			}
		}
		return nil
	case *ast.FuncDecl:
		// Top-level declarations are compiled by emitFunction and skipped
		// by emitMain, so only a declaration nested inside a block (which
		// the parser accepts) reaches here, and it is rejected.
		return diagnostics.NewCodegenError(s.LineNo, "nested function declarations are not supported")
	default:
		return diagnostics.NewCodegenError(stmt.Line(), "unsupported statement type %T", stmt)
	}
}

// --- Declarations ---

func (e *Emitter) emitVarDecl(cb *classfile.CodeBuilder, d *ast.VarDecl) error {
	f := e.current()
	if _, redeclared := f.types[d.Name]; redeclared {
		return diagnostics.NewCodegenError(d.LineNo, "variable %q redeclared", d.Name)
	}

	switch d.Type {
	case "int":
		slot := f.declare(d.Name, "int")
		cb.EnsureLocals(f.next)
		if d.Init == nil {
			cb.PushInt(0)
		} else if err := e.emitNumericInit(cb, d.Init, "int"); err != nil {
			return err
		}
		cb.StoreInt(slot)

	case "float":
		slot := f.declare(d.Name, "float")
		cb.EnsureLocals(f.next)
		if d.Init == nil {
			cb.PushFloat(0)
		} else if err := e.emitNumericInit(cb, d.Init, "float"); err != nil {
			return err
		}
		cb.StoreFloat(slot)

	case "string":
		slot := f.declare(d.Name, "string")
		cb.EnsureLocals(f.next)
		if d.Init == nil {
			cb.PushString("")
		} else {
			initType, err := e.emitExpr(cb, d.Init)
			if err != nil {
				return err
			}
			if initType != "string" {
				return diagnostics.NewCodegenError(d.LineNo, "cannot assign %s to string variable %q", initType, d.Name)
			}
		}
		cb.StoreRef(slot)

	case "Stream":
		slot := f.declare(d.Name, "Stream")
		cb.EnsureLocals(f.next)
		cb.New(classStream)
		cb.Dup()
		cb.InvokeSpecial(classStream, "<init>", "()V", 0, false)
		cb.StoreRef(slot)
		if d.Init != nil {
			lit, ok := d.Init.(*ast.Literal)
			if !ok || lit.Kind != "int" {
				return diagnostics.NewCodegenError(d.LineNo, "Stream %q must be initialized with an integer literal", d.Name)
			}
			cb.LoadRef(slot)
			cb.PushInt(mustParseInt(lit.Lexeme))
			cb.InvokeStatic(classUtil, "setValue", "(L"+classStream+";I)V", 2, false)
		}

	case "Reactive":
		slot := f.declare(d.Name, "Reactive")
		cb.EnsureLocals(f.next)
		if d.Init == nil {
			cb.PushNull()
		} else {
			initType, err := e.emitExpr(cb, d.Init)
			if err != nil {
				return err
			}
			if initType != "Reactive" {
				return diagnostics.NewCodegenError(d.LineNo, "cannot assign %s to Reactive variable %q", initType, d.Name)
			}
		}
		cb.StoreRef(slot)

	default:
		return diagnostics.NewCodegenError(d.LineNo, "unsupported type %q", d.Type)
	}

	return nil
}

// emitNumericInit lowers a declaration initializer for an int or float
// variable, widening int->float as needed and rejecting the reverse.
func (e *Emitter) emitNumericInit(cb *classfile.CodeBuilder, init ast.Expression, declared string) error {
	initType, err := e.emitExpr(cb, init)
	if err != nil {
		return err
	}
	if initType == declared {
		return nil
	}
	if declared == "float" && initType == "int" {
		cb.I2F()
		return nil
	}
	return diagnostics.NewCodegenError(init.Line(), "cannot assign %s to %s variable", initType, declared)
}

func mustParseInt(lexeme string) int32 {
	v, _ := strconv.ParseInt(lexeme, 10, 32)
	return int32(v)
}

// --- Assignment ---

func (e *Emitter) emitAssignment(cb *classfile.CodeBuilder, a *ast.Assignment) error {
	f := e.current()
	typ, ok := f.types[a.Name]
	if !ok {
		return diagnostics.NewCodegenError(a.LineNo, "undeclared variable %q", a.Name)
	}
	slot := f.slots[a.Name]

	switch typ {
	case "int":
		if err := e.emitNumericInit(cb, a.Value, "int"); err != nil {
			return err
		}
		cb.StoreInt(slot)
	case "float":
		if err := e.emitNumericInit(cb, a.Value, "float"); err != nil {
			return err
		}
		cb.StoreFloat(slot)
	case "string":
		valType, err := e.emitExpr(cb, a.Value)
		if err != nil {
			return err
		}
		if valType != "string" {
			return diagnostics.NewCodegenError(a.LineNo, "cannot assign %s to string variable %q", valType, a.Name)
		}
		cb.StoreRef(slot)
	case "Reactive":
		valType, err := e.emitExpr(cb, a.Value)
		if err != nil {
			return err
		}
		if valType != "Reactive" {
			return diagnostics.NewCodegenError(a.LineNo, "cannot assign %s to Reactive variable %q", valType, a.Name)
		}
		cb.StoreRef(slot)
	default:
		return diagnostics.NewCodegenError(a.LineNo, "variable %q of type %s is not assignable", a.Name, typ)
	}
	return nil
}

// --- Expression statements ---

func (e *Emitter) emitExpressionStmt(cb *classfile.CodeBuilder, s *ast.ExpressionStmt) error {
	if call, ok := s.Expr.(*ast.Call); ok && call.Name == "setValue" {
		return e.emitSetValue(cb, call)
	}
	typ, err := e.emitExpr(cb, s.Expr)
	if err != nil {
		return err
	}
	if typ != "" {
		cb.Pop()
	}
	return nil
}

// emitSetValue lowers the setValue(stream, int) built-in, recognized by
// name per spec.md §4.4. It is a statement, never an expression: no
// value is left on the stack.
func (e *Emitter) emitSetValue(cb *classfile.CodeBuilder, call *ast.Call) error {
	if len(call.Args) != 2 {
		return diagnostics.NewCodegenError(call.LineNo, "setValue expects 2 arguments, found %d", len(call.Args))
	}
	streamType, err := e.inferType(call.Args[0])
	if err != nil {
		return err
	}
	if streamType != "Stream" {
		return diagnostics.NewCodegenError(call.LineNo, "setValue's first argument must be a Stream, found %s", streamType)
	}
	valueType, err := e.inferType(call.Args[1])
	if err != nil {
		return err
	}
	if valueType != "int" {
		return diagnostics.NewCodegenError(call.LineNo, "setValue's second argument must be an int, found %s", valueType)
	}
	if _, err := e.emitExpr(cb, call.Args[0]); err != nil {
		return err
	}
	if _, err := e.emitExpr(cb, call.Args[1]); err != nil {
		return err
	}
	cb.InvokeStatic(classUtil, "setValue", "(L"+classStream+";I)V", 2, false)
	return nil
}

// --- Print ---

func (e *Emitter) emitPrint(cb *classfile.CodeBuilder, p *ast.Print) error {
	typ, err := e.inferType(p.Expr)
	if err != nil {
		return err
	}

	if typ == "Reactive" {
		if _, err := e.emitExpr(cb, p.Expr); err != nil {
			return err
		}
		cb.InvokeVirtual(classReactive, "getValue", "()L"+classInteger+";", 0, true)
		cb.InvokeStatic(classUtil, "printReactiveValue", "(L"+classInteger+";)V", 1, false)
		return nil
	}

	var descriptor string
	switch typ {
	case "int":
		descriptor = "(I)V"
	case "float":
		descriptor = "(F)V"
	case "string":
		descriptor = "(L" + classString + ";)V"
	case "Stream":
		descriptor = "(L" + classObject + ";)V"
	default:
		return diagnostics.NewCodegenError(p.LineNo, "unsupported type %q for print", typ)
	}

	cb.GetStatic(classSystem, "out", "L"+classPrintStream+";")
	if _, err := e.emitExpr(cb, p.Expr); err != nil {
		return err
	}
	cb.InvokeVirtual(classPrintStream, "println", descriptor, 1, false)
	return nil
}

// --- Control flow ---

func (e *Emitter) emitIf(cb *classfile.CodeBuilder, s *ast.If) error {
	condType, err := e.inferType(s.Cond)
	if err != nil {
		return err
	}
	if condType != "int" {
		return diagnostics.NewCodegenError(s.LineNo, "if condition must be int, found %s", condType)
	}
	elseLabel := cb.NewLabel()
	endLabel := cb.NewLabel()

	if _, err := e.emitExpr(cb, s.Cond); err != nil {
		return err
	}
	cb.IfEqZero(elseLabel)
	if err := e.emitStatement(cb, s.Then); err != nil {
		return err
	}
	cb.Goto(endLabel)
	cb.Bind(elseLabel)
	if s.Else != nil {
		if err := e.emitStatement(cb, s.Else); err != nil {
			return err
		}
	}
	cb.Bind(endLabel)
	return nil
}

func (e *Emitter) emitWhile(cb *classfile.CodeBuilder, s *ast.While) error {
	condType, err := e.inferType(s.Cond)
	if err != nil {
		return err
	}
	if condType != "int" {
		return diagnostics.NewCodegenError(s.LineNo, "while condition must be int, found %s", condType)
	}
	startLabel := cb.NewLabel()
	endLabel := cb.NewLabel()

	cb.Bind(startLabel)
	if _, err := e.emitExpr(cb, s.Cond); err != nil {
		return err
	}
	cb.IfEqZero(endLabel)
	if err := e.emitStatement(cb, s.Body); err != nil {
		return err
	}
	cb.Goto(startLabel)
	cb.Bind(endLabel)
	return nil
}

func (e *Emitter) emitFor(cb *classfile.CodeBuilder, s *ast.For) error {
	if s.Init != nil {
		if err := e.emitStatement(cb, s.Init); err != nil {
			return err
		}
	}

	startLabel := cb.NewLabel()
	endLabel := cb.NewLabel()
	cb.Bind(startLabel)

	if s.Cond != nil {
		condType, err := e.inferType(s.Cond)
		if err != nil {
			return err
		}
		if condType != "int" {
			return diagnostics.NewCodegenError(s.LineNo, "for condition must be int, found %s", condType)
		}
		if _, err := e.emitExpr(cb, s.Cond); err != nil {
			return err
		}
		cb.IfEqZero(endLabel)
	}

	if err := e.emitStatement(cb, s.Body); err != nil {
		return err
	}
	if s.Update != nil {
		if err := e.emitStatement(cb, s.Update); err != nil {
			return err
		}
	}
	cb.Goto(startLabel)
	cb.Bind(endLabel)
	return nil
}

// --- Return ---

func (e *Emitter) emitReturn(cb *classfile.CodeBuilder, s *ast.Return) error {
	if e.inMain() {
		if s.Expr != nil {
			typ, err := e.emitExpr(cb, s.Expr)
			if err != nil {
				return err
			}
			if typ != "" {
				cb.Pop()
			}
		}
		cb.VReturn()
		return nil
	}

	if s.Expr == nil {
		cb.PushInt(0)
		cb.IReturn()
		return nil
	}
	typ, err := e.emitExpr(cb, s.Expr)
	if err != nil {
		return err
	}
	switch typ {
	case "int":
		// already an int
	case "float":
		cb.F2I()
	default:
		return diagnostics.NewCodegenError(s.LineNo, "function must return a numeric value, found %s", typ)
	}
	cb.IReturn()
	return nil
}
