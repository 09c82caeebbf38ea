// Package emitter lowers an optimized Cesium AST into a classfile.ClassFile.
// It generalizes the teacher's pkg/compiler (a flat symbol table mapping
// names to local slots, walked with a single compileExpression switch) to
// Cesium's typed scope frames, multi-method output, and JVM-shaped stack
// lowering for control flow, comparisons, and the reactive runtime calls
// described in spec.md §4.4.
package emitter

import (
	"github.com/cesium-lang/cesium/internal/ast"
	"github.com/cesium-lang/cesium/internal/classfile"
	"github.com/cesium-lang/cesium/internal/diagnostics"
)

// Runtime library class names the emitter links against by name (spec.md §6).
const (
	classStream      = "Stream"
	classReactive    = "Reactive"
	classReactiveOps = "ReactiveOps"
	classUtil        = "Util"
	classObject      = "java/lang/Object"
	classString      = "java/lang/String"
	classSystem      = "java/lang/System"
	classPrintStream = "java/io/PrintStream"
	classInteger     = "java/lang/Integer"
)

// frame is one method's scope: declared names to their slot index and
// static type. Cesium has no block scoping — an if/while/for body shares
// its enclosing method's frame (spec.md §4.4 "Scope & slots").
type frame struct {
	slots map[string]int
	types map[string]string
	next  int
}

func newFrame(reserved int) *frame {
	return &frame{slots: make(map[string]int), types: make(map[string]string), next: reserved}
}

func (f *frame) declare(name, typ string) int {
	slot := f.next
	f.slots[name] = slot
	f.types[name] = typ
	f.next++
	return slot
}

// funcSignature records a registered function's descriptor pieces, built
// in a pre-pass over top-level declarations so forward calls (a function
// calling one declared later in the source) resolve (spec.md §3's "name
// lookup at emit time, not by pointer").
type funcSignature struct {
	Descriptor string
	ParamTypes []string
}

// Emitter holds the state threaded through one Emit call: the constant
// pool, the function table, and the current method's frame.
type Emitter struct {
	className string
	pool      *classfile.ConstantPool
	functions map[string]funcSignature
	frames    []*frame
	mainFrame *frame
}

// Emit compiles an optimized program into a class file named className.
// Fails with *diagnostics.CodegenError on any of the conditions spec.md
// §4.4 names: undeclared variables, calls to undefined functions,
// unsupported types, or type-mismatched operands.
func Emit(prog *ast.Program, className string) (*classfile.ClassFile, error) {
	cf := classfile.New(className)
	e := &Emitter{className: className, pool: cf.Pool, functions: make(map[string]funcSignature)}

	cf.AddMethod(e.buildConstructor())

	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*ast.FuncDecl); ok {
			if err := e.registerFunction(fd); err != nil {
				return nil, err
			}
		}
	}

	mainMethod, err := e.emitMain(prog.Statements)
	if err != nil {
		return nil, err
	}
	cf.AddMethod(mainMethod)

	for _, stmt := range prog.Statements {
		if fd, ok := stmt.(*ast.FuncDecl); ok {
			m, err := e.emitFunction(fd)
			if err != nil {
				return nil, err
			}
			cf.AddMethod(m)
		}
	}

	return cf, nil
}

// buildConstructor emits the no-arg constructor every class file carries
// (spec.md §6's "containing a default constructor").
func (e *Emitter) buildConstructor() *classfile.Method {
	cb := classfile.NewCodeBuilder(e.pool, 1)
	cb.LoadRef(0)
	cb.InvokeSpecial(classObject, "<init>", "()V", 0, false)
	cb.VReturn()
	return &classfile.Method{
		Name:       "<init>",
		Descriptor: "()V",
		Static:     false,
		Code:       cb.Resolve(),
		MaxStack:   cb.MaxStack(),
		MaxLocals:  cb.MaxLocals(),
	}
}

func (e *Emitter) registerFunction(fd *ast.FuncDecl) error {
	if _, exists := e.functions[fd.Name]; exists {
		return diagnostics.NewCodegenError(fd.LineNo, "function %q redeclared", fd.Name)
	}
	paramTypes := make([]string, len(fd.Params))
	descriptor := "("
	for i, p := range fd.Params {
		frag, err := descriptorFragment(p.Type)
		if err != nil {
			return diagnostics.NewCodegenError(fd.LineNo, "parameter %q: %s", p.Name, err)
		}
		descriptor += frag
		paramTypes[i] = p.Type
	}
	descriptor += ")I"
	e.functions[fd.Name] = funcSignature{Descriptor: descriptor, ParamTypes: paramTypes}
	return nil
}

// descriptorFragment maps a Cesium type name to its VM descriptor piece,
// per spec.md §4.4's "Functions" rule (I, F, Ljava/lang/String;, or
// Ljava/lang/Object; for Stream/Reactive).
func descriptorFragment(typ string) (string, error) {
	switch typ {
	case "int":
		return "I", nil
	case "float":
		return "F", nil
	case "string":
		return "L" + classString + ";", nil
	case "Stream", "Reactive":
		return "L" + classObject + ";", nil
	default:
		return "", diagnostics.NewCodegenError(0, "unsupported type %q", typ)
	}
}

// startMethod pushes a new frame with the given reserved slot count,
// entering the "InMethod" state of spec.md §4.4's per-method state
// machine.
func (e *Emitter) startMethod(reserved int) *frame {
	f := newFrame(reserved)
	e.frames = append(e.frames, f)
	return f
}

// endMethod pops the current frame.
func (e *Emitter) endMethod() {
	e.frames = e.frames[:len(e.frames)-1]
}

func (e *Emitter) current() *frame {
	return e.frames[len(e.frames)-1]
}

func (e *Emitter) inMain() bool {
	return len(e.frames) > 0 && e.current() == e.mainFrame
}

// emitMain compiles every top-level statement except FuncDecls (which are
// compiled separately into their own methods) into main's body. Slot 0 is
// reserved for the program's String[] args per spec.md §4.4.
func (e *Emitter) emitMain(statements []ast.Statement) (*classfile.Method, error) {
	e.mainFrame = e.startMethod(1)
	defer e.endMethod()

	cb := classfile.NewCodeBuilder(e.pool, 1)
	for _, stmt := range statements {
		if _, ok := stmt.(*ast.FuncDecl); ok {
			continue
		}
		if err := e.emitStatement(cb, stmt); err != nil {
			return nil, err
		}
	}
	cb.VReturn()

	return &classfile.Method{
		Name:       "main",
		Descriptor: "([L" + classString + ";)V",
		Static:     true,
		Code:       cb.Resolve(),
		MaxStack:   cb.MaxStack(),
		MaxLocals:  cb.MaxLocals(),
	}, nil
}

// emitFunction compiles one user function into a public static method.
// Parameters occupy slots 0..n-1 (spec.md §4.4). The body always ends
// with an implicit "push int 0; return int" guard, whether or not an
// explicit return already executed.
func (e *Emitter) emitFunction(fd *ast.FuncDecl) (*classfile.Method, error) {
	f := e.startMethod(len(fd.Params))
	defer e.endMethod()

	for i, p := range fd.Params {
		f.slots[p.Name] = i
		f.types[p.Name] = p.Type
	}

	sig := e.functions[fd.Name]
	cb := classfile.NewCodeBuilder(e.pool, len(fd.Params))
	for _, stmt := range fd.Body.Statements {
		if err := e.emitStatement(cb, stmt); err != nil {
			return nil, err
		}
	}
	cb.PushInt(0)
	cb.IReturn()

	return &classfile.Method{
		Name:       fd.Name,
		Descriptor: sig.Descriptor,
		Static:     true,
		Code:       cb.Resolve(),
		MaxStack:   cb.MaxStack(),
		MaxLocals:  cb.MaxLocals(),
	}, nil
}

func isNumeric(typ string) bool {
	return typ == "int" || typ == "float"
}

func isReactiveLike(typ string) bool {
	return typ == "Stream" || typ == "Reactive"
}
