package classfile

// Label is a forward or backward branch target inside a single method's
// code. It generalizes the teacher's and emitter's "forward labels" idiom
// (spec.md §4.4) to a two-pass assembler: Bind records the label's byte
// offset once known, and every pending branch to it is patched in Resolve.
type Label struct {
	bound  bool
	offset int
}

type pendingBranch struct {
	instrOffset int // offset of the branch opcode; its 2-byte relative operand follows it
	label       *Label
}

// CodeBuilder assembles the Code attribute body of one method: its
// instruction bytes, constant-pool references it needs, and an operand
// stack depth high-water mark.
type CodeBuilder struct {
	pool         *ConstantPool
	code         []byte
	branches     []pendingBranch
	maxStack     int
	curStack     int
	maxLocals    int
}

// NewCodeBuilder starts a method body targeting the given constant pool,
// with room for numLocals local slots (parameters plus declared
// variables).
func NewCodeBuilder(pool *ConstantPool, numLocals int) *CodeBuilder {
	return &CodeBuilder{pool: pool, maxLocals: numLocals}
}

// NewLabel creates an unbound label.
func (c *CodeBuilder) NewLabel() *Label { return &Label{} }

// Bind fixes a label to the current instruction offset.
func (c *CodeBuilder) Bind(l *Label) {
	l.bound = true
	l.offset = len(c.code)
}

// track adjusts the operand-stack depth estimate and the high-water mark.
// Each CodeBuilder emitting method calls this with the net stack effect of
// the instruction it emits (+1 push, -1 pop, 0 neutral, etc).
func (c *CodeBuilder) track(delta int) {
	c.curStack += delta
	if c.curStack > c.maxStack {
		c.maxStack = c.curStack
	}
}

func (c *CodeBuilder) emit1(op Op) {
	c.code = append(c.code, byte(op))
}

func (c *CodeBuilder) emitU8(op Op, operand uint8) {
	c.code = append(c.code, byte(op), operand)
}

func (c *CodeBuilder) emitU16(op Op, operand uint16) {
	c.code = append(c.code, byte(op), byte(operand>>8), byte(operand))
}

// --- Stack-neutral / constant-pushing instructions ---

// PushInt pushes an int32 constant, choosing iconst/bipush/sipush/ldc by
// magnitude the way javac does.
func (c *CodeBuilder) PushInt(v int32) {
	switch {
	case v >= -1 && v <= 5:
		c.emit1(OpIconstM1 + Op(v+1))
	case v >= -128 && v <= 127:
		c.emitU8(OpBipush, uint8(int8(v)))
	case v >= -32768 && v <= 32767:
		c.emitU16(OpSipush, uint16(int16(v)))
	default:
		idx := c.pool.Integer(v)
		c.emitLdc(idx)
	}
	c.track(1)
}

// PushFloat pushes a float32 constant.
func (c *CodeBuilder) PushFloat(v float32) {
	switch v {
	case 0:
		c.emit1(OpFconst0)
	case 1:
		c.emit1(OpFconst1)
	case 2:
		c.emit1(OpFconst2)
	default:
		idx := c.pool.Float(v)
		c.emitLdc(idx)
	}
	c.track(1)
}

// PushString pushes a CONSTANT_String reference.
func (c *CodeBuilder) PushString(s string) {
	idx := c.pool.String(s)
	c.emitLdc(idx)
	c.track(1)
}

func (c *CodeBuilder) emitLdc(poolIdx uint16) {
	if poolIdx <= 0xff {
		c.emitU8(OpLdc, uint8(poolIdx))
		return
	}
	// ldc_w (wide form) — operand is a direct 2-byte pool index.
	c.code = append(c.code, byte(OpLdcW), byte(poolIdx>>8), byte(poolIdx))
}

// PushNull pushes the null reference.
func (c *CodeBuilder) PushNull() {
	c.emit1(OpAconstNull)
	c.track(1)
}

// --- Locals ---

func (c *CodeBuilder) LoadInt(slot int) {
	if op, short := iloadOp(slot); short {
		c.emit1(op)
	} else {
		c.emitU8(OpIload, uint8(slot))
	}
	c.track(1)
}

func (c *CodeBuilder) LoadFloat(slot int) {
	if op, short := floadOp(slot); short {
		c.emit1(op)
	} else {
		c.emitU8(OpFload, uint8(slot))
	}
	c.track(1)
}

func (c *CodeBuilder) LoadRef(slot int) {
	if op, short := aloadOp(slot); short {
		c.emit1(op)
	} else {
		c.emitU8(OpAload, uint8(slot))
	}
	c.track(1)
}

func (c *CodeBuilder) StoreInt(slot int) {
	if op, short := istoreOp(slot); short {
		c.emit1(op)
	} else {
		c.emitU8(OpIstore, uint8(slot))
	}
	c.track(-1)
}

func (c *CodeBuilder) StoreFloat(slot int) {
	if op, short := fstoreOp(slot); short {
		c.emit1(op)
	} else {
		c.emitU8(OpFstore, uint8(slot))
	}
	c.track(-1)
}

func (c *CodeBuilder) StoreRef(slot int) {
	if op, short := astoreOp(slot); short {
		c.emit1(op)
	} else {
		c.emitU8(OpAstore, uint8(slot))
	}
	c.track(-1)
}

// --- Stack manipulation ---

func (c *CodeBuilder) Pop() {
	c.emit1(OpPop)
	c.track(-1)
}

func (c *CodeBuilder) Dup() {
	c.emit1(OpDup)
	c.track(1)
}

// --- Arithmetic ---

func (c *CodeBuilder) IAdd() { c.emit1(OpIadd); c.track(-1) }
func (c *CodeBuilder) FAdd() { c.emit1(OpFadd); c.track(-1) }
func (c *CodeBuilder) ISub() { c.emit1(OpIsub); c.track(-1) }
func (c *CodeBuilder) FSub() { c.emit1(OpFsub); c.track(-1) }
func (c *CodeBuilder) IMul() { c.emit1(OpImul); c.track(-1) }
func (c *CodeBuilder) FMul() { c.emit1(OpFmul); c.track(-1) }
func (c *CodeBuilder) IDiv() { c.emit1(OpIdiv); c.track(-1) }
func (c *CodeBuilder) FDiv() { c.emit1(OpFdiv); c.track(-1) }
func (c *CodeBuilder) INeg() { c.emit1(OpIneg) }
func (c *CodeBuilder) FNeg() { c.emit1(OpFneg) }

// I2F widens the int on top of stack to float (in place).
func (c *CodeBuilder) I2F() { c.emit1(OpI2f) }

// F2I narrows the float on top of stack to int (in place), used when a
// function body returns a float-typed expression through its int-by-fiat
// return slot (spec.md §4.4's "Call → int" rule).
func (c *CodeBuilder) F2I() { c.emit1(OpF2i) }

// FCmpG/FCmpL push -1/0/1 comparing two floats (g/l control NaN handling,
// matching javac's choice of fcmpg for < / <= and fcmpl for > / >=).
func (c *CodeBuilder) FCmpG() { c.emit1(OpFcmpg); c.track(-1) }
func (c *CodeBuilder) FCmpL() { c.emit1(OpFcmpl); c.track(-1) }

// --- Branches ---

// emitBranch appends a 3-byte branch instruction (opcode + 2-byte offset
// placeholder) and records it for patching once the label is bound.
func (c *CodeBuilder) emitBranch(op Op, l *Label, stackDelta int) {
	instrOffset := len(c.code)
	c.code = append(c.code, byte(op), 0, 0)
	c.branches = append(c.branches, pendingBranch{instrOffset: instrOffset, label: l})
	c.track(stackDelta)
}

// IfEqZero branches if the top-of-stack int is zero (used for the
// branch-on-zero idiom driving if/while/for conditions).
func (c *CodeBuilder) IfEqZero(l *Label) { c.emitBranch(OpIfeq, l, -1) }
func (c *CodeBuilder) IfNeZero(l *Label) { c.emitBranch(OpIfne, l, -1) }
func (c *CodeBuilder) IfLtZero(l *Label) { c.emitBranch(OpIflt, l, -1) }
func (c *CodeBuilder) IfGeZero(l *Label) { c.emitBranch(OpIfge, l, -1) }
func (c *CodeBuilder) IfGtZero(l *Label) { c.emitBranch(OpIfgt, l, -1) }
func (c *CodeBuilder) IfLeZero(l *Label) { c.emitBranch(OpIfle, l, -1) }

func (c *CodeBuilder) IfIcmp(op Op, l *Label) { c.emitBranch(op, l, -2) }

func (c *CodeBuilder) Goto(l *Label) { c.emitBranch(OpGoto, l, 0) }

// --- Invocation / object construction ---

func (c *CodeBuilder) New(className string) {
	idx := c.pool.Class(className)
	c.emitU16(OpNew, idx)
	c.track(1)
}

func (c *CodeBuilder) InvokeSpecial(className, method, descriptor string, argSlots int, hasReturn bool) {
	idx := c.pool.Methodref(className, method, descriptor)
	c.emitU16(OpInvokespecial, idx)
	delta := -argSlots - 1 // receiver + args consumed
	if hasReturn {
		delta++
	}
	c.track(delta)
}

func (c *CodeBuilder) InvokeVirtual(className, method, descriptor string, argSlots int, hasReturn bool) {
	idx := c.pool.Methodref(className, method, descriptor)
	c.emitU16(OpInvokevirtual, idx)
	delta := -argSlots - 1 // receiver + args consumed
	if hasReturn {
		delta++
	}
	c.track(delta)
}

func (c *CodeBuilder) InvokeStatic(className, method, descriptor string, argSlots int, hasReturn bool) {
	idx := c.pool.Methodref(className, method, descriptor)
	c.emitU16(OpInvokestatic, idx)
	delta := -argSlots
	if hasReturn {
		delta++
	}
	c.track(delta)
}

func (c *CodeBuilder) GetStatic(className, field, descriptor string) {
	idx := c.pool.Fieldref(className, field, descriptor)
	c.emitU16(OpGetstatic, idx)
	c.track(1)
}

// --- Returns ---

func (c *CodeBuilder) IReturn() { c.emit1(OpIreturn) }
func (c *CodeBuilder) VReturn() { c.emit1(OpReturn) }

// MaxStack and MaxLocals report the computed Code attribute header fields.
func (c *CodeBuilder) MaxStack() int  { return c.maxStack }
func (c *CodeBuilder) MaxLocals() int { return c.maxLocals }

// EnsureLocals raises MaxLocals if a slot beyond the current count was
// used (functions grow locals as the emitter allocates new variables).
func (c *CodeBuilder) EnsureLocals(n int) {
	if n > c.maxLocals {
		c.maxLocals = n
	}
}

// Resolve back-patches every pending branch's 2-byte relative offset and
// returns the final instruction bytes. Offsets are signed, big-endian,
// relative to the branch instruction's own offset, matching the real JVM
// format.
func (c *CodeBuilder) Resolve() []byte {
	for _, b := range c.branches {
		target := b.label.offset
		rel := int16(target - b.instrOffset)
		c.code[b.instrOffset+1] = byte(rel >> 8)
		c.code[b.instrOffset+2] = byte(rel)
	}
	return c.code
}
