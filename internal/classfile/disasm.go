package classfile

import "fmt"

// opNames is used only by Disassemble (a debugging aid, see
// cmd/cesium's --disasm flag); it is not part of the serialized format.
var opNames = map[Op]string{
	OpAconstNull: "aconst_null", OpIconstM1: "iconst_m1",
	OpIconst0: "iconst_0", OpIconst1: "iconst_1", OpIconst2: "iconst_2",
	OpIconst3: "iconst_3", OpIconst4: "iconst_4", OpIconst5: "iconst_5",
	OpFconst0: "fconst_0", OpFconst1: "fconst_1", OpFconst2: "fconst_2",
	OpBipush: "bipush", OpSipush: "sipush", OpLdc: "ldc", OpLdcW: "ldc_w",
	OpIload: "iload", OpFload: "fload", OpAload: "aload",
	OpIload0: "iload_0", OpFload0: "fload_0", OpAload0: "aload_0",
	OpIload0 + 1: "iload_1", OpIload0 + 2: "iload_2", OpIload0 + 3: "iload_3",
	OpFload0 + 1: "fload_1", OpFload0 + 2: "fload_2", OpFload0 + 3: "fload_3",
	OpAload0 + 1: "aload_1", OpAload0 + 2: "aload_2", OpAload0 + 3: "aload_3",
	OpIstore: "istore", OpFstore: "fstore", OpAstore: "astore",
	OpIstore0: "istore_0", OpFstore0: "fstore_0", OpAstore0: "astore_0",
	OpIstore0 + 1: "istore_1", OpIstore0 + 2: "istore_2", OpIstore0 + 3: "istore_3",
	OpFstore0 + 1: "fstore_1", OpFstore0 + 2: "fstore_2", OpFstore0 + 3: "fstore_3",
	OpAstore0 + 1: "astore_1", OpAstore0 + 2: "astore_2", OpAstore0 + 3: "astore_3",
	OpPop: "pop", OpDup: "dup",
	OpIadd: "iadd", OpFadd: "fadd", OpIsub: "isub", OpFsub: "fsub",
	OpImul: "imul", OpFmul: "fmul", OpIdiv: "idiv", OpFdiv: "fdiv",
	OpIneg: "ineg", OpFneg: "fneg", OpI2f: "i2f", OpF2i: "f2i",
	OpFcmpl: "fcmpl", OpFcmpg: "fcmpg",
	OpIfeq: "ifeq", OpIfne: "ifne", OpIflt: "iflt", OpIfge: "ifge",
	OpIfgt: "ifgt", OpIfle: "ifle",
	OpIfIcmpeq: "if_icmpeq", OpIfIcmpne: "if_icmpne", OpIfIcmplt: "if_icmplt",
	OpIfIcmpge: "if_icmpge", OpIfIcmpgt: "if_icmpgt", OpIfIcmple: "if_icmple",
	OpGoto: "goto",
	OpIreturn: "ireturn", OpFreturn: "freturn", OpAreturn: "areturn", OpReturn: "return",
	OpGetstatic: "getstatic", OpInvokevirtual: "invokevirtual",
	OpInvokespecial: "invokespecial", OpInvokestatic: "invokestatic", OpNew: "new",
}

// operandWidth gives the number of operand bytes following each opcode
// that Disassemble needs to step over (0, 1, or 2).
func operandWidth(op Op) int {
	switch op {
	case OpBipush, OpLdc, OpIload, OpFload, OpAload, OpIstore, OpFstore, OpAstore:
		return 1
	case OpSipush, OpLdcW, OpIfeq, OpIfne, OpIflt, OpIfge, OpIfgt, OpIfle,
		OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple,
		OpGoto, OpGetstatic, OpInvokevirtual, OpInvokespecial, OpInvokestatic, OpNew:
		return 2
	default:
		return 0
	}
}

// Disassemble renders a method's resolved code bytes as one
// "offset: mnemonic operand" line per instruction. It is purely a
// debugging aid (see SPEC_FULL.md §4) and is not used by Write.
func Disassemble(code []byte) []string {
	var lines []string
	i := 0
	for i < len(code) {
		op := Op(code[i])
		name, ok := opNames[op]
		if !ok {
			name = fmt.Sprintf("unknown(0x%02x)", byte(op))
		}
		width := operandWidth(op)
		var operand string
		switch width {
		case 1:
			if i+1 < len(code) {
				operand = fmt.Sprintf(" %d", code[i+1])
			}
		case 2:
			if i+2 < len(code) {
				operand = fmt.Sprintf(" %d", int(int16(uint16(code[i+1])<<8|uint16(code[i+2]))))
			}
		}
		lines = append(lines, fmt.Sprintf("%4d: %s%s", i, name, operand))
		i += 1 + width
	}
	return lines
}
