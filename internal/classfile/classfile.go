package classfile

import (
	"bytes"
	"encoding/binary"
	"io"
)

const (
	magic          = 0xCAFEBABE
	majorVersion52 = 52 // Java 8, per spec.md §6
	accPublic      = 0x0001
	accStatic      = 0x0008
	accSuper       = 0x0020
)

// Method is one compiled method: the constructor, main, or a user function.
// Code is the resolved instruction stream from a CodeBuilder.
type Method struct {
	Name       string
	Descriptor string
	Static     bool
	Code       []byte
	MaxStack   int
	MaxLocals  int
}

// ClassFile is the top-level artifact the emitter produces: one class,
// its constant pool, and its methods. No fields, no interfaces, no debug
// attributes — per spec.md §1/§4.4 the compiler emits no debug metadata.
type ClassFile struct {
	Pool       *ConstantPool
	ThisClass  string
	SuperClass string
	Methods    []*Method
}

// New creates an empty class file extending java/lang/Object.
func New(thisClass string) *ClassFile {
	return &ClassFile{
		Pool:       NewConstantPool(),
		ThisClass:  thisClass,
		SuperClass: "java/lang/Object",
	}
}

// AddMethod registers a compiled method.
func (cf *ClassFile) AddMethod(m *Method) {
	cf.Methods = append(cf.Methods, m)
}

// Write serializes the class file in the real JVM binary layout. Given
// the same ClassFile contents, Write is byte-for-byte deterministic — the
// constant pool and method list are both insertion-ordered, never a Go
// map iterated directly (see spec.md §8's determinism property).
func (cf *ClassFile) Write(w io.Writer) error {
	var buf bytes.Buffer

	binary.Write(&buf, binary.BigEndian, uint32(magic))
	binary.Write(&buf, binary.BigEndian, uint16(0)) // minor version
	binary.Write(&buf, binary.BigEndian, uint16(majorVersion52))

	thisIdx := cf.Pool.Class(cf.ThisClass)
	superIdx := cf.Pool.Class(cf.SuperClass)

	type encodedMethod struct {
		accessFlags    uint16
		nameIdx        uint16
		descIdx        uint16
		codeAttrNameIdx uint16
		maxStack       uint16
		maxLocals      uint16
		code           []byte
	}
	encoded := make([]encodedMethod, len(cf.Methods))
	for i, m := range cf.Methods {
		access := uint16(accPublic)
		if m.Static {
			access |= accStatic
		}
		encoded[i] = encodedMethod{
			accessFlags:     access,
			nameIdx:         cf.Pool.Utf8(m.Name),
			descIdx:         cf.Pool.Utf8(m.Descriptor),
			codeAttrNameIdx: cf.Pool.Utf8("Code"),
			maxStack:        uint16(m.MaxStack),
			maxLocals:       uint16(m.MaxLocals),
			code:            m.Code,
		}
	}

	// Every Utf8/Class/etc. entry the method table needs has now been
	// interned (thisIdx/superIdx above, and nameIdx/descIdx/Code in the
	// encoded[] loop), so the pool is complete and can be serialized.
	cf.Pool.encode(&buf)

	binary.Write(&buf, binary.BigEndian, uint16(accPublic|accSuper))
	binary.Write(&buf, binary.BigEndian, thisIdx)
	binary.Write(&buf, binary.BigEndian, superIdx)
	binary.Write(&buf, binary.BigEndian, uint16(0)) // interfaces_count
	binary.Write(&buf, binary.BigEndian, uint16(0)) // fields_count

	binary.Write(&buf, binary.BigEndian, uint16(len(encoded)))
	for _, m := range encoded {
		binary.Write(&buf, binary.BigEndian, m.accessFlags)
		binary.Write(&buf, binary.BigEndian, m.nameIdx)
		binary.Write(&buf, binary.BigEndian, m.descIdx)
		binary.Write(&buf, binary.BigEndian, uint16(1)) // attributes_count: just Code

		codeAttrLen := 2 + 2 + 4 + len(m.code) + 2 + 2 // max_stack+max_locals+code_length+code+exc_table_len+attrs_count
		binary.Write(&buf, binary.BigEndian, m.codeAttrNameIdx)
		binary.Write(&buf, binary.BigEndian, uint32(codeAttrLen))
		binary.Write(&buf, binary.BigEndian, m.maxStack)
		binary.Write(&buf, binary.BigEndian, m.maxLocals)
		binary.Write(&buf, binary.BigEndian, uint32(len(m.code)))
		buf.Write(m.code)
		binary.Write(&buf, binary.BigEndian, uint16(0)) // exception_table_length
		binary.Write(&buf, binary.BigEndian, uint16(0)) // attributes_count (no LineNumberTable)
	}

	binary.Write(&buf, binary.BigEndian, uint16(0)) // class attributes_count

	_, err := w.Write(buf.Bytes())
	return err
}
