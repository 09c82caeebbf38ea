package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Constant pool tags, matching the real JVM class-file format.
const (
	tagUtf8        = 1
	tagInteger     = 3
	tagFloat       = 4
	tagClass       = 7
	tagString      = 8
	tagFieldref    = 9
	tagMethodref   = 10
	tagNameAndType = 12
)

type cpEntry struct {
	tag  byte
	data []byte // pre-encoded entry body (after the tag byte)
}

// ConstantPool is the deduplicated, insertion-ordered constant pool of a
// class file. Index 0 is reserved (unused) per the JVM format; the first
// real entry is index 1. Deduplication by value plus stable insertion
// order keeps emission deterministic: two compiles of the same optimized
// AST produce the same pool in the same order (see spec.md §8).
type ConstantPool struct {
	entries []cpEntry
	byKey   map[string]uint16
}

// NewConstantPool returns an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{byKey: make(map[string]uint16)}
}

func (cp *ConstantPool) add(key string, tag byte, data []byte) uint16 {
	if idx, ok := cp.byKey[key]; ok {
		return idx
	}
	cp.entries = append(cp.entries, cpEntry{tag: tag, data: data})
	idx := uint16(len(cp.entries)) // 1-based
	cp.byKey[key] = idx
	return idx
}

// Utf8 interns a UTF-8 constant and returns its pool index.
func (cp *ConstantPool) Utf8(s string) uint16 {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
	return cp.add("utf8:"+s, tagUtf8, buf.Bytes())
}

// Class interns a CONSTANT_Class entry naming the given class (Utf8
// internal name) and returns its pool index.
func (cp *ConstantPool) Class(name string) uint16 {
	nameIdx := cp.Utf8(name)
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, nameIdx)
	return cp.add("class:"+name, tagClass, buf.Bytes())
}

// NameAndType interns a CONSTANT_NameAndType entry.
func (cp *ConstantPool) NameAndType(name, descriptor string) uint16 {
	nameIdx := cp.Utf8(name)
	descIdx := cp.Utf8(descriptor)
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, nameIdx)
	binary.Write(&buf, binary.BigEndian, descIdx)
	return cp.add("nat:"+name+":"+descriptor, tagNameAndType, buf.Bytes())
}

// Fieldref interns a CONSTANT_Fieldref entry for className.fieldName:descriptor.
func (cp *ConstantPool) Fieldref(className, fieldName, descriptor string) uint16 {
	classIdx := cp.Class(className)
	natIdx := cp.NameAndType(fieldName, descriptor)
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, classIdx)
	binary.Write(&buf, binary.BigEndian, natIdx)
	return cp.add("fieldref:"+className+"."+fieldName+":"+descriptor, tagFieldref, buf.Bytes())
}

// Methodref interns a CONSTANT_Methodref entry for
// className.methodName:descriptor.
func (cp *ConstantPool) Methodref(className, methodName, descriptor string) uint16 {
	classIdx := cp.Class(className)
	natIdx := cp.NameAndType(methodName, descriptor)
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, classIdx)
	binary.Write(&buf, binary.BigEndian, natIdx)
	return cp.add("methodref:"+className+"."+methodName+":"+descriptor, tagMethodref, buf.Bytes())
}

// Integer interns a CONSTANT_Integer entry.
func (cp *ConstantPool) Integer(v int32) uint16 {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, v)
	return cp.add(fmt.Sprintf("int:%d", v), tagInteger, buf.Bytes())
}

// Float interns a CONSTANT_Float entry.
func (cp *ConstantPool) Float(v float32) uint16 {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, math.Float32bits(v))
	return cp.add(fmt.Sprintf("float:%d", math.Float32bits(v)), tagFloat, buf.Bytes())
}

// String interns a CONSTANT_String entry referencing a Utf8 constant.
func (cp *ConstantPool) String(s string) uint16 {
	utf8Idx := cp.Utf8(s)
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, utf8Idx)
	return cp.add("string:"+s, tagString, buf.Bytes())
}

// encode writes the constant_pool_count and every entry to buf.
func (cp *ConstantPool) encode(buf *bytes.Buffer) {
	binary.Write(buf, binary.BigEndian, uint16(len(cp.entries)+1))
	for _, e := range cp.entries {
		buf.WriteByte(e.tag)
		buf.Write(e.data)
	}
}
