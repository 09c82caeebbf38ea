package classfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteIsDeterministic(t *testing.T) {
	build := func() *ClassFile {
		cf := New("Program")
		pool := cf.Pool
		cb := NewCodeBuilder(pool, 1)
		cb.PushInt(2)
		cb.PushInt(3)
		cb.IAdd()
		cb.StoreInt(0)
		cb.VReturn()
		cf.AddMethod(&Method{
			Name:       "main",
			Descriptor: "([Ljava/lang/String;)V",
			Static:     true,
			Code:       cb.Resolve(),
			MaxStack:   cb.MaxStack(),
			MaxLocals:  cb.MaxLocals(),
		})
		return cf
	}

	var buf1, buf2 bytes.Buffer
	require.NoError(t, build().Write(&buf1))
	require.NoError(t, build().Write(&buf2))
	assert.Equal(t, buf1.Bytes(), buf2.Bytes())
}

func TestWriteStartsWithMagic(t *testing.T) {
	cf := New("Program")
	cf.AddMethod(&Method{Name: "main", Descriptor: "()V", Static: true, Code: []byte{byte(OpReturn)}, MaxStack: 0, MaxLocals: 0})

	var buf bytes.Buffer
	require.NoError(t, cf.Write(&buf))

	b := buf.Bytes()
	require.GreaterOrEqual(t, len(b), 8)
	assert.Equal(t, []byte{0xCA, 0xFE, 0xBA, 0xBE}, b[0:4])
	assert.Equal(t, []byte{0x00, 0x00}, b[4:6]) // minor version
	assert.Equal(t, []byte{0x00, 0x34}, b[6:8]) // major version 52
}

func TestConstantPoolDeduplicates(t *testing.T) {
	cp := NewConstantPool()
	i1 := cp.Utf8("hello")
	i2 := cp.Utf8("hello")
	i3 := cp.Utf8("world")
	assert.Equal(t, i1, i2)
	assert.NotEqual(t, i1, i3)

	c1 := cp.Class("Program")
	c2 := cp.Class("Program")
	assert.Equal(t, c1, c2)
}

func TestCodeBuilderPatchesForwardBranch(t *testing.T) {
	cp := NewConstantPool()
	cb := NewCodeBuilder(cp, 0)
	end := cb.NewLabel()
	cb.PushInt(0)
	cb.IfEqZero(end)
	cb.PushInt(1)
	cb.Pop()
	cb.Bind(end)
	cb.VReturn()

	code := cb.Resolve()
	// ifeq opcode at offset 1 (after the one-byte iconst_0), operand should
	// point past the skipped iconst_1/pop pair to the return at the bound
	// label: offset 6, i.e. +5 relative to the ifeq.
	require.True(t, len(code) >= 5)
	assert.Equal(t, byte(OpIfeq), code[1])
	assert.Equal(t, []byte{0x00, 0x05}, code[2:4])
}

func TestDisassembleRoundTripsKnownOpcodes(t *testing.T) {
	cp := NewConstantPool()
	cb := NewCodeBuilder(cp, 1)
	cb.PushInt(42)
	cb.StoreInt(0)
	cb.LoadInt(0)
	cb.VReturn()

	lines := Disassemble(cb.Resolve())
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "bipush")
}
