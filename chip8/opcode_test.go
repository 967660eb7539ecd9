package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestOpcodeFields(t *testing.T) {
	op := Opcode(0xD7A5)

	assert.Equal(t, uint16(0xD), op.kind())
	assert.Equal(t, uint16(0x7), op.x())
	assert.Equal(t, uint16(0xA), op.y())
	assert.Equal(t, uint16(0x5), op.n())
	assert.Equal(t, uint16(0xA5), op.nn())
	assert.Equal(t, uint16(0x7A5), op.nnn())
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "0xD7A5", Opcode(0xD7A5).String())
	assert.Equal(t, "0x00E0", Opcode(0x00E0).String())
}
