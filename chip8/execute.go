/*
 * Copyright 2026 Joshua Jones <joshua.jones.software@gmail.com>
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      www.apache.org
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package chip8

import (
	"math/rand/v2"
)

// execute dispatches a decoded opcode to its handler. The program counter has
// already been advanced past the instruction; jumps, skips, calls and returns
// override it.
func (m *Machine) execute(op Opcode) error {
	switch op.kind() {
	case 0x0:
		switch uint16(op) {
		case 0x00E0:
			m.clearScreen()
		case 0x00EE:
			return m.returnFromSubroutine()
		default:
			return m.unknownOpcode(op)
		}
	case 0x1:
		m.jumpToLocation(op.nnn())
	case 0x2:
		return m.callSubroutine(op.nnn())
	case 0x3:
		m.stepIfXEqualsNN(op.x(), op.nn())
	case 0x4:
		m.stepIfXNotEqualsNN(op.x(), op.nn())
	case 0x5:
		if op.n() != 0x0 {
			return m.unknownOpcode(op)
		}
		m.stepIfXEqualsY(op.x(), op.y())
	case 0x6:
		m.setXToNN(op.x(), op.nn())
	case 0x7:
		m.addNNToX(op.x(), op.nn())
	case 0x8:
		switch op.n() {
		case 0x0:
			m.setXToY(op.x(), op.y())
		case 0x1:
			m.orXY(op.x(), op.y())
		case 0x2:
			m.andXY(op.x(), op.y())
		case 0x3:
			m.xorXY(op.x(), op.y())
		case 0x4:
			m.addXY(op.x(), op.y())
		case 0x5:
			m.subtractYFromX(op.x(), op.y())
		case 0x6:
			m.shiftRightX(op.x(), op.y())
		case 0x7:
			m.subtractXFromY(op.x(), op.y())
		case 0xE:
			m.shiftLeftX(op.x(), op.y())
		default:
			return m.unknownOpcode(op)
		}
	case 0x9:
		if op.n() != 0x0 {
			return m.unknownOpcode(op)
		}
		m.stepIfXNotEqualsY(op.x(), op.y())
	case 0xA:
		m.setIToNNN(op.nnn())
	case 0xB:
		m.jumpWithOffset(op)
	case 0xC:
		m.setXToRandom(op.x(), op.nn())
	case 0xD:
		return m.drawSprite(op.x(), op.y(), op.n())
	case 0xE:
		switch op.nn() {
		case 0x9E:
			m.stepIfKeyDown(op.x())
		case 0xA1:
			m.stepIfKeyUp(op.x())
		default:
			return m.unknownOpcode(op)
		}
	case 0xF:
		switch op.nn() {
		case 0x07:
			m.setXToDelay(op.x())
		case 0x0A:
			m.pauseUntilKeyPressed(op.x())
		case 0x15:
			m.setDelayToX(op.x())
		case 0x18:
			m.setSoundToX(op.x())
		case 0x1E:
			m.addXToIndex(op.x())
		case 0x29:
			m.setIToSymbol(op.x())
		case 0x33:
			return m.binaryCodedDecimal(op.x())
		case 0x55:
			return m.setRegistersToMemory(op.x())
		case 0x65:
			return m.setMemoryToRegisters(op.x())
		default:
			return m.unknownOpcode(op)
		}
	}
	return nil
}

func (m *Machine) unknownOpcode(op Opcode) error {
	return &UnknownOpcodeError{Opcode: op, PC: m.opAddr, Registers: m.v}
}

func (m *Machine) clearScreen() {
	m.display = [Area]byte{}
}

func (m *Machine) callSubroutine(nnn uint16) error {
	if int(m.sp) >= len(m.stack) {
		return &StackError{Overflow: true, PC: m.opAddr, Registers: m.v}
	}
	m.stack[m.sp] = m.pc
	m.sp++
	m.pc = nnn
	return nil
}

func (m *Machine) returnFromSubroutine() error {
	if m.sp == 0 {
		return &StackError{PC: m.opAddr, Registers: m.v}
	}
	m.sp--
	m.pc = m.stack[m.sp]
	return nil
}

func (m *Machine) jumpToLocation(nnn uint16) {
	m.pc = nnn
}

func (m *Machine) jumpWithOffset(op Opcode) {
	offset := m.v[0x0]
	if m.quirks.JumpWithOffsetUsesVX {
		offset = m.v[op.x()]
	}
	m.pc = op.nnn() + uint16(offset)
}

func (m *Machine) stepIfXEqualsNN(x, nn uint16) {
	if m.v[x] == byte(nn) {
		m.pc += 2
	}
}

func (m *Machine) stepIfXNotEqualsNN(x, nn uint16) {
	if m.v[x] != byte(nn) {
		m.pc += 2
	}
}

func (m *Machine) stepIfXEqualsY(x, y uint16) {
	if m.v[x] == m.v[y] {
		m.pc += 2
	}
}

func (m *Machine) stepIfXNotEqualsY(x, y uint16) {
	if m.v[x] != m.v[y] {
		m.pc += 2
	}
}

func (m *Machine) setXToNN(x, nn uint16) {
	m.v[x] = byte(nn)
}

func (m *Machine) addNNToX(x, nn uint16) {
	m.v[x] += byte(nn)
}

func (m *Machine) setXToY(x, y uint16) {
	m.v[x] = m.v[y]
}

func (m *Machine) orXY(x, y uint16) {
	m.v[x] |= m.v[y]
}

func (m *Machine) andXY(x, y uint16) {
	m.v[x] &= m.v[y]
}

func (m *Machine) xorXY(x, y uint16) {
	m.v[x] ^= m.v[y]
}

// The arithmetic handlers assign VF last so that VX and VF overlapping still
// leaves the flag in VF.

func (m *Machine) addXY(x, y uint16) {
	sum := uint16(m.v[x]) + uint16(m.v[y])
	m.v[x] = byte(sum)

	var carry byte
	if sum > 0xFF {
		carry = 1
	}
	m.v[CarryFlag] = carry
}

func (m *Machine) subtractYFromX(x, y uint16) {
	// VF is 1 only when the subtraction does not borrow.
	var flag byte
	if m.v[x] >= m.v[y] {
		flag = 1
	}
	m.v[x] -= m.v[y]
	m.v[CarryFlag] = flag
}

func (m *Machine) subtractXFromY(x, y uint16) {
	var flag byte
	if m.v[y] >= m.v[x] {
		flag = 1
	}
	m.v[x] = m.v[y] - m.v[x]
	m.v[CarryFlag] = flag
}

func (m *Machine) shiftRightX(x, y uint16) {
	val := m.v[y]
	if m.quirks.BitshiftIgnoresVY {
		val = m.v[x]
	}
	m.v[x] = val >> 1
	m.v[CarryFlag] = val & 0x1
}

func (m *Machine) shiftLeftX(x, y uint16) {
	val := m.v[y]
	if m.quirks.BitshiftIgnoresVY {
		val = m.v[x]
	}
	m.v[x] = val << 1
	m.v[CarryFlag] = (val & 0x80) >> 7
}

func (m *Machine) setIToNNN(nnn uint16) {
	m.i = nnn
}

func (m *Machine) setXToRandom(x, nn uint16) {
	randomByte := byte(rand.Uint32N(256))
	m.v[x] = randomByte & byte(nn)
}

func (m *Machine) drawSprite(x, y, n uint16) error {
	var sprite [15]byte
	if err := m.Read(m.i, sprite[:n]); err != nil {
		return err
	}

	// Start coordinates wrap; pixels past the screen edge clip unless the
	// wrap quirk is set.
	startX := int(m.v[x]) % Width
	startY := int(m.v[y]) % Height

	m.v[CarryFlag] = 0

	for row, bits := range sprite[:n] {
		py := startY + row
		if py >= Height {
			if !m.quirks.WrapSprites {
				break
			}
			py %= Height
		}

		for col := range 8 {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := startX + col
			if px >= Width {
				if !m.quirks.WrapSprites {
					break
				}
				px %= Width
			}

			pixel := &m.display[py*Width+px]
			*pixel ^= 1
			if *pixel == 0 {
				m.v[CarryFlag] = 1
			}
		}
	}
	return nil
}

func (m *Machine) stepIfKeyDown(x uint16) {
	key := m.v[x] & 0x0F
	if m.keyState[key].Load() {
		m.pc += 2
	}
}

func (m *Machine) stepIfKeyUp(x uint16) {
	key := m.v[x] & 0x0F
	if !m.keyState[key].Load() {
		m.pc += 2
	}
}

// pauseUntilKeyPressed parks the machine in WaitingForKey. The program counter
// moves back onto this instruction; pollWaitedKey advances it once a key press
// is observed. Keys already held now must be released before they count.
func (m *Machine) pauseUntilKeyPressed(x uint16) {
	m.pc -= 2
	m.waitReg = x
	for i := range m.waitSeen {
		m.waitSeen[i] = m.keyState[i].Load()
	}
	m.state = WaitingForKey
}

func (m *Machine) setXToDelay(x uint16) {
	m.v[x] = m.delay
}

func (m *Machine) setDelayToX(x uint16) {
	m.delay = m.v[x]
}

func (m *Machine) setSoundToX(x uint16) {
	m.sound = m.v[x]
}

func (m *Machine) addXToIndex(x uint16) {
	m.i += uint16(m.v[x])
	if m.quirks.AddToIndexIgnoresOverflow {
		return
	}

	var flag byte
	if m.i > LastAddress {
		flag = 1
	}
	m.v[CarryFlag] = flag
}

func (m *Machine) setIToSymbol(x uint16) {
	digit := uint16(m.v[x] & 0x0F)
	m.i = FontStartAddress + digit*fontSymbolSize
}

func (m *Machine) binaryCodedDecimal(x uint16) error {
	// Double dabble: shift the value in bit by bit, adding 3 to any BCD
	// nibble that reached 5 before each shift so decimal carries propagate.
	var bcd uint32
	val := uint32(m.v[x])

	for i := range 8 {
		if bcd&0x00F >= 0x005 {
			bcd += 0x003
		}
		if bcd&0x0F0 >= 0x050 {
			bcd += 0x030
		}
		if bcd&0xF00 >= 0x500 {
			bcd += 0x300
		}
		bcd = bcd<<1 | (val>>(7-i))&1
	}

	digits := [3]byte{
		byte(bcd >> 8 & 0xF), // hundreds
		byte(bcd >> 4 & 0xF), // tens
		byte(bcd & 0xF),      // ones
	}
	return m.Write(m.i, digits[:])
}

func (m *Machine) setRegistersToMemory(x uint16) error {
	if err := m.Write(m.i, m.v[:x+1]); err != nil {
		return err
	}
	if m.quirks.StoreAndLoadIncrementIndex {
		m.i += x + 1
	}
	return nil
}

func (m *Machine) setMemoryToRegisters(x uint16) error {
	if err := m.Read(m.i, m.v[:x+1]); err != nil {
		return err
	}
	if m.quirks.StoreAndLoadIncrementIndex {
		m.i += x + 1
	}
	return nil
}
