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
	"fmt"
)

// Opcode is a 16bit big-endian CHIP-8 instruction word.
type Opcode uint16

// kind returns the first nibble, selecting the operation family.
func (o Opcode) kind() uint16 {
	return uint16(o) >> 12
}

// x returns the second nibble, the X register index.
func (o Opcode) x() uint16 {
	return uint16(o&0x0F00) >> 8
}

// y returns the third nibble, the Y register index.
func (o Opcode) y() uint16 {
	return uint16(o&0x00F0) >> 4
}

// n returns the fourth nibble.
func (o Opcode) n() uint16 {
	return uint16(o & 0x000F)
}

// nn returns the low byte, an immediate constant.
func (o Opcode) nn() uint16 {
	return uint16(o & 0x00FF)
}

// nnn returns the low 12 bits, a memory address.
func (o Opcode) nnn() uint16 {
	return uint16(o & 0x0FFF)
}

func (o Opcode) String() string {
	return fmt.Sprintf("0x%04X", uint16(o))
}
