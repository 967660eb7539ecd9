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

// LoadError reports a ROM that does not fit into program memory.
type LoadError struct {
	Size int
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rom size %d exceeds program memory of %d bytes", e.Size, MaxProgramSize)
}

// AddressError reports a memory access outside 0x000-0xFFF. PC and Registers
// capture the machine state at the faulting instruction.
type AddressError struct {
	Address   uint16
	PC        uint16
	Registers [RegisterCount]byte
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("memory access out of range: address 0x%04X at pc 0x%04X", e.Address, e.PC)
}

// StackError reports a call stack overflow or underflow.
type StackError struct {
	Overflow  bool
	PC        uint16
	Registers [RegisterCount]byte
}

func (e *StackError) Error() string {
	if e.Overflow {
		return fmt.Sprintf("stack overflow at pc 0x%04X", e.PC)
	}
	return fmt.Sprintf("stack underflow at pc 0x%04X", e.PC)
}

// UnknownOpcodeError reports an opcode with no matching instruction pattern.
type UnknownOpcodeError struct {
	Opcode    Opcode
	PC        uint16
	Registers [RegisterCount]byte
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode %s at pc 0x%04X", e.Opcode, e.PC)
}
