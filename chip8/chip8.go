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

// Package chip8 implements a CHIP-8 virtual machine. The machine executes one
// instruction per Step call and decrements its timers on TickTimers, leaving
// the pacing of both to the host. Keyboard state, the display buffer and the
// timer counters are exposed for host collaborators; the package itself
// performs no I/O.
package chip8

import (
	"sync/atomic"
)

const (
	MemorySize    int = 4096
	RegisterCount int = 16
	KeyCount      int = 16
	StackDepth    int = 16

	FontStartAddress    uint16 = 0x050
	ProgramStartAddress uint16 = 0x200
	LastAddress         uint16 = 0xFFF

	// MaxProgramSize is the largest ROM that fits between the program start
	// address and the end of memory.
	MaxProgramSize int = MemorySize - int(ProgramStartAddress)

	CarryFlag uint8 = 0xF

	Width  int = 64
	Height int = 32
	Area   int = Width * Height
)

const fontSymbolSize = 5

var fontSet = []byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// State identifies the run state of a Machine.
type State uint8

const (
	// Running executes one instruction per Step.
	Running State = iota
	// WaitingForKey is entered by FX0A; Step polls the keypad instead of
	// fetching until a key press arrives.
	WaitingForKey
	// Halted is terminal. It is reached on any fault or an external Halt.
	Halted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case WaitingForKey:
		return "waiting for key"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// Machine is a complete CHIP-8 virtual machine. The key state and the stop
// request may be written from other goroutines; everything else is owned by
// the goroutine calling Step and TickTimers.
type Machine struct {
	memory   [MemorySize]byte
	v        [RegisterCount]byte
	stack    [StackDepth]uint16
	sp       uint8
	pc       uint16
	i        uint16
	delay    uint8
	sound    uint8
	display  [Area]byte
	keyState [KeyCount]atomic.Bool
	quirks   Quirks

	state  State
	stop   atomic.Bool
	err    error
	opAddr uint16

	waitReg  uint16
	waitSeen [KeyCount]bool
}

// New returns a machine with the font set loaded and the program counter at
// the program start address. The quirk set is fixed for the machine lifetime.
func New(quirks Quirks) *Machine {
	m := &Machine{quirks: quirks}
	m.Reset()
	return m
}

// Reset returns the machine to its power-on state, keeping the quirk set.
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}
	m.v = [RegisterCount]byte{}
	m.stack = [StackDepth]uint16{}
	m.sp = 0
	m.pc = ProgramStartAddress
	m.i = 0
	m.delay = 0
	m.sound = 0
	m.display = [Area]byte{}
	for i := range m.keyState {
		m.keyState[i].Store(false)
	}
	m.state = Running
	m.stop.Store(false)
	m.err = nil
	m.opAddr = 0
	m.waitReg = 0
	m.waitSeen = [KeyCount]bool{}

	copy(m.memory[FontStartAddress:], fontSet)
}

// Load copies the ROM verbatim to the program start address. Program memory
// is cleared first so a reload leaves no bytes of a previous ROM behind.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MaxProgramSize {
		return &LoadError{Size: len(rom)}
	}
	clear(m.memory[ProgramStartAddress:])
	copy(m.memory[ProgramStartAddress:], rom)
	m.pc = ProgramStartAddress
	return nil
}

// Write copies src into memory starting at addr. The write is rejected as a
// whole if any byte would land outside the address space.
func (m *Machine) Write(addr uint16, src []byte) error {
	if err := m.checkRange(addr, len(src)); err != nil {
		return err
	}
	copy(m.memory[addr:], src)
	return nil
}

// Read copies memory starting at addr into dst. The read is rejected as a
// whole if any byte lies outside the address space.
func (m *Machine) Read(addr uint16, dst []byte) error {
	if err := m.checkRange(addr, len(dst)); err != nil {
		return err
	}
	copy(dst, m.memory[addr:])
	return nil
}

func (m *Machine) checkRange(addr uint16, n int) error {
	if int(addr)+n <= MemorySize {
		return nil
	}
	bad := addr
	if addr <= LastAddress {
		bad = LastAddress + 1
	}
	return m.addressError(bad)
}

func (m *Machine) addressError(addr uint16) error {
	return &AddressError{Address: addr, PC: m.opAddr, Registers: m.v}
}

// SetKey records the pressed state of a keypad key. Safe to call from the
// input collaborator's goroutine.
func (m *Machine) SetKey(key uint8, pressed bool) {
	m.keyState[key&0x0F].Store(pressed)
}

// Display returns a snapshot of the 64x32 framebuffer, one byte per pixel in
// row-major order, nonzero for a lit pixel.
func (m *Machine) Display() [Area]byte {
	return m.display
}

// DelayTimer returns the current delay timer value.
func (m *Machine) DelayTimer() uint8 {
	return m.delay
}

// SoundTimer returns the current sound timer value. A tone should play while
// it is nonzero.
func (m *Machine) SoundTimer() uint8 {
	return m.sound
}

// Register returns the value of general purpose register Vx.
func (m *Machine) Register(x uint8) uint8 {
	return m.v[x&0x0F]
}

// Registers returns a snapshot of V0 through VF.
func (m *Machine) Registers() [RegisterCount]byte {
	return m.v
}

// Index returns the index register.
func (m *Machine) Index() uint16 {
	return m.i
}

// ProgramCounter returns the program counter.
func (m *Machine) ProgramCounter() uint16 {
	return m.pc
}

// StackSize returns the number of return addresses on the call stack.
func (m *Machine) StackSize() int {
	return int(m.sp)
}

// State returns the current run state.
func (m *Machine) State() State {
	return m.state
}

// Err returns the fault that halted the machine, or nil.
func (m *Machine) Err() error {
	return m.err
}

// Halt requests a stop. The machine transitions to the terminal Halted state
// at the next cycle boundary; already committed state is preserved and no
// further cycles execute. Safe to call from another goroutine.
func (m *Machine) Halt() {
	m.stop.Store(true)
}

// TickTimers decrements the delay and sound timers toward zero. The host calls
// it on a fixed 60hz cadence, independent of the Step rate.
func (m *Machine) TickTimers() {
	if m.delay > 0 {
		m.delay--
	}
	if m.sound > 0 {
		m.sound--
	}
}

// Step executes one machine cycle: fetch, decode, execute. While waiting for a
// key it polls the keypad instead. Any fault halts the machine and is returned;
// once halted, Step keeps returning the fault without executing.
func (m *Machine) Step() error {
	if m.stop.Load() {
		m.state = Halted
	}

	switch m.state {
	case Halted:
		return m.err
	case WaitingForKey:
		m.pollWaitedKey()
		return nil
	}

	m.opAddr = m.pc
	op, err := m.fetch()
	if err != nil {
		return m.fail(err)
	}
	m.pc += 2

	if err := m.execute(op); err != nil {
		return m.fail(err)
	}
	return nil
}

func (m *Machine) fetch() (Opcode, error) {
	var buf [2]byte
	if err := m.Read(m.pc, buf[:]); err != nil {
		return 0, err
	}

	// An opcode is a 16bit big-endian value, two contiguous bytes in memory
	// starting at the program counter.
	high := uint16(buf[0])
	low := uint16(buf[1])
	return Opcode((high << 8) | low), nil
}

func (m *Machine) fail(err error) error {
	m.state = Halted
	m.err = err
	return err
}

// pollWaitedKey completes a pending FX0A. Only a key that transitions to
// pressed while waiting satisfies the wait; keys held since the instruction
// executed do not count until released.
func (m *Machine) pollWaitedKey() {
	for i := range m.waitSeen {
		pressed := m.keyState[i].Load()
		if !pressed {
			m.waitSeen[i] = false
			continue
		}
		if m.waitSeen[i] {
			continue
		}
		m.v[m.waitReg] = uint8(i)
		m.pc += 2
		m.state = Running
		return
	}
}
