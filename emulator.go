// Package quirk8 hosts a CHIP-8 virtual machine behind a fyne window, wiring
// keyboard input, framebuffer rendering and the sound timer beep to the core
// in the chip8 package.
package quirk8

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/retroenv/retrogolib/log"

	"quirk8/chip8"
)

const (
	// DefaultCycleRate is the default CPU instruction rate in hz.
	DefaultCycleRate = 700

	timerRate time.Duration = time.Second / 60 // 60hz

	windowScale = 10
)

// Conventional mapping of the left side of a QWERTY keyboard onto the 4x4
// CHIP-8 keypad.
var keyMap = map[fyne.KeyName]uint8{
	fyne.Key1: 0x1, fyne.Key2: 0x2, fyne.Key3: 0x3, fyne.Key4: 0xC,
	fyne.KeyQ: 0x4, fyne.KeyW: 0x5, fyne.KeyE: 0x6, fyne.KeyR: 0xD,
	fyne.KeyA: 0x7, fyne.KeyS: 0x8, fyne.KeyD: 0x9, fyne.KeyF: 0xE,
	fyne.KeyZ: 0xA, fyne.KeyX: 0x0, fyne.KeyC: 0xB, fyne.KeyV: 0xF,
}

// Config carries the host-side settings for a run.
type Config struct {
	// CycleRate is the CPU instruction rate in hz; DefaultCycleRate if zero.
	CycleRate int

	Quirks chip8.Quirks
}

// Emulator drives a chip8.Machine from a fyne event loop.
type Emulator struct {
	machine *chip8.Machine
	beep    *Beep
	logger  *log.Logger
	cycle   time.Duration
}

// New returns an emulator ready to load and run a ROM.
func New(logger *log.Logger, cfg Config) *Emulator {
	rate := cfg.CycleRate
	if rate <= 0 {
		rate = DefaultCycleRate
	}

	return &Emulator{
		machine: chip8.New(cfg.Quirks),
		beep:    &Beep{logger: logger},
		logger:  logger,
		cycle:   time.Second / time.Duration(rate),
	}
}

// Machine returns the hosted virtual machine.
func (e *Emulator) Machine() *chip8.Machine {
	return e.machine
}

func (e *Emulator) onKeyDown(k *fyne.KeyEvent) {
	if hex, ok := keyMap[k.Name]; ok {
		e.machine.SetKey(hex, true)
	}
}

func (e *Emulator) onKeyUp(k *fyne.KeyEvent) {
	if hex, ok := keyMap[k.Name]; ok {
		e.machine.SetKey(hex, false)
	}
}

// Run loads the ROM, opens the window and executes until the machine halts or
// the window closes. A machine fault is logged and returned.
func (e *Emulator) Run(rom []byte) error {
	if err := e.machine.Load(rom); err != nil {
		return fmt.Errorf("loading rom: %w", err)
	}

	a := app.New()
	w := a.NewWindow("quirk8")

	buffer := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))

	screen := canvas.NewImageFromImage(buffer)
	screen.FillMode = canvas.ImageFillStretch  // scale the 64x32 grid to window size
	screen.ScaleMode = canvas.ImageScalePixels // keep hard pixel edges

	canv, ok := w.Canvas().(desktop.Canvas)
	if !ok {
		return errors.New("emulator cannot be run on mobile")
	}
	canv.SetOnKeyDown(e.onKeyDown)
	canv.SetOnKeyUp(e.onKeyUp)

	w.SetContent(screen)
	w.Resize(fyne.NewSize(float32(chip8.Width*windowScale), float32(chip8.Height*windowScale)))

	var wg sync.WaitGroup
	wg.Go(func() {
		e.loop(buffer, screen)
	})

	w.ShowAndRun()
	e.machine.Halt()
	wg.Wait()

	return e.machine.Err()
}

// loop is the cycle driver: instructions at the configured rate, timer
// decrements, rendering and beep control on the 60hz cadence.
func (e *Emulator) loop(buffer *image.RGBA, screen *canvas.Image) {
	cpuTicker := time.NewTicker(e.cycle)
	defer cpuTicker.Stop()

	lastTimerTick := time.Now()

	for range cpuTicker.C {
		if e.machine.State() == chip8.Halted {
			break
		}

		if err := e.machine.Step(); err != nil {
			e.reportFault(err)
			break
		}

		if time.Since(lastTimerTick) >= timerRate {
			e.machine.TickTimers()
			lastTimerTick = time.Now()

			e.render(buffer, screen)
			e.updateBeep()
		}
	}

	e.beep.Stop()
}

func (e *Emulator) render(buffer *image.RGBA, screen *canvas.Image) {
	display := e.machine.Display()
	for i, val := range display {
		c := color.Black
		if val != 0 {
			c = color.White
		}
		buffer.Set(i%chip8.Width, i/chip8.Width, c)
	}

	fyne.Do(screen.Refresh)
}

func (e *Emulator) updateBeep() {
	if e.machine.SoundTimer() > 0 {
		if err := e.beep.Start(context.Background()); err != nil {
			e.logger.Error("starting beep", log.Err(err))
		}
		return
	}
	e.beep.Stop()
}

func (e *Emulator) reportFault(err error) {
	e.logger.Error("machine fault",
		log.Err(err),
		log.Hex("pc", e.machine.ProgramCounter()),
		log.Hex("index", e.machine.Index()),
		log.String("registers", fmt.Sprintf("% 02X", e.machine.Registers())),
	)
}
