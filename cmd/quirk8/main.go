// Package main implements a CHIP-8 emulator with configurable interpreter
// quirks.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"

	"quirk8"
	"quirk8/chip8"
)

var version = "0.1.0"

type optionFlags struct {
	rom    string
	cycles int
	quirks chip8.Quirks

	quiet bool
	debug bool
}

func main() {
	options := readArguments()
	logger := createLogger(options)

	rom, err := os.ReadFile(options.rom)
	if err != nil {
		logger.Fatal("reading rom", log.Err(err))
	}

	logger.Info("starting emulator",
		log.String("rom", options.rom),
		log.Int("bytes", len(rom)),
		log.Int("cycles_per_second", options.cycles),
	)

	emu := quirk8.New(logger, quirk8.Config{
		CycleRate: options.cycles,
		Quirks:    options.quirks,
	})

	if err := emu.Run(rom); err != nil {
		logger.Fatal("emulation failed", log.Err(err))
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{}

	flags.BoolVar(&options.quirks.BitshiftIgnoresVY, "bitshift-ignores-vy", false,
		"shift instructions use VX without first copying VY")
	flags.BoolVar(&options.quirks.JumpWithOffsetUsesVX, "jump-with-offset-uses-vx", false,
		"jump with offset adds VX instead of V0")
	flags.BoolVar(&options.quirks.AddToIndexIgnoresOverflow, "add-to-index-ignores-overflow", false,
		"add to index does not set VF on overflow")
	flags.BoolVar(&options.quirks.StoreAndLoadIncrementIndex, "store-and-load-increment-index", false,
		"increment the index register after store and load")
	flags.BoolVar(&options.quirks.WrapSprites, "wrap-sprites", false,
		"wrap sprites around the screen edges instead of clipping")
	flags.IntVar(&options.cycles, "cycles", quirk8.DefaultCycleRate,
		"instructions executed per second")
	flags.BoolVar(&options.quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&options.debug, "debug", false, "enable debug logging")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) == 0 {
		fmt.Printf("quirk8 %s - CHIP-8 emulator\n\n", version)
		fmt.Printf("usage: quirk8 [options] <rom file>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	options.rom = args[0]

	return options
}

func createLogger(options optionFlags) *log.Logger {
	cfg := log.DefaultConfig()
	if options.debug {
		cfg.Level = log.DebugLevel
	} else if options.quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
