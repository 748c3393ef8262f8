// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/retroenv/prgrom/internal/config"
	"github.com/retroenv/prgrom/internal/options"
)

// ParseFlags parses command line flags and returns the program options
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.Usage = func() {}

	var opts options.Program
	geometry := readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, &UsageError{flags: flags}
		}
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if len(args) == 0 && opts.Batch == "" && opts.Input == "" {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	switch {
	case len(args) == 0:
	case opts.Batch != "":
		return opts, &UsageError{msg: fmt.Sprintf("PRG file %s can not be combined with batch mode", args[0])}
	case opts.Input != "":
		return opts, &UsageError{msg: fmt.Sprintf("PRG file %s can not be combined with -i", args[0])}
	default:
		opts.Input = args[0]
	}

	geometry.apply(&opts.Geometry)
	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	if e.msg == "" {
		return "missing PRG file to package"
	}
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: prgrom [options] <PRG file>\n\n")
	if e.flags != nil {
		e.flags.SetOutput(os.Stdout)
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after PRG file, please pass the PRG file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("only one PRG file can be passed, use -batch to process multiple files, got %d", len(args)),
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if opts.Batch != "" && opts.Output != "" {
		return &UsageError{msg: "output file name can not be combined with batch mode"}
	}
	if opts.Verify && opts.Output == "-" {
		return &UsageError{msg: "can not verify console output"}
	}

	layout := opts.Layout()
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("validating ROM layout: %w", err)
	}
	return nil
}

// geometryFlags holds the raw numeric flag values that accept decimal and
// 0x prefixed hexadecimal notation.
type geometryFlags struct {
	bankSize numberValue
	preamble numberValue
	fill     numberValue
	vector   numberValue
	entry    numberValue
}

func (g *geometryFlags) apply(geometry *options.Geometry) {
	geometry.BankSize = int(g.bankSize.value)
	geometry.PreambleOffset = int(g.preamble.value)
	geometry.Fill = byte(g.fill.value)
	geometry.VectorOffset = int(g.vector.value)
	geometry.VectorSet = g.vector.set
	geometry.EntryPoint = uint16(g.entry.value)
	geometry.EntrySet = g.entry.set
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) *geometryFlags {
	flags.StringVar(&opts.Input, "i", "", "name of the input PRG file")
	flags.StringVar(&opts.Output, "o", "", "name of the output ROM file, - to print it on console, defaults to the input name with .rom extension")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .rom file naming, for example *.prg")
	flags.StringVar(&opts.LinkerConfig, "ldcfg", "", "name of a ld65 linker config file to write that matches the ROM layout")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the written ROM file by reading it back and checking the layout")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.IntVar(&opts.Jobs, "j", 1, "number of files to process concurrently in batch mode")

	geometry := &geometryFlags{
		bankSize: numberValue{value: config.BankSize, bits: 32},
		preamble: numberValue{value: config.PreambleOffset, bits: 32},
		fill:     numberValue{value: config.Fill, bits: 8},
		vector:   numberValue{bits: 32},
		entry:    numberValue{bits: 16},
	}
	flags.Var(&geometry.bankSize, "bank-size", "size of the ROM bank in bytes")
	flags.Var(&geometry.preamble, "preamble", "bank offset that the PRG is placed at")
	flags.Var(&geometry.fill, "fill", "byte used to fill the preamble and the space after the PRG")
	flags.Var(&geometry.vector, "vector", "bank offset of the reset vector, defaults to the offset mapped to address 0xFFFC")
	flags.Var(&geometry.entry, "entry", "entry point address written to the reset vector, defaults to the address of the first PRG byte")
	return geometry
}

// numberValue is a flag value for unsigned numbers in decimal, 0x hexadecimal
// or $ hexadecimal notation.
type numberValue struct {
	value uint64
	bits  int
	set   bool
}

func (n *numberValue) String() string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("0x%X", n.value)
}

func (n *numberValue) Set(s string) error {
	base := 0
	if len(s) > 1 && s[0] == '$' {
		s = s[1:]
		base = 16
	}
	value, err := strconv.ParseUint(s, base, n.bits)
	if err != nil {
		return fmt.Errorf("parsing number '%s': %w", s, err)
	}
	n.value = value
	n.set = true
	return nil
}
