// Package main implements a generator for fixed-size ROM banks from raw PRG images
package main

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/retroenv/prgrom/internal/cli"
	"github.com/retroenv/prgrom/internal/config"
	"github.com/retroenv/prgrom/internal/fileprocessor"
	"github.com/retroenv/prgrom/internal/options"
	"github.com/retroenv/prgrom/internal/pipeline"
	"github.com/retroenv/prgrom/internal/rom"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/afero"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Process exit codes.
const (
	exitUsage    = 1
	exitOversize = 2
	exitFailure  = 3
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := newLogger(opts, os.Stdout, os.Stderr)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			logger.Error(usageErr.Error())
			usageErr.ShowUsage()
			os.Exit(exitUsage)
		}
		logger.Error("Invalid options", log.Err(err))
		os.Exit(exitUsage)
	}

	logger := newLogger(opts, os.Stdout, os.Stderr)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	processor := fileprocessor.New(logger, afero.NewOsFs(), os.Stdout)
	if err := processor.ProcessFiles(ctx, opts); err != nil {
		os.Exit(exitCode(logger, err))
	}
}

// newLogger creates the application logger. Logs go to stderr when the ROM
// is written to stdout.
func newLogger(opts options.Program, stdout, stderr io.Writer) *log.Logger {
	output := stdout
	if opts.Output == pipeline.ConsoleOutput {
		output = stderr
	}
	return config.CreateLogger(output, opts.Debug, opts.Quiet)
}

// exitCode logs the error and returns the matching process exit code.
func exitCode(logger *log.Logger, err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("Operation cancelled")
		return exitFailure

	case errors.Is(err, rom.ErrOversizeImage):
		var oversize *rom.OversizeError
		if errors.As(err, &oversize) {
			logger.Error("PRG does not fit into the ROM bank",
				log.Int("prg_size", oversize.PRGLength),
				log.Hex("preamble", oversize.PreambleOffset),
				log.Int("bank_size", oversize.BankSize),
				log.Int("max_prg_size", oversize.BankSize-oversize.PreambleOffset))
		}
		return exitOversize

	default:
		logger.Error("Generating ROM failed", log.Err(err))
		return exitFailure
	}
}
