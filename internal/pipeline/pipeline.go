// Package pipeline orchestrates the ROM generation workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/prgrom/internal/app"
	"github.com/retroenv/prgrom/internal/inspect"
	"github.com/retroenv/prgrom/internal/linker"
	"github.com/retroenv/prgrom/internal/loader"
	"github.com/retroenv/prgrom/internal/options"
	"github.com/retroenv/prgrom/internal/rom"
	"github.com/retroenv/prgrom/internal/toolchain"
	"github.com/retroenv/prgrom/internal/verification"
	"github.com/retroenv/prgrom/internal/writer"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/afero"
)

// ConsoleOutput is the output name that writes the ROM to the console writer.
const ConsoleOutput = "-"

// Result contains the outcome of a single pipeline run.
type Result struct {
	Output string
	PRG    loader.PRG
	Info   inspect.Info
}

// Pipeline orchestrates the complete ROM generation workflow.
type Pipeline struct {
	logger  *log.Logger
	fs      afero.Fs
	loader  *loader.Loader
	console io.Writer
}

// New creates a new ROM generation pipeline that reads and writes files
// using the given file system and writes console output to the given writer.
func New(logger *log.Logger, fs afero.Fs, console io.Writer) *Pipeline {
	return &Pipeline{
		logger:  logger,
		fs:      fs,
		loader:  loader.New(fs),
		console: console,
	}
}

// Execute runs the complete pipeline for the input file of the options.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program) (Result, error) {
	layout := opts.Layout()
	if err := layout.Validate(); err != nil {
		return Result{}, fmt.Errorf("validating layout: %w", err)
	}

	if opts.LinkerConfig != "" {
		if err := p.writeLinkerConfig(opts.LinkerConfig, layout); err != nil {
			return Result{}, err
		}
	}

	prg, err := p.load(ctx, opts, layout)
	if err != nil {
		return Result{}, fmt.Errorf("loading PRG: %w", err)
	}

	return p.ExecuteWithPRG(ctx, prg, opts)
}

// ExecuteWithPRG runs the pipeline with a pre-loaded PRG.
func (p *Pipeline) ExecuteWithPRG(ctx context.Context, prg loader.PRG, opts options.Program) (Result, error) {
	layout := opts.Layout()
	app.PrintInfo(p.logger, opts, prg, layout)

	bank, err := rom.Assemble(prg.Data, layout)
	if err != nil {
		return Result{}, fmt.Errorf("assembling ROM: %w", err)
	}

	// the bank is complete, a cancellation after this point would only leave
	// the output file untouched
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := p.write(opts.Output, bank); err != nil {
		return Result{}, fmt.Errorf("writing ROM: %w", err)
	}

	if opts.Verify {
		if err := verification.VerifyFile(p.fs, p.logger, opts.Output, prg.Data, layout); err != nil {
			return Result{}, fmt.Errorf("verifying ROM: %w", err)
		}
		p.logger.Info("Verification successful", log.String("file", opts.Output))
	}

	info := inspect.Describe(bank, layout)
	app.PrintROMInfo(p.logger, info)

	if opts.Output != ConsoleOutput {
		p.logger.Info("Generated ROM file", log.String("file", opts.Output))
	}

	return Result{
		Output: opts.Output,
		PRG:    prg,
		Info:   info,
	}, nil
}

func (p *Pipeline) load(ctx context.Context, opts options.Program, layout rom.Layout) (loader.PRG, error) {
	if err := ctx.Err(); err != nil {
		return loader.PRG{}, err
	}

	if !toolchain.IsSource(opts.Input) {
		prg, err := p.loader.Load(opts.Input)
		if err != nil {
			return loader.PRG{}, fmt.Errorf("loading file: %w", err)
		}
		return prg, nil
	}

	p.logger.Debug("Building assembly source", log.String("file", opts.Input))
	data, err := toolchain.Build(ctx, opts.Input, layout)
	if err != nil {
		return loader.PRG{}, fmt.Errorf("building source: %w", err)
	}
	return loader.PRG{
		Data:   data,
		Name:   opts.Input,
		Format: loader.Raw,
	}, nil
}

func (p *Pipeline) writeLinkerConfig(name string, layout rom.Layout) error {
	cfg, err := linker.Generate(layout)
	if err != nil {
		return fmt.Errorf("generating ld65 config: %w", err)
	}
	if err := writer.WriteFile(p.fs, name, []byte(cfg)); err != nil {
		return fmt.Errorf("writing ld65 config: %w", err)
	}
	p.logger.Info("Generated linker config", log.String("file", name))
	return nil
}

func (p *Pipeline) write(output string, bank []byte) error {
	if output == ConsoleOutput {
		return writer.Write(p.console, bank)
	}
	return writer.WriteFile(p.fs, output, bank)
}
