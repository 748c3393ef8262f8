// Package fileprocessor handles file discovery and processing operations
package fileprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/retroenv/prgrom/internal/options"
	"github.com/retroenv/prgrom/internal/pipeline"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// romExtension is the extension of generated ROM files.
const romExtension = ".rom"

// Processor runs the pipeline for every input file.
type Processor struct {
	logger   *log.Logger
	fs       afero.Fs
	pipeline *pipeline.Pipeline
}

// New creates a new file processor.
func New(logger *log.Logger, fs afero.Fs, console io.Writer) *Processor {
	return &Processor{
		logger:   logger,
		fs:       fs,
		pipeline: pipeline.New(logger, fs, console),
	}
}

// ProcessFiles processes all input files of the options. In batch mode up to
// opts.Jobs files are processed concurrently, a failing file does not stop the
// processing of the remaining files. All errors are returned joined.
func (p *Processor) ProcessFiles(ctx context.Context, opts options.Program) error {
	files, err := GetFilesToProcess(p.fs, opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files match batch pattern '%s'", opts.Batch)
	}

	var (
		mu   sync.Mutex
		errs []error
	)

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(opts.Jobs, 1))

	for _, file := range files {
		fileOpts := opts
		fileOpts.Input = file
		if len(files) > 1 || opts.Output == "" {
			fileOpts.Output = GenerateOutputFilename(file)
		}

		group.Go(func() error {
			if _, err := p.pipeline.Execute(ctx, fileOpts); err != nil {
				// cancellation stops the remaining files
				if errors.Is(err, context.Canceled) {
					return err
				}
				p.logger.Error("Generating ROM failed",
					log.String("file", file),
					log.Err(err))

				mu.Lock()
				errs = append(errs, fmt.Errorf("processing file '%s': %w", file, err))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(fs afero.Fs, opts options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := afero.Glob(fs, opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file.
// Compression extensions are removed together with the PRG extension.
func GenerateOutputFilename(inputFile string) string {
	base := inputFile
	for range 2 {
		ext := filepath.Ext(base)
		if ext == "" {
			break
		}
		base = base[:len(base)-len(ext)]
		if !isCompressionExtension(ext) {
			break
		}
	}
	return base + romExtension
}

func isCompressionExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".gz", ".zst", ".zstd", ".xz", ".lz4":
		return true
	default:
		return false
	}
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("prgrom", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
