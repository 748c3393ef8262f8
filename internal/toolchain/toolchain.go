// Package toolchain builds PRG images from assembly sources using the external
// ca65 assembler and ld65 linker.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/retroenv/prgrom/internal/linker"
	"github.com/retroenv/prgrom/internal/rom"
	"github.com/retroenv/retrogolib/set"
)

const (
	assemblerName = "ca65"
	linkerName    = "ld65"
)

// ErrToolNotInstalled is returned when the assembler or linker can not be found.
var ErrToolNotInstalled = errors.New("tool is not installed")

var sourceExtensions = set.New[string]()

func init() {
	sourceExtensions.Add(".s")
	sourceExtensions.Add(".asm")
}

// IsSource returns whether the file is an assembly source that needs to be
// built before it can be packaged.
func IsSource(path string) bool {
	return sourceExtensions.Contains(strings.ToLower(filepath.Ext(path)))
}

// Build assembles and links the source file into a PRG that is placed at the
// PRG address of the layout and returns the PRG bytes.
func Build(ctx context.Context, sourceFile string, layout rom.Layout) ([]byte, error) {
	assembler, err := lookupTool(assemblerName)
	if err != nil {
		return nil, err
	}
	linkerTool, err := lookupTool(linkerName)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "prgrom")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	objectFile := filepath.Join(dir, "prg.o")
	configFile := filepath.Join(dir, "prg.cfg")
	outputFile := filepath.Join(dir, "prg.bin")

	cmd := exec.CommandContext(ctx, assembler, sourceFile, "-o", objectFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("assembling file: %s: %w", strings.TrimSpace(string(out)), err)
	}

	linkerConfig, err := linker.Generate(layout)
	if err != nil {
		return nil, fmt.Errorf("generating ld65 config: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(linkerConfig), 0o600); err != nil {
		return nil, fmt.Errorf("writing linker config: %w", err)
	}

	cmd = exec.CommandContext(ctx, linkerTool, "-C", configFile, "-o", outputFile, objectFile)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("linking file: %s: %w", strings.TrimSpace(string(out)), err)
	}

	prg, err := os.ReadFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("reading linked PRG: %w", err)
	}
	return prg, nil
}

func lookupTool(name string) (string, error) {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolNotInstalled, name)
	}
	return path, nil
}
