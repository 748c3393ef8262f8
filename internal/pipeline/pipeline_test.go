package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/retroenv/prgrom/internal/config"
	"github.com/retroenv/prgrom/internal/loader"
	"github.com/retroenv/prgrom/internal/options"
	"github.com/retroenv/prgrom/internal/rom"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/afero"
)

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger, afero.NewMemMapFs(), &bytes.Buffer{})

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.fs)
	assert.NotNil(t, p.loader)
}

func testOptions(input, output string) options.Program {
	return options.Program{
		Parameters: options.Parameters{
			Input:  input,
			Output: output,
		},
		Geometry: options.Geometry{
			BankSize:       config.BankSize,
			PreambleOffset: config.PreambleOffset,
			Fill:           config.Fill,
		},
	}
}

func TestExecute(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	prg := []byte{0x01, 0x02, 0x03}
	assert.NoError(t, afero.WriteFile(fs, "test.prg", prg, 0o644))

	opts := testOptions("test.prg", "test.rom")
	opts.Verify = true
	opts.LinkerConfig = "test.cfg"

	p := New(logger, fs, &bytes.Buffer{})
	result, err := p.Execute(context.Background(), opts)
	assert.NoError(t, err)
	assert.Equal(t, "test.rom", result.Output)
	assert.Equal(t, prg, result.PRG.Data)
	assert.Equal(t, uint16(0x8600), result.Info.Reset)
	assert.Equal(t, 0x600, result.Info.EntryOffset)

	data, err := afero.ReadFile(fs, "test.rom")
	assert.NoError(t, err)
	assert.Equal(t, 32768, len(data))
	assert.Equal(t, prg, data[1536:1539])
	assert.Equal(t, []byte{0x00, 0x86}, data[32764:32766])
	assert.Equal(t, []byte{0xFF, 0xFF}, data[32766:32768])

	cfg, err := afero.ReadFile(fs, "test.cfg")
	assert.NoError(t, err)
	assert.Contains(t, string(cfg), "start = $8600")
}

func TestExecuteConsoleOutput(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "test.prg", []byte{0xEA}, 0o644))

	var console bytes.Buffer
	p := New(logger, fs, &console)
	_, err := p.Execute(context.Background(), testOptions("test.prg", ConsoleOutput))
	assert.NoError(t, err)
	assert.Equal(t, 32768, console.Len())
	assert.Equal(t, byte(0xEA), console.Bytes()[0x600])

	exists, err := afero.Exists(fs, ConsoleOutput)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestExecuteOversize(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "big.prg", make([]byte, 32768-1536+1), 0o644))

	p := New(logger, fs, &bytes.Buffer{})
	_, err := p.Execute(context.Background(), testOptions("big.prg", "big.rom"))
	assert.True(t, errors.Is(err, rom.ErrOversizeImage))

	exists, err := afero.Exists(fs, "big.rom")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestExecuteErrors(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "test.prg", []byte{0xEA}, 0o644))
	p := New(logger, fs, &bytes.Buffer{})

	t.Run("missing input", func(t *testing.T) {
		_, err := p.Execute(context.Background(), testOptions("missing.prg", "missing.rom"))
		assert.ErrorContains(t, err, "loading PRG")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Execute(ctx, testOptions("test.prg", "test.rom"))
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("invalid layout", func(t *testing.T) {
		opts := testOptions("test.prg", "test.rom")
		opts.PreambleOffset = opts.BankSize
		_, err := p.Execute(context.Background(), opts)
		assert.True(t, errors.Is(err, rom.ErrInvalidLayout))
	})

	t.Run("read-only output", func(t *testing.T) {
		roPipeline := New(logger, afero.NewReadOnlyFs(fs), &bytes.Buffer{})
		_, err := roPipeline.Execute(context.Background(), testOptions("test.prg", "test.rom"))
		assert.ErrorContains(t, err, "writing ROM")
	})
}

func TestExecuteWithPRG(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	p := New(logger, fs, &bytes.Buffer{})

	layout := config.NESLayout()
	prg := loader.PRG{
		Data:   bytes.Repeat([]byte{0xEA}, layout.Capacity()),
		Name:   "full.prg",
		Format: loader.Raw,
	}

	opts := testOptions("full.prg", "full.rom")
	opts.Verify = true
	result, err := p.ExecuteWithPRG(context.Background(), prg, opts)
	assert.NoError(t, err)
	assert.Equal(t, "nop", result.Info.Instruction)

	data, err := afero.ReadFile(fs, "full.rom")
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x86}, data[layout.VectorOffset:layout.VectorOffset+2])
}
