package fileprocessor

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/retroenv/prgrom/internal/config"
	"github.com/retroenv/prgrom/internal/options"
	"github.com/retroenv/prgrom/internal/rom"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/afero"
)

func TestGenerateOutputFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "game.prg", want: "game.rom"},
		{input: "dir/game.out", want: "dir/game.rom"},
		{input: "game.prg.gz", want: "game.rom"},
		{input: "game.zip", want: "game.rom"},
		{input: "game", want: "game.rom"},
		{input: "dir.v1/game", want: "dir.v1/game.rom"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateOutputFilename(tt.input))
		})
	}
}

func TestGetFilesToProcess(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"a.prg", "b.prg", "c.txt"} {
		assert.NoError(t, afero.WriteFile(fs, name, []byte{0xEA}, 0o644))
	}

	files, err := GetFilesToProcess(fs, options.Program{Parameters: options.Parameters{Input: "x.prg"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"x.prg"}, files)

	files, err = GetFilesToProcess(fs, options.Program{Parameters: options.Parameters{Batch: "*.prg"}})
	assert.NoError(t, err)
	sort.Strings(files)
	assert.Equal(t, []string{"a.prg", "b.prg"}, files)

	_, err = GetFilesToProcess(fs, options.Program{Parameters: options.Parameters{Batch: "[.prg"}})
	assert.Error(t, err)
}

func batchOptions(batch string, jobs int) options.Program {
	return options.Program{
		Parameters: options.Parameters{Batch: batch},
		Flags:      options.Flags{Jobs: jobs, Verify: true},
		Geometry: options.Geometry{
			BankSize:       config.BankSize,
			PreambleOffset: config.PreambleOffset,
			Fill:           config.Fill,
		},
	}
}

func TestProcessFilesBatch(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	names := []string{"a.prg", "b.prg", "c.prg", "d.prg"}
	for i, name := range names {
		assert.NoError(t, afero.WriteFile(fs, name, []byte{byte(i)}, 0o644))
	}

	p := New(logger, fs, &bytes.Buffer{})
	assert.NoError(t, p.ProcessFiles(context.Background(), batchOptions("*.prg", 3)))

	for i, name := range names {
		data, err := afero.ReadFile(fs, GenerateOutputFilename(name))
		assert.NoError(t, err)
		assert.Equal(t, 32768, len(data))
		assert.Equal(t, byte(i), data[0x600])
	}
}

func TestProcessFilesBatchPartialFailure(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "good.prg", []byte{0xEA}, 0o644))
	assert.NoError(t, afero.WriteFile(fs, "big.prg", make([]byte, 0x8000), 0o644))

	p := New(logger, fs, &bytes.Buffer{})
	err := p.ProcessFiles(context.Background(), batchOptions("*.prg", 2))
	assert.True(t, errors.Is(err, rom.ErrOversizeImage))
	assert.ErrorContains(t, err, "big.prg")

	exists, err := afero.Exists(fs, "good.rom")
	assert.NoError(t, err)
	assert.True(t, exists)
	exists, err = afero.Exists(fs, "big.rom")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestProcessFilesNoMatch(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger, afero.NewMemMapFs(), &bytes.Buffer{})

	err := p.ProcessFiles(context.Background(), batchOptions("*.prg", 1))
	assert.ErrorContains(t, err, "no files match")
}

func TestProcessFilesSingle(t *testing.T) {
	logger := log.NewTestLogger(t)
	fs := afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "test.prg", []byte{0x01, 0x02, 0x03}, 0o644))

	opts := batchOptions("", 1)
	opts.Input = "test.prg"
	opts.Output = "custom.rom"

	p := New(logger, fs, &bytes.Buffer{})
	assert.NoError(t, p.ProcessFiles(context.Background(), opts))

	exists, err := afero.Exists(fs, "custom.rom")
	assert.NoError(t, err)
	assert.True(t, exists)
}
