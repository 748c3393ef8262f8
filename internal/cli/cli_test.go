package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/prgrom/internal/config"
	"github.com/retroenv/prgrom/internal/rom"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseFlags_Layout(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want rom.Layout
	}{
		{
			name: "default flags",
			args: []string{"prog", "test.prg"},
			want: config.NESLayout(),
		},
		{
			name: "hex geometry",
			args: []string{"prog", "-bank-size", "0x4000", "-preamble", "0", "-fill", "0x00", "test.prg"},
			want: rom.Layout{BankSize: 0x4000, PreambleOffset: 0, Fill: 0, VectorOffset: 0x3FFC, EntryPoint: 0xC000},
		},
		{
			name: "dollar notation",
			args: []string{"prog", "-entry", "$9000", "test.prg"},
			want: rom.Layout{BankSize: 0x8000, PreambleOffset: 0x600, Fill: 0xFF, VectorOffset: 0x7FFC, EntryPoint: 0x9000},
		},
		{
			name: "decimal vector",
			args: []string{"prog", "-vector", "32762", "test.prg"},
			want: rom.Layout{BankSize: 0x8000, PreambleOffset: 0x600, Fill: 0xFF, VectorOffset: 32762, EntryPoint: 0x8600},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args)

			opts, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, "test.prg", opts.Input)
			assert.Equal(t, tt.want, opts.Layout())
		})
	}
}

func TestParseFlags_Options(t *testing.T) {
	setArgs(t, []string{"prog", "-o", "out.rom", "-verify", "-q", "-ldcfg", "rom.cfg", "test.prg"})

	opts, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, "test.prg", opts.Input)
	assert.Equal(t, "out.rom", opts.Output)
	assert.Equal(t, "rom.cfg", opts.LinkerConfig)
	assert.True(t, opts.Verify)
	assert.True(t, opts.Quiet)
	assert.False(t, opts.Debug)
	assert.Equal(t, 1, opts.Jobs)
}

func TestParseFlags_Batch(t *testing.T) {
	setArgs(t, []string{"prog", "-batch", "*.prg", "-j", "0"})

	opts, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, "*.prg", opts.Batch)
	assert.Equal(t, "", opts.Input)
	assert.Equal(t, 1, opts.Jobs)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantUsage bool
	}{
		{name: "no input", args: []string{"prog"}, wantUsage: true},
		{name: "flag after file", args: []string{"prog", "test.prg", "-q"}, wantUsage: true},
		{name: "two files", args: []string{"prog", "a.prg", "b.prg"}, wantUsage: true},
		{name: "invalid number", args: []string{"prog", "-fill", "0x100", "test.prg"}, wantUsage: true},
		{name: "batch with output", args: []string{"prog", "-batch", "*.prg", "-o", "x.rom"}, wantUsage: true},
		{name: "verify console output", args: []string{"prog", "-verify", "-o", "-", "test.prg"}, wantUsage: true},
		{name: "preamble outside bank", args: []string{"prog", "-preamble", "0x8000", "test.prg"}},
		{name: "vector outside bank", args: []string{"prog", "-vector", "0x7FFF", "test.prg"}},
		{name: "bank larger than address space", args: []string{"prog", "-bank-size", "0x20000", "test.prg"}},
		{name: "input flag and file", args: []string{"prog", "-i", "a.prg", "b.prg"}, wantUsage: true},
		{name: "batch and file", args: []string{"prog", "-batch", "*.prg", "b.prg"}, wantUsage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args)

			_, err := ParseFlags()
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.wantUsage, errors.As(err, &usageErr))
			if !tt.wantUsage {
				assert.True(t, errors.Is(err, rom.ErrInvalidLayout))
			}
		})
	}
}

func TestNumberValue(t *testing.T) {
	tests := []struct {
		input   string
		bits    int
		want    uint64
		wantErr bool
	}{
		{input: "1536", bits: 32, want: 1536},
		{input: "0x600", bits: 32, want: 0x600},
		{input: "$FFFC", bits: 16, want: 0xFFFC},
		{input: "0xff", bits: 8, want: 0xFF},
		{input: "256", bits: 8, wantErr: true},
		{input: "-1", bits: 32, wantErr: true},
		{input: "abc", bits: 32, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n := numberValue{bits: tt.bits}
			err := n.Set(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, n.set)
				return
			}
			assert.NoError(t, err)
			assert.True(t, n.set)
			assert.Equal(t, tt.want, n.value)
		})
	}
}

func setArgs(t *testing.T, args []string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = args
}
