// Package loader handles PRG file loading operations, including PRG images
// that are stored compressed or inside of archives.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/set"
	"github.com/spf13/afero"
)

// MaxPRGSize limits the amount of data read from a single input.
const MaxPRGSize = 16 * 1024 * 1024

var (
	// ErrFileTooLarge is returned when the PRG data exceeds MaxPRGSize.
	ErrFileTooLarge = errors.New("file exceeds maximum size limit")
	// ErrUnsupportedFormat is returned for containers that can not be read.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoEntry is returned when an archive does not contain any file.
	ErrNoEntry = errors.New("no file found in archive")
)

// Format is the container format of a PRG input file.
type Format string

// Supported input formats.
const (
	Raw   Format = "raw"
	Zip   Format = "zip"
	Gzip  Format = "gzip"
	Zstd  Format = "zstd"
	Xz    Format = "xz"
	Lz4   Format = "lz4"
	Seven Format = "7z"
	Rar   Format = "rar"
)

var (
	magicZIP  = []byte{0x50, 0x4B, 0x03, 0x04}
	magicGzip = []byte{0x1F, 0x8B}
	magicZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}
	magicXz   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	magicLz4  = []byte{0x04, 0x22, 0x4D, 0x18}
	magic7z   = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicRAR  = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// prgExtensions are extensions of raw program images, these are never sniffed
// for container magic bytes as a PRG is an opaque byte sequence.
var prgExtensions = newExtensionSet(".prg", ".bin", ".out", ".o65", ".raw")

var containerExtensions = map[string]Format{
	".zip":  Zip,
	".gz":   Gzip,
	".tgz":  Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".xz":   Xz,
	".lz4":  Lz4,
	".7z":   Seven,
	".rar":  Rar,
}

// PRG is a loaded program image.
type PRG struct {
	Data   []byte
	Name   string // base name of the file or archive entry that the data was read from
	Format Format
}

// Loader handles loading PRG files from a file system.
type Loader struct {
	fs afero.Fs
}

// New creates a new PRG loader reading from the given file system.
func New(fs afero.Fs) *Loader {
	return &Loader{fs: fs}
}

// Load reads the PRG stored in the given file. Files with a known container
// extension are unpacked, files with a known PRG extension are read as is and
// for all other files the format is detected by magic bytes.
func (l *Loader) Load(path string) (PRG, error) {
	file, err := l.fs.Open(path)
	if err != nil {
		return PRG{}, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return PRG{}, fmt.Errorf("reading file info of %s: %w", path, err)
	}
	if stat.IsDir() {
		return PRG{}, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFormat, path)
	}

	format, err := detectFormat(file, path)
	if err != nil {
		return PRG{}, err
	}

	prg, err := l.read(file, stat.Size(), format)
	if err != nil {
		return PRG{}, fmt.Errorf("reading %s file %s: %w", format, path, err)
	}
	if prg.Name == "" {
		prg.Name = filepath.Base(path)
	}
	prg.Format = format
	return prg, nil
}

func (l *Loader) read(file afero.File, size int64, format Format) (PRG, error) {
	switch format {
	case Raw:
		data, err := limitedRead(file)
		return PRG{Data: data}, err
	case Zip:
		return extractFromZIP(file, size)
	case Seven:
		return extractFrom7z(file, size)
	case Rar:
		return extractFromRAR(file)
	default:
		data, err := decompress(file, format)
		return PRG{Data: data}, err
	}
}

// detectFormat determines the file format based on the extension and falls
// back to magic bytes for unknown extensions.
func detectFormat(file afero.File, path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if prgExtensions.Contains(ext) {
		return Raw, nil
	}
	if format, ok := containerExtensions[ext]; ok {
		return format, nil
	}

	header := make([]byte, 8)
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", fmt.Errorf("reading file header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seeking file: %w", err)
	}
	return detectMagic(header[:n]), nil
}

func detectMagic(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, magicZIP):
		return Zip
	case bytes.HasPrefix(header, magic7z):
		return Seven
	case bytes.HasPrefix(header, magicRAR):
		return Rar
	case bytes.HasPrefix(header, magicXz):
		return Xz
	case bytes.HasPrefix(header, magicZstd):
		return Zstd
	case bytes.HasPrefix(header, magicLz4):
		return Lz4
	case bytes.HasPrefix(header, magicGzip):
		return Gzip
	default:
		return Raw
	}
}

// isPRGFile checks if an archive entry has a PRG file extension.
func isPRGFile(name string) bool {
	return prgExtensions.Contains(strings.ToLower(filepath.Ext(name)))
}

func newExtensionSet(extensions ...string) set.Set[string] {
	s := set.New[string]()
	for _, ext := range extensions {
		s.Add(ext)
	}
	return s
}

// limitedRead reads from r up to MaxPRGSize bytes, returning an error if exceeded
func limitedRead(r io.Reader) ([]byte, error) {
	lr := io.LimitReader(r, MaxPRGSize+1)
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPRGSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
