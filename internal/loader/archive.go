package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/zip"
	"github.com/nwaples/rardecode/v2"
)

// archiveEntry is a regular file inside of an archive.
type archiveEntry struct {
	name string
	open func() (io.ReadCloser, error)
}

// selectEntry returns the first entry with a PRG file extension, or the first
// entry if none of them has one.
func selectEntry(entries []archiveEntry) (archiveEntry, bool) {
	for _, entry := range entries {
		if isPRGFile(entry.name) {
			return entry, true
		}
	}
	if len(entries) == 0 {
		return archiveEntry{}, false
	}
	return entries[0], true
}

func readEntry(entries []archiveEntry) (PRG, error) {
	entry, ok := selectEntry(entries)
	if !ok {
		return PRG{}, ErrNoEntry
	}

	rc, err := entry.open()
	if err != nil {
		return PRG{}, fmt.Errorf("opening %s: %w", entry.name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := limitedRead(rc)
	if err != nil {
		return PRG{}, fmt.Errorf("reading %s: %w", entry.name, err)
	}
	return PRG{Data: data, Name: filepath.Base(entry.name)}, nil
}

// extractFromZIP extracts the PRG from a ZIP archive
func extractFromZIP(r io.ReaderAt, size int64) (PRG, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return PRG{}, fmt.Errorf("opening zip: %w", err)
	}

	var entries []archiveEntry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, archiveEntry{name: f.Name, open: f.Open})
	}
	return readEntry(entries)
}

// extractFrom7z extracts the PRG from a 7z archive
func extractFrom7z(r io.ReaderAt, size int64) (PRG, error) {
	sr, err := sevenzip.NewReader(r, size)
	if err != nil {
		return PRG{}, fmt.Errorf("opening 7z: %w", err)
	}

	var entries []archiveEntry
	for _, f := range sr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, archiveEntry{name: f.Name, open: f.Open})
	}
	return readEntry(entries)
}

// extractFromRAR extracts the PRG from a RAR archive. The archive is read as a
// stream, the first regular entry is kept in case no entry has a PRG extension.
func extractFromRAR(r io.Reader) (PRG, error) {
	rr, err := rardecode.NewReader(r)
	if err != nil {
		return PRG{}, fmt.Errorf("opening rar: %w", err)
	}

	var first *PRG
	for {
		header, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return PRG{}, fmt.Errorf("reading rar entry: %w", err)
		}
		if header.IsDir {
			continue
		}

		prgEntry := isPRGFile(header.Name)
		if first != nil && !prgEntry {
			continue
		}

		data, err := limitedRead(rr)
		if err != nil {
			return PRG{}, fmt.Errorf("reading %s: %w", header.Name, err)
		}
		prg := PRG{Data: data, Name: filepath.Base(header.Name)}
		if prgEntry {
			return prg, nil
		}
		first = &prg
	}

	if first == nil {
		return PRG{}, ErrNoEntry
	}
	return *first, nil
}
