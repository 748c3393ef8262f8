// Package writer writes assembled ROM banks.
package writer

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileMode is the permission of written ROM files.
const FileMode = 0o644

// WriteFile writes data to the named file. The data is written to a temporary
// file in the same directory first that is renamed to the target name after it
// was completely written, a failed write never leaves a truncated file behind.
func WriteFile(fs afero.Fs, name string, data []byte) (err error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	tmp, err := afero.TempFile(fs, dir, "."+base+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = fs.Remove(tmpName)
		}
	}()

	if err = write(tmp, data); err != nil {
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err = fs.Chmod(tmpName, FileMode); err != nil {
		return fmt.Errorf("setting permissions of %s: %w", tmpName, err)
	}
	if err = fs.Rename(tmpName, name); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", tmpName, name, err)
	}
	return nil
}

// Write writes the complete data to w.
func Write(w io.Writer, data []byte) error {
	return write(w, data)
}

func write(w io.Writer, data []byte) error {
	n, err := w.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return io.ErrShortWrite
	}
	return nil
}
