// Package fsutil contains filesystem helpers shared by the allocation and
// configuration code.
package fsutil

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// EnsureDir ensures a directory exists, creating it and any missing parents.
// An existing directory is not an error.
func EnsureDir(fs afero.Fs, p string) error {
	s, err := fs.Stat(p)
	if err == nil {
		if !s.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", p)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return fs.MkdirAll(p, 0775)
}

// Exists returns true if a file or directory exists at the given path.
func Exists(fs afero.Fs, p string) bool {
	_, err := fs.Stat(p)
	return err == nil
}
