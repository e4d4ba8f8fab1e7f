package internal

import (
	"os"
	"path/filepath"
)

// FullPathname resolves filename to an absolute path, relative to the
// current working directory if it isn't already absolute.
func FullPathname(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}
