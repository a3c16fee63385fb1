package platform

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aretw0/snapnote/pkg/adapters/sqlite"
)

// ErrRootNotFound is returned by FindRoot when no indicator exists up to the filesystem root.
var ErrRootNotFound = errors.New("vault root not found")

// RootIndicators mark a vault directory.
var RootIndicators = []string{".snapnote", ConfigFile, sqlite.DefaultFile}

// FindRoot looks upwards from startDir for a vault root indicator
// and returns the absolute path of the first directory holding one.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, name := range RootIndicators {
			if hasFile(dir, name) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
