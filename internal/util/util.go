package util

import (
	"io/fs"
	"os"
	"path/filepath"
)

// InitDir creates the parent directory of path with the given mode.
func InitDir(path string, mode fs.FileMode) error {
	expandedDir := os.ExpandEnv(path)
	fullPath := filepath.Dir(expandedDir)
	return os.MkdirAll(fullPath, mode)
}
