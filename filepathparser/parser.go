package filepathparser

import (
	"os"
	"path/filepath"
	"strings"
)

// ParsePath expands a leading ~/ and any environment variables before making
// the path absolute.
func ParsePath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		dirname, _ := os.UserHomeDir()
		path = filepath.Join(dirname, path[2:])
	}

	path = os.ExpandEnv(path)

	return filepath.Abs(path)
}

// EnsureDir creates the directory when it does not exist yet so a run can
// write its artifacts to a fresh working folder.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
