package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CleanPath cleans a path given on the command line. Traversal is only
// allowed as a leading relative prefix.
func CleanPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	clean := filepath.Clean(path)
	if strings.Contains(clean, "..") && !strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("path traversal not allowed in file path: %s", path)
	}
	return clean, nil
}

// ExistingFile cleans path and checks that it names a regular file
func ExistingFile(path string) (string, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(clean)
	switch {
	case os.IsNotExist(err):
		return "", fmt.Errorf("file does not exist: %s", clean)
	case err != nil:
		return "", err
	case info.IsDir():
		return "", fmt.Errorf("%s is a directory", clean)
	}
	return clean, nil
}
