package utils

import (
	"os"
	"path/filepath"
)

// EnsureOutputDir creates the generated-asset directory if it doesn't exist
func EnsureOutputDir() error {
	return os.MkdirAll("output", os.ModePerm)
}

// OutputPath returns the full path for a file inside the output directory
func OutputPath(filename string) string {
	return filepath.Join("output", filename)
}
