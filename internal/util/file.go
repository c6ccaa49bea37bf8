package util

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// TryWriteAtomic writes contents to filename, creating parent
// directories. If the atomic rename fails it retries with a plain
// write.
func TryWriteAtomic(filename string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}
	if err1 := atomic.WriteFile(filename, bytes.NewReader(contents)); err1 != nil {
		if err2 := os.WriteFile(filename, contents, 0o644); err2 != nil {
			return fmt.Errorf("%s: %s; on non-atomic retry: %w", filename, err1, err2)
		}
	}
	return nil
}

// Exists reports whether filename exists. Errors other than "not
// exist" terminate the process.
func Exists(filename string) bool {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return false
	} else if err != nil {
		Die("%s: %s", filename, err)
		return false
	} else {
		return true
	}
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
