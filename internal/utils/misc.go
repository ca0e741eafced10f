package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

const RunningOnWindows = runtime.GOOS == "windows"

// DirSize is the total size of the regular files under path. path may
// also be a single file.
func DirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return err
	})
	return size, err
}
