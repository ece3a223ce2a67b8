// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package fileutils contains the filesystem helpers of the key store.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileExists checks if specified file exists.
func FileExists(filename string) bool {
	if _, err := os.Stat(filename); err != nil {
		return false
	}

	return true
}

// IsWritable checks if a file can be created or replaced at path:
// the nearest existing directory containing it must be writable.
func IsWritable(path string) bool {
	dir := filepath.Dir(path)

	for {
		info, err := os.Stat(dir)
		if err == nil {
			return info.IsDir() && isWritableDir(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}

		dir = parent
	}
}

// WriteFile writes the file through a temporary file in the same directory, so readers never see partial content.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if !IsWritable(path) {
		return fmt.Errorf("%s is not writable", filepath.Dir(path))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	defer os.Remove(tmpName) //nolint:errcheck

	if _, err = tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck

		return err
	}

	if err = tmp.Chmod(perm); err != nil {
		tmp.Close() //nolint:errcheck

		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
