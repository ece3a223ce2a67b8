// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build windows

package fileutils

import "os"

func isWritableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil {
		return false
	}

	// owner write bit
	return info.Mode().Perm()&0o200 != 0
}
