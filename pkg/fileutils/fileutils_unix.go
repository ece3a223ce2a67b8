// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

//go:build unix

package fileutils

import "golang.org/x/sys/unix"

func isWritableDir(dir string) bool {
	return unix.Access(dir, unix.W_OK|unix.X_OK) == nil
}
