// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyalipay/easyalipay-go/pkg/fileutils"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2014072300007148-private.pem")

	assert.False(t, fileutils.FileExists(path))
	assert.True(t, fileutils.IsWritable(path))
	assert.True(t, fileutils.IsWritable(filepath.Join(dir, "missing", "nested", "key.pem")))

	require.NoError(t, fileutils.WriteFile(path, []byte("first"), 0o600))
	require.NoError(t, fileutils.WriteFile(path, []byte("second"), 0o600))

	assert.True(t, fileutils.FileExists(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must be cleaned up")
}

func TestWriteFileMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "key.pem")

	assert.Error(t, fileutils.WriteFile(path, []byte("data"), 0o600))
}
