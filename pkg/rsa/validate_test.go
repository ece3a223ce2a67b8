// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rsa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

func TestValidate(t *testing.T) {
	f := loadFixture(t)

	require.NoError(t, f.key.Validate())
	require.NoError(t, f.key.Public().Validate())

	err := f.key.Validate(rsa.WithMinBits(4096))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2048 bits")

	require.NoError(t, f.key.Validate(rsa.WithMinBits(1024), rsa.WithPrivateCheck(false)))

	var empty *rsa.Key

	require.ErrorIs(t, empty.Validate(), rsa.ErrNoKey)
}

func TestID(t *testing.T) {
	f := loadFixture(t)

	public, err := rsa.FromSPKI(f.spkiPublic)
	require.NoError(t, err)

	assert.Len(t, f.key.ID(), 64)
	assert.Equal(t, f.key.ID(), public.ID())

	other, err := rsa.GenerateKey(2048)
	require.NoError(t, err)

	assert.NotEqual(t, f.key.ID(), other.ID())
}
