// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package credentials_test

import (
	"encoding/base64"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyalipay/easyalipay-go/pkg/credentials"
	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

func newCredentials(t *testing.T, appID string) *credentials.Credentials {
	t.Helper()

	merchant, err := rsa.GenerateKey(2048)
	require.NoError(t, err)

	platform, err := rsa.GenerateKey(2048)
	require.NoError(t, err)

	return &credentials.Credentials{
		AppID:      appID,
		PrivateKey: merchant,
		PublicKey:  platform.Public(),
		AppCertSN:  "50fa7bc5dc305a4fbdbe166689ddc827",
	}
}

func TestEncodeDecode(t *testing.T) {
	c := newCredentials(t, "2014072300007148")

	encoded, err := credentials.Encode(c)
	require.NoError(t, err)

	decoded, err := credentials.Decode(encoded)
	require.NoError(t, err)

	assert.Equal(t, "2014072300007148", decoded.AppID)
	assert.True(t, c.PrivateKey.PrivateKey().Equal(decoded.PrivateKey.PrivateKey()))
	assert.True(t, c.PublicKey.PublicKey().Equal(decoded.PublicKey.PublicKey()))
	assert.False(t, decoded.PublicKey.IsPrivate())

	assert.Equal(t, map[string]string{
		"app_id":      "2014072300007148",
		"app_cert_sn": "50fa7bc5dc305a4fbdbe166689ddc827",
	}, decoded.Params())
}

func TestDecodeErrors(t *testing.T) {
	_, err := credentials.Decode("!!!")
	assert.Error(t, err)

	_, err = credentials.Decode(base64.StdEncoding.EncodeToString([]byte(`{"private_key":"x"}`)))
	assert.ErrorIs(t, err, credentials.ErrNoAppID)

	_, err = credentials.Decode(base64.StdEncoding.EncodeToString([]byte(`{"app_id":"1","private_key":"x","public_key":"y"}`)))
	require.Error(t, err)

	var loadErr *rsa.KeyLoadError

	assert.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "2 errors occurred")

	_, err = credentials.Encode(&credentials.Credentials{})
	assert.ErrorIs(t, err, credentials.ErrNoAppID)
}

func TestEnv(t *testing.T) {
	encoded1, err := credentials.Encode(newCredentials(t, "2014072300000001"))
	require.NoError(t, err)

	t.Setenv(credentials.EasyAlipayCredentialsEnvVar, encoded1)

	encoded2, err := credentials.Encode(newCredentials(t, "2014072300000002"))
	require.NoError(t, err)

	t.Setenv(credentials.AlipayCredentialsEnvVar, encoded2)

	// both env vars are set, EasyAlipayCredentialsEnvVar should take precedence
	envKey, valueBase64 := credentials.GetFromEnv()
	assert.Equal(t, credentials.EasyAlipayCredentialsEnvVar, envKey)
	assert.Equal(t, encoded1, valueBase64)

	require.NoError(t, os.Unsetenv(credentials.EasyAlipayCredentialsEnvVar))

	// only AlipayCredentialsEnvVar is set
	envKey, valueBase64 = credentials.GetFromEnv()
	assert.Equal(t, credentials.AlipayCredentialsEnvVar, envKey)
	assert.Equal(t, encoded2, valueBase64)

	require.NoError(t, os.Unsetenv(credentials.AlipayCredentialsEnvVar))

	envKey, valueBase64 = credentials.GetFromEnv()
	assert.Empty(t, envKey)
	assert.Empty(t, valueBase64)
}
