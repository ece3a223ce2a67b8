// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cert_test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyalipay/easyalipay-go/pkg/cert"
)

func selfSigned(t *testing.T, key crypto.Signer, subject pkix.Name, serial int64) string {
	t.Helper()

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		Subject:               subject,
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	require.NoError(t, err)

	return strings.TrimRight(string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})), "\n")
}

type bundle struct {
	rsa   string
	ecdsa string
}

func newBundle(t *testing.T) bundle {
	t.Helper()

	rsaKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return bundle{
		rsa: selfSigned(t, rsaKey, pkix.Name{
			Country:            []string{"CN"},
			Organization:       []string{"EACommunity"},
			OrganizationalUnit: []string{"EACommunity Authority"},
			CommonName:         "EACommunity CA R0",
		}, 1234),
		ecdsa: selfSigned(t, ecKey, pkix.Name{
			Country:      []string{"CN"},
			Organization: []string{"EACommunity"},
			CommonName:   "EACommunity EC",
		}, 5678),
	}
}

func (b bundle) String() string {
	return b.rsa + "\n" + b.ecdsa + "\n"
}

func TestFold(t *testing.T) {
	assert.Equal(t,
		"CN=EACommunity CA R0,OU=EACommunity Authority,O=EACommunity,C=CN",
		cert.Fold([]cert.Attribute{
			{Key: "C", Value: "CN"},
			{Key: "O", Value: "EACommunity"},
			{Key: "OU", Value: "EACommunity Authority"},
			{Key: "CN", Value: "EACommunity CA R0"},
		}),
	)

	assert.Empty(t, cert.Fold(nil))
}

func TestMD5(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", cert.MD5())
	assert.Equal(t, cert.MD5("ab"), cert.MD5("a", "b"))
}

func TestParse(t *testing.T) {
	b := newBundle(t)

	// non-certificate blocks are ignored
	data := b.rsa + "\n" + string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{0x01}})) + b.ecdsa

	certs, err := cert.Parse([]byte(data), "")
	require.NoError(t, err)
	require.Len(t, certs, 2)

	assert.Equal(t, "sha256WithRSAEncryption", certs[0].SignatureName())
	assert.Equal(t, "ecdsa-with-SHA256", certs[1].SignatureName())
	assert.Equal(t, b.rsa, certs[0].PEM)
	assert.Equal(t, b.ecdsa, certs[1].PEM)

	assert.Equal(t, "2f81afba2d8a9ca305df4f8b02ab84f6", certs[0].SN())
	assert.Equal(t, "56586c297c965dfa2b9a139403efa93e", certs[1].SN())
	assert.Equal(t, "2f81afba2d8a9ca305df4f8b02ab84f6_56586c297c965dfa2b9a139403efa93e", cert.JoinSN(certs))
}

func TestParseFilter(t *testing.T) {
	b := newBundle(t)

	for _, tt := range []struct {
		pattern  string
		expected []string
	}{
		{pattern: "sha256WithRSAEncryption", expected: []string{b.rsa}},
		{pattern: "RSAENCRYPTION", expected: []string{b.rsa}},
		{pattern: "ecdsa-with", expected: []string{b.ecdsa}},
		{pattern: "sha256", expected: []string{b.rsa, b.ecdsa}},
		{pattern: "md5WithRSAEncryption"},
	} {
		t.Run(tt.pattern, func(t *testing.T) {
			certs, err := cert.Parse([]byte(b.String()), tt.pattern)
			require.NoError(t, err)

			pems := make([]string, 0, len(certs))
			for _, c := range certs {
				pems = append(pems, c.PEM)
			}

			assert.Equal(t, len(tt.expected), len(pems))

			for i := range tt.expected {
				assert.Equal(t, tt.expected[i], pems[i])
			}
		})
	}
}

func TestParseBroken(t *testing.T) {
	b := newBundle(t)

	broken := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("garbage")}))

	certs, err := cert.Parse([]byte(broken+b.rsa), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certificate #1")

	require.Len(t, certs, 1)
	assert.Equal(t, b.rsa, certs[0].PEM)
}

func TestLoad(t *testing.T) {
	b := newBundle(t)

	path := filepath.Join(t.TempDir(), "alipayRootCert.crt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	for _, tt := range []struct {
		name  string
		thing string
	}{
		{name: "path", thing: path},
		{name: "file", thing: "file://" + path},
		{name: "data base64", thing: "data:application/x-pem-file;base64," + base64.StdEncoding.EncodeToString([]byte(b.String()))},
		{name: "data slashes", thing: "data://text/plain;base64," + base64.StdEncoding.EncodeToString([]byte(b.String()))},
		{name: "data plain", thing: "data:," + url.PathEscape(b.String())},
	} {
		t.Run(tt.name, func(t *testing.T) {
			extracted, err := cert.Extract(tt.thing, "")
			require.NoError(t, err)
			assert.Equal(t, b.rsa+"\n"+b.ecdsa, extracted)

			sn, err := cert.SN(tt.thing, "sha256WithRSAEncryption")
			require.NoError(t, err)
			assert.Equal(t, "2f81afba2d8a9ca305df4f8b02ab84f6", sn)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := cert.Load(filepath.Join(t.TempDir(), "missing.crt"), "")
	require.Error(t, err)

	_, err = cert.Load("data:text/plain;base64", "")
	require.Error(t, err)

	_, err = cert.Load("data:;base64,!!!", "")
	require.Error(t, err)
}
