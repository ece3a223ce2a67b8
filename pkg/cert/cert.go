// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package cert contains the X.509 certificate helpers of the certificate signing mode:
// loading certificate bundles and computing the `app_cert_sn` and `alipay_root_cert_sn` values.
package cert

import (
	"crypto/md5" //nolint:gosec
	"crypto/x509"
	"encoding/asn1"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Certificate is a parsed certificate of a bundle.
type Certificate struct {
	*x509.Certificate

	// PEM is the armored certificate.
	PEM string
}

// Attribute is a single `K=V` item of a distinguished name.
type Attribute struct {
	Key   string
	Value string
}

var attributeNames = map[string]string{
	"2.5.4.3":              "CN",
	"2.5.4.5":              "serialNumber",
	"2.5.4.6":              "C",
	"2.5.4.7":              "L",
	"2.5.4.8":              "ST",
	"2.5.4.9":              "street",
	"2.5.4.10":             "O",
	"2.5.4.11":             "OU",
	"2.5.4.17":             "postalCode",
	"1.2.840.113549.1.9.1": "emailAddress",
}

var signatureNames = map[x509.SignatureAlgorithm]string{
	x509.MD5WithRSA:       "md5WithRSAEncryption",
	x509.SHA1WithRSA:      "sha1WithRSAEncryption",
	x509.SHA256WithRSA:    "sha256WithRSAEncryption",
	x509.SHA384WithRSA:    "sha384WithRSAEncryption",
	x509.SHA512WithRSA:    "sha512WithRSAEncryption",
	x509.SHA256WithRSAPSS: "rsassaPss",
	x509.SHA384WithRSAPSS: "rsassaPss",
	x509.SHA512WithRSAPSS: "rsassaPss",
	x509.ECDSAWithSHA1:    "ecdsa-with-SHA1",
	x509.ECDSAWithSHA256:  "ecdsa-with-SHA256",
	x509.ECDSAWithSHA384:  "ecdsa-with-SHA384",
	x509.ECDSAWithSHA512:  "ecdsa-with-SHA512",
	x509.PureEd25519:      "ED25519",
}

// SignatureName returns the OpenSSL long name of the certificate signature algorithm, e.g. `sha256WithRSAEncryption`.
func (c *Certificate) SignatureName() string {
	if name, ok := signatureNames[c.SignatureAlgorithm]; ok {
		return name
	}

	return c.SignatureAlgorithm.String()
}

// IssuerAttributes returns the issuer attributes in certificate order.
func (c *Certificate) IssuerAttributes() []Attribute {
	attrs := make([]Attribute, 0, len(c.Issuer.Names))

	for _, name := range c.Issuer.Names {
		attrs = append(attrs, Attribute{
			Key:   attributeName(name.Type),
			Value: fmt.Sprint(name.Value),
		})
	}

	return attrs
}

// SN returns `md5(fold(issuer) + serial)`, the serial in decimal.
func (c *Certificate) SN() string {
	return MD5(Fold(c.IssuerAttributes()), c.SerialNumber.String())
}

// Parse parses all the certificates of a PEM bundle.
//
// Blocks which are not certificates are skipped. When pattern is not empty,
// only the certificates whose signature algorithm name contains it (case-insensitively) are returned.
// Certificates which cannot be parsed are reported together, the others are still returned.
func Parse(data []byte, pattern string) ([]*Certificate, error) {
	var (
		certs []*Certificate
		errs  error
	)

	for index := 0; ; {
		var block *pem.Block

		block, data = pem.Decode(data)
		if block == nil {
			break
		}

		if block.Type != "CERTIFICATE" {
			continue
		}

		index++

		parsed, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("certificate #%d: %w", index, err))

			continue
		}

		c := &Certificate{
			Certificate: parsed,
			PEM:         strings.TrimRight(string(pem.EncodeToMemory(block)), "\n"),
		}

		if pattern != "" && !strings.Contains(strings.ToLower(c.SignatureName()), strings.ToLower(pattern)) {
			continue
		}

		certs = append(certs, c)
	}

	return certs, errs
}

// Load loads the certificates from a file path, a `file://` reference or an RFC 2397 `data:` URI.
func Load(thing, pattern string) ([]*Certificate, error) {
	data, err := read(thing)
	if err != nil {
		return nil, err
	}

	return Parse(data, pattern)
}

// Extract returns the matching certificates in PEM format.
func Extract(thing, pattern string) (string, error) {
	certs, err := Load(thing, pattern)
	if err != nil {
		return "", err
	}

	pems := make([]string, 0, len(certs))

	for _, c := range certs {
		pems = append(pems, c.PEM)
	}

	return strings.Join(pems, "\n"), nil
}

// SN returns the SN of the matching certificates joined by `_`, e.g. for `alipay_root_cert_sn`.
func SN(thing, pattern string) (string, error) {
	certs, err := Load(thing, pattern)
	if err != nil {
		return "", err
	}

	return JoinSN(certs), nil
}

// JoinSN returns the SN of the certificates joined by `_`.
func JoinSN(certs []*Certificate) string {
	sns := make([]string, 0, len(certs))

	for _, c := range certs {
		sns = append(sns, c.SN())
	}

	return strings.Join(sns, "_")
}

// Fold joins the attributes as `K=V` in reversed order by `,`.
func Fold(attrs []Attribute) string {
	parts := make([]string, 0, len(attrs))

	for i := len(attrs) - 1; i >= 0; i-- {
		parts = append(parts, attrs[i].Key+"="+attrs[i].Value)
	}

	return strings.Join(parts, ",")
}

// MD5 returns the hex digest of the concatenated things.
func MD5(things ...string) string {
	h := md5.New() //nolint:gosec

	for _, thing := range things {
		h.Write([]byte(thing)) //nolint:errcheck
	}

	return hex.EncodeToString(h.Sum(nil))
}

func attributeName(oid asn1.ObjectIdentifier) string {
	if name, ok := attributeNames[oid.String()]; ok {
		return name
	}

	return oid.String()
}

func read(thing string) ([]byte, error) {
	if strings.HasPrefix(thing, "data:") {
		return decodeDataURI(thing)
	}

	return os.ReadFile(strings.TrimPrefix(thing, "file://"))
}
