// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package rsa contains the logic related to the RSA key management, signing and verification.
package rsa

import (
	"bytes"
	"crypto/rand"
	stdrsa "crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/youmark/pkcs8"
)

// Use is the intended use of the loaded key.
type Use int

// Key uses.
const (
	UsePrivate Use = iota
	UsePublic
)

// UseFromBool maps the legacy boolean key type flag, true meaning public.
//
// Deprecated: pass UsePublic or UsePrivate.
func UseFromBool(isPublic bool) Use {
	if isPublic {
		return UsePublic
	}

	return UsePrivate
}

// ParseUse parses "public" or "private".
func ParseUse(s string) (Use, error) {
	switch strings.ToLower(s) {
	case "private":
		return UsePrivate, nil
	case "public":
		return UsePublic, nil
	default:
		return UsePrivate, fmt.Errorf("unknown key type %q", s)
	}
}

// String implements fmt.Stringer.
func (u Use) String() string {
	if u == UsePublic {
		return "public"
	}

	return "private"
}

// Key represents an RSA key. It can be a public key or a private & public key pair.
//
// Key is immutable and safe for concurrent use.
type Key struct {
	private *stdrsa.PrivateKey
	public  *stdrsa.PublicKey
}

// GenerateKey generates a new RSA key pair.
func GenerateKey(bits int) (*Key, error) {
	private, err := stdrsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}

	return NewPrivateKey(private), nil
}

// NewPrivateKey wraps an RSA private key.
func NewPrivateKey(private *stdrsa.PrivateKey) *Key {
	return &Key{
		private: private,
		public:  &private.PublicKey,
	}
}

// NewPublicKey wraps an RSA public key.
func NewPublicKey(public *stdrsa.PublicKey) *Key {
	return &Key{
		public: public,
	}
}

// Load loads a key from any of the supported string representations:
//
//   - `file://` reference to a PKCS#1/PKCS#8 private key, SPKI/PKCS#1 public key or X.509 certificate,
//   - `private.pkcs1://`, `private.pkcs8://`, `public.pkcs1://`, `public.spki://` protocol strings,
//   - full PEM text of any of the above,
//   - base64 encoded DER without envelope.
func Load(thing string, use Use) (*Key, error) {
	return LoadEncoding(ParseEncoding(thing), use)
}

// LoadEncrypted loads a passphrase protected private key, see Load for the accepted forms.
//
// Both PKCS#8 `ENCRYPTED PRIVATE KEY` and legacy `Proc-Type: 4,ENCRYPTED` PEM blocks are supported.
func LoadEncrypted(thing, passphrase string) (*Key, error) {
	enc := ParseEncoding(thing)
	enc.Passphrase = passphrase

	return LoadEncoding(enc, UsePrivate)
}

// LoadFile loads a key from a PEM or DER encoded file.
func LoadFile(path string, use Use) (*Key, error) {
	return LoadEncoding(FileEncoding(path), use)
}

// LoadHandle loads a key from an already parsed *crypto/rsa.PrivateKey,
// *crypto/rsa.PublicKey, *x509.Certificate or *Key.
func LoadHandle(handle any, use Use) (*Key, error) {
	return LoadEncoding(HandleEncoding(handle), use)
}

// LoadEncoding normalizes and loads the key.
func LoadEncoding(enc Encoding, use Use) (*Key, error) {
	normalized, err := Normalize(enc, use)
	if err != nil {
		return nil, newKeyLoadError(enc.String(), use, err)
	}

	key, err := parse(normalized, use)
	if err != nil {
		return nil, newKeyLoadError(enc.String(), use, err)
	}

	return key, nil
}

// FromPKCS1 loads a base64 encoded PKCS#1 key without envelope.
func FromPKCS1(thing string, use Use) (*Key, error) {
	if use == UsePublic {
		return Load(string(SchemePublicPKCS1)+"://"+thing, use)
	}

	return Load(string(SchemePrivatePKCS1)+"://"+thing, use)
}

// FromPKCS8 loads a base64 encoded PKCS#8 private key without envelope.
func FromPKCS8(thing string) (*Key, error) {
	return Load(string(SchemePrivatePKCS8)+"://"+thing, UsePrivate)
}

// FromSPKI loads a base64 encoded SPKI public key without envelope.
func FromSPKI(thing string) (*Key, error) {
	return Load(string(SchemePublicSPKI)+"://"+thing, UsePublic)
}

// IsPrivate returns true if the key contains a private key.
func (k *Key) IsPrivate() bool {
	return k.private != nil
}

// Public returns the public part of the key.
func (k *Key) Public() *Key {
	if k.private == nil {
		return k
	}

	return NewPublicKey(k.public)
}

// PublicKey returns the underlying public key.
func (k *Key) PublicKey() *stdrsa.PublicKey {
	return k.public
}

// PrivateKey returns the underlying private key, nil for a public key.
func (k *Key) PrivateKey() *stdrsa.PrivateKey {
	return k.private
}

// Armor returns the key in PEM format: PKCS#8 for a private key, SPKI for a public key.
func (k *Key) Armor() (string, error) {
	if k.private == nil {
		return k.ArmorPublic()
	}

	der, err := x509.MarshalPKCS8PrivateKey(k.private)
	if err != nil {
		return "", err
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

// ArmorEncrypted returns the private key in PKCS#8 `ENCRYPTED PRIVATE KEY` PEM format.
func (k *Key) ArmorEncrypted(passphrase string) (string, error) {
	if k.private == nil {
		return "", ErrNotPrivate
	}

	if passphrase == "" {
		return "", ErrNoPassphrase
	}

	der, err := pkcs8.MarshalPrivateKey(k.private, []byte(passphrase), pkcs8.DefaultOpts)
	if err != nil {
		return "", err
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: der})), nil
}

// ArmorPublic returns only the public key in SPKI PEM format.
func (k *Key) ArmorPublic() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(k.public)
	if err != nil {
		return "", err
	}

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

func parse(enc Encoding, use Use) (*Key, error) {
	passphrase := []byte(enc.Passphrase)

	switch enc.Kind {
	case KindOpaqueHandle:
		return fromHandle(enc.Handle, use)
	case KindFilePath:
		data, err := os.ReadFile(enc.Payload)
		if err != nil {
			return nil, err
		}

		return parseBytes(data, use, passphrase)
	case KindPEM:
		return parseBytes([]byte(enc.Payload), use, passphrase)
	case KindRawBase64:
		der, err := base64.StdEncoding.DecodeString(enc.Payload)
		if err != nil {
			return nil, err
		}

		return parseDER(der, use, passphrase)
	case KindProtocolURI:
		return nil, fmt.Errorf("protocol %q was not normalized", enc.Scheme)
	default:
		return nil, fmt.Errorf("unknown key encoding %s", enc.Kind)
	}
}

func parseBytes(data []byte, use Use, passphrase []byte) (*Key, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		// not PEM, either binary DER or base64 DER
		trimmed := bytes.TrimSpace(data)

		der, err := base64.StdEncoding.DecodeString(string(trimmed))
		if err != nil {
			der = data
		}

		return parseDER(der, use, passphrase)
	}

	//nolint:staticcheck
	if x509.IsEncryptedPEMBlock(block) {
		if len(passphrase) == 0 {
			return nil, ErrNoPassphrase
		}

		der, err := x509.DecryptPEMBlock(block, passphrase) //nolint:staticcheck
		if err != nil {
			return nil, err
		}

		block = &pem.Block{Type: block.Type, Bytes: der}
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		private, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}

		return withUse(private, nil, use)
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, err
		}

		private, ok := parsed.(*stdrsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrNotRSA, parsed)
		}

		return withUse(private, nil, use)
	case "ENCRYPTED PRIVATE KEY":
		if len(passphrase) == 0 {
			return nil, ErrNoPassphrase
		}

		private, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, passphrase)
		if err != nil {
			return nil, err
		}

		return withUse(private, nil, use)
	case "RSA PUBLIC KEY":
		public, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}

		return withUse(nil, public, use)
	case "PUBLIC KEY":
		return parseSPKI(block.Bytes, use)
	case "CERTIFICATE":
		certificate, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}

		return fromHandle(certificate, use)
	default:
		return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
	}
}

func parseSPKI(der []byte, use Use) (*Key, error) {
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}

	public, ok := parsed.(*stdrsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrNotRSA, parsed)
	}

	return withUse(nil, public, use)
}

func parseDER(der []byte, use Use, passphrase []byte) (*Key, error) {
	var errs []error

	tryPrivate := func() (*Key, bool) {
		if len(passphrase) > 0 {
			private, err := pkcs8.ParsePKCS8PrivateKeyRSA(der, passphrase)
			if err == nil {
				return NewPrivateKey(private), true
			}

			errs = append(errs, err)
		}

		if parsed, err := x509.ParsePKCS8PrivateKey(der); err == nil {
			if private, ok := parsed.(*stdrsa.PrivateKey); ok {
				return NewPrivateKey(private), true
			}

			errs = append(errs, fmt.Errorf("%w: %T", ErrNotRSA, parsed))
		} else {
			errs = append(errs, err)
		}

		private, err := x509.ParsePKCS1PrivateKey(der)
		if err != nil {
			errs = append(errs, err)

			return nil, false
		}

		return NewPrivateKey(private), true
	}

	if use == UsePrivate {
		if key, ok := tryPrivate(); ok {
			return key, nil
		}

		return nil, errors.Join(errs...)
	}

	if key, err := parseSPKI(der, use); err == nil {
		return key, nil
	} else {
		errs = append(errs, err)
	}

	if public, err := x509.ParsePKCS1PublicKey(der); err == nil {
		return NewPublicKey(public), nil
	} else {
		errs = append(errs, err)
	}

	if certificate, err := x509.ParseCertificate(der); err == nil {
		return fromHandle(certificate, use)
	} else {
		errs = append(errs, err)
	}

	if key, ok := tryPrivate(); ok {
		return key.Public(), nil
	}

	return nil, errors.Join(errs...)
}

func fromHandle(handle any, use Use) (*Key, error) {
	switch h := handle.(type) {
	case nil:
		return nil, ErrNoKey
	case *Key:
		if h == nil {
			return nil, ErrNoKey
		}

		return withUse(h.private, h.public, use)
	case *stdrsa.PrivateKey:
		if h == nil {
			return nil, ErrNoKey
		}

		return withUse(h, nil, use)
	case *stdrsa.PublicKey:
		if h == nil {
			return nil, ErrNoKey
		}

		return withUse(nil, h, use)
	case *x509.Certificate:
		if h == nil {
			return nil, ErrNoKey
		}

		public, ok := h.PublicKey.(*stdrsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: certificate holds %T", ErrNotRSA, h.PublicKey)
		}

		return withUse(nil, public, use)
	default:
		return nil, fmt.Errorf("unsupported key handle %T", handle)
	}
}

func withUse(private *stdrsa.PrivateKey, public *stdrsa.PublicKey, use Use) (*Key, error) {
	if use == UsePrivate {
		if private == nil {
			return nil, ErrNotPrivate
		}

		return NewPrivateKey(private), nil
	}

	if private != nil {
		return NewPublicKey(&private.PublicKey), nil
	}

	return NewPublicKey(public), nil
}
