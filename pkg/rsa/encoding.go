// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rsa

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind tells how a key is represented before normalization.
type Kind int

// Key representations.
const (
	KindRawBase64 Kind = iota
	KindPEM
	KindProtocolURI
	KindFilePath
	KindOpaqueHandle
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindRawBase64:
		return "base64"
	case KindPEM:
		return "pem"
	case KindProtocolURI:
		return "protocol"
	case KindFilePath:
		return "file"
	case KindOpaqueHandle:
		return "handle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Scheme is the protocol prefix of a `scheme://payload` key string.
type Scheme string

// Supported key protocols.
const (
	SchemePrivatePKCS1 Scheme = "private.pkcs1"
	SchemePrivatePKCS8 Scheme = "private.pkcs8"
	SchemePublicPKCS1  Scheme = "public.pkcs1"
	SchemePublicSPKI   Scheme = "public.spki"
)

// FileScheme is the prefix of local file references.
const FileScheme = "file://"

const (
	pemLineWidth = 64
	pemNeedle    = "-----BEGIN "
)

// pemLabels maps the protocols to their PEM envelope labels.
var pemLabels = map[Scheme]string{
	SchemePrivatePKCS1: "RSA PRIVATE",
	SchemePrivatePKCS8: "PRIVATE",
	SchemePublicPKCS1:  "RSA PUBLIC",
	SchemePublicSPKI:   "PUBLIC",
}

// RE2 has no backreferences, so the END label is captured separately and compared.
var pemEnvelopePattern = regexp.MustCompile(
	`-{5}BEGIN ((?:RSA )?(?:PUBLIC|PRIVATE)) KEY-{5}\r?\n([^-]+)\r?\n-{5}END ((?:RSA )?(?:PUBLIC|PRIVATE)) KEY-{5}`,
)

// Encoding is the parsed representation of caller supplied key material.
type Encoding struct {
	// Handle is set for KindOpaqueHandle.
	Handle any

	// Payload is the base64 body for KindRawBase64 and KindProtocolURI,
	// the full text for KindPEM and the filesystem path for KindFilePath.
	Payload string

	// Scheme is set for KindProtocolURI.
	Scheme Scheme

	// Passphrase decrypts an `ENCRYPTED PRIVATE KEY` or a legacy `Proc-Type: 4,ENCRYPTED` private key.
	Passphrase string

	Kind Kind
}

// ParseEncoding classifies a key string.
func ParseEncoding(thing string) Encoding {
	if path, ok := strings.CutPrefix(thing, FileScheme); ok {
		return Encoding{Kind: KindFilePath, Payload: path}
	}

	if scheme, payload, ok := strings.Cut(thing, "://"); ok {
		if _, known := pemLabels[Scheme(scheme)]; known {
			return Encoding{Kind: KindProtocolURI, Scheme: Scheme(scheme), Payload: payload}
		}
	}

	if strings.Contains(thing, pemNeedle) {
		return Encoding{Kind: KindPEM, Payload: thing}
	}

	return Encoding{Kind: KindRawBase64, Payload: strings.TrimSpace(thing)}
}

// FileEncoding references a key stored at the given filesystem path.
func FileEncoding(path string) Encoding {
	return Encoding{Kind: KindFilePath, Payload: path}
}

// HandleEncoding wraps an already loaded key, see LoadHandle for the accepted types.
func HandleEncoding(handle any) Encoding {
	return Encoding{Kind: KindOpaqueHandle, Handle: handle}
}

// String returns the original textual form.
func (e Encoding) String() string {
	switch e.Kind {
	case KindProtocolURI:
		return string(e.Scheme) + "://" + e.Payload
	case KindFilePath:
		return FileScheme + e.Payload
	case KindOpaqueHandle:
		return fmt.Sprintf("%T", e.Handle)
	case KindRawBase64, KindPEM:
		return e.Payload
	default:
		return e.Payload
	}
}

// Normalize resolves the encoding into a form the key parser consumes.
//
// Protocol strings become PEM envelopes, a PKCS#1 public key is converted to SPKI first.
// A PEM PKCS#1 public key is converted the same way when loading a public key.
// Everything else is returned as is.
func Normalize(enc Encoding, use Use) (Encoding, error) {
	normalized, err := normalize(enc, use)
	normalized.Passphrase = enc.Passphrase

	return normalized, err
}

func normalize(enc Encoding, use Use) (Encoding, error) {
	switch enc.Kind {
	case KindOpaqueHandle, KindFilePath, KindRawBase64:
		return enc, nil
	case KindProtocolURI:
		return normalizeProtocol(enc.Scheme, enc.Payload)
	case KindPEM:
		if use != UsePublic {
			return enc, nil
		}

		matches := pemEnvelopePattern.FindStringSubmatch(enc.Payload)
		if matches == nil || matches[1] != matches[3] || matches[1] != pemLabels[SchemePublicPKCS1] {
			return enc, nil
		}

		body := strings.NewReplacer("\r", "", "\n", "").Replace(matches[2])

		return normalizeProtocol(SchemePublicPKCS1, body)
	default:
		return enc, fmt.Errorf("unknown key encoding %s", enc.Kind)
	}
}

func normalizeProtocol(scheme Scheme, payload string) (Encoding, error) {
	if scheme == SchemePublicPKCS1 {
		spki, err := PKCS1ToSPKI(payload)
		if err != nil {
			return Encoding{}, err
		}

		scheme, payload = SchemePublicSPKI, spki
	}

	label, ok := pemLabels[scheme]
	if !ok {
		return Encoding{}, fmt.Errorf("unsupported key protocol %q", scheme)
	}

	return Encoding{Kind: KindPEM, Payload: envelope(label, payload)}, nil
}

func envelope(label, body string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "-----BEGIN %s KEY-----\n", label)

	for len(body) > pemLineWidth {
		sb.WriteString(body[:pemLineWidth])
		sb.WriteByte('\n')

		body = body[pemLineWidth:]
	}

	sb.WriteString(body)
	fmt.Fprintf(&sb, "\n-----END %s KEY-----", label)

	return sb.String()
}
