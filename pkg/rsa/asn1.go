// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rsa

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// DER tags used when wrapping a PKCS#1 public key.
const (
	tagBitString = 0x03
	tagSequence  = 0x30
)

// rsaEncryptionAlgorithmIdentifier is SEQUENCE { OID 1.2.840.113549.1.1.1, NULL }.
//
// See https://datatracker.ietf.org/doc/html/rfc3447#appendix-A.1.
var rsaEncryptionAlgorithmIdentifier = []byte{
	0x30, 0x0d, 0x06, 0x09, 0x2a, 0x86, 0x48, 0x86, 0xf7, 0x0d, 0x01, 0x01, 0x01, 0x05, 0x00,
}

// EncodeLength encodes a DER content length as defined in X.690 section 8.1.3.
//
// Lengths up to 127 use the short form, anything longer the long form.
func EncodeLength(length int) []byte {
	if length <= 0x7f {
		return []byte{byte(length)}
	}

	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], uint64(length))

	i := 0
	for buf[i] == 0 {
		i++
	}

	return append([]byte{0x80 | byte(len(buf)-i)}, buf[i:]...)
}

// PKCS1ToSPKI converts a base64 encoded PKCS#1 RSAPublicKey (without envelope)
// into a base64 encoded SubjectPublicKeyInfo.
func PKCS1ToSPKI(pkcs1 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(pkcs1)
	if err != nil {
		return "", fmt.Errorf("failed to decode PKCS#1 public key: %w", err)
	}

	return base64.StdEncoding.EncodeToString(wrapPKCS1PublicKey(raw)), nil
}

func wrapPKCS1PublicKey(raw []byte) []byte {
	// leading zero is the BIT STRING "unused bits" count
	bits := make([]byte, 0, len(raw)+1)
	bits = append(bits, 0x00)
	bits = append(bits, raw...)

	inner := make([]byte, 0, len(rsaEncryptionAlgorithmIdentifier)+len(bits)+6)
	inner = append(inner, rsaEncryptionAlgorithmIdentifier...)
	inner = append(inner, tagBitString)
	inner = append(inner, EncodeLength(len(bits))...)
	inner = append(inner, bits...)

	out := make([]byte, 0, len(inner)+6)
	out = append(out, tagSequence)
	out = append(out, EncodeLength(len(inner))...)

	return append(out, inner...)
}
