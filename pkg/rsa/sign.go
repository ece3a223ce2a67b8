// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rsa

import (
	"crypto"
	"crypto/rand"
	stdrsa "crypto/rsa"
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/easyalipay/easyalipay-go/pkg/message"
)

// Algorithm is the `sign_type` of the gateway.
type Algorithm string

// Supported algorithms.
const (
	// AlgorithmRSA is SHA1 with RSA PKCS#1 v1.5.
	AlgorithmRSA Algorithm = "RSA"

	// AlgorithmRSA2 is SHA256 with RSA PKCS#1 v1.5.
	AlgorithmRSA2 Algorithm = "RSA2"

	DefaultAlgorithm = AlgorithmRSA2
)

// ParseAlgorithm parses the `sign_type` value, anything but "RSA" maps to RSA2.
func ParseAlgorithm(s string) Algorithm {
	if strings.EqualFold(s, string(AlgorithmRSA)) {
		return AlgorithmRSA
	}

	return AlgorithmRSA2
}

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	return string(a)
}

// Name returns the OpenSSL long name of the signature algorithm.
func (a Algorithm) Name() string {
	if a == AlgorithmRSA {
		return "sha1WithRSAEncryption"
	}

	return "sha256WithRSAEncryption"
}

// Hash returns the digest algorithm.
func (a Algorithm) Hash() crypto.Hash {
	if a == AlgorithmRSA {
		return crypto.SHA1
	}

	return crypto.SHA256
}

func (a Algorithm) digest(data []byte) []byte {
	if a == AlgorithmRSA {
		sum := sha1.Sum(data) //nolint:gosec

		return sum[:]
	}

	sum := sha256.Sum256(data)

	return sum[:]
}

// Sign signs the data, the signature is base64 encoded.
func (k *Key) Sign(data []byte, alg Algorithm) (string, error) {
	if k == nil || k.private == nil {
		return "", &SigningError{Algorithm: alg, Err: ErrNotPrivate}
	}

	signature, err := stdrsa.SignPKCS1v15(rand.Reader, k.private, alg.Hash(), alg.digest(data))
	if err != nil {
		return "", &SigningError{Algorithm: alg, Err: err}
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}

// Verify checks the base64 encoded signature of the data.
//
// A signature which does not match returns false and no error.
func (k *Key) Verify(data []byte, signature string, alg Algorithm) (bool, error) {
	if k == nil || k.public == nil {
		return false, &VerificationError{Algorithm: alg, Err: ErrNoKey}
	}

	raw, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, &VerificationError{Algorithm: alg, Err: err}
	}

	err = stdrsa.VerifyPKCS1v15(k.public, alg.Hash(), alg.digest(data), raw)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, stdrsa.ErrVerification) {
		return false, nil
	}

	return false, &VerificationError{Algorithm: alg, Err: err}
}

// Sign signs the message with the key.
func Sign(message string, key *Key, alg Algorithm) (string, error) {
	return key.Sign([]byte(message), alg)
}

// Verify checks the signature of the message with the key.
func Verify(message, signature string, key *Key, alg Algorithm) (bool, error) {
	return key.Verify([]byte(message), signature, alg)
}

// Signer binds a key to an algorithm.
type Signer struct {
	key *Key
	alg Algorithm
}

// Signer returns a signer using the given algorithm.
func (k *Key) Signer(alg Algorithm) *Signer {
	return &Signer{key: k, alg: alg}
}

// Algorithm returns the signer algorithm.
func (s *Signer) Algorithm() Algorithm {
	return s.alg
}

// Key returns the signer key.
func (s *Signer) Key() *Key {
	return s.key
}

// Sign signs the data.
func (s *Signer) Sign(data []byte) (string, error) {
	return s.key.Sign(data, s.alg)
}

// Verify checks the signature of the data.
func (s *Signer) Verify(data []byte, signature string) (bool, error) {
	return s.key.Verify(data, signature, s.alg)
}

// SignerFor returns the signer of the same key bound to the `sign_type` value.
func (s *Signer) SignerFor(signType string) message.Signer {
	return s.key.Signer(ParseAlgorithm(signType))
}

// VerifierFor returns the verifier of the same key bound to the `sign_type` value.
func (s *Signer) VerifierFor(signType string) message.SignatureVerifier {
	return s.key.Signer(ParseAlgorithm(signType))
}
