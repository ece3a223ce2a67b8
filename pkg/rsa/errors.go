// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rsa

import (
	"errors"
	"fmt"
)

// maxInputLength limits how much of the offending input is kept in errors.
const maxInputLength = 64

var (
	// ErrNotPrivate is returned when a private key operation is attempted with a public-only key.
	ErrNotPrivate = errors.New("key has no private part")

	// ErrNotRSA is returned when the key material holds a key of another algorithm.
	ErrNotRSA = errors.New("not an RSA key")

	// ErrNoKey is returned when no key material was given.
	ErrNoKey = errors.New("no key material")

	// ErrNoPassphrase is returned when an encrypted private key is loaded without a passphrase.
	ErrNoPassphrase = errors.New("encrypted private key requires a passphrase")
)

// KeyLoadError is returned when key material could not be parsed or loaded.
type KeyLoadError struct {
	Err   error
	Input string
	Use   Use
}

func newKeyLoadError(input string, use Use, err error) *KeyLoadError {
	return &KeyLoadError{
		Input: truncate(input),
		Use:   use,
		Err:   err,
	}
}

// Error implements error.
func (e *KeyLoadError) Error() string {
	return fmt.Sprintf("cannot load %s key from %q: %v", e.Use, e.Input, e.Err)
}

// Unwrap returns the underlying error.
func (e *KeyLoadError) Unwrap() error {
	return e.Err
}

// SigningError is returned when the signing operation fails.
type SigningError struct {
	Err       error
	Algorithm Algorithm
}

// Error implements error.
func (e *SigningError) Error() string {
	return fmt.Sprintf("signing by %s failed, check whether the private key is correct: %v", e.Algorithm, e.Err)
}

// Unwrap returns the underlying error.
func (e *SigningError) Unwrap() error {
	return e.Err
}

// VerificationError is returned when the verification could not be executed at all.
//
// A well-formed signature which does not match is not a VerificationError.
type VerificationError struct {
	Err       error
	Algorithm Algorithm
}

// Error implements error.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("verifying by %s failed, check whether the public key is correct: %v", e.Algorithm, e.Err)
}

// Unwrap returns the underlying error.
func (e *VerificationError) Unwrap() error {
	return e.Err
}

func truncate(s string) string {
	if len(s) <= maxInputLength {
		return s
	}

	return s[:maxInputLength] + "..."
}
