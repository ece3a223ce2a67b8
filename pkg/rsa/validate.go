// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rsa

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
)

// Key validation defaults.
const (
	DefaultMinBits         = 2048
	DefaultPrecomputeCheck = true
)

type validationOptions struct {
	minBits         int
	precomputeCheck bool
}

func newDefaultValidationOptions() validationOptions {
	return validationOptions{
		minBits:         DefaultMinBits,
		precomputeCheck: DefaultPrecomputeCheck,
	}
}

// ValidationOption represents a functional validation option.
type ValidationOption func(*validationOptions)

// WithMinBits customizes the minimum modulus size in the validation.
func WithMinBits(minBits int) ValidationOption {
	return func(o *validationOptions) {
		o.minBits = minBits
	}
}

// WithPrivateCheck sets whether the private key primes are checked for consistency.
func WithPrivateCheck(check bool) ValidationOption {
	return func(o *validationOptions) {
		o.precomputeCheck = check
	}
}

// Validate validates the key.
func (k *Key) Validate(opt ...ValidationOption) error {
	options := newDefaultValidationOptions()

	for _, o := range opt {
		o(&options)
	}

	if k == nil || k.public == nil {
		return ErrNoKey
	}

	if bits := k.public.N.BitLen(); bits < options.minBits {
		return fmt.Errorf("key is too short: %d bits, at least %d required", bits, options.minBits)
	}

	if k.public.E < 3 || k.public.E%2 == 0 {
		return fmt.Errorf("key has an invalid public exponent %d", k.public.E)
	}

	if k.private != nil && options.precomputeCheck {
		if err := k.private.Validate(); err != nil {
			return fmt.Errorf("key is not consistent: %w", err)
		}
	}

	return nil
}

// ID returns the hex encoded SHA-256 fingerprint of the SPKI encoded public key.
func (k *Key) ID() string {
	der, err := x509.MarshalPKIXPublicKey(k.public)
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(der)

	return hex.EncodeToString(sum[:])
}
