// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package message

// Signer is a signer of a gateway request, e.g. a merchant RSA private key.
type Signer interface {
	Sign(data []byte) (string, error)
}

// SignatureVerifier is a verifier of a gateway response signature, e.g. the platform RSA public key.
//
// A signature which does not match returns false and no error.
type SignatureVerifier interface {
	Verify(data []byte, signature string) (bool, error)
}

// SignTypeSigner is a Signer which can sign with the algorithm named by a `sign_type` value.
//
// Seal switches to it when the working parameter set carries `sign_type`.
type SignTypeSigner interface {
	Signer
	SignerFor(signType string) Signer
}

// SignTypeVerifier is a SignatureVerifier which can verify with the algorithm named by a `sign_type` value.
type SignTypeVerifier interface {
	SignatureVerifier
	VerifierFor(signType string) SignatureVerifier
}

// ForSignType returns the signer bound to the `sign_type` value, signer itself when it cannot switch.
func ForSignType(signer Signer, signType string) Signer {
	if s, ok := signer.(SignTypeSigner); ok && signType != "" {
		return s.SignerFor(signType)
	}

	return signer
}

// VerifierForSignType returns the verifier bound to the `sign_type` value, verifier itself when it cannot switch.
func VerifierForSignType(verifier SignatureVerifier, signType string) SignatureVerifier {
	if v, ok := verifier.(SignTypeVerifier); ok && signType != "" {
		return v.VerifierFor(signType)
	}

	return verifier
}
