// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package message_test

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/easyalipay/easyalipay-go/pkg/message"
)

type mockSignerVerifier struct{}

func (mock mockSignerVerifier) Sign(data []byte) (string, error) {
	hash := sha256.Sum256(data)

	return hex.EncodeToString(hash[:]), nil
}

func (mock mockSignerVerifier) Verify(data []byte, signature string) (bool, error) {
	if signature == "broken" {
		return false, errors.New("malformed signature")
	}

	expected, _ := mock.Sign(data) //nolint:errcheck

	return signature == expected, nil
}

type failingSigner struct{}

func (failingSigner) Sign([]byte) (string, error) {
	return "", errors.New("no private key")
}

// signTypeSigner prefixes signatures with the `sign_type` it is bound to.
type signTypeSigner struct {
	signType string
}

func (s signTypeSigner) Sign(data []byte) (string, error) {
	signature, err := mockSignerVerifier{}.Sign(data)

	return s.signType + ":" + signature, err
}

func (s signTypeSigner) SignerFor(signType string) message.Signer {
	return signTypeSigner{signType: signType}
}
