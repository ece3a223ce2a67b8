// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package aescbc implements the AES-CBC with PKCS#7 padding encryption of the business content.
package aescbc

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

// BlockSize is the AES block size.
const BlockSize = aes.BlockSize

var (
	// ErrInvalidPadding is returned when the decrypted data has no valid PKCS#7 padding.
	ErrInvalidPadding = errors.New("invalid PKCS#7 padding")

	// ErrInvalidIV is returned when the initialization vector is not BlockSize long.
	ErrInvalidIV = errors.New("initialization vector must be 16 bytes")
)

// Encrypt encrypts the plaintext and returns the base64 encoded ciphertext.
//
// The key is base64 encoded, its length selects AES-128, AES-192 or AES-256.
// A nil iv means a zero initialization vector.
func Encrypt(plaintext, key string, iv []byte) (string, error) {
	mode, err := newMode(key, iv, cipher.NewCBCEncrypter)
	if err != nil {
		return "", fmt.Errorf("encrypting failed: %w", err)
	}

	data := pad([]byte(plaintext))
	mode.CryptBlocks(data, data)

	return base64.StdEncoding.EncodeToString(data), nil
}

// Decrypt decrypts the base64 encoded ciphertext.
func Decrypt(ciphertext, key string, iv []byte) (string, error) {
	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decrypting failed: %w", err)
	}

	if len(data) == 0 || len(data)%BlockSize != 0 {
		return "", fmt.Errorf("decrypting failed: ciphertext is not a multiple of the block size")
	}

	mode, err := newMode(key, iv, cipher.NewCBCDecrypter)
	if err != nil {
		return "", fmt.Errorf("decrypting failed: %w", err)
	}

	mode.CryptBlocks(data, data)

	plaintext, err := unpad(data)
	if err != nil {
		return "", fmt.Errorf("decrypting failed: %w", err)
	}

	return string(plaintext), nil
}

func newMode(key string, iv []byte, newFn func(cipher.Block, []byte) cipher.BlockMode) (cipher.BlockMode, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}

	if iv == nil {
		iv = make([]byte, BlockSize)
	}

	if len(iv) != BlockSize {
		return nil, ErrInvalidIV
	}

	return newFn(block, iv), nil
}

func pad(data []byte) []byte {
	n := BlockSize - len(data)%BlockSize

	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > BlockSize || n > len(data) {
		return nil, ErrInvalidPadding
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrInvalidPadding
		}
	}

	return data[:len(data)-n], nil
}
