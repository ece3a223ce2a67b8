// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package keystore stores the merchant and platform keys under the XDG data directory.
package keystore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/easyalipay/easyalipay-go/pkg/fileutils"
	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

const defaultKeyBits = 2048

// KeyProvider handles loading/saving the keys of an app id.
//
// The merchant private key is stored as `<app_id>-private.pem`, the platform public key as `<app_id>-public.pem`.
type KeyProvider struct {
	dataFileDirectory string
	keyBits           int
}

// NewKeyProvider creates a new KeyProvider.
func NewKeyProvider(dataFileDirectory string) *KeyProvider {
	return &KeyProvider{
		dataFileDirectory: dataFileDirectory,
		keyBits:           defaultKeyBits,
	}
}

// ReadKey reads a key from the filesystem.
func (provider *KeyProvider) ReadKey(appID string, use rsa.Use) (*rsa.Key, error) {
	keyPath, err := provider.KeyPath(appID, use)
	if err != nil {
		return nil, err
	}

	if !fileutils.FileExists(keyPath) {
		return nil, fmt.Errorf("no %s key for %s: %w", use, appID, os.ErrNotExist)
	}

	return rsa.LoadFile(keyPath, use)
}

// GenerateKey generates a new merchant key pair, it is not saved.
func (provider *KeyProvider) GenerateKey() (*rsa.Key, error) {
	return rsa.GenerateKey(provider.keyBits)
}

// WriteKey saves the key to disk and returns the save path.
//
// A private key is saved in PKCS#8, a public key (or the public half for rsa.UsePublic) in SPKI.
func (provider *KeyProvider) WriteKey(appID string, key *rsa.Key, use rsa.Use) (string, error) {
	var (
		armored string
		err     error
	)

	switch use {
	case rsa.UsePrivate:
		if !key.IsPrivate() {
			return "", rsa.ErrNotPrivate
		}

		armored, err = key.Armor()
	case rsa.UsePublic:
		armored, err = key.ArmorPublic()
	}

	if err != nil {
		return "", err
	}

	keyPath, err := provider.KeyPath(appID, use)
	if err != nil {
		return "", err
	}

	if err = fileutils.WriteFile(keyPath, []byte(armored), 0o600); err != nil {
		return "", err
	}

	return keyPath, nil
}

// DeleteKey deletes the key from disk.
func (provider *KeyProvider) DeleteKey(appID string, use rsa.Use) error {
	keyPath, err := provider.KeyPath(appID, use)
	if err != nil {
		return err
	}

	return os.Remove(keyPath)
}

// KeyPath returns the path of the key file, creating the parent directories.
func (provider *KeyProvider) KeyPath(appID string, use rsa.Use) (string, error) {
	if appID == "" || filepath.Base(appID) != appID {
		return "", fmt.Errorf("invalid app id %q", appID)
	}

	keyName := fmt.Sprintf("%s-%s.pem", appID, use)

	return xdg.DataFile(filepath.Join(provider.dataFileDirectory, keyName))
}
