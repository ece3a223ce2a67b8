// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package credentials contains the merchant credentials bundle related logic.
package credentials

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/easyalipay/easyalipay-go/pkg/message"
	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

const (
	// EasyAlipayCredentialsEnvVar is the name of the environment variable
	// that contains the base64-encoded credentials JSON.
	EasyAlipayCredentialsEnvVar = "EASYALIPAY_CREDENTIALS"

	// AlipayCredentialsEnvVar is the name of the environment variable
	// that contains the base64-encoded credentials JSON.
	AlipayCredentialsEnvVar = "ALIPAY_CREDENTIALS"
)

// ErrNoAppID is returned when the bundle has no app id.
var ErrNoAppID = errors.New("credentials have no app_id")

// JSON is the JSON representation of the credentials.
type JSON struct {
	// AppID is the merchant application id.
	AppID string `json:"app_id"`

	// PrivateKey is the merchant private key, in any form accepted by rsa.Load.
	PrivateKey string `json:"private_key"`

	// PublicKey is the platform public key, in any form accepted by rsa.Load.
	PublicKey string `json:"public_key"`

	AppCertSN        string `json:"app_cert_sn,omitempty"`
	AlipayRootCertSN string `json:"alipay_root_cert_sn,omitempty"`
}

// Credentials represent the merchant app id with its keys.
type Credentials struct {
	PrivateKey       *rsa.Key
	PublicKey        *rsa.Key
	AppID            string
	AppCertSN        string
	AlipayRootCertSN string
}

// GetFromEnv checks if credentials are available in the environment variables.
// If a known environment variable is found, its name and value are returned.
func GetFromEnv() (envKey, valueBase64 string) {
	for _, alias := range []string{EasyAlipayCredentialsEnvVar, AlipayCredentialsEnvVar} {
		value, valueOk := os.LookupEnv(alias)
		if !valueOk {
			continue
		}

		return alias, value
	}

	return "", ""
}

// Encode encodes the credentials into a base64 encoded JSON string.
func Encode(c *Credentials) (string, error) {
	if c.AppID == "" {
		return "", ErrNoAppID
	}

	var err error

	bundle := JSON{
		AppID:            c.AppID,
		AppCertSN:        c.AppCertSN,
		AlipayRootCertSN: c.AlipayRootCertSN,
	}

	if c.PrivateKey != nil {
		if bundle.PrivateKey, err = c.PrivateKey.Armor(); err != nil {
			return "", fmt.Errorf("failed to armor private key: %w", err)
		}
	}

	if c.PublicKey != nil {
		if bundle.PublicKey, err = c.PublicKey.ArmorPublic(); err != nil {
			return "", fmt.Errorf("failed to armor public key: %w", err)
		}
	}

	bundleJSON, err := json.Marshal(bundle)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(bundleJSON), nil
}

// Decode parses and decodes the credentials from a base64 encoded JSON string.
//
// Both keys are loaded and any failures are reported together.
func Decode(valueBase64 string) (*Credentials, error) {
	bundleJSON, err := base64.StdEncoding.DecodeString(valueBase64)
	if err != nil {
		return nil, err
	}

	var bundle JSON

	if err = json.Unmarshal(bundleJSON, &bundle); err != nil {
		return nil, err
	}

	if bundle.AppID == "" {
		return nil, ErrNoAppID
	}

	c := &Credentials{
		AppID:            bundle.AppID,
		AppCertSN:        bundle.AppCertSN,
		AlipayRootCertSN: bundle.AlipayRootCertSN,
	}

	var errs error

	if bundle.PrivateKey != "" {
		if c.PrivateKey, err = rsa.Load(bundle.PrivateKey, rsa.UsePrivate); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if bundle.PublicKey != "" {
		if c.PublicKey, err = rsa.Load(bundle.PublicKey, rsa.UsePublic); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if errs != nil {
		return nil, errs
	}

	return c, nil
}

// Params returns the protocol parameters of the credentials.
func (c *Credentials) Params() map[string]string {
	params := map[string]string{
		message.ParamAppID: c.AppID,
	}

	if c.AppCertSN != "" {
		params[message.ParamAppCertSN] = c.AppCertSN
	}

	if c.AlipayRootCertSN != "" {
		params[message.ParamAlipayRootCertSN] = c.AlipayRootCertSN
	}

	return params
}
