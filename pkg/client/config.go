// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package client

import (
	"fmt"
	"maps"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"

	"github.com/easyalipay/easyalipay-go/pkg/client/interceptor"
	"github.com/easyalipay/easyalipay-go/pkg/credentials"
	"github.com/easyalipay/easyalipay-go/pkg/message"
)

// Version of the SDK, reported in the User-Agent.
const (
	MajorVersion = 0
	MinorVersion = 1
)

// DefaultBaseURL is the production gateway.
const DefaultBaseURL = "https://openapi.alipay.com/gateway.do"

// Config is the client configuration.
//
// The zero value of every field means its default.
type Config struct {
	// PrivateKeyHandle is an already loaded merchant private key, see rsa.LoadHandle. It precedes PrivateKey.
	PrivateKeyHandle any `yaml:"-"`

	// PublicKeyHandle is an already loaded platform public key, see rsa.LoadHandle. It precedes PublicKey.
	PublicKeyHandle any `yaml:"-"`

	// Transport is the base transport, a clone of http.DefaultTransport by default.
	Transport http.RoundTripper `yaml:"-"`

	// Location is the merchant time zone, it precedes Zone.
	Location *time.Location `yaml:"-"`

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger `yaml:"-"`

	// Now defaults to time.Now.
	Now func() time.Time `yaml:"-"`

	// Params are the protocol parameters sent with every request, e.g. `app_id`, `app_auth_token`.
	Params map[string]string `yaml:"params"`

	// Headers are the HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers"`

	// BaseURL is the gateway endpoint.
	BaseURL string `yaml:"base_url"`

	// PrivateKey is the merchant private key in any form accepted by rsa.Load.
	PrivateKey string `yaml:"private_key"`

	// PrivateKeyPassphrase decrypts an encrypted PrivateKey, see rsa.LoadEncrypted.
	PrivateKeyPassphrase string `yaml:"private_key_passphrase"`

	// PublicKey is the platform public key in any form accepted by rsa.Load.
	PublicKey string `yaml:"public_key"`

	// Zone is the IANA name of the merchant time zone.
	Zone string `yaml:"zone"`

	// Timeout of a whole request, no timeout by default.
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultParams returns the default protocol parameters.
func DefaultParams() map[string]string {
	return map[string]string{
		message.ParamCharset:  "UTF-8",
		message.ParamFormat:   "JSON",
		message.ParamSignType: "RSA2",
		message.ParamVersion:  "1.0",
	}
}

// DefaultHeaders returns the default HTTP headers.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": interceptor.FormContentType,
		"User-Agent":   UserAgent(),
	}
}

// UserAgent returns the User-Agent of the SDK, e.g. `EasyAlipay/0.1 Go/go1.22.5 (linux/amd64)`.
func UserAgent() string {
	return fmt.Sprintf("EasyAlipay/%d.%d Go/%s (%s/%s)", MajorVersion, MinorVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// FromCredentials returns the configuration of a credentials bundle.
func FromCredentials(c *credentials.Credentials) Config {
	cfg := Config{
		Params: c.Params(),
	}

	if c.PrivateKey != nil {
		cfg.PrivateKeyHandle = c.PrivateKey
	}

	if c.PublicKey != nil {
		cfg.PublicKeyHandle = c.PublicKey
	}

	return cfg
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("unable to open configuration file: %w", err)
	}

	defer f.Close() //nolint:errcheck

	dec := yaml.NewDecoder(f, yaml.Strict())
	if err = dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse configuration file: %w", err)
	}

	return cfg, nil
}

// withDefaults returns a copy of the configuration with the defaults merged in.
func (cfg Config) withDefaults() (Config, error) {
	resolved := cfg

	resolved.Params = DefaultParams()
	maps.Copy(resolved.Params, cfg.Params)

	resolved.Headers = DefaultHeaders()
	maps.Copy(resolved.Headers, cfg.Headers)

	if resolved.BaseURL == "" {
		resolved.BaseURL = DefaultBaseURL
	}

	if resolved.Now == nil {
		resolved.Now = time.Now
	}

	if resolved.Location == nil {
		if cfg.Zone == "" {
			resolved.Location = message.DefaultLocation()
		} else {
			loc, err := time.LoadLocation(cfg.Zone)
			if err != nil {
				return resolved, fmt.Errorf("invalid zone %q: %w", cfg.Zone, err)
			}

			resolved.Location = loc
		}
	}

	if resolved.Logger == nil {
		nop := zerolog.Nop()

		resolved.Logger = &nop
	}

	return resolved, nil
}
