// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/easyalipay/easyalipay-go/pkg/client"
	"github.com/easyalipay/easyalipay-go/pkg/credentials"
	"github.com/easyalipay/easyalipay-go/pkg/keystore"
	"github.com/easyalipay/easyalipay-go/pkg/message"
	"github.com/easyalipay/easyalipay-go/pkg/page"
	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

type callFlags struct {
	config  string
	appID   string
	baseURL string
	content string
	keyDir  string
	params  []string
	get     bool
	pager   bool
}

func newCallCmd(logger *zerolog.Logger) *cobra.Command {
	var flags callFlags

	cmd := &cobra.Command{
		GroupID: "gateway",
		Use:     "call METHOD",
		Short:   "Send a signed request to the gateway and verify the response",
		Long: `Send a signed OpenAPI request and print the verified response payload.

The configuration is read from --config, or from the base64 credentials
bundle in $EASYALIPAY_CREDENTIALS / $ALIPAY_CREDENTIALS. Keys missing from
the configuration are read from the key store.

With --pager the request is not sent: the auto-submit page is opened in
the browser (set BROWSER=echo to print it).`,
		Example: `  easyalipay call alipay.trade.query --config alipay.yaml --content '{"out_trade_no":"20150320010101001"}'
  easyalipay call AlipayTradePagePay --pager --param return_url=https://example.com/return --content @order.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolveConfig()
			if err != nil {
				return err
			}

			cfg.Logger = logger

			c, err := client.New(cfg)
			if err != nil {
				return err
			}

			opts, err := flags.requestOptions()
			if err != nil {
				return err
			}

			builder := c.Chain(args[0])

			var resp *http.Response

			if flags.get {
				resp, err = builder.Get(cmd.Context(), opts)
			} else {
				resp, err = builder.Post(cmd.Context(), opts)
			}

			if err != nil {
				return err
			}

			defer resp.Body.Close() //nolint:errcheck

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if flags.pager {
				return page.Open(cmd.OutOrStdout(), string(body))
			}

			event := logger.Info()
			if resp.Header.Get(message.VerifiedHeaderKey) != message.VerifiedOK {
				event = logger.Warn()
			}

			event.
				Int("status", resp.StatusCode).
				Str("responder", resp.Header.Get(message.ResponderHeaderKey)).
				Bool("verified", resp.Header.Get(message.VerifiedHeaderKey) == message.VerifiedOK).
				Msg("response received")

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(body))

			return err
		},
	}

	cmd.Flags().StringVarP(&flags.config, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVar(&flags.appID, "app-id", "", "Merchant application id, overrides the configuration")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "Gateway endpoint, overrides the configuration")
	cmd.Flags().StringVar(&flags.content, "content", "", "Business content JSON, @FILE reads it from a file")
	cmd.Flags().StringVar(&flags.keyDir, "key-dir", defaultKeyDirectory, "Key store directory under the XDG data home")
	cmd.Flags().StringArrayVarP(&flags.params, "param", "p", nil, "Protocol parameter k=v, e.g. notify_url, may be repeated")
	cmd.Flags().BoolVar(&flags.get, "get", false, "Send as GET, the signed data travels in the query")
	cmd.Flags().BoolVar(&flags.pager, "pager", false, "Render the auto-submit page instead of sending the request")

	return cmd
}

func (f callFlags) resolveConfig() (client.Config, error) {
	var cfg client.Config

	switch envKey, value := credentials.GetFromEnv(); {
	case f.config != "":
		loaded, err := client.LoadConfig(f.config)
		if err != nil {
			return cfg, err
		}

		cfg = loaded
	case envKey != "":
		creds, err := credentials.Decode(value)
		if err != nil {
			return cfg, fmt.Errorf("invalid credentials in %s: %w", envKey, err)
		}

		cfg = client.FromCredentials(creds)
	}

	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}

	if f.appID != "" {
		cfg.Params[message.ParamAppID] = f.appID
	}

	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}

	appID := cfg.Params[message.ParamAppID]
	if appID == "" {
		return cfg, errors.New("no app_id configured")
	}

	provider := keystore.NewKeyProvider(f.keyDir)

	if cfg.PrivateKey == "" && cfg.PrivateKeyHandle == nil {
		key, err := provider.ReadKey(appID, rsa.UsePrivate)
		if err != nil {
			return cfg, fmt.Errorf("no merchant private key configured: %w", err)
		}

		cfg.PrivateKeyHandle = key
	}

	if cfg.PublicKey == "" && cfg.PublicKeyHandle == nil {
		key, err := provider.ReadKey(appID, rsa.UsePublic)
		if err != nil {
			return cfg, fmt.Errorf("no platform public key configured: %w", err)
		}

		cfg.PublicKeyHandle = key
	}

	return cfg, nil
}

func (f callFlags) requestOptions() (client.RequestOptions, error) {
	opts := client.RequestOptions{
		Pager: f.pager,
	}

	if f.content != "" {
		content := []byte(f.content)

		if path, ok := strings.CutPrefix(f.content, "@"); ok {
			data, err := os.ReadFile(path)
			if err != nil {
				return opts, err
			}

			content = data
		}

		if !json.Valid(content) {
			return opts, errors.New("business content is not valid JSON")
		}

		opts.Content = json.RawMessage(content)
	}

	if len(f.params) > 0 {
		opts.Params = make(map[string]string, len(f.params))

		for _, param := range f.params {
			key, value, ok := strings.Cut(param, "=")
			if !ok || key == "" {
				return opts, fmt.Errorf("invalid parameter %q, expected k=v", param)
			}

			opts.Params[key] = value
		}
	}

	return opts, nil
}
