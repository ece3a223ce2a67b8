// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package client provides the gateway client: configuration, the signing and verifying
// transport chain and the chainable OpenAPI method builder.
package client

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/easyalipay/easyalipay-go/pkg/client/interceptor"
	"github.com/easyalipay/easyalipay-go/pkg/message"
	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

// RequestOptions are the options of a single gateway request.
type RequestOptions struct {
	// Content is the business content, serialized into `biz_content`.
	Content any

	// Body is sent as is, e.g. a multipart upload. The signed data goes to the query then.
	Body io.Reader

	// Query is merged over the query of the request URI.
	Query url.Values

	// Params are merged over the configured protocol parameters.
	Params map[string]string

	// Header is merged over the configured headers.
	Header http.Header

	// PagerFunc overrides the page rendering of a pager request, it implies Pager.
	PagerFunc interceptor.PagerFunc

	// Pager returns the auto-submit HTML page instead of dispatching the request.
	Pager bool
}

// Client is the gateway client.
//
// Client is immutable and safe for concurrent use.
type Client struct {
	privateKey *rsa.Key
	publicKey  *rsa.Key
	http       *http.Client
	baseURL    *url.URL
	logger     zerolog.Logger
	config     Config
}

// New builds a client, both keys are loaded and any failures are reported together.
func New(cfg Config) (*Client, error) {
	resolved, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(resolved.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	var errs error

	privateKey, err := loadKey(resolved.PrivateKeyHandle, resolved.PrivateKey, resolved.PrivateKeyPassphrase, rsa.UsePrivate)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("merchant private key: %w", err))
	}

	publicKey, err := loadKey(resolved.PublicKeyHandle, resolved.PublicKey, "", rsa.UsePublic)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("platform public key: %w", err))
	}

	if errs != nil {
		return nil, errs
	}

	alg := rsa.ParseAlgorithm(resolved.Params[message.ParamSignType])

	signer := interceptor.NewSignature(resolved.Transport, privateKey.Signer(alg), interceptor.SignerOptions{
		Params:   resolved.Params,
		Now:      resolved.Now,
		Location: resolved.Location,
		Logger:   resolved.Logger,
	})

	verifier := interceptor.NewVerifier(signer, publicKey.Signer(alg), resolved.Logger)

	return &Client{
		privateKey: privateKey,
		publicKey:  publicKey,
		baseURL:    baseURL,
		logger:     *resolved.Logger,
		config:     resolved,
		http: &http.Client{
			Transport: newHeaderTransport(verifier, resolved.Headers),
			Timeout:   resolved.Timeout,
		},
	}, nil
}

func loadKey(handle any, thing, passphrase string, use rsa.Use) (*rsa.Key, error) {
	if handle != nil {
		return rsa.LoadHandle(handle, use)
	}

	if thing == "" {
		return nil, rsa.ErrNoKey
	}

	if passphrase != "" && use == rsa.UsePrivate {
		return rsa.LoadEncrypted(thing, passphrase)
	}

	return rsa.Load(thing, use)
}

// Config returns the resolved configuration.
func (c *Client) Config() Config {
	cfg := c.config

	cfg.Params = maps.Clone(c.config.Params)
	cfg.Headers = maps.Clone(c.config.Headers)

	return cfg
}

// HTTPClient returns the underlying HTTP client with the signing and verifying transport chain.
//
// Requests sent directly are signed with the options found in their context, see interceptor.WithOptions.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// PrivateKey returns the merchant private key.
func (c *Client) PrivateKey() *rsa.Key {
	return c.privateKey
}

// PublicKey returns the platform public key.
func (c *Client) PublicKey() *rsa.Key {
	return c.publicKey
}

// Request sends a signed request and verifies the response.
//
// The uri is resolved against the base URL, an empty uri means the base URL itself.
func (c *Client) Request(ctx context.Context, method, uri string, opts RequestOptions) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, uri, opts)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Str("method", req.URL.Query().Get(message.ParamMethod)).Str("http_method", method).Msg("sending request")

	return c.http.Do(req)
}

// RequestAsync sends the request in the background.
func (c *Client) RequestAsync(ctx context.Context, method, uri string, opts RequestOptions) *Future {
	return newFuture(func() (*http.Response, error) {
		return c.Request(ctx, method, uri, opts)
	})
}

func (c *Client) newRequest(ctx context.Context, method, uri string, opts RequestOptions) (*http.Request, error) {
	target := *c.baseURL

	if uri != "" {
		ref, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid uri %q: %w", uri, err)
		}

		target = *c.baseURL.ResolveReference(ref)
	}

	if len(opts.Query) > 0 {
		query := target.Query()

		for key, values := range opts.Query {
			query[key] = values
		}

		target.RawQuery = query.Encode()
	}

	ctx = interceptor.WithOptions(ctx, &interceptor.Options{
		Content:   opts.Content,
		Params:    opts.Params,
		Pager:     opts.Pager,
		PagerFunc: opts.PagerFunc,
	})

	req, err := http.NewRequestWithContext(ctx, method, target.String(), opts.Body)
	if err != nil {
		return nil, err
	}

	for key, values := range opts.Header {
		req.Header[http.CanonicalHeaderKey(key)] = slices.Clone(values)
	}

	return req, nil
}
