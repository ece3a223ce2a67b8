// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package client

import (
	"context"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"unicode"

	"github.com/easyalipay/easyalipay-go/pkg/message"
)

// Builder builds an OpenAPI method name segment by segment, e.g.
//
//	c.Chain("alipay.trade.query")
//	c.Chain("AlipayTradeQuery")
//	c.Chain("Alipay").Chain("Trade").Chain("Query")
//
// all address `alipay.trade.query`. Builder is immutable.
type Builder struct {
	client   *Client
	segments []string
}

// Chain starts a method builder.
func (c *Client) Chain(segment string) *Builder {
	return (&Builder{client: c}).Chain(segment)
}

// Chain returns a builder with the segment appended.
//
// PascalCase segments are split into dot separated lower case words.
func (b *Builder) Chain(segment string) *Builder {
	return &Builder{
		client:   b.client,
		segments: append(slices.Clone(b.segments), Normalize(segment)),
	}
}

// Method returns the OpenAPI method name.
func (b *Builder) Method() string {
	return strings.Join(b.segments, ".")
}

// Client returns the client the builder sends the requests with.
func (b *Builder) Client() *Client {
	return b.client
}

// Get sends the request as GET, the signed data travels in the query.
func (b *Builder) Get(ctx context.Context, opts RequestOptions) (*http.Response, error) {
	return b.client.Request(ctx, http.MethodGet, "", b.prepare(opts))
}

// Post sends the request as POST.
func (b *Builder) Post(ctx context.Context, opts RequestOptions) (*http.Response, error) {
	return b.client.Request(ctx, http.MethodPost, "", b.prepare(opts))
}

// GetAsync sends the request as GET in the background.
func (b *Builder) GetAsync(ctx context.Context, opts RequestOptions) *Future {
	return b.client.RequestAsync(ctx, http.MethodGet, "", b.prepare(opts))
}

// PostAsync sends the request as POST in the background.
func (b *Builder) PostAsync(ctx context.Context, opts RequestOptions) *Future {
	return b.client.RequestAsync(ctx, http.MethodPost, "", b.prepare(opts))
}

// prepare places the method name into the query, it overrides any given one.
func (b *Builder) prepare(opts RequestOptions) RequestOptions {
	query := url.Values{}
	maps.Copy(query, opts.Query)
	query.Set(message.ParamMethod, b.Method())

	opts.Query = query

	return opts
}

// Normalize turns `AlipayTradeQuery` into `alipay.trade.query`, anything else is kept.
func Normalize(segment string) string {
	var sb strings.Builder

	for i, r := range segment {
		if unicode.IsUpper(r) && r < unicode.MaxASCII {
			if i > 0 {
				sb.WriteByte('.')
			}

			sb.WriteRune(unicode.ToLower(r))

			continue
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
