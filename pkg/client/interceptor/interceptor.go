// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package interceptor provides the HTTP client round trippers that sign gateway requests and verify gateway responses.
package interceptor

import (
	"context"
	"net/http"

	"github.com/easyalipay/easyalipay-go/pkg/message"
)

// SkipInterceptorContextKey is a context key used to skip the interceptors, e.g. for downloading a bill file.
type SkipInterceptorContextKey struct{}

type optionsContextKey struct{}

// PagerFunc renders the response of a pager request instead of dispatching it.
type PagerFunc func(req *http.Request, envelope *message.Envelope) (*http.Response, error)

// Options are the per-request options of the Signer.
type Options struct {
	// Content is the business content, serialized into `biz_content`.
	Content any

	// Params are merged over the default protocol parameters.
	Params map[string]string

	// PagerFunc overrides the default page rendering, it implies Pager.
	PagerFunc PagerFunc

	// Pager short-circuits the transport and returns the auto-submit HTML page.
	Pager bool
}

// WithOptions returns a context carrying the request options.
func WithOptions(ctx context.Context, options *Options) context.Context {
	return context.WithValue(ctx, optionsContextKey{}, options)
}

// OptionsFromContext returns the request options, if any.
func OptionsFromContext(ctx context.Context) (*Options, bool) {
	options, ok := ctx.Value(optionsContextKey{}).(*Options)

	return options, ok && options != nil
}

// Skip returns a context which bypasses the interceptors.
func Skip(ctx context.Context) context.Context {
	return context.WithValue(ctx, SkipInterceptorContextKey{}, struct{}{})
}

func skipped(ctx context.Context) bool {
	return ctx.Value(SkipInterceptorContextKey{}) != nil
}

func withoutOptions(ctx context.Context) context.Context {
	return context.WithValue(ctx, optionsContextKey{}, (*Options)(nil))
}

func defaultBase(base http.RoundTripper) http.RoundTripper {
	if base != nil {
		return base
	}

	return http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
}
