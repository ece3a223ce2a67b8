// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package interceptor

import (
	"fmt"
	"io"
	"maps"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/easyalipay/easyalipay-go/pkg/message"
	"github.com/easyalipay/easyalipay-go/pkg/page"
)

// FormContentType is the content type of the signed request body.
const FormContentType = "application/x-www-form-urlencoded; charset=UTF-8"

// SignerOptions configure the Signer.
type SignerOptions struct {
	// Params are the default protocol parameters, e.g. `app_id`, `charset`, `sign_type`, `version`.
	Params map[string]string

	// Now defaults to time.Now.
	Now func() time.Time

	// Location is the merchant time zone of the `timestamp` parameter.
	Location *time.Location

	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Signature is an http.RoundTripper which signs gateway requests.
//
// Requests without Options in their context are signed with an empty business content.
type Signature struct {
	base     http.RoundTripper
	signer   message.Signer
	now      func() time.Time
	location *time.Location
	params   map[string]string
	logger   zerolog.Logger
}

// NewSignature returns a new signing round tripper, base defaults to a clone of http.DefaultTransport.
func NewSignature(base http.RoundTripper, signer message.Signer, options SignerOptions) *Signature {
	logger := zerolog.Nop()
	if options.Logger != nil {
		logger = *options.Logger
	}

	return &Signature{
		base:     defaultBase(base),
		signer:   signer,
		params:   maps.Clone(options.Params),
		now:      options.Now,
		location: options.Location,
		logger:   logger,
	}
}

// RoundTrip signs the request and then delegates to the base transport.
//
// The original request is cloned before signing and is never modified.
func (s *Signature) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if skipped(ctx) {
		return s.base.RoundTrip(req)
	}

	options, ok := OptionsFromContext(ctx)
	if !ok {
		options = &Options{}
	}

	params := maps.Clone(s.params)
	if params == nil {
		params = map[string]string{}
	}

	maps.Copy(params, options.Params)

	envelope, err := message.Seal(message.Draft{
		Content:  options.Content,
		Query:    req.URL.Query(),
		Params:   params,
		Now:      s.now,
		Location: s.location,
	}, s.signer)
	if err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	logger := s.logger.With().Str("method", envelope.Query.Get(message.ParamMethod)).Logger()

	if options.Pager || options.PagerFunc != nil {
		logger.Debug().Msg("rendering pager")

		if options.PagerFunc != nil {
			return options.PagerFunc(req, envelope)
		}

		return s.pager(req, envelope), nil
	}

	clone := req.Clone(withoutOptions(ctx))

	if isQueryCarried(req) {
		logger.Debug().Str("http_method", req.Method).Msg("signed data in query")

		if clone.Body != nil && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}

			clone.Body = body
		}

		clone.URL.RawQuery = envelope.Merged().Encode()
	} else {
		logger.Debug().Str("http_method", req.Method).Msg("signed data in body")

		body := envelope.Data.Encode()

		clone.Body = io.NopCloser(strings.NewReader(body))
		clone.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		}
		clone.ContentLength = int64(len(body))
		clone.URL.RawQuery = envelope.Query.Encode()

		if clone.Header.Get("Content-Type") == "" {
			clone.Header.Set("Content-Type", FormContentType)
		}
	}

	return s.base.RoundTrip(clone)
}

func (s *Signature) pager(req *http.Request, envelope *message.Envelope) *http.Response {
	action := *req.URL
	action.RawQuery = ""
	action.Fragment = ""

	body := page.Render(page.Form{
		Now:    s.now,
		Action: action.String(),
		Method: req.Method,
		Query:  envelope.Query,
		Data:   envelope.Data,
	})

	return page.Response(req, body)
}

// isQueryCarried reports whether the signed data travels in the query: GET requests and multipart bodies.
func isQueryCarried(req *http.Request) bool {
	if req.Method == http.MethodGet {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if err != nil {
		return false
	}

	return strings.HasPrefix(mediaType, "multipart/")
}
