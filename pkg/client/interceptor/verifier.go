// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package interceptor

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/easyalipay/easyalipay-go/pkg/message"
)

// DoS Protection.
const maxBodySize = 8 * 1024 * 1024

// Verifier is an http.RoundTripper which verifies gateway responses.
//
// The response is annotated with the message.SignatureHeaderKey, message.ResponderHeaderKey and
// message.VerifiedHeaderKey headers and its body is replaced with the extracted payload.
// A body which cannot be extracted is left untouched and is never an error.
type Verifier struct {
	base     http.RoundTripper
	verifier message.SignatureVerifier
	logger   zerolog.Logger
}

// NewVerifier returns a new verifying round tripper, base defaults to a clone of http.DefaultTransport.
func NewVerifier(base http.RoundTripper, verifier message.SignatureVerifier, logger *zerolog.Logger) *Verifier {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}

	return &Verifier{
		base:     defaultBase(base),
		verifier: verifier,
		logger:   l,
	}
}

// RoundTrip delegates to the base transport and then verifies the response.
func (v *Verifier) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := v.base.RoundTrip(req)
	if err != nil || resp == nil || skipped(req.Context()) {
		return resp, err
	}

	var outcome message.Outcome

	if resp.Body != nil {
		data, body, readErr := bufferBody(resp.Body, maxBodySize)
		if readErr != nil {
			return nil, readErr
		}

		resp.Body = body

		if data != nil {
			var verifyErr error

			outcome, verifyErr = message.Verify(string(data), message.VerifierForSignType(v.verifier, signType(req, resp)))
			if verifyErr != nil {
				v.logger.Warn().Err(verifyErr).Str("responder", outcome.Responder()).Msg("response verification failed")
			}
		} else {
			v.logger.Warn().Int("limit", maxBodySize).Msg("response body is too large to be verified")
		}
	}

	if resp.Header == nil {
		resp.Header = http.Header{}
	}

	resp.Header.Set(message.SignatureHeaderKey, outcome.SignatureValue())
	resp.Header.Set(message.ResponderHeaderKey, outcome.Responder())
	resp.Header.Set(message.VerifiedHeaderKey, outcome.VerifiedValue())

	if outcome.Payload != nil {
		payload := *outcome.Payload

		resp.Body = io.NopCloser(strings.NewReader(payload))
		resp.ContentLength = int64(len(payload))
		resp.Header.Set("Content-Length", strconv.Itoa(len(payload)))
	}

	v.logger.Debug().
		Str("responder", outcome.Responder()).
		Bool("verified", outcome.Verified).
		Msg("response verified")

	return resp, nil
}

// signType returns the `sign_type` the request was signed with: the one of the request sent on the wire,
// the per-request parameters otherwise.
func signType(req *http.Request, resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		if query := resp.Request.URL.Query(); query.Has(message.ParamSignType) {
			return query.Get(message.ParamSignType)
		}
	}

	if options, ok := OptionsFromContext(req.Context()); ok {
		return options.Params[message.ParamSignType]
	}

	return ""
}

// bufferBody reads the body and makes it re-readable.
//
// A body larger than limit returns nil data, the returned reader still yields the whole body.
func bufferBody(body io.ReadCloser, limit int64) ([]byte, io.ReadCloser, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		body.Close() //nolint:errcheck

		return nil, nil, err
	}

	if int64(len(data)) > limit {
		return nil, struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(data), body), body}, nil
	}

	if err = body.Close(); err != nil {
		return nil, nil, err
	}

	return data, io.NopCloser(bytes.NewReader(data)), nil
}
