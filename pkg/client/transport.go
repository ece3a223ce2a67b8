// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package client

import (
	"net/http"
	"slices"
)

// headerTransport sets the configured headers which the request does not carry yet.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func newHeaderTransport(base http.RoundTripper, headers map[string]string) *headerTransport {
	h := make(http.Header, len(headers))

	for key, value := range headers {
		h.Set(key, value)
	}

	return &headerTransport{
		base:    base,
		headers: h,
	}
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	for key, values := range t.headers {
		if _, ok := clone.Header[key]; !ok {
			clone.Header[key] = slices.Clone(values)
		}
	}

	return t.base.RoundTrip(clone)
}
