// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cert

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

var errInvalidDataURI = errors.New("invalid data URI")

// decodeDataURI decodes `data:[<mediatype>][;base64],<data>`, `data://` is accepted as well.
func decodeDataURI(uri string) ([]byte, error) {
	rest := strings.TrimPrefix(strings.TrimPrefix(uri, "data:"), "//")

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errInvalidDataURI
	}

	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}

	return []byte(decoded), nil
}
