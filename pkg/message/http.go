// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"time"
)

// Draft is an unsigned gateway request.
type Draft struct {
	// Content is the business content, serialized into `biz_content`.
	Content any

	// Query is the query of the request URI.
	Query url.Values

	// Params are the protocol parameters, e.g. `app_id`, `method`, `sign_type`.
	Params map[string]string

	// Now defaults to time.Now.
	Now func() time.Time

	// Location is the merchant time zone, DefaultLocation if nil.
	Location *time.Location
}

// Envelope is a signed gateway request.
type Envelope struct {
	// Query is the working parameter set: the URI query merged with the protocol parameters.
	Query url.Values

	// Data holds `biz_content` and `sign`.
	Data url.Values

	// SigningString is the string the signature was computed over.
	SigningString string
}

// EncodeBizContent serializes the business content as JSON without escaping HTML, slashes or unicode.
//
// A nil content is encoded as an empty object.
func EncodeBizContent(content any) (string, error) {
	if content == nil {
		return "{}", nil
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(content); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", ParamBizContent, err)
	}

	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Seal signs the draft.
//
// The URI query takes precedence over the protocol parameters; `biz_content` takes precedence over both.
// Only the first value of a repeated URI query key is kept. A `timestamp` is added unless the parameters
// carry one, an explicitly empty one is kept empty and left out of the signing string.
// The algorithm follows the `sign_type` of the working parameter set when the signer is a SignTypeSigner.
func Seal(d Draft, signer Signer) (*Envelope, error) {
	bizContent, err := EncodeBizContent(d.Content)
	if err != nil {
		return nil, err
	}

	params := maps.Clone(d.Params)
	if params == nil {
		params = map[string]string{}
	}

	if _, ok := params[ParamTimestamp]; !ok {
		now := time.Now
		if d.Now != nil {
			now = d.Now
		}

		params[ParamTimestamp] = LocaleDateTime(now(), d.Location)
	}

	query := url.Values{}

	for key, value := range params {
		query.Set(key, value)
	}

	for key, vv := range d.Query {
		if len(vv) > 0 {
			query.Set(key, vv[0])
		}
	}

	signed := make(map[string]string, len(query)+1)

	for key := range query {
		signed[key] = query.Get(key)
	}

	signed[ParamBizContent] = bizContent

	signingString := SigningString(signed)

	signature, err := ForSignType(signer, query.Get(ParamSignType)).Sign([]byte(signingString))
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Query: query,
		Data: url.Values{
			ParamBizContent: {bizContent},
			ParamSign:       {signature},
		},
		SigningString: signingString,
	}, nil
}

// Merged returns the working parameter set with the signed data added, existing query entries are kept.
func (e *Envelope) Merged() url.Values {
	merged := make(url.Values, len(e.Query)+len(e.Data))

	for key, vv := range e.Query {
		merged[key] = append([]string(nil), vv...)
	}

	for key, vv := range e.Data {
		if _, ok := merged[key]; ok {
			continue
		}

		merged[key] = append([]string(nil), vv...)
	}

	return merged
}
