// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package message

import (
	"net/url"
	"strings"
)

// Pair is a single key=value entry of a ParameterSet.
type Pair struct {
	Key   string
	Value string
}

// ParameterSet is the ordered set of parameters being signed.
//
// It never contains the `sign` parameter nor empty values.
type ParameterSet []Pair

// Canonicalize builds the ParameterSet from the parameters:
// `sign` and empty values are dropped, the rest is sorted in natural order.
func Canonicalize(params map[string]string) ParameterSet {
	set := make(ParameterSet, 0, len(params))

	for _, key := range NaturalKeys(params) {
		if key == ParamSign || params[key] == "" {
			continue
		}

		set = append(set, Pair{Key: key, Value: params[key]})
	}

	return set
}

// CanonicalizeValues is Canonicalize for url.Values.
//
// Only the first value of each key is used, a key without values is treated as absent.
func CanonicalizeValues(values url.Values) ParameterSet {
	params := make(map[string]string, len(values))

	for key, vv := range values {
		if len(vv) == 0 {
			continue
		}

		params[key] = vv[0]
	}

	return Canonicalize(params)
}

// String returns the signing string, `k1=v1&k2=v2`, not URL-encoded.
func (s ParameterSet) String() string {
	var sb strings.Builder

	for i, pair := range s {
		if i > 0 {
			sb.WriteByte('&')
		}

		sb.WriteString(pair.Key)
		sb.WriteByte('=')
		sb.WriteString(pair.Value)
	}

	return sb.String()
}

// Keys returns the keys in order.
func (s ParameterSet) Keys() []string {
	keys := make([]string, 0, len(s))

	for _, pair := range s {
		keys = append(keys, pair.Key)
	}

	return keys
}

// SigningString canonicalizes the parameters and returns the signing string.
func SigningString(params map[string]string) string {
	return Canonicalize(params).String()
}
