// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package message

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// DefaultPlaceholder matches the `<ident>_response` key of a gateway response.
const DefaultPlaceholder = `(?P<ident>[a-z](?:[a-z_])+)_response`

const responseWhitespace = `[\r\n\t ]*`

var (
	patternsMu sync.RWMutex
	patterns   = map[string]*regexp.Regexp{}
)

// Outcome is the result of the response extraction and verification.
type Outcome struct {
	Identity  *string
	Payload   *string
	Signature *string
	Verified  bool
}

// Responder returns the identity with underscores replaced by dots, e.g. `alipay.trade.query`.
func (o Outcome) Responder() string {
	if o.Identity == nil {
		return ""
	}

	return strings.ReplaceAll(*o.Identity, "_", ".")
}

// SignatureValue returns the extracted signature or an empty string.
func (o Outcome) SignatureValue() string {
	if o.Signature == nil {
		return ""
	}

	return *o.Signature
}

// VerifiedValue returns VerifiedOK or an empty string.
func (o Outcome) VerifiedValue() string {
	if o.Verified {
		return VerifiedOK
	}

	return ""
}

// ParseResponse extracts the identity, the payload and the signature of a gateway response
// shaped like `{"<ident>_response": <payload>, "sign": "<signature>"}`.
//
// The extraction is best-effort and tolerates whitespace and malformed payload JSON; it is not a JSON parser.
// Nothing extracted leaves all the fields nil.
func ParseResponse(body string) Outcome {
	o, _ := ParseResponseWith(body, DefaultPlaceholder) //nolint:errcheck

	return o
}

// ParseResponseWith is ParseResponse with a custom placeholder for the response key.
//
// The placeholder may define an `ident` named group.
func ParseResponseWith(body, placeholder string) (Outcome, error) {
	pattern, err := compileResponsePattern(placeholder)
	if err != nil {
		return Outcome{}, err
	}

	matches := pattern.FindStringSubmatchIndex(body)
	if matches == nil {
		return Outcome{}, nil
	}

	group := func(name string) *string {
		idx := pattern.SubexpIndex(name)
		if idx < 0 || matches[2*idx] < 0 {
			return nil
		}

		value := body[matches[2*idx]:matches[2*idx+1]]

		return &value
	}

	return Outcome{
		Identity:  group("ident"),
		Payload:   group("payload"),
		Signature: group("sign"),
	}, nil
}

// Verify extracts the response and verifies the payload signature.
//
// The returned error is informational: the outcome is always usable and is unverified on error.
func Verify(body string, verifier SignatureVerifier) (Outcome, error) {
	o := ParseResponse(body)

	if o.Payload == nil || o.Signature == nil || verifier == nil {
		return o, nil
	}

	ok, err := verifier.Verify([]byte(*o.Payload), *o.Signature)
	o.Verified = ok && err == nil

	return o, err
}

func compileResponsePattern(placeholder string) (*regexp.Regexp, error) {
	patternsMu.RLock()
	pattern, ok := patterns[placeholder]
	patternsMu.RUnlock()

	if ok {
		return pattern, nil
	}

	ws := responseWhitespace

	pattern, err := regexp.Compile(`(?m)^` + ws + `\{` + ws + `"` + placeholder + `"` + ws + `:` + ws + `"?(?P<payload>.*?)"?` + ws +
		`(?:,)?` + ws + `(?:"sign"` + ws + `:` + ws + `"(?P<sign>[^"]+)"` + ws + `)?\}` + ws + `$`)
	if err != nil {
		return nil, fmt.Errorf("invalid response placeholder %q: %w", placeholder, err)
	}

	patternsMu.Lock()
	patterns[placeholder] = pattern
	patternsMu.Unlock()

	return pattern, nil
}
