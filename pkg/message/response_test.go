// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyalipay/easyalipay-go/pkg/message"
)

func ptr(s string) *string {
	return &s
}

func TestParseResponse(t *testing.T) {
	for _, tt := range []struct {
		expected message.Outcome
		name     string
		body     string
	}{
		{
			name: "empty string",
		},
		{
			name:     "escaped slash with extra spaces",
			body:     `{"ali_pay_response"  :  "https:\/\/alipay.com"  ,  "sign":"MA=="}`,
			expected: message.Outcome{Identity: ptr("ali_pay"), Payload: ptr(`https:\/\/alipay.com`), Signature: ptr("MA==")},
		},
		{
			name:     "pretty with tabs and line feeds",
			body:     "\n\t{\"ali_pay_response\"\n:  \"https:\\/\\/alipay.com\"  \t\n,  \"sign\"\t\n:\"MA==\"}\t\n",
			expected: message.Outcome{Identity: ptr("ali_pay"), Payload: ptr(`https:\/\/alipay.com`), Signature: ptr("MA==")},
		},
		{
			name:     "error response without sign",
			body:     `{"error_response":"isv.permission=no"}`,
			expected: message.Outcome{Identity: ptr("error"), Payload: ptr("isv.permission=no")},
		},
		{
			name:     "malformed error response without sign",
			body:     `{"error_response":{"code":"40004","message":isv.permission=no"},}`,
			expected: message.Outcome{Identity: ptr("error"), Payload: ptr(`{"code":"40004","message":isv.permission=no"}`)},
		},
		{
			name:     "object payload",
			body:     `{"easy_alipay_ping_response":{"user_id":"abcd1234"},"sign":"c2lnbg=="}`,
			expected: message.Outcome{Identity: ptr("easy_alipay_ping"), Payload: ptr(`{"user_id":"abcd1234"}`), Signature: ptr("c2lnbg==")},
		},
		{
			name: "not a gateway response",
			body: "<html><body>bad gateway</body></html>",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			o := message.ParseResponse(tt.body)

			assert.Equal(t, tt.expected, o)
			assert.False(t, o.Verified)
		})
	}
}

func TestParseResponseWith(t *testing.T) {
	o, err := message.ParseResponseWith(`{"alipay_trade_query_response":{"code":"10000"},"sign":"MA=="}`, `(?P<ident>alipay_trade_[a-z]+)_response`)
	require.NoError(t, err)

	assert.Equal(t, "alipay.trade.query", o.Responder())
	assert.Equal(t, `{"code":"10000"}`, *o.Payload)

	o, err = message.ParseResponseWith(`{"custom":"value"}`, `custom`)
	require.NoError(t, err)

	assert.Nil(t, o.Identity)
	assert.Equal(t, "value", *o.Payload)

	_, err = message.ParseResponseWith(`{}`, `(?P<ident>[a-z`)
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	payload := `{"user_id":"abcd1234"}`

	signature, err := mockSignerVerifier{}.Sign([]byte(payload))
	require.NoError(t, err)

	o, err := message.Verify(`{"easy_alipay_ping_response":`+payload+`,"sign":"`+signature+`"}`, mockSignerVerifier{})
	require.NoError(t, err)

	assert.True(t, o.Verified)
	assert.Equal(t, message.VerifiedOK, o.VerifiedValue())
	assert.Equal(t, "easy.alipay.ping", o.Responder())
	assert.Equal(t, signature, o.SignatureValue())
	assert.Equal(t, payload, *o.Payload)

	o, err = message.Verify(`{"easy_alipay_ping_response":{"user_id":"other"},"sign":"`+signature+`"}`, mockSignerVerifier{})
	require.NoError(t, err)
	assert.False(t, o.Verified)
	assert.Empty(t, o.VerifiedValue())

	o, err = message.Verify(`{"easy_alipay_ping_response":`+payload+`,"sign":"broken"}`, mockSignerVerifier{})
	assert.Error(t, err)
	assert.False(t, o.Verified)

	o, err = message.Verify("", mockSignerVerifier{})
	require.NoError(t, err)
	assert.Equal(t, message.Outcome{}, o)
	assert.Empty(t, o.Responder())
	assert.Empty(t, o.SignatureValue())

	o, err = message.Verify(`{"error_response":{"code":"40002"}}`, mockSignerVerifier{})
	require.NoError(t, err)
	assert.False(t, o.Verified)
	assert.Equal(t, "error", o.Responder())
}
