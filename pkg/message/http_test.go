// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package message_test

import (
	"encoding/json"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyalipay/easyalipay-go/pkg/message"
)

func TestEncodeBizContent(t *testing.T) {
	for _, tt := range []struct {
		content  any
		name     string
		expected string
	}{
		{name: "nil", content: nil, expected: "{}"},
		{name: "map", content: map[string]string{"user_id": "abcd1234"}, expected: `{"user_id":"abcd1234"}`},
		{name: "unescaped", content: map[string]string{"url": "https://a.b/c?d=1&e=<f>", "subject": "测试"}, expected: `{"subject":"测试","url":"https://a.b/c?d=1&e=<f>"}`},
		{name: "raw", content: json.RawMessage(`{"a": 1}`), expected: `{"a":1}`},
	} {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := message.EncodeBizContent(tt.content)
			require.NoError(t, err)

			assert.Equal(t, tt.expected, encoded)
		})
	}

	_, err := message.EncodeBizContent(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestSeal(t *testing.T) {
	now := time.Date(2014, 7, 23, 19, 7, 50, 0, time.UTC)

	envelope, err := message.Seal(message.Draft{
		Content: map[string]string{"user_id": "abcd1234"},
		Query:   url.Values{"method": {"alipay.user.info.share"}, "app_id": {"from-uri"}},
		Params: map[string]string{
			"app_id":    "2014072300007148",
			"charset":   "UTF-8",
			"sign_type": "RSA2",
			"empty":     "",
		},
		Now:      func() time.Time { return now },
		Location: time.FixedZone("CST", 8*60*60),
	}, mockSignerVerifier{})
	require.NoError(t, err)

	assert.Equal(t, "2014-07-24 03:07:50", envelope.Query.Get(message.ParamTimestamp))
	assert.Equal(t, "from-uri", envelope.Query.Get(message.ParamAppID))
	assert.Equal(t, "alipay.user.info.share", envelope.Query.Get(message.ParamMethod))
	assert.False(t, envelope.Query.Has(message.ParamSign))
	assert.False(t, envelope.Query.Has(message.ParamBizContent))

	assert.Equal(t,
		`app_id=from-uri&biz_content={"user_id":"abcd1234"}&charset=UTF-8&method=alipay.user.info.share&sign_type=RSA2&timestamp=2014-07-24 03:07:50`,
		envelope.SigningString,
	)

	assert.Equal(t, `{"user_id":"abcd1234"}`, envelope.Data.Get(message.ParamBizContent))

	ok, err := mockSignerVerifier{}.Verify([]byte(envelope.SigningString), envelope.Data.Get(message.ParamSign))
	require.NoError(t, err)
	assert.True(t, ok)

	merged := envelope.Merged()
	assert.Equal(t, envelope.Data.Get(message.ParamSign), merged.Get(message.ParamSign))
	assert.Equal(t, "from-uri", merged.Get(message.ParamAppID))
	assert.False(t, envelope.Query.Has(message.ParamSign), "merging must not modify the query")
}

func TestSealKeepsTimestamp(t *testing.T) {
	params := map[string]string{"timestamp": "2021-01-01 00:00:00"}

	envelope, err := message.Seal(message.Draft{Params: params}, mockSignerVerifier{})
	require.NoError(t, err)

	assert.Equal(t, "2021-01-01 00:00:00", envelope.Query.Get(message.ParamTimestamp))
	assert.Equal(t, "{}", envelope.Data.Get(message.ParamBizContent))
	assert.Equal(t, `biz_content={}&timestamp=2021-01-01 00:00:00`, envelope.SigningString)
	assert.Len(t, params, 1, "draft params must not be modified")
}

func TestSealURIBizContentLoses(t *testing.T) {
	envelope, err := message.Seal(message.Draft{
		Query:  url.Values{"biz_content": {"from-uri"}},
		Params: map[string]string{"timestamp": "2021-01-01 00:00:00"},
	}, mockSignerVerifier{})
	require.NoError(t, err)

	assert.Equal(t, `biz_content={}&timestamp=2021-01-01 00:00:00`, envelope.SigningString)
}

func TestSealEmptyTimestamp(t *testing.T) {
	envelope, err := message.Seal(message.Draft{
		Params: map[string]string{"timestamp": "", "method": "alipay.trade.query"},
		Now:    func() time.Time { return time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC) },
	}, mockSignerVerifier{})
	require.NoError(t, err)

	assert.True(t, envelope.Query.Has(message.ParamTimestamp))
	assert.Empty(t, envelope.Query.Get(message.ParamTimestamp))
	assert.Equal(t, `biz_content={}&method=alipay.trade.query`, envelope.SigningString)
}

func TestSealRepeatedQueryKey(t *testing.T) {
	envelope, err := message.Seal(message.Draft{
		Query:  url.Values{"auth_token": {"first", "second"}},
		Params: map[string]string{"timestamp": "2021-01-01 00:00:00"},
	}, mockSignerVerifier{})
	require.NoError(t, err)

	assert.Equal(t, []string{"first"}, envelope.Query["auth_token"])
	assert.Equal(t, []string{"first"}, envelope.Merged()["auth_token"])
	assert.Equal(t, `auth_token=first&biz_content={}&timestamp=2021-01-01 00:00:00`, envelope.SigningString)
}

func TestSealSignType(t *testing.T) {
	for _, tt := range []struct {
		name     string
		query    url.Values
		params   map[string]string
		expected string
	}{
		{name: "params", params: map[string]string{"sign_type": "RSA"}, expected: "RSA"},
		{name: "uri", query: url.Values{"sign_type": {"RSA"}}, params: map[string]string{"sign_type": "RSA2"}, expected: "RSA"},
		{name: "absent", expected: "RSA2"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			params := map[string]string{"timestamp": "2021-01-01 00:00:00"}
			for key, value := range tt.params {
				params[key] = value
			}

			envelope, err := message.Seal(message.Draft{Query: tt.query, Params: params}, signTypeSigner{signType: "RSA2"})
			require.NoError(t, err)

			expected, err := mockSignerVerifier{}.Sign([]byte(envelope.SigningString))
			require.NoError(t, err)

			assert.Equal(t, tt.expected+":"+expected, envelope.Data.Get(message.ParamSign))
		})
	}
}

func TestSealSignerError(t *testing.T) {
	_, err := message.Seal(message.Draft{}, failingSigner{})
	assert.Error(t, err)
}

func TestLocaleDateTime(t *testing.T) {
	when := time.Date(2021, 12, 31, 16, 0, 1, 0, time.UTC)

	assert.Equal(t, "2022-01-01 00:00:01", message.LocaleDateTime(when, nil))
	assert.Equal(t, "2021-12-31 16:00:01", message.LocaleDateTime(when, time.UTC))
}

func TestNonce(t *testing.T) {
	for _, size := range []int{1, 16, 32, 64} {
		nonce, err := message.Nonce(size)
		require.NoError(t, err)

		assert.Len(t, nonce, size)
		assert.Regexp(t, `^[0-9A-Za-z]+$`, nonce)
	}

	_, err := message.Nonce(0)
	assert.ErrorIs(t, err, message.ErrInvalidSize)
}
