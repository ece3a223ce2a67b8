// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package client_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyalipay/easyalipay-go/pkg/client"
	"github.com/easyalipay/easyalipay-go/pkg/rsa"
)

func TestNormalize(t *testing.T) {
	for _, tt := range []struct {
		segment  string
		expected string
	}{
		{segment: "alipay", expected: "alipay"},
		{segment: "Alipay", expected: "alipay"},
		{segment: "AlipaySystemOauthToken", expected: "alipay.system.oauth.token"},
		{segment: "alipay.open.app.qrcode.create", expected: "alipay.open.app.qrcode.create"},
		{segment: "alipayTradeQuery", expected: "alipay.trade.query"},
		{segment: "", expected: ""},
	} {
		t.Run(tt.segment, func(t *testing.T) {
			assert.Equal(t, tt.expected, client.Normalize(tt.segment))
		})
	}
}

func TestChain(t *testing.T) {
	key, err := rsa.GenerateKey(2048)
	require.NoError(t, err)

	c, err := client.New(client.Config{PrivateKeyHandle: key, PublicKeyHandle: key})
	require.NoError(t, err)

	for _, b := range []*client.Builder{
		c.Chain("alipay.open.app.qrcode.create"),
		c.Chain("AlipayOpenAppQrcodeCreate"),
		c.Chain("Alipay").Chain("Open").Chain("App").Chain("Qrcode").Chain("Create"),
		c.Chain("alipay").Chain("open").Chain("AppQrcodeCreate"),
	} {
		assert.Equal(t, "alipay.open.app.qrcode.create", b.Method())
		assert.Same(t, c, b.Client())
	}

	parent := c.Chain("alipay").Chain("trade")
	query := parent.Chain("query")
	refund := parent.Chain("refund")

	assert.Equal(t, "alipay.trade", parent.Method())
	assert.Equal(t, "alipay.trade.query", query.Method())
	assert.Equal(t, "alipay.trade.refund", refund.Method())
}
