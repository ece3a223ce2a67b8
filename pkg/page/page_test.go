// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package page_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyalipay/easyalipay-go/pkg/page"
)

func TestRender(t *testing.T) {
	body := page.Render(page.Form{
		Now:    func() time.Time { return time.Unix(1406171270, 0) },
		Action: "https://openapi.alipay.com/gateway.do",
		Method: http.MethodPost,
		Query: url.Values{
			"charset": {"UTF-8"},
			"method":  {"alipay.trade.page.pay"},
		},
		Data: url.Values{
			"biz_content": {`{"subject":"<b>&"}`},
			"sign":        {"MA=="},
		},
	})

	assert.Contains(t, body, `<!DOCTYPE html>`)
	assert.Contains(t, body, `<meta http-equiv="Content-Type" content="text/html; charset=UTF-8"/>`)
	assert.Contains(t, body, `<form id="EasyAlipay1406171270" name="EasyAlipay1406171270" method="POST" action="https://openapi.alipay.com/gateway.do?charset=UTF-8">`)
	assert.Contains(t, body, `<input type="hidden" name="method" value="alipay.trade.page.pay"/>`)
	assert.Contains(t, body, `<input type="hidden" name="biz_content" value="{&#34;subject&#34;:&#34;&lt;b&gt;&amp;&#34;}"/>`)
	assert.Contains(t, body, `<input type="hidden" name="sign" value="MA=="/>`)
	assert.NotContains(t, body, `name="charset"`)
	assert.Contains(t, body, `document.EasyAlipay1406171270.submit()`)
	assert.Contains(t, body, `<button form="EasyAlipay1406171270" type="submit" accesskey="s">Submit</button>`)
}

func TestResponse(t *testing.T) {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "https://openapi.alipay.com/gateway.do", nil)
	require.NoError(t, err)

	resp := page.Response(req, "<html></html>")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, page.ContentType, resp.Header.Get("Content-Type"))
	assert.EqualValues(t, len("<html></html>"), resp.ContentLength)
	assert.Same(t, req, resp.Request)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))
}

func TestOpenEcho(t *testing.T) {
	t.Setenv("BROWSER", "echo")

	var buf bytes.Buffer

	require.NoError(t, page.Open(&buf, "<html></html>"))
	assert.Equal(t, "<html></html>\n", buf.String())
}
