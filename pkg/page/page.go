// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package page renders the auto-submit HTML form used by the browser payment flows,
// e.g. `alipay.trade.page.pay` and `alipay.trade.wap.pay`.
package page

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/easyalipay/easyalipay-go/pkg/message"
)

// ContentType of the rendered page.
const ContentType = "text/html; charset=UTF-8"

// Form describes the rendered form.
type Form struct {
	// Now defaults to time.Now, it names the form.
	Now func() time.Time

	// Query are the protocol parameters, `charset` goes to the form action.
	Query url.Values

	// Data are the signed data, `biz_content` and `sign`.
	Data url.Values

	// Action is the gateway URL without query.
	Action string

	// Method is the form method, GET or POST.
	Method string
}

// Render returns the HTML document which submits the form as soon as it is loaded.
func Render(f Form) string {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	name := "EasyAlipay" + strconv.FormatInt(now().Unix(), 10)

	charset := f.Query.Get(message.ParamCharset)

	method := f.Method
	if method == "" {
		method = http.MethodPost
	}

	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html lang="zh-CN"><head><title>...</title>`)
	fmt.Fprintf(&sb, `<meta http-equiv="Content-Type" content="text/html; charset=%s"/>`, html.EscapeString(charset))
	sb.WriteString(`</head><body>`)
	fmt.Fprintf(&sb, `<form id="%[1]s" name="%[1]s" method="%[2]s" action="%[3]s?charset=%[4]s">`,
		name, html.EscapeString(method), html.EscapeString(f.Action), html.EscapeString(charset))

	writeInputs(&sb, f.Query, message.ParamCharset)
	writeInputs(&sb, f.Data, "")

	sb.WriteString(`</form>`)
	fmt.Fprintf(&sb, `<script>function %[1]s(){document.%[1]s.submit()}try{document.addEventListener('DOMContentLoaded',%[1]s,false)}catch(e){%[1]s()}</script>`, name)
	fmt.Fprintf(&sb, `<noscript>Your browser doesn't support javascript, please click <button form="%s" type="submit" accesskey="s">Submit</button> to continue.</noscript>`, name)
	sb.WriteString(`</body></html>`)

	return sb.String()
}

// Response wraps the rendered page into a synthesized 200 response.
func Response(req *http.Request, body string) *http.Response {
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {ContentType}, "Content-Length": {strconv.Itoa(len(body))}},
		Body:          newBody(body),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func writeInputs(sb *strings.Builder, values url.Values, skip string) {
	for _, key := range message.SortedKeys(values) {
		if key == skip {
			continue
		}

		for _, value := range values[key] {
			fmt.Fprintf(sb, `<input type="hidden" name="%s" value="%s"/>`, html.EscapeString(key), html.EscapeString(value))
		}
	}
}
