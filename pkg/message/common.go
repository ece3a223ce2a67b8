// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package message contains the logic related to the gateway message canonicalization, signing and response extraction.
package message

import (
	"crypto/rand"
	"errors"
	"sync"
	"time"
)

const (
	// SignatureHeaderKey is the response header carrying the extracted response signature.
	SignatureHeaderKey = "X-Alipay-Signature"

	// ResponderHeaderKey is the response header carrying the responder, e.g. `alipay.trade.query`.
	ResponderHeaderKey = "X-Alipay-Responder"

	// VerifiedHeaderKey is the response header carrying the verification result, `ok` or empty.
	VerifiedHeaderKey = "X-Alipay-Verified"

	// VerifiedOK is the value of VerifiedHeaderKey on success.
	VerifiedOK = "ok"
)

// Well-known protocol parameters.
const (
	ParamAppID            = "app_id"
	ParamMethod           = "method"
	ParamFormat           = "format"
	ParamCharset          = "charset"
	ParamSignType         = "sign_type"
	ParamSign             = "sign"
	ParamTimestamp        = "timestamp"
	ParamVersion          = "version"
	ParamBizContent       = "biz_content"
	ParamAppAuthToken     = "app_auth_token"
	ParamAppCertSN        = "app_cert_sn"
	ParamAlipayRootCertSN = "alipay_root_cert_sn"
	ParamNotifyURL        = "notify_url"
	ParamReturnURL        = "return_url"
)

// DateTimeLayout is the `yyyy-MM-dd HH:mm:ss` layout of the `timestamp` parameter.
const DateTimeLayout = "2006-01-02 15:04:05"

// DefaultZone is the merchant time zone.
const DefaultZone = "Asia/Shanghai"

const base62 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrInvalidSize is returned by Nonce for a non-positive size.
var ErrInvalidSize = errors.New("size must be a positive integer")

var defaultLocation = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation(DefaultZone)
	if err != nil {
		// no tzdata available
		return time.FixedZone("CST", 8*60*60)
	}

	return loc
})

// DefaultLocation returns the merchant time zone location.
func DefaultLocation() *time.Location {
	return defaultLocation()
}

// LocaleDateTime formats t in the given location, DefaultLocation if nil.
func LocaleDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = DefaultLocation()
	}

	return t.In(loc).Format(DateTimeLayout)
}

// Nonce returns a random base62 string of the given length.
func Nonce(size int) (string, error) {
	if size < 1 {
		return "", ErrInvalidSize
	}

	buf := make([]byte, size)

	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = base62[int(b)%len(base62)]
	}

	return string(buf), nil
}
