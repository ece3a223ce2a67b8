// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package page

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/browser"
)

func init() {
	// suppress xdg-open errors
	browser.Stderr = nil
}

func newBody(body string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(body))
}

// Open shows the rendered page in the default browser.
//
// When BROWSER is set to `echo`, or the browser cannot be started, the page is written to w instead.
func Open(w io.Writer, body string) error {
	printPage := func() error {
		_, err := fmt.Fprintln(w, body)

		return err
	}

	if os.Getenv("BROWSER") == "echo" {
		return printPage()
	}

	if err := browser.OpenReader(strings.NewReader(body)); err != nil {
		fmt.Fprintf(w, "Could not open the browser: %v\n", err) //nolint:errcheck

		return printPage()
	}

	return nil
}
