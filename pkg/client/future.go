// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package client

import (
	"context"
	"net/http"
)

// Future is the pending result of an asynchronous request.
type Future struct {
	done chan struct{}
	resp *http.Response
	err  error
}

func newFuture(fn func() (*http.Response, error)) *Future {
	f := &Future{
		done: make(chan struct{}),
	}

	go func() {
		defer close(f.done)

		f.resp, f.err = fn()
	}()

	return f
}

// Done is closed once the response is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the response is available.
func (f *Future) Wait() (*http.Response, error) {
	<-f.done

	return f.resp, f.err
}

// WaitContext blocks until the response is available or the context is done.
//
// Giving up waiting does not cancel the request, cancel the request context for that.
func (f *Future) WaitContext(ctx context.Context) (*http.Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
