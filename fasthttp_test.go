// Copyright © 2018-2019 Luis Ángel Méndez Gort

// This file is part of Proxy.

// Proxy is free software: you can redistribute it and/or
// modify it under the terms of the GNU Lesser General
// Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your
// option) any later version.

// Proxy is distributed in the hope that it will be
// useful, but WITHOUT ANY WARRANTY; without even the
// implied warranty of MERCHANTABILITY or FITNESS FOR A
// PARTICULAR PURPOSE. See the GNU Lesser General Public
// License for more details.

// You should have received a copy of the GNU Lesser General
// Public License along with Proxy.  If not, see
// <https://www.gnu.org/licenses/>.

package corsproxy

import (
	h "net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	fh "github.com/valyala/fasthttp"
)

func fastServe(hn fh.RequestHandler, method, uri string,
	hd map[string]string) (ctx *fh.RequestCtx) {
	var req fh.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	for k, v := range hd {
		req.Header.Set(k, v)
	}
	ctx = new(fh.RequestCtx)
	ctx.Init(&req, nil, nil)
	hn(ctx)
	return
}

func TestFastPreflight(t *testing.T) {
	p, _ := newTestRelay(t, DefaultConfig())
	ctx := fastServe(NewFastHandler(p), h.MethodOptions, "/",
		map[string]string{"Origin": "https://app.test"})
	require.Equal(t, h.StatusNoContent, ctx.Response.StatusCode())
	require.Equal(t, "https://app.test",
		string(ctx.Response.Header.Peek(allowOriginHd)))
	require.Empty(t, ctx.Response.Body())
}

func TestFastRelay(t *testing.T) {
	up := newUpstream(t, okHandler)
	p, _ := newTestRelay(t, DefaultConfig())
	ctx := fastServe(NewFastHandler(p), h.MethodGet,
		"/?url="+url.QueryEscape(up.URL), nil)
	require.Equal(t, h.StatusCreated, ctx.Response.StatusCode())
	require.Equal(t, "hello", string(ctx.Response.Body()))
	require.Equal(t, "*", string(ctx.Response.Header.Peek(allowOriginHd)))
	require.Equal(t, "yes", string(ctx.Response.Header.Peek("X-Upstream")))
}

func TestFastServer(t *testing.T) {
	p, _ := newTestRelay(t, DefaultConfig())
	s := NewFastServer(p, nil)
	require.Equal(t, "corsproxy", s.Name)
	require.NotNil(t, s.Handler)
}
