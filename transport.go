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
	"context"
	"errors"
	"net"
	h "net/http"
	"net/url"

	gp "golang.org/x/net/proxy"
)

// maxRedirects is the amount of redirects followed before
// giving up, the same as net/http.Client's default
const maxRedirects = 10

// targetDialer dials targets directly or through a parent
// proxy
type targetDialer struct {
	direct      *IfaceDialer
	parentProxy *url.URL
}

func (d *targetDialer) dialContext(ctx context.Context, network,
	addr string) (c net.Conn, e error) {
	if d.parentProxy != nil {
		c, e = DialProxy(ctx, network, addr, d.parentProxy, d.direct)
	} else {
		c, e = d.direct.DialContext(ctx, network, addr)
	}
	return
}

func newTransport(c *Config) (t *h.Transport, e error) {
	d := &targetDialer{
		direct: &IfaceDialer{
			Interface: c.Interface,
			Timeout:   c.DialTimeout,
		},
	}
	if c.ParentProxy != "" {
		d.parentProxy, e = url.Parse(c.ParentProxy)
		if e == nil {
			// fails early on unsupported schemes
			_, e = gp.FromURL(d.parentProxy, d.direct)
		}
	}
	if e == nil {
		t = &h.Transport{
			DialContext:           d.dialContext,
			MaxIdleConns:          c.MaxIdleConns,
			IdleConnTimeout:       c.IdleConnTimeout,
			TLSHandshakeTimeout:   c.TLSHandshakeTimeout,
			ResponseHeaderTimeout: c.FetchTimeout,
			ExpectContinueTimeout: c.FetchTimeout,
			ForceAttemptHTTP2:     true,
		}
	}
	return
}

func newClient(rt h.RoundTripper) (cl *h.Client) {
	cl = &h.Client{
		Transport: rt,
		CheckRedirect: func(r *h.Request, via []*h.Request) (e error) {
			if len(via) >= maxRedirects {
				e = errors.New("stopped after 10 redirects")
			}
			return
		},
	}
	return
}
