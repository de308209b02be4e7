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
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

func init() {
	proxy.RegisterDialerType("http", newHTTPProxy)
}

// httpProxy is a HTTP/HTTPS connect proxy.
type httpProxy struct {
	host     string
	haveAuth bool
	username string
	password string
	forward  proxy.Dialer
}

func newHTTPProxy(uri *url.URL,
	forward proxy.Dialer) (dlr proxy.Dialer, e error) {
	s := new(httpProxy)
	s.host = uri.Host
	s.forward = forward
	if uri.User != nil {
		s.haveAuth = true
		s.username = uri.User.Username()
		s.password, _ = uri.User.Password()
	}
	dlr = s
	return
}

func (s *httpProxy) Dial(network,
	addr string) (net.Conn, error) {
	return s.DialContext(context.Background(), network, addr)
}

func (s *httpProxy) DialContext(ctx context.Context, network,
	addr string) (net.Conn, error) {
	var c net.Conn
	var err error
	if cd, ok := s.forward.(proxy.ContextDialer); ok {
		c, err = cd.DialContext(ctx, "tcp", s.host)
	} else {
		c, err = s.forward.Dial("tcp", s.host)
	}
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		c.SetDeadline(dl)
	}

	// HACK. http.ReadRequest also does this.
	reqURL, err := url.Parse("https://" + addr)
	if err != nil {
		c.Close()
		return nil, err
	}
	reqURL.Scheme = ""

	req, err := http.NewRequest(http.MethodConnect,
		reqURL.String(), nil)
	if err != nil {
		c.Close()
		return nil, err
	}
	req.Close = false
	if s.haveAuth {
		req.SetBasicAuth(s.username, s.password)
		req.Header.Set("Proxy-Authorization",
			req.Header.Get("Authorization"))
		req.Header.Del("Authorization")
	}

	err = req.Write(c)
	if err != nil {
		c.Close()
		return nil, err
	}

	resp, err := http.ReadResponse(bufio.NewReader(c), req)
	if err != nil {
		c.Close()
		return nil, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.Close()
		err = &ExpectingCodeErr{
			Context:  "Connect server using proxy error",
			Expected: http.StatusOK,
			Actual:   resp.StatusCode,
		}
		return nil, err
	}
	c.SetDeadline(time.Time{})
	return c, nil
}

type ExpectingCodeErr struct {
	Context  string
	Expected int
	Actual   int
}

func (e *ExpectingCodeErr) Error() (s string) {
	s = fmt.Sprintf("%s:Expecting response status code %d, got %d",
		e.Context, e.Expected, e.Actual)
	return
}
