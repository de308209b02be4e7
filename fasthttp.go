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
	"time"

	"github.com/sirupsen/logrus"
	fh "github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// NewFastHandler adapts the relay to a
// github.com/valyala/fasthttp.RequestHandler. Request and
// response bodies are buffered by the adaptor, so large
// transfers are better served by net/http.Server.
func NewFastHandler(p *Relay) (hn fh.RequestHandler) {
	hn = fasthttpadaptor.NewFastHTTPHandler(p)
	return
}

// NewFastServer creates a github.com/valyala/fasthttp.Server
// ready to serve the relay
func NewFastServer(p *Relay, lg logrus.FieldLogger) (s *fh.Server) {
	s = &fh.Server{
		Name:                  "corsproxy",
		Handler:               NewFastHandler(p),
		ReadTimeout:           30 * time.Second,
		IdleTimeout:           120 * time.Second,
		NoDefaultServerHeader: true,
		NoDefaultContentType:  true,
		Logger:                lg,
	}
	return
}
