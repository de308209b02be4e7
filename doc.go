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

// Package corsproxy is a single hop HTTP relay that forwards
// a request to the URL given in its query string, dressing
// the outbound request as if a desktop browser issued it, and
// answers with permissive CORS headers so browser code can
// read the result. Origins and targets are filtered with
// regular expression lists. The relay is a net/http.Handler
// and can also be served by github.com/valyala/fasthttp.Server.
// Outbound connections may be dialed through a network
// interface or a parent proxy (HTTP or SOCKS5).
package corsproxy
