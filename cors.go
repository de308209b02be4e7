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
	"sort"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

const (
	originHd          = "Origin"
	allowOriginHd     = "Access-Control-Allow-Origin"
	allowMethodsHd    = "Access-Control-Allow-Methods"
	allowHeadersHd    = "Access-Control-Allow-Headers"
	maxAgeHd          = "Access-Control-Max-Age"
	exposeHeadersHd   = "Access-Control-Expose-Headers"
	ReceivedHeadersHd = "Cors-Received-Headers"

	allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// AttachCORS sets the headers allowing origin, or any origin
// if it's empty, to read the response
func AttachCORS(hd h.Header, origin string, maxAge int) {
	if origin == "" {
		origin = "*"
	}
	hd.Set(allowOriginHd, origin)
	hd.Set(allowMethodsHd, allowedMethods)
	hd.Set(allowHeadersHd, "*")
	hd.Set(maxAgeHd, strconv.Itoa(maxAge))
}

// ExposeReceived lets browser code read every header received
// from the target, and dumps them as a JSON object in the
// Cors-Received-Headers header. Names are lowercase and
// values of repeated headers are joined with ", ".
func ExposeReceived(hd, received h.Header) {
	vals := make(map[string][]string, len(received))
	names := make([]string, 0, len(received))
	for k, vv := range received {
		n := strings.ToLower(k)
		if _, ok := vals[n]; !ok {
			names = append(names, n)
		}
		vals[n] = append(vals[n], vv...)
	}
	sort.Strings(names)
	var a fastjson.Arena
	o := a.NewObject()
	for _, n := range names {
		o.Set(n, a.NewString(strings.Join(vals[n], ", ")))
	}
	hd.Set(exposeHeadersHd, strings.Join(names, ","))
	hd.Set(ReceivedHeadersHd, string(o.MarshalTo(nil)))
}
