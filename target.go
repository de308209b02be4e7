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
	"net/url"
	"strings"
)

// ResolveTarget extracts the target URL from the query
// parameter param or, when it's missing or empty, from the
// whole raw query. The value is percent-decoded twice, so
// callers can encode it twice to survive intermediaries, and
// gets the https scheme when it has none. It returns false
// when the request carries no target at all.
func ResolveTarget(u *url.URL, param string) (t string,
	ok bool) {
	if param != "" {
		t = queryParam(u.RawQuery, param)
	}
	if t == "" {
		t = u.RawQuery
	}
	ok = t != ""
	if ok {
		t = withScheme(unescape(unescape(t)))
	}
	return
}

// queryParam is the first value of the parameter named
// param in the raw query q. Pairs are separated only by '&',
// so values may contain ';'. A malformed escape leaves the
// key or value as it is.
func queryParam(q, param string) (v string) {
	found := false
	for !found && q != "" {
		var pair string
		pair, q, _ = strings.Cut(q, "&")
		k, val, _ := strings.Cut(pair, "=")
		found = formUnescape(k) == param
		if found {
			v = formUnescape(val)
		}
	}
	return
}

func formUnescape(s string) (r string) {
	var e error
	r, e = url.QueryUnescape(s)
	if e != nil {
		r = s
	}
	return
}

// unescape decodes percent escapes, leaving s unchanged if
// it has a malformed one. '+' isn't decoded as space.
func unescape(s string) (r string) {
	var e error
	r, e = url.PathUnescape(s)
	if e != nil {
		r = s
	}
	return
}

func withScheme(s string) (r string) {
	r = s
	if !strings.HasPrefix(s, "http://") &&
		!strings.HasPrefix(s, "https://") {
		r = "https://" + s
	}
	return
}
