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
	"strings"

	alg "github.com/lamg/algorithms"
)

// hop-by-hop headers. Shouldn't be relayed back to the
// client.
// https://developer.mozilla.org/en-US/docs/
// Web/HTTP/Headers#hbh
var hopByHop = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate",
	"Proxy-Authorization", "TE", "Trailer",
	"Transfer-Encoding", "Upgrade",
}

func searchHopByHop(hd string) (ok bool) {
	ok = containsFold(hopByHop, hd)
	return
}

// containsFold searches s in names, ignoring case
func containsFold(names []string, s string) (ok bool) {
	ib := func(i int) (b bool) {
		b = strings.EqualFold(names[i], s)
		return
	}
	ok, _ = alg.BLnSrch(ib, len(names))
	return
}

func copyHeader(dst, src h.Header) {
	for k, vv := range src {
		ok := searchHopByHop(k)
		if !ok {
			for _, v := range vv {
				dst.Add(k, v)
			}
		}
	}
}
