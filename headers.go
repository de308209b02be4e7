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
	"fmt"
	h "net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

// ComposeHeaders builds the headers of the outbound request
// in three layers, each one overwriting the previous on
// name collision: the synthetic browser identity, the
// passthrough headers present in the inbound request and the
// JSON object sent by the caller in the override header. A
// malformed override is logged and ignored.
func ComposeHeaders(c *Config, in h.Header,
	lg logrus.FieldLogger) (out h.Header) {
	out = make(h.Header, len(c.Identity)+len(c.Passthrough))
	for _, p := range c.Identity {
		out.Set(p.Name, p.Value)
	}
	for k, vv := range in {
		if containsFold(c.Passthrough, k) {
			out.Set(k, strings.Join(vv, ", "))
		}
	}
	raw := in.Get(c.OverrideHeader)
	if raw != "" {
		ovr, e := DecodeOverrides(raw)
		if e == nil {
			for _, p := range ovr {
				out.Set(p.Name, p.Value)
			}
		} else {
			lg.WithError(e).WithField("header", c.OverrideHeader).
				Warn("Ignoring malformed override headers")
		}
	}
	return
}

// DecodeOverrides parses a JSON object of header names and
// values, keeping the order of its members. Non string
// values are taken as their JSON text.
func DecodeOverrides(raw string) (ps []HeaderPair, e error) {
	var p fastjson.Parser
	var v *fastjson.Value
	v, e = p.Parse(raw)
	var o *fastjson.Object
	if e == nil {
		o, e = v.Object()
	}
	if e == nil {
		ps = make([]HeaderPair, 0, o.Len())
		o.Visit(func(k []byte, x *fastjson.Value) {
			ps = append(ps, HeaderPair{
				Name:  string(k),
				Value: jsonText(x),
			})
		})
	} else {
		e = fmt.Errorf("decoding override headers: %w", e)
	}
	return
}

func jsonText(x *fastjson.Value) (s string) {
	if x.Type() == fastjson.TypeString {
		s = string(x.GetStringBytes())
	} else {
		s = x.String()
	}
	return
}
