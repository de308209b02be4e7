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
	"io"
	"net"
	h "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Relay is a net/http.Handler forwarding each request to the
// target URL found in its query string. It holds no state
// modified by requests, so it can serve any amount of them
// concurrently.
type Relay struct {
	cfg    *Config
	allow  Patterns
	deny   Patterns
	client *h.Client
	log    logrus.FieldLogger
	met    *Metrics
	clock  func() time.Time
}

// NewRelay creates a Relay with the configuration c, which
// must not be modified afterwards. The metrics m can be nil,
// a nil lg means the logrus standard logger and a nil clock
// means time.Now.
func NewRelay(
	c *Config,
	lg logrus.FieldLogger,
	m *Metrics,
	clock func() time.Time,
) (p *Relay, e error) {
	p = &Relay{
		cfg:   c,
		log:   lg,
		met:   m,
		clock: clock,
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.log == nil {
		p.log = logrus.StandardLogger()
	}
	p.allow, e = CompilePatterns("allow_origins", c.AllowOrigins)
	if e == nil {
		p.deny, e = CompilePatterns("deny_targets", c.DenyTargets)
	}
	var t *h.Transport
	if e == nil {
		t, e = newTransport(c)
	}
	if e == nil {
		p.client = newClient(t)
	} else {
		p = nil
	}
	return
}

func (p *Relay) ServeHTTP(w h.ResponseWriter, r *h.Request) {
	start := p.clock()
	lg := p.log.WithFields(logrus.Fields{
		"request_id":  uuid.NewString(),
		"method":      r.Method,
		"remote_addr": r.RemoteAddr,
	})
	origin := r.Header.Get(originHd)
	target, ok := ResolveTarget(r.URL, p.cfg.TargetParam)
	if ok {
		lg = lg.WithField("target", target)
	}
	status := h.StatusOK
	var o outcome
	switch {
	case r.Method == h.MethodOptions:
		AttachCORS(w.Header(), origin, p.cfg.MaxAge)
		status, o = h.StatusNoContent, preflight
		w.WriteHeader(status)
	case !ok:
		o = usage
		p.usage(w, r, origin)
	case !p.permitted(r.Header, target):
		status, o = h.StatusForbidden, denied
		h.Error(w, "Access denied", status)
	default:
		status, o = p.relay(w, r, target, origin, lg)
	}
	p.met.served(r.Method, o)
	lg.WithFields(logrus.Fields{
		"status":   status,
		"outcome":  o,
		"duration": p.clock().Sub(start),
	}).Info("Request served")
}

// permitted is true when the request's origin is allowed and
// the target isn't denied
func (p *Relay) permitted(hd h.Header, target string) (ok bool) {
	present := len(hd.Values(originHd)) != 0
	ok = (present || !p.cfg.RequireOrigin) &&
		p.allow.Listed(hd.Get(originHd), present) &&
		!p.deny.Listed(target, true)
	return
}

func (p *Relay) relay(w h.ResponseWriter, r *h.Request, target,
	origin string, lg logrus.FieldLogger) (status int, o outcome) {
	var body io.Reader
	if r.Method != h.MethodGet && r.Method != h.MethodHead {
		body = r.Body
	}
	// the inbound context cancels the fetch when the caller
	// goes away
	req, e := h.NewRequestWithContext(r.Context(), r.Method, target,
		body)
	var resp *h.Response
	if e == nil {
		req.Header = ComposeHeaders(p.cfg, r.Header, lg)
		if body != nil {
			req.ContentLength = r.ContentLength
		}
		done := p.met.fetching(p.clock)
		resp, e = p.client.Do(req)
		if e == nil {
			done(relayed)
		} else {
			done(failed)
		}
	}
	if e == nil {
		hd := w.Header()
		copyHeader(hd, resp.Header)
		AttachCORS(hd, origin, p.cfg.MaxAge)
		ExposeReceived(hd, resp.Header)
		status, o = resp.StatusCode, relayed
		w.WriteHeader(status)
		fw := &flushWriter{w: w, rc: h.NewResponseController(w)}
		_, e = io.Copy(fw, resp.Body)
		resp.Body.Close()
		if e != nil {
			lg.WithError(e).Warn("Response body interrupted")
		}
	} else {
		lg.WithError(e).Error("Proxying request failed")
		AttachCORS(w.Header(), origin, p.cfg.MaxAge)
		status, o = h.StatusBadGateway, failed
		h.Error(w, "Error proxying request: "+e.Error(), status)
	}
	return
}

const usageText = `CORS Proxy

Usage:
  %[1]s/?%[2]s=https://example.com/api
  %[1]s/?https://example.com/api

With custom headers:
  headers: { "%[3]s": JSON.stringify({ "Authorization": "Bearer token" }) }

Current IP: %[4]s
`

func (p *Relay) usage(w h.ResponseWriter, r *h.Request,
	origin string) {
	ip := r.Header.Get(p.cfg.ClientIPHeader)
	if ip == "" {
		ip, _, _ = net.SplitHostPort(r.RemoteAddr)
	}
	hd := w.Header()
	hd.Set("Content-Type", "text/plain; charset=utf-8")
	AttachCORS(hd, origin, p.cfg.MaxAge)
	w.WriteHeader(h.StatusOK)
	fmt.Fprintf(w, usageText, baseURL(r), p.cfg.TargetParam,
		p.cfg.OverrideHeader, ip)
}

// baseURL is the scheme and host the caller used for
// reaching the relay
func baseURL(r *h.Request) (s string) {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fp := r.Header.Get("X-Forwarded-Proto"); fp != "" {
		scheme = fp
	}
	s = scheme + "://" + r.Host
	return
}

// flushWriter sends each chunk of the body to the caller as
// soon as it arrives from the target
type flushWriter struct {
	w  io.Writer
	rc *h.ResponseController
}

func (f *flushWriter) Write(p []byte) (n int, e error) {
	n, e = f.w.Write(p)
	if e == nil {
		f.rc.Flush()
	}
	return
}
