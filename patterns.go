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
	"regexp"

	alg "github.com/lamg/algorithms"
)

// Patterns is a list of compiled regular expressions used
// for deciding whether an origin or a target URL is listed
type Patterns []*regexp.Regexp

// CompilePatterns compiles every expression in exprs. The
// list name is only used for reporting which configuration
// value holds an invalid expression.
func CompilePatterns(list string, exprs []string) (p Patterns,
	e error) {
	p = make(Patterns, len(exprs))
	ib := func(i int) (b bool) {
		p[i], e = regexp.Compile(exprs[i])
		b = e != nil
		return
	}
	bad, i := alg.BLnSrch(ib, len(exprs))
	if bad {
		e = &PatternErr{List: list, Pattern: exprs[i], Err: e}
		p = nil
	}
	return
}

// Listed is true when any pattern matches some substring of
// v. A value that isn't present is considered listed, so
// callers gating access must decide about absence before
// relying on the result.
func (p Patterns) Listed(v string, present bool) (ok bool) {
	ok = !present
	if !ok {
		ib := func(i int) (b bool) {
			b = p[i].MatchString(v)
			return
		}
		ok, _ = alg.BLnSrch(ib, len(p))
	}
	return
}

// PatternErr is returned when a configured pattern isn't a
// valid regular expression
type PatternErr struct {
	List    string
	Pattern string
	Err     error
}

func (e *PatternErr) Error() (s string) {
	s = fmt.Sprintf("Invalid pattern '%s' in %s: %v", e.Pattern,
		e.List, e.Err)
	return
}

func (e *PatternErr) Unwrap() error { return e.Err }
