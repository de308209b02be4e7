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
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestListed(t *testing.T) {
	allow, e := CompilePatterns("allow", []string{
		`^https://good\.test$`, "example",
	})
	require.NoError(t, e)
	ts := []struct {
		v       string
		present bool
		ok      bool
	}{
		{"https://good.test", true, true},
		{"https://good.test.evil", true, false},
		{"evil.test", true, false},
		{"http://www.example.com", true, true},
		{"HTTP://EXAMPLE.COM", true, false},
		{"", false, true},
		{"", true, false},
	}
	for i, j := range ts {
		require.Equal(t, j.ok, allow.Listed(j.v, j.present), "%d", i)
	}
}

func TestEmptyPatterns(t *testing.T) {
	none, e := CompilePatterns("deny", nil)
	require.NoError(t, e)
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.String().Draw(t, "v")
		require.False(t, none.Listed(v, true))
		require.True(t, none.Listed(v, false))
	})
}

func TestMatchAll(t *testing.T) {
	all, e := CompilePatterns("allow", []string{".*"})
	require.NoError(t, e)
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.StringN(1, -1, -1).Draw(t, "v")
		require.True(t, all.Listed(v, true))
	})
}

func TestInvalidPattern(t *testing.T) {
	p, e := CompilePatterns("deny_targets", []string{"ok", "(["})
	require.Nil(t, p)
	var pe *PatternErr
	require.ErrorAs(t, e, &pe)
	require.Equal(t, "deny_targets", pe.List)
	require.Equal(t, "([", pe.Pattern)
	require.Contains(t, e.Error(), "deny_targets")
}
