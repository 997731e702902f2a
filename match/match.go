/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package match resolves name patterns against a registry's keys: literal
// names and trailing-"*" wildcards, the way papa's list/remove commands
// select sockets, processes and values by name.
package match

import (
	"fmt"
	"sort"
	"strings"
)

// ErrNoMatch is wrapped into the error returned by Resolve when a pattern
// is marked required and matches no key.
type ErrNoMatch string

func (e ErrNoMatch) Error() string {
	return fmt.Sprintf("%s not found", string(e))
}

// Resolve expands patterns against keys into a deterministic, deduplicated,
// sorted slice of matched names.
//
// An empty pattern list, or the single pattern "*", matches every key. A
// pattern ending in "*" matches every key sharing that prefix (a bare "*"
// suffix with nothing before it also matches every key). Any other pattern
// must equal a key exactly.
//
// Patterns are resolved to a name-set before anything else happens, so
// overlapping patterns (e.g. "foo" and "foo*" both matching "foo") only
// contribute one entry and only count once toward the required check -
// matching how the original dispatcher grouped matches by name rather than
// by which pattern produced them.
//
// When required is true, a pattern that matches nothing in keys causes
// Resolve to fail with an error wrapping ErrNoMatch for that pattern.
func Resolve(keys []string, patterns []string, required bool) ([]string, error) {
	if len(patterns) == 0 || (len(patterns) == 1 && patterns[0] == "*") {
		out := make([]string, len(keys))
		copy(out, keys)
		sort.Strings(out)
		return out, nil
	}

	set := make(map[string]struct{}, len(keys))

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		if strings.HasSuffix(pattern, "*") {
			// A wildcard matching nothing is never an error, even when
			// required - only a literal name that matches nothing is.
			prefix := pattern[:len(pattern)-1]
			for _, k := range keys {
				if strings.HasPrefix(k, prefix) {
					set[k] = struct{}{}
				}
			}
			continue
		}

		found := false
		for _, k := range keys {
			if k == pattern {
				set[k] = struct{}{}
				found = true
				break
			}
		}
		if !found && required {
			return nil, fmt.Errorf("%w", ErrNoMatch(pattern))
		}
	}

	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
