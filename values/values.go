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

// Package values implements papa's named string store: the small
// set/get/clear key-value surface clients use to stash shared state
// alongside sockets and processes.
package values

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nabbar/papa/match"
)

// Store is a concurrency-safe named string map.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewStore returns an empty value store.
func NewStore() *Store {
	return &Store{data: make(map[string]string)}
}

// Set assigns value to name, overwriting any prior value.
func (s *Store) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = value
}

// Unset removes name, if present.
func (s *Store) Unset(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
}

// Get returns the value stored under name, if any.
func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[name]
	return v, ok
}

// Names returns every stored name matching patterns (see match.Resolve).
func (s *Store) Names(patterns []string) ([]string, error) {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	s.mu.RUnlock()

	return match.Resolve(keys, patterns, false)
}

// List renders "values"/"values <pattern>" output: one "name value" line
// per matched entry, sorted by name.
func (s *Store) List(patterns []string) (string, error) {
	names, err := s.Names(patterns)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]string, 0, len(names))
	for _, n := range names {
		lines = append(lines, fmt.Sprintf("%s %s", n, s.data[n]))
	}
	sort.Strings(lines)
	return joinLines(lines), nil
}

// Clear removes every value matching patterns. A bare "*" (or no pattern at
// all) is rejected: clearing every value at once is not allowed.
func (s *Store) Clear(patterns []string) error {
	if len(patterns) == 0 || (len(patterns) == 1 && patterns[0] == "*") {
		return fmt.Errorf("You cannot remove all variables")
	}

	names, err := s.Names(patterns)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		delete(s.data, n)
	}
	return nil
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
