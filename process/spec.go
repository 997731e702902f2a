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

// Package process owns child processes: spawning them from a ProcessSpec,
// capturing their stdout/stderr into a per-stream OutputRing, and reaping
// them once they exit.
package process

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Disposition controls what happens to a stream of output.
type Disposition int

const (
	// DispositionDiscard sends the stream to /dev/null; nothing is captured.
	DispositionDiscard Disposition = iota
	// DispositionCapture captures the stream into its own OutputRing.
	DispositionCapture
	// DispositionStdout merges stderr into the stdout stream (err=stdout only).
	DispositionStdout
)

// DefaultBufSize is used when a spec does not request a capture size.
const DefaultBufSize = 1048576

// Spec describes a process to spawn, mirroring the "make process" option
// set: name, argv, environment, resource limits, working directory, shell
// mode, the user/group to run as, and how much of each output stream to
// retain.
type Spec struct {
	Name       string
	Args       []string
	Env        map[string]string
	RLimits    map[string]uint64
	WorkingDir string
	Shell      bool

	UID *int
	GID *int

	Stdout  Disposition
	Stderr  Disposition
	BufSize int
}

// Equal reports whether two specs describe the same process for the
// purposes of "make process" idempotency.
func (s Spec) Equal(o Spec) bool {
	if s.Name != o.Name || s.WorkingDir != o.WorkingDir || s.Shell != o.Shell {
		return false
	}
	if !reflect.DeepEqual(s.Args, o.Args) {
		return false
	}
	if !reflect.DeepEqual(s.Env, o.Env) {
		return false
	}
	if !reflect.DeepEqual(s.RLimits, o.RLimits) {
		return false
	}
	if s.bufSizeOrDefault() != o.bufSizeOrDefault() {
		return false
	}
	if s.bufSizeOrDefault() == 0 {
		// capture is off on both sides; disposition is irrelevant.
	} else if s.Stdout != o.Stdout || s.Stderr != o.Stderr {
		return false
	}
	return intPtrEqual(s.UID, o.UID) && intPtrEqual(s.GID, o.GID)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s Spec) bufSizeOrDefault() int {
	if s.BufSize == 0 {
		return DefaultBufSize
	}
	if s.BufSize < 0 {
		return 0
	}
	return s.BufSize
}

// Validate checks the structural requirements of a Spec that hold
// regardless of the rest of the registry.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("process requires a name")
	}
	if len(s.Args) == 0 {
		return fmt.Errorf("no command")
	}
	return nil
}

// ParseBufSize parses the "1m"/"512k"/"2g" suffix notation used by "bufsize"
// option values, falling back to plain byte counts.
func ParseBufSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty bufsize")
	}

	mult := 1
	switch strings.ToLower(s[len(s)-1:]) {
	case "g":
		mult = 1 << 30
		s = s[:len(s)-1]
	case "m":
		mult = 1 << 20
		s = s[:len(s)-1]
	case "k":
		mult = 1 << 10
		s = s[:len(s)-1]
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid bufsize %q: %w", s, err)
	}
	return n * mult, nil
}
