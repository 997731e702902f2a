//go:build unix

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

package process

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// ulimitFlag maps an rlimit name (as given to "make process rlimit.<name>=")
// to the POSIX shell's ulimit flag. Go's os/exec has no pre-exec hook, so
// per-child rlimits are applied the same way a shell script would: wrap the
// real command in a login-less "sh -c 'ulimit ...; exec ...'" invocation,
// which calls setrlimit(2) in the forked child before it execs the target.
var ulimitFlag = map[string]string{
	"core":    "-c",
	"cpu":     "-t",
	"data":    "-d",
	"fsize":   "-f",
	"nofile":  "-n",
	"stack":   "-s",
	"as":      "-v",
	"nproc":   "-u",
	"memlock": "-l",
	"rss":     "-m",
}

// wrapWithRLimits rewrites cmd to go through /bin/sh -c 'ulimit ...; exec
// "$@"' when limits is non-empty, preserving cmd's existing Path/Args as
// the exec target. Unknown rlimit names are rejected by validation before
// this point (see ParseRLimitName).
func wrapWithRLimits(cmd *exec.Cmd, limits map[string]uint64) {
	if len(limits) == 0 {
		return
	}

	names := make([]string, 0, len(limits))
	for k := range limits {
		names = append(names, k)
	}
	sort.Strings(names)

	var ulimit strings.Builder
	for _, name := range names {
		flag, ok := ulimitFlag[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&ulimit, "ulimit -S %s %d; ulimit -H %s %d; ", flag, limits[name], flag, limits[name])
	}
	ulimit.WriteString(`exec "$0" "$@"`)

	innerPath := cmd.Path
	innerArgs := cmd.Args[1:] // Args[0] mirrors Path by exec.Command convention

	cmd.Path = "/bin/sh"
	cmd.Args = append([]string{"/bin/sh", "-c", ulimit.String(), innerPath}, innerArgs...)
}

// ParseRLimitName validates that name is a known rlimit key, for
// "make process rlimit.<name>=<value>" option parsing.
func ParseRLimitName(name string) error {
	if _, ok := ulimitFlag[name]; !ok {
		return fmt.Errorf("unknown rlimit %q", name)
	}
	return nil
}
