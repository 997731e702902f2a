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

package kernel

import liberr "github.com/nabbar/papa/errors"

// Error codes for the kernel's command layer, offset from
// liberr.MinPkgPapa so they never collide with the rest of the errors
// package's taxonomy. Grouped the way spec.md's error taxonomy is grouped:
// protocol framing, option/argument validation, name conflicts, lookup
// misses, OS-level failures, and transport faults.
const (
	CodeProtocol uint16 = iota + uint16(liberr.MinPkgPapa) + 1
	CodeValidation
	CodeConflict
	CodeNotFound
	CodeSystem
	CodeTransport
)

// ErrProtocol wraps a malformed command line (bad tokenization, unknown
// command, wrong arity).
func ErrProtocol(format string, args ...any) liberr.Error {
	return liberr.Newf(CodeProtocol, format, args...)
}

// ErrValidation wraps a structurally invalid option or argument value.
func ErrValidation(format string, args ...any) liberr.Error {
	return liberr.Newf(CodeValidation, format, args...)
}

// ErrConflict wraps a name already registered with a different
// configuration, or a UNIX path already claimed.
func ErrConflict(format string, args ...any) liberr.Error {
	return liberr.Newf(CodeConflict, format, args...)
}

// ErrNotFound wraps a lookup miss for a required, non-wildcard name.
func ErrNotFound(format string, args ...any) liberr.Error {
	return liberr.Newf(CodeNotFound, format, args...)
}

// ErrSystem wraps an OS-level failure (bind, exec, setrlimit, setuid...).
func ErrSystem(format string, args ...any) liberr.Error {
	return liberr.Newf(CodeSystem, format, args...)
}

// ErrTransport wraps a failure writing to or reading from a client
// connection.
func ErrTransport(format string, args ...any) liberr.Error {
	return liberr.Newf(CodeTransport, format, args...)
}
