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
	"strings"
	"sync"
)

// Entry is a spawned process: its spec, the running *exec.Cmd, and the
// output rings the reaper feeds. AutoClose marks an entry whose output has
// been explicitly discarded by "close output": once reaped, it is dropped
// from the registry instead of lingering as a watchable, exited entry.
type Entry struct {
	Spec    Spec
	PID     int
	Started int64
	Running bool

	Stdout *OutputRing
	Stderr *OutputRing

	mu        sync.Mutex
	cmd       *exec.Cmd
	autoClose bool
	exitErr   error
}

// CloseOutput marks the entry for removal as soon as it is reaped, instead
// of being kept around as a watchable, exited entry.
func (e *Entry) CloseOutput() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoClose = true
}

// AutoClose reports whether CloseOutput was called on this entry.
func (e *Entry) AutoClose() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.autoClose
}

// IsRunning reports whether the process has not yet been reaped.
func (e *Entry) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Running
}

// setExited records the process's termination, for "list processes" output.
func (e *Entry) setExited(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Running = false
	e.exitErr = err
}

// Describe renders the entry the way "list processes" serializes it.
func (e *Entry) Describe() string {
	e.mu.Lock()
	running := e.Running
	e.mu.Unlock()

	out := fmt.Sprintf("%s pid=%d running=%t started=%d", e.Spec.Name, e.PID, running, e.Started)
	if e.Spec.UID != nil {
		out += fmt.Sprintf(" uid=%d", *e.Spec.UID)
	}
	if e.Spec.GID != nil {
		out += fmt.Sprintf(" gid=%d", *e.Spec.GID)
	}
	if e.Spec.Shell {
		out += " shell=True"
	}
	out += fmt.Sprintf(" args=%s", strings.Join(e.Spec.Args, " "))
	return out
}
