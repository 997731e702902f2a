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
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"
)

// SocketResolver is the subset of the socket registry the supervisor needs
// to substitute $(socket.<name>.port|fileno) tokens in argv, kept as an
// interface so this package never imports socket directly (the kernel
// wires the two together).
type SocketResolver interface {
	// Port returns the bound port for the named socket.
	Port(name string) (int, bool)
	// Fileno returns an inheritable, dup'd *os.File for the named socket
	// and a release func the caller must invoke once the child has
	// inherited it (typically right after cmd.Start()). For a SO_REUSEPORT
	// socket this binds a brand-new listener per call so every process
	// argument gets its own fd instead of sharing one; release then closes
	// that listener, which the dup'd fd keeps alive for the child.
	Fileno(name string) (file *os.File, release func(), err error)
}

// Registry indexes spawned processes by name. Spawn holds the registry lock
// from its existence check through the insert, so concurrent Spawns of an
// equal spec return the same entry, mirroring socket.Registry.Make's
// idempotent create.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewRegistry returns an empty process registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Get returns the entry registered under name, if any.
func (r *Registry) Get(name string) (*Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	return e, ok
}

// Names returns every registered process name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Remove drops name from the registry without touching the underlying
// process: the reaper calls it once an auto-closed entry has exited.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, name)
}

// CloseProcessOutput implements "remove processes" (spec.md §4.3): it
// marks entry for auto-close so its in-flight reaper drops the terminal
// "closed" item and removes it from the registry instead of leaving it
// watchable, and additionally removes it right away if the process had
// already exited before this call — the reaper in that case already ran
// to completion and will never check AutoClose again.
func (r *Registry) CloseProcessOutput(name string) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		r.mu.Unlock()
		return
	}
	e.CloseOutput()
	alreadyExited := !e.IsRunning()
	if alreadyExited {
		delete(r.entries, name)
	}
	r.mu.Unlock()

	if alreadyExited {
		e.Stdout.Close()
		e.Stderr.Close()
	}
}

// Spawn creates and starts a process for spec, or returns the existing
// entry unchanged if spec is equal to the one already registered under the
// same name (idempotent create, mirroring socket.Registry.Make).
func (r *Registry) Spawn(spec Spec, sockets SocketResolver) (*Entry, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.entries[spec.Name]; ok {
		if existing.Spec.Equal(spec) {
			return existing, nil
		}
		return nil, fmt.Errorf("process %q has already been created with a different configuration", spec.Name)
	}

	args, extraFiles, managed, err := substituteSockets(spec.Args, sockets)
	closeManaged := func() {
		for _, release := range managed {
			release()
		}
	}
	if err != nil {
		closeManaged()
		return nil, err
	}

	if spec.WorkingDir != "" {
		if fi, statErr := os.Stat(spec.WorkingDir); statErr != nil || !fi.IsDir() {
			closeManaged()
			return nil, fmt.Errorf("bad working_dir - %s", spec.WorkingDir)
		}
	}

	bufsize := spec.bufSizeOrDefault()

	entry := &Entry{
		Spec:    spec,
		Started: time.Now().Unix(),
		Running: true,
		Stdout:  NewOutputRing(captureSize(bufsize, spec.Stdout)),
		Stderr:  NewOutputRing(captureSize(bufsize, spec.Stderr)),
	}

	cmd := buildCmd(spec, args)
	cmd.ExtraFiles = extraFiles

	var stdoutPipe, stderrPipe io.ReadCloser
	if !entry.Stdout.Disabled() {
		if stdoutPipe, err = cmd.StdoutPipe(); err != nil {
			closeManaged()
			return nil, err
		}
	}
	if spec.Stderr == DispositionStdout {
		cmd.Stderr = cmd.Stdout
	} else if !entry.Stderr.Disabled() {
		if stderrPipe, err = cmd.StderrPipe(); err != nil {
			closeManaged()
			return nil, err
		}
	}

	if startErr := cmd.Start(); startErr != nil {
		closeManaged()
		return nil, fmt.Errorf("bad command - %w", startErr)
	}
	closeManaged() // the child has inherited any dup'd fds; the parent's copies are no longer needed

	entry.PID = cmd.Process.Pid
	entry.cmd = cmd

	r.entries[spec.Name] = entry

	var wg sync.WaitGroup
	if stdoutPipe != nil {
		wg.Add(1)
		go pump(&wg, entry.Stdout, StreamStdout, stdoutPipe)
	}
	if stderrPipe != nil {
		wg.Add(1)
		go pump(&wg, entry.Stderr, StreamStderr, stderrPipe)
	}

	go r.reap(entry, &wg)

	return entry, nil
}

// reap waits for both output pumps to hit EOF and for the process to exit,
// then pushes the terminal "closed" item (or, for an auto-closed entry,
// removes it from the registry outright instead of leaving it watchable).
func (r *Registry) reap(entry *Entry, wg *sync.WaitGroup) {
	wg.Wait()
	err := entry.cmd.Wait()
	entry.setExited(err)
	entry.Stderr.Close()

	if entry.AutoClose() {
		entry.Stdout.Close()
		r.Remove(entry.Spec.Name)
		return
	}

	status := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			status = exitErr.ExitCode()
		} else {
			status = -1
		}
	}

	entry.Stdout.CloseWithMarker(StreamClosed, time.Now().UnixNano(), []byte(fmt.Sprintf("%d", status)))
}

// pump copies r into ring until EOF, tagging every chunk with stream and
// the time it was read. This is the goroutine-per-stream equivalent of the
// non-blocking select loop a threaded implementation would use.
func pump(wg *sync.WaitGroup, ring *OutputRing, stream Stream, r io.ReadCloser) {
	defer wg.Done()
	defer r.Close()

	if ring.Disabled() {
		_, _ = io.Copy(io.Discard, r)
		return
	}

	buf := bufio.NewReaderSize(r, 32*1024)
	chunk := make([]byte, 32*1024)
	for {
		n, err := buf.Read(chunk)
		if n > 0 {
			data := make([]byte, n)
			copy(data, chunk[:n])
			ring.Append(stream, time.Now().UnixNano(), data)
		}
		if err != nil {
			return
		}
	}
}

func captureSize(bufsize int, d Disposition) int {
	if bufsize <= 0 || d == DispositionDiscard {
		return 0
	}
	return bufsize
}

func buildCmd(spec Spec, args []string) *exec.Cmd {
	var cmd *exec.Cmd
	if spec.Shell {
		cmd = exec.Command("/bin/sh", "-c", strings.Join(args, " "))
	} else {
		cmd = exec.Command(args[0], args[1:]...)
	}

	cmd.Dir = spec.WorkingDir
	if spec.Env != nil {
		env := make([]string, 0, len(spec.Env))
		for k, v := range spec.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	applyCredentials(cmd, spec)
	if len(spec.RLimits) > 0 {
		wrapWithRLimits(cmd, spec.RLimits)
	}

	return cmd
}

// substituteSockets rewrites every "$(socket.<name>.port)" or
// "$(socket.<name>.fileno)" token in args, consulting sockets. Each
// ".fileno" hit is appended to extraFiles so the caller can attach it to
// cmd.ExtraFiles; exec.Cmd places ExtraFiles[i] at child fd 3+i (0-2 are
// stdin/stdout/stderr), so the substituted number must match that
// convention rather than the dup'd file's fd in the parent's own table.
// A fileno substitution's release func must be called once the child has
// inherited the fd (the caller does this right after cmd.Start()).
func substituteSockets(args []string, sockets SocketResolver) ([]string, []*os.File, []func(), error) {
	out := make([]string, 0, len(args))
	var extraFiles []*os.File
	var managed []func()

	for _, arg := range args {
		start := strings.Index(arg, "$(socket.")
		if start == -1 {
			out = append(out, arg)
			continue
		}
		end := strings.Index(arg[start:], ")")
		if end == -1 {
			return nil, extraFiles, managed, fmt.Errorf("argument %q starts with \"$(socket.\" but has no closing parenthesis", arg)
		}
		end += start

		body := arg[start+len("$(socket.") : end]
		dot := strings.LastIndex(body, ".")
		if dot == -1 {
			return nil, extraFiles, managed, fmt.Errorf("you forgot to specify either \".port\" or \".fileno\" after the name")
		}
		name, part := body[:dot], body[dot+1:]

		var replacement string
		switch part {
		case "port":
			p, ok := sockets.Port(name)
			if !ok {
				return nil, extraFiles, managed, fmt.Errorf("socket %q not found", name)
			}
			replacement = fmt.Sprintf("%d", p)
		case "fileno":
			f, release, err := sockets.Fileno(name)
			if err != nil {
				return nil, extraFiles, managed, err
			}
			managed = append(managed, release)
			childFd := 3 + len(extraFiles)
			extraFiles = append(extraFiles, f)
			replacement = fmt.Sprintf("%d", childFd)
		default:
			return nil, extraFiles, managed, fmt.Errorf("you forgot to specify either \".port\" or \".fileno\" after the name")
		}

		out = append(out, arg[:start]+replacement+arg[end+1:])
	}

	return out, extraFiles, managed, nil
}
