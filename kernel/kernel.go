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

// Package kernel is the instance: the single coarse lock guarding the
// socket registry, the process registry, the value store and session
// bookkeeping, plus the command tree that turns a dispatched line into a
// call against one of them.
package kernel

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/nabbar/papa/ioutils/mapCloser"
	"github.com/nabbar/papa/process"
	"github.com/nabbar/papa/socket"
	"github.com/nabbar/papa/values"
	"github.com/nabbar/papa/wire"
)

// Kernel is papa's single in-process instance: every client session
// dispatches against the same Kernel, serialized behind mu exactly as
// spec.md's locking model requires. Registries keep their own internal
// locks for the fine-grained, high-frequency paths (ring buffer append,
// socket fd lookup); mu only needs to be held for operations that touch
// more than one registry or the session bookkeeping below.
type Kernel struct {
	mu sync.Mutex

	Sockets   *socket.Registry
	Processes *process.Registry
	Values    *values.Store

	sessions    map[string]struct{}
	watchers    int
	exitIfIdle  bool
	idleTimeout func()

	// closer collects resources that outlive any single command (the bound
	// control listener handed to it by cmd/papa) so Shutdown
	// has one place to flush them, instead of every owner remembering to
	// close its own handle on the way out.
	closer mapCloser.Closer

	tree *wire.Tree
}

// New builds an empty Kernel and its command tree.
func New() *Kernel {
	k := &Kernel{
		Sockets:   socket.NewRegistry(),
		Processes: process.NewRegistry(),
		Values:    values.NewStore(),
		sessions:  make(map[string]struct{}),
		closer:    mapCloser.New(context.Background()),
	}
	k.tree = k.buildTree()
	return k
}

// Closer returns the registry of extra resources Shutdown cleans up, such
// as the acceptor's listener.
func (k *Kernel) Closer() mapCloser.Closer {
	return k.closer
}

// Tree returns the command tree sessions dispatch against.
func (k *Kernel) Tree() *wire.Tree {
	return k.tree
}

// SessionOpened registers a new client session by id, for idle tracking.
func (k *Kernel) SessionOpened(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.sessions[id] = struct{}{}
}

// SessionClosed unregisters a client session by id.
func (k *Kernel) SessionClosed(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.sessions, id)
}

// Idle reports whether no client session is currently connected.
func (k *Kernel) Idle() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.sessions) == 0
}

// SetExitIfIdle arms (or disarms) the "shut down once every client has
// disconnected" flag, set by the exit-if-idle command.
func (k *Kernel) SetExitIfIdle(v bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.exitIfIdle = v
}

// ExitIfIdleArmed reports whether exit-if-idle was requested.
func (k *Kernel) ExitIfIdleArmed() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.exitIfIdle
}

// Shutdown tears down the sockets and whatever the caller registered with
// Closer (the acceptor's listener, chiefly). Spawned processes are neither
// stopped nor waited for.
func (k *Kernel) Shutdown() {
	k.Sockets.Shutdown()
	_ = k.closer.Close()
}

// socketAdapter makes *socket.Registry satisfy process.SocketResolver.
type socketAdapter struct{ reg *socket.Registry }

func (a socketAdapter) Port(name string) (int, bool) {
	e, ok := a.reg.Get(name)
	if !ok {
		return 0, false
	}
	return e.Port, true
}

func (a socketAdapter) Fileno(name string) (*os.File, func(), error) {
	e, ok := a.reg.Get(name)
	if !ok {
		return nil, nil, fmt.Errorf("socket %q not found", name)
	}

	if !e.Spec.ReusePort {
		f, err := e.File()
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}

	closer, f, err := a.reg.Clone(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close(); _ = closer.Close() }, nil
}
