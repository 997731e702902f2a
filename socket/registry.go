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

package socket

import (
	"context"
	"fmt"
	"net"
	"os"
	"sort"
)

// Registry indexes bound sockets by name (primary) and, for UNIX sockets,
// by path (to enforce path uniqueness across names).
//
// Registry is not safe for concurrent use on its own: the kernel serializes
// every call behind its single coarse mutex, matching the rest of the
// instance state (spec.md ​§5 "Locking").
type Registry struct {
	byName map[string]*Entry
	byPath map[string]*Entry
}

// NewRegistry returns an empty socket registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Entry),
		byPath: make(map[string]*Entry),
	}
}

// Get returns the entry registered under name, if any.
func (r *Registry) Get(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Names returns every registered socket name.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for k := range r.byName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Make binds a new listener for spec, or returns the existing entry if an
// equal spec is already registered under the same name (idempotent
// create). It fails if the name is taken by an unequal spec, or if a UNIX
// path is already registered under a different name.
func (r *Registry) Make(spec Spec) (*Entry, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if existing, ok := r.byName[spec.Name]; ok {
		if existing.Spec.Equal(spec) {
			return existing, nil
		}
		return nil, fmt.Errorf("socket %q has already been created with a different configuration", spec.Name)
	}

	if spec.Family == FamilyUnix {
		if other, ok := r.byPath[spec.Path]; ok {
			return nil, fmt.Errorf("path %q is already registered to socket %q", spec.Path, other.Spec.Name)
		}
		return r.bindUnix(spec)
	}

	return r.bindInet(spec)
}

// Remove closes and unregisters the socket named name.
func (r *Registry) Remove(name string) error {
	e, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("socket %q not found", name)
	}

	err := e.Close()
	delete(r.byName, name)
	if e.Spec.Family == FamilyUnix {
		delete(r.byPath, e.Spec.Path)
		_ = os.Remove(e.Spec.Path)
	}
	return err
}

// Shutdown closes every registered socket and unlinks every UNIX path,
// for kernel teardown.
func (r *Registry) Shutdown() {
	for name := range r.byName {
		_ = r.Remove(name)
	}
}

func (r *Registry) bindUnix(spec Spec) (*Entry, error) {
	_ = os.Remove(spec.Path) // best effort: clear a stale path from a prior run

	if spec.Umask != nil {
		restore := applyUmask(*spec.Umask)
		defer restore()
	}

	network := spec.network()
	ln, err := net.Listen(network, spec.Path)
	if err != nil {
		return nil, fmt.Errorf("bind failed: %w", err)
	}

	e := &Entry{Spec: spec}
	switch l := ln.(type) {
	case *net.UnixListener:
		e.closer, e.file = l, l
	default:
		e.closer = ln
	}

	r.byName[spec.Name] = e
	r.byPath[spec.Path] = e
	return e, nil
}

func (r *Registry) bindInet(spec Spec) (*Entry, error) {
	reusePort := spec.ReusePort
	if reusePort && !probeReusePort(spec) {
		reusePort = false
	}

	network := spec.network()
	addr := net.JoinHostPort(hostOrDefault(spec.Host), fmt.Sprintf("%d", spec.Port))

	lc := net.ListenConfig{Control: controlOpts(reusePort, spec.Interface)}

	var (
		ln   net.Listener
		pc   net.PacketConn
		port int
		err  error
	)

	if spec.SocketType == TypeDgram {
		pc, err = lc.ListenPacket(context.Background(), network, addr)
	} else {
		ln, err = lc.Listen(context.Background(), network, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("bind failed for port %d: %w", spec.Port, err)
	}

	e := &Entry{Spec: spec}
	e.Spec.ReusePort = reusePort
	e.Spec.Host = hostOrDefault(spec.Host)

	if pc != nil {
		port = portOf(pc.LocalAddr())
		if f, ok := pc.(filer); ok {
			e.file = f
		}
		e.closer = pc
	} else {
		port = portOf(ln.Addr())
		if f, ok := ln.(filer); ok {
			e.file = f
		}
		e.closer = ln
	}

	e.Port = port
	r.byName[spec.Name] = e
	return e, nil
}

// Clone binds a brand-new listener for an already-registered SO_REUSEPORT
// socket and returns the inheritable *os.File for the new fd. This backs
// $(socket.<name>.fileno) substitution: every reference to a reuseport
// socket in a process's argv gets its own kernel-bound listener so the
// fan-out actually load-balances across children, instead of every child
// sharing one fd.
//
// The caller owns both the returned listener (to keep it alive until the
// child has inherited the fd) and the *os.File (to close once the child
// has started).
func (r *Registry) Clone(name string) (closer interface{ Close() error }, file *os.File, err error) {
	e, ok := r.byName[name]
	if !ok {
		return nil, nil, fmt.Errorf("socket %q not found", name)
	}
	if !e.Spec.ReusePort {
		return nil, nil, fmt.Errorf("socket %q is not reuseport", name)
	}

	spec := e.Spec
	spec.Port = e.Port // bind the same concrete port via SO_REUSEPORT

	network := spec.network()
	addr := net.JoinHostPort(hostOrDefault(spec.Host), fmt.Sprintf("%d", spec.Port))
	lc := net.ListenConfig{Control: controlOpts(true, spec.Interface)}

	ln, lerr := lc.Listen(context.Background(), network, addr)
	if lerr != nil {
		return nil, nil, fmt.Errorf("reuseport clone failed for %q: %w", name, lerr)
	}

	f, ok := ln.(filer)
	if !ok {
		_ = ln.Close()
		return nil, nil, fmt.Errorf("socket %q does not support fd handoff", name)
	}

	osf, ferr := f.File()
	if ferr != nil {
		_ = ln.Close()
		return nil, nil, ferr
	}

	return ln, osf, nil
}

// hostOrDefault mirrors the original server's ('127.0.0.1', port) default:
// a socket with no host given binds loopback-only rather than every
// interface, so "make socket" without host= is safe by default.
func hostOrDefault(host string) string {
	if host == "" {
		return "127.0.0.1"
	}
	return host
}

// probeReusePort tests whether SO_REUSEPORT is actually usable for spec by
// binding and immediately closing a probe listener, mirroring the
// bind-probe-close dance the original implementation used to decide
// whether to advertise reuseport=true.
func probeReusePort(spec Spec) bool {
	network := spec.network()
	addr := net.JoinHostPort(hostOrDefault(spec.Host), fmt.Sprintf("%d", spec.Port))
	lc := net.ListenConfig{Control: controlOpts(true, "")}

	ln, err := lc.Listen(context.Background(), network, addr)
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}
