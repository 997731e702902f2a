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
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// filer is satisfied by every concrete listener/conn type net.Listen and
// net.ListenPacket can hand back (*net.TCPListener, *net.UnixListener,
// *net.UDPConn, *net.UnixConn): a dup'd, inheritable *os.File view of the
// underlying fd, suitable for exec.Cmd.ExtraFiles.
type filer interface {
	File() (*os.File, error)
}

// Entry is a bound SocketSpec: the listener papa owns and hands out by fd
// to child processes, never by value.
type Entry struct {
	Spec Spec
	// Port is the concrete port bound for INET/INET6 specs (resolved even
	// when Spec.Port was 0).
	Port int

	closer io.Closer
	file   filer
}

// Fileno returns the OS file descriptor number of the bound listener in
// papa's own process, for "list sockets" output. $(socket.<name>.fileno)
// substitution does not use it: the child receives a dup from File at its
// own fd 3+i.
func (e *Entry) Fileno() (int, error) {
	sc, ok := e.closer.(syscall.Conn)
	if !ok {
		return 0, fmt.Errorf("socket %q exposes no file descriptor", e.Spec.Name)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, err
	}
	fd := 0
	if err = rc.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return 0, err
	}
	return fd, nil
}

// File returns a dup'd, inheritable *os.File for the bound listener. The
// caller is responsible for closing it once the child has inherited it
// (typically right after exec.Cmd.Start()).
func (e *Entry) File() (*os.File, error) {
	return e.file.File()
}

// Close closes the underlying listener. It does not unlink a UNIX path;
// the registry does that once it also knows no other entry shares the
// path.
func (e *Entry) Close() error {
	return e.closer.Close()
}

// Describe renders the entry the way "list sockets" serializes it:
// "name family=... type=... backlog=... [path=...|host=... port=... ...] fileno=...".
func (e *Entry) Describe() string {
	fd, _ := e.Fileno()

	out := fmt.Sprintf("%s family=%s type=%s backlog=%d", e.Spec.Name, e.Spec.Family, typeOrDefault(e.Spec.SocketType), e.Spec.backlogOrDefault())

	if e.Spec.Family == FamilyUnix {
		out += fmt.Sprintf(" path=%s", e.Spec.Path)
		if e.Spec.Umask != nil {
			out += fmt.Sprintf(" umask=%04o", *e.Spec.Umask)
		}
	} else {
		out += fmt.Sprintf(" host=%s port=%d", e.Spec.Host, e.Port)
		if e.Spec.Interface != "" {
			out += fmt.Sprintf(" interface=%s", e.Spec.Interface)
		}
		out += fmt.Sprintf(" reuseport=%t", e.Spec.ReusePort)
	}

	out += fmt.Sprintf(" fileno=%d", fd)
	return out
}

func typeOrDefault(t Type) Type {
	if t == "" {
		return TypeStream
	}
	return t
}

func portOf(addr net.Addr) int {
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.Port
	case *net.UDPAddr:
		return a.Port
	default:
		return 0
	}
}
