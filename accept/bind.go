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

//go:build unix

package accept

import (
	"context"
	"fmt"
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// BindControlSocket binds the listener the acceptor serves on: a UNIX
// socket at unixPath when given (stale socket files are unlinked first, the
// way the original server does before every bind attempt), otherwise a TCP
// listener on 127.0.0.1:port with SO_REUSEADDR so a restart doesn't trip on
// a lingering TIME_WAIT socket.
func BindControlSocket(unixPath string, port int) (net.Listener, error) {
	if unixPath != "" {
		if err := os.Remove(unixPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing stale control socket %q: %w", unixPath, err)
		}
		ln, err := net.Listen("unix", unixPath)
		if err != nil {
			return nil, fmt.Errorf("binding control socket %q: %w", unixPath, err)
		}
		return ln, nil
	}

	lc := net.ListenConfig{Control: reuseAddr}
	ln, err := lc.Listen(context.Background(), "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("binding control port %d: %w", port, err)
	}
	return ln, nil
}

// reuseAddr sets SO_REUSEADDR on the control listener's socket before bind.
func reuseAddr(_, _ string, c syscall.RawConn) error {
	var setErr error
	err := c.Control(func(fd uintptr) {
		setErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return setErr
}
