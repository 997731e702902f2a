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

package socket

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// controlOpts builds the net.ListenConfig.Control callback used for every
// INET/INET6 bind: SO_REUSEADDR always, SO_REUSEPORT when requested, and
// bind-to-device when an interface name is given.
func controlOpts(reusePort bool, iface string) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var setErr error

		err := c.Control(func(fd uintptr) {
			if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); e != nil {
				setErr = e
				return
			}
			if reusePort {
				if e := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); e != nil {
					setErr = e
					return
				}
			}
			if iface != "" {
				if e := bindToDevice(int(fd), iface); e != nil {
					setErr = e
					return
				}
			}
		})
		if err != nil {
			return err
		}
		return setErr
	}
}

// applyUmask temporarily sets the process umask to mask, returning a
// restore function. UNIX socket files are created respecting the umask in
// effect at bind time, so "make socket" wraps the bind call with this when
// an explicit umask option was given.
func applyUmask(mask uint32) (restore func()) {
	old := unix.Umask(int(mask))
	return func() { unix.Umask(old) }
}
