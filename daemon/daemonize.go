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

// Package daemon re-execs the current binary detached from its controlling
// terminal. A real fork() mid-runtime isn't available to a Go process (the
// scheduler and its other goroutines don't survive it); re-exec with
// SysProcAttr.Setsid is the idiomatic replacement, so this package re-execs
// the papa binary itself through os/exec.
package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/nabbar/papa/ioutils/fileDescriptor"
)

// childEnvVar marks a re-exec'd process as the already-detached child, so
// Daemonize only forks once no matter how many times it's called.
const childEnvVar = "PAPA_DAEMON_CHILD"

// Daemonize detaches the current process from its controlling terminal.
//
// On the first call it re-execs the current binary in a new session
// (Setsid) with childEnvVar set, and returns child=false: the caller should
// exit immediately without serving, exactly as the parent side of a
// fork() does. On the re-exec'd child it raises the file descriptor limit,
// redirects stdio to /dev/null, applies umask 027, chdir's to "/", and
// returns child=true so the caller proceeds to serve.
func Daemonize() (child bool, err error) {
	if os.Getenv(childEnvVar) == "1" {
		if err = detach(); err != nil {
			return true, err
		}
		return true, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return false, fmt.Errorf("resolving executable path: %w", err)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer func() { _ = devnull.Close() }()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), childEnvVar+"=1")
	cmd.Stdin = devnull
	cmd.Stdout = devnull
	cmd.Stderr = devnull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err = cmd.Start(); err != nil {
		return false, fmt.Errorf("spawning daemon child: %w", err)
	}
	return false, nil
}

// detach performs the child-side half of daemonizing: raise the fd limit to
// its hard ceiling, point stdio at /dev/null, and move off the caller's
// working directory so a later unmount can't be blocked by it.
func detach() error {
	if current, max, ferr := fileDescriptor.SystemFileDescriptor(0); ferr == nil && max > current {
		_, _, _ = fileDescriptor.SystemFileDescriptor(max)
	}

	devnull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer func() { _ = devnull.Close() }()

	for _, f := range []*os.File{os.Stdin, os.Stdout, os.Stderr} {
		if err = unix.Dup2(int(devnull.Fd()), int(f.Fd())); err != nil {
			return fmt.Errorf("redirecting fd %d to %s: %w", f.Fd(), os.DevNull, err)
		}
	}

	unix.Umask(0o27)
	return os.Chdir("/")
}
