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

// Package accept runs the control listener's accept loop: one goroutine per
// client session, idle-exit bookkeeping, and the single-socket debug mode
// used by tests and one-shot invocations.
package accept

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nabbar/papa/kernel"
	"github.com/nabbar/papa/logger"
	logfld "github.com/nabbar/papa/logger/fields"
	"github.com/nabbar/papa/session"
)

// idlePollInterval mirrors the original server's 0.5s accept timeout: the
// cadence at which an idle, unarmed listener re-checks whether it should
// stop blocking forever.
const idlePollInterval = 500 * time.Millisecond

// Acceptor owns a bound listener and feeds every accepted connection into
// its own session, tracked against the kernel's idle bookkeeping.
type Acceptor struct {
	ln     net.Listener
	kernel *kernel.Kernel
	log    logger.Logger

	// SingleSocket mirrors the original's single_socket_mode: once the
	// first session has closed and no other session remains, Serve
	// returns immediately regardless of exit-if-idle.
	SingleSocket bool
}

// New wraps an already-bound listener. BindControlSocket builds the
// listener itself; Acceptor only owns the accept loop.
func New(ln net.Listener, k *kernel.Kernel, log logger.Logger) *Acceptor {
	return &Acceptor{ln: ln, kernel: k, log: log}
}

// Serve accepts connections until SingleSocket or an armed exit-if-idle
// both see the kernel go idle, or the listener itself is closed out from
// under it (a deliberate shutdown, reported as a nil error). It always
// closes the listener before returning.
func (a *Acceptor) Serve() error {
	grp, ctx := errgroup.WithContext(context.Background())
	conns := make(chan net.Conn)

	grp.Go(func() error {
		defer close(conns)
		for {
			conn, err := a.ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			select {
			case conns <- conn:
			case <-ctx.Done():
				_ = conn.Close()
				return nil
			}
		}
	})

	var wg sync.WaitGroup
	woke := make(chan struct{}, 1)
	served := false

	idle := time.NewTicker(idlePollInterval)
	defer idle.Stop()

loop:
	for {
		select {
		case conn, ok := <-conns:
			if !ok {
				break loop
			}
			served = true
			a.kernel.SetExitIfIdle(false)
			spawnSession(&wg, conn, a.kernel, a.log, woke)

		case <-woke:
			if served && a.shouldStop() {
				break loop
			}

		case <-idle.C:
			if served && a.shouldStop() {
				break loop
			}
		}
	}

	_ = a.ln.Close()
	wg.Wait()

	if err := grp.Wait(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// shouldStop reports whether the kernel is idle and either single-socket
// debug mode or an armed exit-if-idle calls for shutting the listener down.
func (a *Acceptor) shouldStop() bool {
	if !a.kernel.Idle() {
		return false
	}
	if a.SingleSocket {
		return true
	}
	return a.kernel.ExitIfIdleArmed()
}

// spawnSession starts one session's Run loop in its own goroutine, wiring
// its open/close bookkeeping into the kernel and waking Serve's select loop
// so an idle check runs promptly instead of waiting for the next tick.
func spawnSession(wg *sync.WaitGroup, conn net.Conn, k *kernel.Kernel, log logger.Logger, woke chan<- struct{}) {
	sess := session.New(conn, k.Tree(), log)
	id := sess.ID()
	k.SessionOpened(id)

	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.Run()
		k.SessionClosed(id)
		log.Info("session closed", logfld.Fields{"session": id})
		select {
		case woke <- struct{}{}:
		default:
		}
	}()
}
