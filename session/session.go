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

// Package session implements one client connection's reader/dispatcher/
// writer loop (spec.md §4.6): greeting, repeated line-dispatch-reply, and
// the orthogonal watch sub-protocol, which rides the same Session
// primitives the command tree was handed at construction.
package session

import (
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	libctx "github.com/nabbar/papa/context"
	liberr "github.com/nabbar/papa/errors"
	"github.com/nabbar/papa/ioutils/delim"
	"github.com/nabbar/papa/logger"
	logfld "github.com/nabbar/papa/logger/fields"
	"github.com/nabbar/papa/wire"
)

// State keys stored in Session.state, replacing what the original
// implementation kept as ad-hoc entries in a per-connection dict.
const (
	StateRemoteAddr = "remote"
	StateOpenedAt   = "opened_at"
)

const greeting = "Papa is home. Type \"help\" for commands.\n> "

// Session owns one client connection from accept to close. It implements
// wire.Session so the command tree's handlers can stream watch payloads
// and read watch acks directly against it.
type Session struct {
	id    string
	conn  net.Conn
	in    delim.BufferDelim
	log   logger.Logger
	tree  *wire.Tree
	state libctx.Config[string]
}

// New wraps an accepted connection, ready for Run.
func New(conn net.Conn, tree *wire.Tree, log logger.Logger) *Session {
	id := uuid.NewString()
	remote := conn.RemoteAddr().String()

	state := libctx.New[string](nil)
	state.Store(StateRemoteAddr, remote)
	state.Store(StateOpenedAt, nowFunc())

	return &Session{
		id:    id,
		conn:  conn,
		in:    delim.New(conn, '\n', 0, false),
		tree:  tree,
		log:   log.WithFields(logfld.Fields{"session": id, "remote": remote}),
		state: state,
	}
}

// ID returns this session's correlation id, used by the acceptor's idle
// bookkeeping and log fields.
func (s *Session) ID() string {
	return s.id
}

// State returns this session's key/value state container, replacing what
// the original kept as entries in a per-connection dict: remote address,
// open time, and anything a future command wants to stash per session.
func (s *Session) State() libctx.Config[string] {
	return s.state
}

// nowFunc is a var so tests can stub it; wall-clock time has no business
// logic riding on it here, only an observability field.
var nowFunc = func() time.Time { return time.Now() }

// Run drives the session state machine until the client disconnects, the
// client sends "quit", or a command transitions to "closing" (exit-if-idle).
// It always closes the underlying connection before returning.
func (s *Session) Run() {
	defer func() {
		_ = s.in.Close()
		_ = s.conn.Close()
	}()

	s.log.Info("session opened", nil)
	if err := s.WriteRaw([]byte(greeting)); err != nil {
		s.log.Debug("greeting write failed", logfld.Fields{"error": err.Error()})
		return
	}

	for {
		line, err := s.ReadLine()
		if err != nil {
			if err != io.EOF {
				s.log.Debug("session read failed", logfld.Fields{"error": err.Error()})
			}
			return
		}

		args := wire.Tokenize(line)
		if len(args) == 0 {
			if err = s.WriteRaw([]byte("> ")); err != nil {
				return
			}
			continue
		}

		result, dispatchErr := s.tree.Dispatch(s, args)
		if dispatchErr != nil {
			if err = s.writeReply("Error: " + dispatchErr.Error()); err != nil {
				return
			}
			continue
		}

		if result.Close {
			_ = s.WriteRaw([]byte(result.Final))
			s.log.Info("session closing", logfld.Fields{"reason": strings.TrimSpace(result.Final)})
			return
		}

		if err = s.writeReply(result.Reply); err != nil {
			return
		}
	}
}

// writeReply appends a trailing newline (if the reply doesn't already end
// in one) and the two-byte prompt, per spec.md §4.1.
func (s *Session) writeReply(reply string) error {
	if reply == "" {
		reply = "\n"
	} else if !strings.HasSuffix(reply, "\n") {
		reply += "\n"
	}
	return s.WriteRaw([]byte(reply + "> "))
}

// WriteRaw implements wire.Session: an unframed write straight to the
// connection, looping over short writes the way a blocking stream socket
// can still produce under load.
func (s *Session) WriteRaw(b []byte) error {
	for len(b) > 0 {
		n, err := s.conn.Write(b)
		if err != nil {
			return liberr.Newf(CodeTransport, "write failed: %s", err.Error())
		}
		b = b[n:]
	}
	return nil
}

// ReadLine implements wire.Session: blocks for the next newline-terminated
// line, trailing newline (and a tolerated "\r") stripped.
func (s *Session) ReadLine() (string, error) {
	b, err := s.in.ReadBytes()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// PollClosed implements wire.Session: a bounded Peek that detects a client
// hangup without consuming a line the caller still wants ReadLine to
// return, per spec.md §4.5 point 3.
func (s *Session) PollClosed(timeout time.Duration) bool {
	_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
	defer func() { _ = s.conn.SetReadDeadline(time.Time{}) }()

	_, err := s.in.Peek(1)
	if err == nil {
		return false
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return false
	}
	return true
}

// CodeTransport is the error code attached to write failures raised by
// WriteRaw. It lives here rather than in the kernel's error taxonomy
// because a transport fault belongs to the session, not the command that
// happened to be running when the connection died.
const CodeTransport uint16 = uint16(liberr.MinPkgPapa) + 100
