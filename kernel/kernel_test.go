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

package kernel_test

import (
	"bufio"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/nabbar/papa/kernel"
	"github.com/nabbar/papa/logger"
	loglvl "github.com/nabbar/papa/logger/level"
	"github.com/nabbar/papa/session"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// client wraps one end of a net.Pipe talking to a live Kernel through the
// real session loop, so these tests exercise the wire protocol exactly as
// a real client would (tokenization, dispatch, reply framing) rather than
// calling kernel package internals directly.
type client struct {
	conn net.Conn
	r    *bufio.Reader
}

func newClient(k *kernel.Kernel) *client {
	server, side := net.Pipe()
	s := session.New(server, k.Tree(), logger.New(loglvl.NilLevel))
	go s.Run()

	c := &client{conn: side, r: bufio.NewReader(side)}
	c.readUntilPrompt() // drain the greeting
	return c
}

// readUntilPrompt reads raw bytes until the trailing two-byte "> " prompt
// is seen, returning everything before it with the prompt itself and the
// blank-line-before-prompt newline stripped.
func (c *client) readUntilPrompt() string {
	var out strings.Builder
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return out.String()
		}
		out.WriteByte(b)
		s := out.String()
		if strings.HasSuffix(s, "> ") {
			return strings.TrimSuffix(s, "> ")
		}
	}
}

// send writes line+"\n" and returns the reply text up to (not including)
// the next prompt, with exactly one trailing newline stripped.
func (c *client) send(line string) string {
	_, err := c.conn.Write([]byte(line + "\n"))
	Expect(err).NotTo(HaveOccurred())
	return strings.TrimSuffix(c.readUntilPrompt(), "\n")
}

func (c *client) close() {
	_ = c.conn.Close()
}

var _ = Describe("Kernel command dispatch", func() {
	var k *kernel.Kernel
	var c *client

	BeforeEach(func() {
		k = kernel.New()
		c = newClient(k)
	})

	AfterEach(func() {
		c.close()
		k.Shutdown()
	})

	It("answers a command after the greeting and prompt", func() {
		// newClient already drained the greeting; a fresh roundtrip proves
		// the session is still alive and dispatching.
		Expect(c.send("list values")).To(Equal(""))
	})

	It("runs the socket lifecycle (spec.md S1)", func() {
		reply := c.send("make socket inet_sock family=inet")
		Expect(reply).To(ContainSubstring("family=inet"))
		Expect(reply).To(ContainSubstring("host=127.0.0.1"))
		Expect(reply).To(ContainSubstring("backlog=5"))
		Expect(reply).To(ContainSubstring("port="))
		Expect(reply).To(ContainSubstring("fileno="))

		Expect(c.send("remove sockets inet_sock")).To(Equal(""))
		Expect(c.send("list sockets")).To(Equal(""))
	})

	It("is idempotent for an equal spec and rejects a conflicting one", func() {
		first := c.send("make socket dup family=inet")
		second := c.send("make socket dup family=inet")
		Expect(second).To(Equal(first))

		conflict := c.send("make socket dup family=unix path=/tmp/nope.sock")
		Expect(conflict).To(HavePrefix("Error:"))
	})

	It("resolves wildcard and literal socket patterns (spec.md S2)", func() {
		c.send("make socket inet.0 family=inet")
		c.send("make socket inet.1 family=inet")
		c.send("make socket other family=inet")

		names := func(reply string) []string {
			var out []string
			for _, line := range strings.Split(reply, "\n") {
				if line == "" {
					continue
				}
				out = append(out, strings.SplitN(line, " ", 2)[0])
			}
			return out
		}

		Expect(names(c.send("list sockets inet.*"))).To(ConsistOf("inet.0", "inet.1"))
		Expect(names(c.send("list sockets *"))).To(ConsistOf("inet.0", "inet.1", "other"))
		Expect(names(c.send("list sockets other inet.1"))).To(ConsistOf("inet.1", "other"))
	})

	It("removes unix socket paths from the path index on removal (spec.md invariant 3)", func() {
		path := "/tmp/papa-kernel-test.sock"
		_ = os.Remove(path)

		reply := c.send("make socket unix_sock family=unix path=" + path)
		Expect(reply).To(ContainSubstring("path=" + path))

		Expect(c.send("remove sockets unix_sock")).To(Equal(""))

		again := c.send("make socket unix_sock2 family=unix path=" + path)
		Expect(again).To(ContainSubstring("path=" + path))
		c.send("remove sockets unix_sock2")
		_ = os.Remove(path)
	})

	It("stores, clears and re-reads values (spec.md S3)", func() {
		Expect(c.send("set aack bar")).To(Equal(""))
		Expect(c.send("get aack")).To(Equal("bar"))

		Expect(c.send("set aack")).To(Equal(""))
		Expect(c.send("get aack")).To(Equal(""))

		c.send("set aack bar")
		err := c.send("remove values *")
		Expect(err).To(Equal("Error: You cannot remove all variables"))
	})

	It("spawns a process and keeps listing it after it exits", func() {
		reply := c.send(`make process greeter /bin/echo hello`)
		Expect(reply).To(ContainSubstring("greeter"))
		Expect(reply).To(ContainSubstring("pid="))

		Eventually(func() string {
			return c.send("list processes")
		}, time.Second, 10*time.Millisecond).Should(MatchRegexp(`^greeter pid=\d+ running=false started=\d+ args=/bin/echo hello`))
	})

	It("is idempotent for an equal process spec", func() {
		first := c.send(`make process sleeper /bin/sleep 1`)
		second := c.send(`make process sleeper /bin/sleep 1`)
		Expect(second).To(Equal(first))
		c.send("remove processes sleeper")
	})

	It("removes a finished process immediately instead of leaving it orphaned", func() {
		c.send(`make process done /bin/true`)

		Eventually(func() bool {
			e, ok := k.Processes.Get("done")
			return ok && !e.IsRunning()
		}, time.Second, 5*time.Millisecond).Should(BeTrue())

		Expect(c.send("remove processes done")).To(Equal(""))
		Expect(c.send("list processes")).To(Equal(""))
	})

	It("watches a process end-to-end through out/closed items (spec.md S4-ish)", func() {
		c.send(`make process w /bin/echo hi`)
		// wait for the reaper to finish before watching, so out+closed land in one pass
		Eventually(func() bool {
			e, ok := k.Processes.Get("w")
			return ok && !e.IsRunning()
		}, time.Second, 2*time.Millisecond).Should(BeTrue())

		_, err := c.conn.Write([]byte("watch processes w\n"))
		Expect(err).NotTo(HaveOccurred())

		line, err := c.r.ReadString('\n')
		Expect(err).NotTo(HaveOccurred())
		Expect(line).To(Equal("Watching 1\n"))

		out, err := c.r.ReadString('\n')
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("out:w:"))

		payload := make([]byte, len("hi\n")+1)
		_, err = io.ReadFull(c.r, payload)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(payload)).To(Equal("hi\n\n"))

		closedLine, err := c.r.ReadString('\n')
		Expect(err).NotTo(HaveOccurred())
		Expect(closedLine).To(HavePrefix("closed:w:"))
		Expect(closedLine).To(ContainSubstring(":0\n"))

		term := make([]byte, 2)
		_, err = io.ReadFull(c.r, term)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(term)).To(Equal("] "))

		_, err = c.conn.Write([]byte("q\n"))
		Expect(err).NotTo(HaveOccurred())

		Expect(c.readUntilPrompt()).To(Equal("Stopped watching\n"))
	})
})
