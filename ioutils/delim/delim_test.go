/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

package delim_test

import (
	"bytes"
	"io"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nabbar/papa/ioutils/delim"
)

type stringReadCloser struct {
	io.Reader
}

func (stringReadCloser) Close() error { return nil }

func newSource(s string) io.ReadCloser {
	return stringReadCloser{Reader: strings.NewReader(s)}
}

var _ = Describe("BufferDelim", func() {
	It("reads one line at a time including the delimiter", func() {
		bd := delim.New(newSource("one\ntwo\nthree"), '\n', 0, false)
		defer bd.Close()

		line, err := bd.ReadBytes()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(line)).To(Equal("one\n"))

		line, err = bd.ReadBytes()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(line)).To(Equal("two\n"))

		line, err = bd.ReadBytes()
		Expect(err).To(Equal(io.EOF))
		Expect(string(line)).To(Equal("three"))
	})

	It("reports the configured delimiter", func() {
		bd := delim.New(newSource("a;b;"), ';', 0, false)
		defer bd.Close()
		Expect(bd.Delim()).To(Equal(byte(';')))
	})

	It("streams every chunk via WriteTo", func() {
		bd := delim.New(newSource("a\nb\nc\n"), '\n', 0, false)
		defer bd.Close()

		var out bytes.Buffer
		n, err := bd.WriteTo(&out)
		Expect(err).To(Equal(io.EOF))
		Expect(n).To(Equal(int64(6)))
		Expect(out.String()).To(Equal("a\nb\nc\n"))
	})

	It("returns ErrInstance after Close", func() {
		bd := delim.New(newSource("x\n"), '\n', 0, false)
		Expect(bd.Close()).To(Succeed())

		_, err := bd.ReadBytes()
		Expect(err).To(Equal(delim.ErrInstance))
	})

	It("drains buffered-but-unread bytes via UnRead", func() {
		bd := delim.New(newSource("abcdef"), '\n', 64, false)
		defer bd.Close()

		_, err := bd.Peek(1) // fills the buffer with the whole source without consuming it
		Expect(err).ToNot(HaveOccurred())

		rest, err := bd.UnRead()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(rest)).To(Equal("abcdef"))
	})

	Describe("Concurrency", func() {
		It("serializes concurrent ReadBytes calls without racing", func() {
			var sb strings.Builder
			for i := 0; i < 200; i++ {
				sb.WriteString("line\n")
			}
			bd := delim.New(newSource(sb.String()), '\n', 0, false)
			defer bd.Close()

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						_, err := bd.ReadBytes()
						if err != nil {
							return
						}
					}
				}()
			}
			wg.Wait()
		})
	})
})
