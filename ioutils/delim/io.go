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

package delim

import (
	"bufio"
	"io"
)

// Read implements io.Reader by returning one delimited chunk per call.
// If p is too small to hold the chunk, Read grows p to fit it.
func (o *dlm) Read(p []byte) (n int, err error) {
	o.m.Lock()
	defer o.m.Unlock()

	if o.b == nil {
		return 0, ErrInstance
	}

	b, e := o.readChunk()
	if len(b) > 0 {
		if cap(p) < len(b) {
			p = append(p[:0], make([]byte, len(b))...)
		}
		n = copy(p, b)
	}
	return n, e
}

// ReadBytes reads until and including the next delimiter.
func (o *dlm) ReadBytes() ([]byte, error) {
	o.m.Lock()
	defer o.m.Unlock()

	if o.b == nil {
		return nil, ErrInstance
	}
	return o.readChunk()
}

// readChunk performs one delimited read, honoring the discard-overflow
// policy: when x is set and a chunk does not fit in the buffer, the part
// that fits is returned and the reader keeps consuming, dropping the rest
// of the chunk, until it lands on the next delimiter.
func (o *dlm) readChunk() ([]byte, error) {
	if !o.x {
		return o.b.ReadBytes(o.d)
	}

	s, err := o.b.ReadSlice(o.d)
	b := append([]byte(nil), s...)

	for err == bufio.ErrBufferFull {
		_, err = o.b.ReadSlice(o.d)
	}

	return b, err
}

// Peek returns the next n buffered bytes without consuming them.
func (o *dlm) Peek(n int) ([]byte, error) {
	o.m.Lock()
	defer o.m.Unlock()

	if o.b == nil {
		return nil, ErrInstance
	}
	return o.b.Peek(n)
}

// UnRead drains and returns whatever is currently buffered but unread.
func (o *dlm) UnRead() ([]byte, error) {
	o.m.Lock()
	defer o.m.Unlock()

	if o.b == nil {
		return nil, ErrInstance
	}

	if s := o.b.Buffered(); s > 0 {
		out := make([]byte, s)
		_, err := io.ReadFull(o.b, out)
		return out, err
	}
	return nil, nil
}

// Copy reads from the BufferDelim and writes to w until EOF. It is
// equivalent to WriteTo(w).
func (o *dlm) Copy(w io.Writer) (n int64, err error) {
	return o.WriteTo(w)
}

// WriteTo streams delimited chunks to w until the underlying stream is
// exhausted or a write error occurs.
func (o *dlm) WriteTo(w io.Writer) (n int64, err error) {
	o.m.Lock()
	defer o.m.Unlock()

	if o.b == nil {
		return 0, ErrInstance
	}

	for {
		b, e := o.readChunk()
		if len(b) > 0 {
			wn, we := w.Write(b)
			n += int64(wn)
			if we != nil {
				return n, we
			}
		}
		if e != nil {
			return n, e
		}
	}
}

// Close releases the buffered reader and closes the underlying stream.
// Subsequent operations return ErrInstance. Close is idempotent.
func (o *dlm) Close() error {
	o.m.Lock()
	defer o.m.Unlock()

	if o.b == nil {
		return nil
	}
	o.b = nil
	return o.i.Close()
}
