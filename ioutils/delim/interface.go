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

// Package delim wraps an io.ReadCloser with a buffered, delimiter-aware
// reader: the building block the wire codec uses to pull one
// newline-terminated command line at a time off a client connection
// without reading past it.
package delim

import (
	"bufio"
	"errors"
	"io"
)

// ErrInstance is returned by any operation performed after Close.
var ErrInstance = errors.New("delim: instance closed")

// BufferDelim reads delimiter-terminated chunks from an underlying stream.
type BufferDelim interface {
	io.ReadCloser
	io.WriterTo

	// Delim returns the delimiter byte this instance was constructed with.
	Delim() byte

	// Reader returns the BufferDelim itself as a plain io.ReadCloser.
	Reader() io.ReadCloser

	// Copy reads from the BufferDelim and writes to w until EOF.
	Copy(w io.Writer) (n int64, err error)

	// ReadBytes reads until and including the next delimiter.
	ReadBytes() ([]byte, error)

	// UnRead returns and drains whatever is currently buffered but unread.
	UnRead() ([]byte, error)

	// Peek returns the next n buffered bytes without consuming them,
	// reading from the underlying stream only if fewer than n bytes are
	// already buffered. Used to probe for a closed connection (a Peek
	// that returns io.EOF) without consuming a line the caller still
	// wants ReadBytes to return.
	Peek(n int) ([]byte, error)
}

// New wraps r with a buffered reader that yields chunks ending in delim.
// sizeBufferRead sizes the buffer; 0 uses bufio's default. When
// discardOverflow is false, a chunk of any length is returned whole. When
// it is true, a chunk longer than the buffer is truncated to the buffer
// size and the rest of it, up to and including the delimiter, is dropped.
func New(r io.ReadCloser, delim byte, sizeBufferRead Size, discardOverflow bool) BufferDelim {
	var b *bufio.Reader
	if sizeBufferRead > 0 {
		b = bufio.NewReaderSize(r, int(sizeBufferRead))
	} else {
		b = bufio.NewReader(r)
	}

	return &dlm{
		i: r,
		b: b,
		d: delim,
		x: discardOverflow,
	}
}
