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

package process

import "sync"

// Stream tags an OutputRing item by origin.
type Stream int

const (
	StreamStdout Stream = iota
	StreamStderr
	StreamClosed
)

// Item is one captured write, or the terminal "closed" marker pushed once
// the process has exited and every pipe has drained.
type Item struct {
	Stream    Stream
	Timestamp int64
	Data      []byte
}

// OutputRing is a bounded FIFO of captured output, shared by every "watch"
// client of a process. It holds its own mutex, separate from and never
// nested with the kernel's coarse lock: a watcher blocked waiting on a ring
// must never be able to stall an unrelated command.
type OutputRing struct {
	mu     sync.Mutex
	bufcap int
	size   int
	items  []Item
	closed bool
}

// NewOutputRing creates a ring that holds at most bufcap bytes of payload
// across all queued items. bufcap <= 0 disables capture: Append becomes a
// no-op and the caller should not bother reading from the pipe at all.
func NewOutputRing(bufcap int) *OutputRing {
	return &OutputRing{bufcap: bufcap}
}

// Disabled reports whether this ring was built with no capacity, meaning
// output for this stream is discarded rather than captured.
func (r *OutputRing) Disabled() bool {
	return r.bufcap <= 0
}

// Append adds a write to the ring, evicting older items as needed to stay
// within bufcap. A single write that by itself meets or exceeds bufcap
// replaces the whole ring with just that write, rather than being rejected
// or truncated: the client always gets to see the most recent data.
func (r *OutputRing) Append(stream Stream, timestamp int64, data []byte) {
	if r.bufcap <= 0 || r.closed {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item := Item{Stream: stream, Timestamp: timestamp, Data: data}

	if len(data) >= r.bufcap {
		r.items = []Item{item}
		r.size = len(data)
		return
	}

	r.items = append(r.items, item)
	r.size += len(data)

	for r.size > r.bufcap && len(r.items) > 1 {
		dropped := r.items[0]
		r.items = r.items[1:]
		r.size -= len(dropped.Data)
	}
}

// Retrieve returns every item currently queued, along with the timestamp of
// the newest one (0 if empty), without removing anything. The slice is a
// snapshot safe to use without holding the ring's lock.
func (r *OutputRing) Retrieve() (newest int64, items []Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items = make([]Item, len(r.items))
	copy(items, r.items)

	if len(items) > 0 {
		newest = items[len(items)-1].Timestamp
	}
	return newest, items
}

// Remove drops every item with Timestamp <= through: the watch protocol
// calls this once a client has acknowledged delivery up to that point.
func (r *OutputRing) Remove(through int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := 0
	for i < len(r.items) && r.items[i].Timestamp <= through {
		r.size -= len(r.items[i].Data)
		i++
	}
	r.items = r.items[i:]
}

// Close drains the ring and disables further capture: called once the
// process's output has been fully reaped and handed off as a "closed" item.
func (r *OutputRing) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bufcap = 0
	r.size = 0
	r.items = nil
	r.closed = true
}

// CloseWithMarker appends one final item (normally a StreamClosed status
// marker) and then disables further capture, regardless of the ring's
// current capacity: the terminal item must always reach a watcher even on
// a discard-capacity ring.
func (r *OutputRing) CloseWithMarker(stream Stream, timestamp int64, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, Item{Stream: stream, Timestamp: timestamp, Data: data})
	r.bufcap = 0
	r.closed = true
}
