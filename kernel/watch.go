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

package kernel

import (
	"fmt"
	"strings"
	"time"

	"github.com/nabbar/papa/process"
	"github.com/nabbar/papa/wire"
)

// pollInterval is how long startWatch waits for a client hangup between
// empty passes over the watch set, per spec.md §4.5 point 3.
const pollInterval = 100 * time.Millisecond

// startWatch implements the watch sub-protocol of spec.md §4.5. header is
// written verbatim before the loop starts: "Watching <N>\n" for a "watch
// processes" command, or the single process's Describe() line for "make
// process ... watch=1".
//
// The ring snapshot/ack contract is the synchronization barrier spec.md §5
// calls out: items are only removed from a ring after the client has
// acknowledged the pass that delivered them, never eagerly.
func (k *Kernel) startWatch(sess wire.Session, entries []*process.Entry, header string) (wire.Result, error) {
	if err := sess.WriteRaw([]byte(header)); err != nil {
		return wire.Result{}, ErrTransport("%s", err.Error())
	}

	active := append([]*process.Entry(nil), entries...)

	for {
		type pending struct {
			entry      *process.Entry
			outThrough int64
			errThrough int64
		}

		var acks []pending
		produced := false
		next := active[:0]

		for _, e := range active {
			outNewest, outItems := e.Stdout.Retrieve()
			errNewest, errItems := e.Stderr.Retrieve()

			keep := true
			for _, it := range outItems {
				produced = true
				if err := writeWatchItem(sess, e.Spec.Name, it); err != nil {
					return wire.Result{}, ErrTransport("%s", err.Error())
				}
				if it.Stream == process.StreamClosed {
					keep = false
				}
			}
			for _, it := range errItems {
				produced = true
				if err := writeWatchItem(sess, e.Spec.Name, it); err != nil {
					return wire.Result{}, ErrTransport("%s", err.Error())
				}
			}

			if len(outItems) > 0 || len(errItems) > 0 {
				acks = append(acks, pending{e, outNewest, errNewest})
			}
			if keep {
				next = append(next, e)
			}
		}
		active = next

		if !produced {
			if len(active) == 0 {
				return wire.Result{Reply: "Nothing left to watch"}, nil
			}
			if sess.PollClosed(pollInterval) {
				return wire.Result{Reply: "Client closed connection"}, nil
			}
			continue
		}

		if err := sess.WriteRaw([]byte("] ")); err != nil {
			return wire.Result{}, ErrTransport("%s", err.Error())
		}

		line, err := sess.ReadLine()
		if err != nil {
			return wire.Result{Reply: "Client closed connection"}, nil
		}

		for _, p := range acks {
			p.entry.Stdout.Remove(p.outThrough)
			p.entry.Stderr.Remove(p.errThrough)
		}

		if strings.HasPrefix(line, "q") || strings.HasPrefix(line, "Q") {
			return wire.Result{Reply: "Stopped watching"}, nil
		}
		if len(active) == 0 {
			return wire.Result{Reply: "Nothing left to watch"}, nil
		}
	}
}

// writeWatchItem renders one ring item per spec.md §4.5 point 1: a header
// line naming the stream, process and timestamp, followed by the raw
// payload and a trailing newline for out/err items. A closed item's
// payload is the exit status rendered as decimal text, with no raw-bytes
// follow-up.
func writeWatchItem(sess wire.Session, name string, it process.Item) error {
	switch it.Stream {
	case process.StreamClosed:
		return sess.WriteRaw([]byte(fmt.Sprintf("closed:%s:%d:%s\n", name, it.Timestamp, string(it.Data))))
	case process.StreamStderr:
		return writeTaggedPayload(sess, "err", name, it)
	default:
		return writeTaggedPayload(sess, "out", name, it)
	}
}

func writeTaggedPayload(sess wire.Session, tag, name string, it process.Item) error {
	header := fmt.Sprintf("%s:%s:%d:%d\n", tag, name, it.Timestamp, len(it.Data))
	if err := sess.WriteRaw([]byte(header)); err != nil {
		return err
	}
	if err := sess.WriteRaw(it.Data); err != nil {
		return err
	}
	return sess.WriteRaw([]byte("\n"))
}
