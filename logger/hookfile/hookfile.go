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

// Package hookfile appends log entries to a file, creating the file and its
// parent directory on demand, matching the teacher's logger/hookfile hook
// contract (Options.Create / Options.CreatePath).
package hookfile

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Options configures a file hook.
type Options struct {
	Filepath   string
	Create     bool
	CreatePath bool
	FileMode   os.FileMode
	PathMode   os.FileMode
}

// Hook is a logrus.Hook that appends formatted entries to a file.
type Hook struct {
	mu sync.Mutex
	fp *os.File
	o  Options
}

// New opens (creating if requested) the configured file and returns a Hook.
func New(o Options) (*Hook, error) {
	if o.FileMode == 0 {
		o.FileMode = 0640
	}
	if o.PathMode == 0 {
		o.PathMode = 0750
	}

	if o.CreatePath {
		if err := os.MkdirAll(filepath.Dir(o.Filepath), o.PathMode); err != nil {
			return nil, err
		}
	}

	flags := os.O_APPEND | os.O_WRONLY
	if o.Create {
		flags |= os.O_CREATE
	}

	fp, err := os.OpenFile(o.Filepath, flags, o.FileMode)
	if err != nil {
		return nil, err
	}

	return &Hook{fp: fp, o: o}, nil
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err = h.fp.WriteString(line)
	return err
}

// Close closes the underlying file.
func (h *Hook) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fp.Close()
}
