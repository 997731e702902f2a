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

// Package hookstdout writes log entries to the process's stdout/stderr,
// colorized by level, the way the teacher's logger/hookstdout and
// logger/hookstderr hooks split output by stream.
package hookstdout

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	loglvl "github.com/nabbar/papa/logger/level"
)

// Hook is a logrus.Hook that writes entries at or above errLevel to stderr
// and everything else to stdout, colorizing the level tag.
type Hook struct {
	// ErrLevel is the minimum level routed to stderr instead of stdout.
	ErrLevel loglvl.Level
	out      io.Writer
	err      io.Writer
}

// New returns a Hook writing to os.Stdout/os.Stderr.
func New(errLevel loglvl.Level) *Hook {
	return &Hook{ErrLevel: errLevel, out: os.Stdout, err: os.Stderr}
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(e *logrus.Entry) error {
	w := h.out
	if loglvl.FromLogrus(e.Level) >= h.ErrLevel {
		w = h.err
	}

	line, err := e.String()
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, colorize(e.Level, line))
	return err
}

func colorize(lvl logrus.Level, line string) string {
	switch lvl {
	case logrus.DebugLevel, logrus.TraceLevel:
		return color.New(color.FgHiBlack).Sprint(line)
	case logrus.WarnLevel:
		return color.New(color.FgYellow).Sprint(line)
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return color.New(color.FgRed).Sprint(line)
	default:
		return line
	}
}
