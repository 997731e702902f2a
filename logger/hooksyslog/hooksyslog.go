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

// Package hooksyslog ships log entries to the local syslog daemon, matching
// the teacher's logger/hooksyslog hook but scoped to the local transport
// only — papa is a local supervisor (spec.md Non-goals: no remote kernels),
// so the teacher's remote TCP/UDP syslog transport has no caller here.
package hooksyslog

import (
	"log/syslog"

	"github.com/sirupsen/logrus"

	loglvl "github.com/nabbar/papa/logger/level"
)

// Hook is a logrus.Hook that writes entries to the local syslog daemon.
type Hook struct {
	w   *syslog.Writer
	tag string
}

// New dials the local syslog daemon under the given tag (typically "papa").
func New(tag string) (*Hook, error) {
	w, err := syslog.New(syslog.LOG_DAEMON|syslog.LOG_INFO, tag)
	if err != nil {
		return nil, err
	}
	return &Hook{w: w, tag: tag}, nil
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(e *logrus.Entry) error {
	line, err := e.String()
	if err != nil {
		return err
	}

	switch loglvl.FromLogrus(e.Level) {
	case loglvl.DebugLevel:
		return h.w.Debug(line)
	case loglvl.InfoLevel:
		return h.w.Info(line)
	case loglvl.WarnLevel:
		return h.w.Warning(line)
	case loglvl.ErrorLevel:
		return h.w.Err(line)
	default:
		return h.w.Crit(line)
	}
}

// Close releases the syslog connection.
func (h *Hook) Close() error {
	return h.w.Close()
}
