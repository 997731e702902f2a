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

// Package logger provides the structured logger used throughout the papa
// kernel, adapted from the teacher's logger package: a level/fields wrapper
// around sirupsen/logrus with pluggable hooks (console, file, syslog)
// instead of the stdlib log package.
package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"

	logfld "github.com/nabbar/papa/logger/fields"
	loglvl "github.com/nabbar/papa/logger/level"
)

// Logger is the structured logging facade every kernel component takes at
// construction time.
type Logger interface {
	// SetLevel changes the minimal level of messages that reach any hook.
	SetLevel(lvl loglvl.Level)
	// GetLevel returns the current minimal level.
	GetLevel() loglvl.Level

	// SetFields replaces the default fields merged into every entry.
	SetFields(f logfld.Fields)
	// GetFields returns the current default fields.
	GetFields() logfld.Fields

	// AddHook registers an additional logrus.Hook (console/file/syslog).
	AddHook(hook logrus.Hook)

	// WithFields returns a derived Logger whose entries also carry f.
	WithFields(f logfld.Fields) Logger

	Debug(message string, f logfld.Fields)
	Info(message string, f logfld.Fields)
	Warning(message string, f logfld.Fields)
	Error(message string, f logfld.Fields)
	// Fatal logs then terminates the process — used only by cmd/papa,
	// never by in-process kernel components.
	Fatal(message string, f logfld.Fields)

	// Close flushes and releases every hook that implements io.Closer.
	Close() error
}

type logger struct {
	mu     sync.RWMutex
	engine *logrus.Logger
	fields logfld.Fields
}

// New creates a Logger at the given level, with no hooks attached: callers
// add console/file/syslog hooks via AddHook.
func New(lvl loglvl.Level) Logger {
	e := logrus.New()
	e.SetOutput(io.Discard) // entries only reach attached hooks
	e.SetLevel(lvl.ToLogrus())
	e.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logger{engine: e, fields: logfld.Fields{}}
}

func (l *logger) SetLevel(lvl loglvl.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.SetLevel(lvl.ToLogrus())
}

func (l *logger) GetLevel() loglvl.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return loglvl.FromLogrus(l.engine.GetLevel())
}

func (l *logger) SetFields(f logfld.Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fields = f.Clone()
}

func (l *logger) GetFields() logfld.Fields {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fields.Clone()
}

func (l *logger) AddHook(hook logrus.Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.engine.AddHook(hook)
}

func (l *logger) WithFields(f logfld.Fields) Logger {
	l.mu.RLock()
	merged := l.fields.Merge(f)
	e := l.engine
	l.mu.RUnlock()

	return &logger{engine: e, fields: merged}
}

func (l *logger) entry(f logfld.Fields) *logrus.Entry {
	l.mu.RLock()
	merged := l.fields.Merge(f)
	e := l.engine
	l.mu.RUnlock()

	return e.WithFields(logrus.Fields(merged))
}

func (l *logger) Debug(message string, f logfld.Fields)   { l.entry(f).Debug(message) }
func (l *logger) Info(message string, f logfld.Fields)    { l.entry(f).Info(message) }
func (l *logger) Warning(message string, f logfld.Fields) { l.entry(f).Warn(message) }
func (l *logger) Error(message string, f logfld.Fields)   { l.entry(f).Error(message) }
func (l *logger) Fatal(message string, f logfld.Fields)   { l.entry(f).Fatal(message) }

func (l *logger) Close() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var firstErr error
	for _, hooks := range l.engine.Hooks {
		for _, h := range hooks {
			if c, ok := h.(io.Closer); ok {
				if err := c.Close(); err != nil && firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	return firstErr
}
