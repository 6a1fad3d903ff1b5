// Copyright 2024 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package log is a minimal structured logger in the shape go-ethereum's own
// log package takes: leveled Info/Warn/Error/Debug calls with alternating
// key/value pairs, the call site captured via github.com/go-stack/stack
// rather than runtime.Caller so the frame can be formatted lazily.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-stack/stack"
)

// Level is a logging severity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "???"
	}
}

// Logger writes leveled, key/value-annotated lines to an io.Writer.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	ctx    []interface{}
}

// Root is the package-level logger used by the free functions below.
var Root = New()

// New creates a Logger writing to stderr at LevelInfo.
func New(ctx ...interface{}) *Logger {
	return &Logger{out: os.Stderr, level: LevelInfo, ctx: ctx}
}

// SetLevel changes the minimum level that is written out.
func (l *Logger) SetLevel(lvl Level) { l.level = lvl }

// SetOutput redirects where log lines are written.
func (l *Logger) SetOutput(w io.Writer) { l.out = w }

// New returns a child logger with additional permanent context fields.
func (l *Logger) New(ctx ...interface{}) *Logger {
	return &Logger{out: l.out, level: l.level, ctx: append(append([]interface{}{}, l.ctx...), ctx...)}
}

func (l *Logger) write(lvl Level, msg string, ctx []interface{}) {
	if lvl > l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	call := stack.Caller(2)
	fmt.Fprintf(l.out, "%s[%s] %-40s %s", time.Now().UTC().Format("15:04:05.000"), lvl, msg, fmt.Sprintf("%+v", call))
	for _, kv := range append(append([]interface{}{}, l.ctx...), ctx...) {
		fmt.Fprintf(l.out, " %v", kv)
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Error(msg string, ctx ...interface{}) { l.write(LevelError, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...interface{})  { l.write(LevelWarn, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...interface{})  { l.write(LevelInfo, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...interface{}) { l.write(LevelDebug, msg, ctx) }

func Error(msg string, ctx ...interface{}) { Root.Error(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { Root.Warn(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { Root.Info(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { Root.Debug(msg, ctx...) }
