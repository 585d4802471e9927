package log

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

type Writer interface {
	Write(e *Event) error
}

type consoleWriter struct {
	writer    io.Writer
	level     Level
	formatter Formatter
}

// NewConsoleWriter returns a writer that writes human readable messages to w.
// Colors are only used if w is a terminal.
func NewConsoleWriter(w io.Writer, level Level, useColor bool) Writer {
	writer := &consoleWriter{
		writer: w,
		level:  level,
	}

	color := useColor

	if color {
		if w, ok := w.(*os.File); ok {
			if !isatty.IsTerminal(w.Fd()) && !isatty.IsCygwinTerminal(w.Fd()) {
				color = false
			}
		} else {
			color = false
		}
	}

	writer.formatter = NewConsoleFormatter(color)

	return NewSyncWriter(writer)
}

func (w *consoleWriter) Write(e *Event) error {
	if w.level < e.Level || e.Level == Lsilent {
		return nil
	}

	_, err := w.writer.Write(w.formatter.Bytes(e))

	return err
}

type jsonWriter struct {
	writer    io.Writer
	level     Level
	formatter Formatter
}

// NewJSONWriter returns a writer that writes one JSON object per message to w.
func NewJSONWriter(w io.Writer, level Level) Writer {
	writer := &jsonWriter{
		writer:    w,
		level:     level,
		formatter: NewJSONFormatter(),
	}

	return NewSyncWriter(writer)
}

func (w *jsonWriter) Write(e *Event) error {
	if w.level < e.Level || e.Level == Lsilent {
		return nil
	}

	_, err := w.writer.Write(w.formatter.Bytes(e))

	return err
}

type syncWriter struct {
	mu     sync.Mutex
	writer Writer
}

// NewSyncWriter wraps a writer such that it can be used concurrently.
func NewSyncWriter(writer Writer) Writer {
	return &syncWriter{
		writer: writer,
	}
}

func (w *syncWriter) Write(e *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writer.Write(e)
}

type multiWriter struct {
	writer []Writer
}

// NewMultiWriter returns a writer that dispatches each message to all
// given writers.
func NewMultiWriter(writer ...Writer) Writer {
	mw := &multiWriter{}

	mw.writer = append(mw.writer, writer...)

	return mw
}

func (w *multiWriter) Write(e *Event) error {
	for _, writer := range w.writer {
		if err := writer.Write(e); err != nil {
			return err
		}
	}

	return nil
}

type BufferWriter interface {
	Writer
	Events() []*Event
}

type bufferWriter struct {
	lines    []*Event
	capacity int
	level    Level
	lock     sync.RWMutex
}

// NewBufferWriter returns a writer that holds the last lines number of
// messages in memory. Oldest messages are dropped first.
func NewBufferWriter(level Level, lines int) BufferWriter {
	b := &bufferWriter{
		level:    level,
		capacity: lines,
	}

	return b
}

func (w *bufferWriter) Write(e *Event) error {
	if w.level < e.Level || e.Level == Lsilent {
		return nil
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if w.capacity <= 0 {
		return nil
	}

	if len(w.lines) == w.capacity {
		copy(w.lines, w.lines[1:])
		w.lines = w.lines[:len(w.lines)-1]
	}

	w.lines = append(w.lines, e.clone())

	return nil
}

func (w *bufferWriter) Events() []*Event {
	w.lock.RLock()
	defer w.lock.RUnlock()

	lines := make([]*Event, 0, len(w.lines))

	for _, e := range w.lines {
		lines = append(lines, e.clone())
	}

	return lines
}
