// SPDX-License-Identifier: AGPL-3.0-or-later
package events

import (
	"bytes"
	"io"
)

// TaskWriter is an io.Writer that frames subprocess output into line-wise
// task.log events while passing the raw bytes through to out.
type TaskWriter struct {
	emitter Sink
	runID   string
	task    string
	out     io.Writer
	buf     bytes.Buffer
}

func NewTaskWriter(em Sink, runID, task string, out io.Writer) *TaskWriter {
	return &TaskWriter{emitter: em, runID: runID, task: task, out: out}
}

func (w *TaskWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.out != nil {
		if _, err := w.out.Write(p); err != nil {
			return 0, err
		}
	}
	start := 0
	for i, b := range p {
		if b == '\n' {
			w.buf.Write(p[start:i])
			w.flushLine()
			start = i + 1
		}
	}
	if start < len(p) {
		w.buf.Write(p[start:])
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *TaskWriter) Flush() {
	if w.buf.Len() > 0 {
		w.flushLine()
	}
}

func (w *TaskWriter) flushLine() {
	line := w.buf.String()
	w.buf.Reset()
	if w.emitter != nil {
		w.emitter.EmitTaskLog(w.runID, w.task, line)
	}
}
