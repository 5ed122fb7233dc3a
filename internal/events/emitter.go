// SPDX-License-Identifier: AGPL-3.0-or-later
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

const (
	TypeTaskStart  = "task.start"
	TypeTaskLog    = "task.log"
	TypeTaskFinish = "task.finish"
)

// RunEvent is one event in a task run's output stream.
type RunEvent struct {
	Sequence  int64                  `json:"sequence"`
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	RunID     string                 `json:"run_id"`
	Task      string                 `json:"task,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Emitter writes run events to a stream, plain or JSON framed.
type Emitter struct {
	mu   sync.Mutex
	seq  int64
	out  io.Writer
	json bool
}

func NewEmitter(out io.Writer, json bool) *Emitter {
	if out == nil {
		return nil
	}
	return &Emitter{out: out, json: json}
}

func (e *Emitter) nextSeq() int64 {
	e.seq++
	return e.seq
}

func (e *Emitter) emit(ev RunEvent) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	ev.Sequence = e.nextSeq()
	ev.Timestamp = time.Now().UTC()

	if e.json {
		payload, err := json.Marshal(ev)
		if err != nil {
			fmt.Fprintf(e.out, "{\"error\":%q}\n", err.Error())
			return
		}
		fmt.Fprintf(e.out, "%s\n", payload)
		return
	}

	fmt.Fprintf(e.out, "[%d] %s", ev.Sequence, ev.Type)
	if ev.RunID != "" {
		fmt.Fprintf(e.out, " run=%s", ev.RunID)
	}
	if ev.Task != "" {
		fmt.Fprintf(e.out, " task=%s", ev.Task)
	}
	if ev.Message != "" {
		fmt.Fprintf(e.out, " msg=%s", ev.Message)
	}
	if len(ev.Data) > 0 {
		first := true
		fmt.Fprintf(e.out, " data=")
		fmt.Fprintf(e.out, "{")
		for k, v := range ev.Data {
			if !first {
				fmt.Fprintf(e.out, ", ")
			}
			fmt.Fprintf(e.out, "%s:%v", k, v)
			first = false
		}
		fmt.Fprintf(e.out, "}")
	}
	fmt.Fprintln(e.out)
}

func (e *Emitter) EmitTaskStart(runID, task string, command string) {
	e.emit(RunEvent{
		Type:  TypeTaskStart,
		RunID: runID,
		Task:  task,
		Data:  map[string]interface{}{"command": command},
	})
}

func (e *Emitter) EmitTaskLog(runID, task, message string) {
	if message == "" {
		return
	}
	e.emit(RunEvent{Type: TypeTaskLog, RunID: runID, Task: task, Message: message})
}

func (e *Emitter) EmitTaskFinish(runID, task string, exitCode int, err error) {
	status := "completed"
	if exitCode != 0 || err != nil {
		status = "failed"
	}
	data := map[string]interface{}{"exit_code": exitCode, "status": status}
	if err != nil {
		data["error"] = err.Error()
	}
	e.emit(RunEvent{Type: TypeTaskFinish, RunID: runID, Task: task, Data: data})
}
