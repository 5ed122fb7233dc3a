// SPDX-License-Identifier: AGPL-3.0-or-later
package events

// Sink represents something that can consume run events.
type Sink interface {
	EmitTaskStart(runID, task, command string)
	EmitTaskLog(runID, task, message string)
	EmitTaskFinish(runID, task string, exitCode int, err error)
}

// CompositeSink fan-outs emitted events to multiple sinks.
type CompositeSink struct {
	sinks []Sink
}

// NewCompositeSink returns a sink that forwards events to all provided sinks.
func NewCompositeSink(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	switch len(filtered) {
	case 0:
		return nil
	case 1:
		return filtered[0]
	default:
		return &CompositeSink{sinks: filtered}
	}
}

func (c *CompositeSink) EmitTaskStart(runID, task, command string) {
	for _, s := range c.sinks {
		s.EmitTaskStart(runID, task, command)
	}
}

func (c *CompositeSink) EmitTaskLog(runID, task, message string) {
	for _, s := range c.sinks {
		s.EmitTaskLog(runID, task, message)
	}
}

func (c *CompositeSink) EmitTaskFinish(runID, task string, exitCode int, err error) {
	for _, s := range c.sinks {
		s.EmitTaskFinish(runID, task, exitCode, err)
	}
}
