// SPDX-License-Identifier: AGPL-3.0-or-later
package journal

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/sasrun-org/sasrun/internal/events"
)

type eventSink struct {
	journal *Journal
	logger  *slog.Logger
}

// NewEventSink returns an events.Sink that persists run events in the
// journal. When j is nil the sink is nil and callers fall back to their
// other sinks.
func NewEventSink(j *Journal) events.Sink {
	if j == nil {
		return nil
	}
	return &eventSink{journal: j, logger: slog.Default()}
}

func (s *eventSink) persist(runID, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if _, err := s.journal.Append(context.Background(), runID, eventType, data, s.journal.nowFn()); err != nil {
		if s.logger != nil {
			s.logger.Error("persist run event",
				slog.String("run_id", runID),
				slog.String("event", eventType),
				slog.String("error", err.Error()))
		}
	}
}

func (s *eventSink) EmitTaskStart(runID, task, command string) {
	s.persist(runID, events.TypeTaskStart, map[string]string{"task": task, "command": command})
}

func (s *eventSink) EmitTaskLog(runID, task, message string) {
	if message == "" {
		return
	}
	s.persist(runID, events.TypeTaskLog, map[string]string{"task": task, "message": message})
}

func (s *eventSink) EmitTaskFinish(runID, task string, exitCode int, err error) {
	payload := map[string]any{"task": task, "exit_code": exitCode}
	if err != nil {
		payload["error"] = err.Error()
	}
	s.persist(runID, events.TypeTaskFinish, payload)
}
