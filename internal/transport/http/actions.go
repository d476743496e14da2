package httptransport

import (
	"context"
	"log/slog"
)

// Action is a workflow action forwarded from an assembled view to the host.
type Action struct {
	ViewID     string `json:"view_id"`
	WorkflowID string `json:"workflow_id"`
	ActionID   string `json:"action_id"`
	Invitation string `json:"invitation,omitempty"`
}

// ActionSink receives workflow actions exactly once each. Deliver runs
// synchronously inside the press or change that triggered the action and must
// not block for long.
type ActionSink interface {
	Deliver(ctx context.Context, action Action)
}

// LogSink logs actions. It is the sink used when the host consumes actions
// from the press and change responses instead.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, a Action) {
	s.logger.InfoContext(ctx, "workflow action",
		"view_id", a.ViewID,
		"workflow_id", a.WorkflowID,
		"action_id", a.ActionID,
		"has_invitation", a.Invitation != "",
	)
}
