package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded dispatches. It
// is used when no webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards dispatches with a
// log message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// Dispatch logs and discards a dispatch.
func (n *NoOpNotifier) Dispatch(
	_ context.Context,
	payload OutreachPayload,
) (DispatchResult, error) {
	n.log.Debug("outreach discarded (no webhook configured)",
		"verdict_id", payload.VerdictID,
		"title", payload.Title,
		"action", payload.Action,
	)
	return DispatchResult{Delivered: false, Detail: "no webhook configured"}, nil
}
