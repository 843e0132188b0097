package messaging

import (
	"context"
	"log/slog"
)

// LogSender is a dry-run provider for local development. Nothing leaves the
// process; only the destination and template are logged, never the variables.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (LogSender) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "messaging dry-run",
		"to", msg.To,
		"template", msg.TemplateID,
	)
	return nil
}
