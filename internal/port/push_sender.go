package port

import "context"

type PushSender interface {
	// Send issues a single best-effort push notification to all recipients.
	Send(ctx context.Context, title, message string) error
}
