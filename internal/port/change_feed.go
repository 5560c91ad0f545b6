package port

import (
	"context"

	"github.com/qudalautt/hub/internal/core/domain"
)

type ChangeFeed interface {
	// Subscribe starts delivering insert events for new pending orders. The
	// returned channel is closed when the subscription ends.
	Subscribe(ctx context.Context) (<-chan domain.PendingOrder, error)

	// Close tears the subscription down; no events are delivered afterwards.
	Close() error
}
