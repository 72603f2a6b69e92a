package pairlock

import (
	"context"
	"time"

	internalnotify "github.com/pairlock/pairlock/internal/notify"
	"github.com/pairlock/pairlock/pair"
)

const eventNetworkOriginChanged = "network_origin_changed"

// emitNetworkOriginChanged reports a tolerated network move after the
// rotation that observed it has been committed. The event names the
// successor pair, since the old pair no longer accepts credentials.
func (e *Engine) emitNetworkOriginChanged(ctx context.Context, old, next *pair.Pair, origin string) {
	if e.notifier == nil {
		return
	}

	e.notifier.Emit(ctx, internalnotify.Event{
		Timestamp:      time.Now(),
		EventType:      eventNetworkOriginChanged,
		PairID:         next.ID,
		UserID:         next.UserID,
		PreviousOrigin: old.NetworkOrigin,
		NewOrigin:      origin,
		Metadata: map[string]string{
			"previous_pair_id": old.ID,
		},
	})
}
