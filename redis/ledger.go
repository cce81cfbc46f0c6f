package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	processedKeyPrefix = "webhook:processed:"
	processedTTL       = 72 * time.Hour
)

// Ledger records processed payment webhook event IDs so replayed events
// are applied exactly once. Entries expire after the payment provider's
// own retry horizon.
type Ledger struct {
	Client *redis.Client
}

func NewLedger(client *redis.Client) *Ledger {
	return &Ledger{Client: client}
}

// MarkProcessed records the event ID and reports whether this was the
// first time it was seen.
func (l *Ledger) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	return l.Client.SetNX(ctx, processedKeyPrefix+eventID, 1, processedTTL).Result()
}

// Seen reports whether the event ID has already been processed.
func (l *Ledger) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := l.Client.Exists(ctx, processedKeyPrefix+eventID).Result()
	return n > 0, err
}
