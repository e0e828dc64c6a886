package port

import (
	"context"

	"github.com/olyamironova/artist-exchange/internal/domain"
)

// NotificationGateway fans out market events. Delivery is best effort and
// unacknowledged; consumers recover through a fresh snapshot.
type NotificationGateway interface {
	PublishOrderbookDelta(ctx context.Context, instrumentID string, delta domain.OrderbookDelta) error
	PublishTrade(ctx context.Context, userID string, fill domain.Fill) error
	PublishPriceTick(ctx context.Context, tick domain.PriceTick) error
	PublishOrderUpdate(ctx context.Context, userID string, update domain.OrderUpdate) error
}
