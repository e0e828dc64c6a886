package fanout

import (
	"context"

	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/port"
	"go.uber.org/multierr"
)

var _ port.NotificationGateway = Notifier(nil)

// Notifier hands every event to each wrapped gateway. One failing gateway
// does not stop the others; their errors are combined.
type Notifier []port.NotificationGateway

func New(gateways ...port.NotificationGateway) Notifier {
	out := make(Notifier, 0, len(gateways))
	for _, g := range gateways {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}

func (n Notifier) each(fn func(port.NotificationGateway) error) error {
	var err error
	for _, g := range n {
		err = multierr.Append(err, fn(g))
	}
	return err
}

func (n Notifier) PublishOrderbookDelta(ctx context.Context, instrumentID string, delta domain.OrderbookDelta) error {
	return n.each(func(g port.NotificationGateway) error {
		return g.PublishOrderbookDelta(ctx, instrumentID, delta)
	})
}

func (n Notifier) PublishTrade(ctx context.Context, userID string, fill domain.Fill) error {
	return n.each(func(g port.NotificationGateway) error {
		return g.PublishTrade(ctx, userID, fill)
	})
}

func (n Notifier) PublishPriceTick(ctx context.Context, tick domain.PriceTick) error {
	return n.each(func(g port.NotificationGateway) error {
		return g.PublishPriceTick(ctx, tick)
	})
}

func (n Notifier) PublishOrderUpdate(ctx context.Context, userID string, update domain.OrderUpdate) error {
	return n.each(func(g port.NotificationGateway) error {
		return g.PublishOrderUpdate(ctx, userID, update)
	})
}
