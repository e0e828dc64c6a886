package port

import (
	"context"
	"time"

	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/shopspring/decimal"
)

// PersistenceGateway is the durable record of orders, trades and reference
// prices. Every call must be an idempotent upsert keyed by the record id:
// the engine delivers at least once.
type PersistenceGateway interface {
	RecordOrder(ctx context.Context, o *domain.Order) error
	RecordTrade(ctx context.Context, t *domain.Trade) error
	UpdateInstrumentPrice(ctx context.Context, instrumentID string, price, change24h decimal.Decimal, at time.Time) error
}

// OrderStore is the read side used for recovery and lookups of orders that
// are no longer held in memory. It sees side effects only once they have
// been persisted.
type OrderStore interface {
	LoadOpenOrders(ctx context.Context) ([]*domain.Order, error)
	LoadOrder(ctx context.Context, orderID string) (*domain.Order, error)
	// LoadTrades returns the trades of one order, oldest first.
	LoadTrades(ctx context.Context, orderID string) ([]domain.Trade, error)
	LoadPosition(ctx context.Context, ownerID, instrumentID string) (decimal.Decimal, error)
}
