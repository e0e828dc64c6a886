package in_memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/shopspring/decimal"
)

type InstrumentPrice struct {
	Price     decimal.Decimal
	Change24h decimal.Decimal
	UpdatedAt time.Time
}

type positionKey struct {
	owner      string
	instrument string
}

// MemoryRepo is a PersistenceGateway and OrderStore kept in process memory.
// It is used when no database is configured and as the fake in tests.
type MemoryRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	trades    map[string]domain.Trade
	tradeLog  []string
	prices    map[string]InstrumentPrice
	positions map[positionKey]decimal.Decimal
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orders:    make(map[string]domain.Order),
		trades:    make(map[string]domain.Trade),
		prices:    make(map[string]InstrumentPrice),
		positions: make(map[positionKey]decimal.Decimal),
	}
}

// RecordOrder upserts o. A FILLED or CANCELLED record is never reopened.
func (r *MemoryRepo) RecordOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.orders[o.ID]; ok && cur.Status.Terminal() {
		return nil
	}
	r.orders[o.ID] = *o
	return nil
}

// RecordTrade stores t once; positions move only on the first insert.
func (r *MemoryRepo) RecordTrade(ctx context.Context, t *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.trades[t.ID]; exists {
		return nil
	}
	r.trades[t.ID] = *t
	r.tradeLog = append(r.tradeLog, t.ID)

	buy := positionKey{owner: t.BuyOwnerID, instrument: t.InstrumentID}
	sell := positionKey{owner: t.SellOwnerID, instrument: t.InstrumentID}
	r.positions[buy] = r.positions[buy].Add(t.Quantity)
	r.positions[sell] = r.positions[sell].Sub(t.Quantity)
	return nil
}

func (r *MemoryRepo) UpdateInstrumentPrice(ctx context.Context, instrumentID string, price, change24h decimal.Decimal, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.prices[instrumentID]; ok && cur.UpdatedAt.After(at) {
		return nil
	}
	r.prices[instrumentID] = InstrumentPrice{Price: price, Change24h: change24h, UpdatedAt: at}
	return nil
}

// LoadOpenOrders returns resting orders ordered by sequence.
func (r *MemoryRepo) LoadOpenOrders(ctx context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.Order
	for _, o := range r.orders {
		if o.Resting() {
			cp := o
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Sequence < res[j].Sequence })
	return res, nil
}

func (r *MemoryRepo) LoadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

// LoadTrades returns the trades of orderID in insertion order.
func (r *MemoryRepo) LoadTrades(ctx context.Context, orderID string) ([]domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := []domain.Trade{}
	for _, id := range r.tradeLog {
		if t := r.trades[id]; t.BuyOrderID == orderID || t.SellOrderID == orderID {
			res = append(res, t)
		}
	}
	return res, nil
}

// LoadPosition is the net quantity of instrumentID held by owner.
func (r *MemoryRepo) LoadPosition(ctx context.Context, ownerID, instrumentID string) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.positions[positionKey{owner: ownerID, instrument: instrumentID}], nil
}

// Trades returns stored trades in insertion order.
func (r *MemoryRepo) Trades() []domain.Trade {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Trade, 0, len(r.tradeLog))
	for _, id := range r.tradeLog {
		out = append(out, r.trades[id])
	}
	return out
}

func (r *MemoryRepo) Price(instrumentID string) (InstrumentPrice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.prices[instrumentID]
	return p, ok
}

func (r *MemoryRepo) Close(ctx context.Context) {}
