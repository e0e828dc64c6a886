package in_memory

import (
	"context"
	"sync"

	"github.com/olyamironova/artist-exchange/internal/domain"
)

type UserTrade struct {
	UserID string
	Fill   domain.Fill
}

type UserOrderUpdate struct {
	UserID string
	Update domain.OrderUpdate
}

// Recorder is a NotificationGateway that keeps every event it receives.
type Recorder struct {
	mu      sync.Mutex
	deltas  []domain.OrderbookDelta
	trades  []UserTrade
	ticks   []domain.PriceTick
	updates []UserOrderUpdate
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PublishOrderbookDelta(ctx context.Context, instrumentID string, delta domain.OrderbookDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deltas = append(r.deltas, delta)
	return nil
}

func (r *Recorder) PublishTrade(ctx context.Context, userID string, fill domain.Fill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, UserTrade{UserID: userID, Fill: fill})
	return nil
}

func (r *Recorder) PublishPriceTick(ctx context.Context, tick domain.PriceTick) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, tick)
	return nil
}

func (r *Recorder) PublishOrderUpdate(ctx context.Context, userID string, update domain.OrderUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, UserOrderUpdate{UserID: userID, Update: update})
	return nil
}

func (r *Recorder) Deltas() []domain.OrderbookDelta {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.OrderbookDelta(nil), r.deltas...)
}

func (r *Recorder) Trades() []UserTrade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]UserTrade(nil), r.trades...)
}

func (r *Recorder) Ticks() []domain.PriceTick {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PriceTick(nil), r.ticks...)
}

func (r *Recorder) OrderUpdates() []UserOrderUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]UserOrderUpdate(nil), r.updates...)
}
