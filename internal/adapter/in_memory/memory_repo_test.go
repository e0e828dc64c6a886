package in_memory

import (
	"context"
	"testing"
	"time"

	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo_RecordTradeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	tr := &domain.Trade{
		ID:           "t1",
		InstrumentID: "ART",
		BuyOrderID:   "b1",
		SellOrderID:  "s1",
		BuyOwnerID:   "alice",
		SellOwnerID:  "bob",
		Price:        decimal.NewFromInt(10),
		Quantity:     decimal.NewFromInt(3),
	}

	require.NoError(t, repo.RecordTrade(ctx, tr))
	require.NoError(t, repo.RecordTrade(ctx, tr))

	assert.Len(t, repo.Trades(), 1)
	pos, err := repo.LoadPosition(ctx, "alice", "ART")
	require.NoError(t, err)
	assert.True(t, pos.Equal(decimal.NewFromInt(3)))
	pos, err = repo.LoadPosition(ctx, "bob", "ART")
	require.NoError(t, err)
	assert.True(t, pos.Equal(decimal.NewFromInt(-3)))

	trades, err := repo.LoadTrades(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "b1", trades[0].CounterOrderID("s1"))
	trades, err = repo.LoadTrades(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestMemoryRepo_TerminalOrderNotReopened(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	o := &domain.Order{ID: "o1", InstrumentID: "ART", Type: domain.Limit, Side: domain.Sell, Price: decimal.NewFromInt(5), Quantity: decimal.NewFromInt(2), Remaining: decimal.NewFromInt(2), Status: domain.Pending}
	require.NoError(t, repo.RecordOrder(ctx, o))

	cancelled := *o
	cancelled.Status = domain.Cancelled
	require.NoError(t, repo.RecordOrder(ctx, &cancelled))
	require.NoError(t, repo.RecordOrder(ctx, o))

	got, err := repo.LoadOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.Cancelled, got.Status)

	open, err := repo.LoadOpenOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestMemoryRepo_LoadOpenOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	mk := func(id string, seq uint64, status domain.OrderStatus, remaining int64) *domain.Order {
		return &domain.Order{
			ID:           id,
			InstrumentID: "ART",
			Type:         domain.Limit,
			Side:         domain.Buy,
			Price:        decimal.NewFromInt(5),
			Quantity:     decimal.NewFromInt(10),
			Remaining:    decimal.NewFromInt(remaining),
			Status:       status,
			Sequence:     seq,
		}
	}
	require.NoError(t, repo.RecordOrder(ctx, mk("b", 2, domain.PartiallyFilled, 4)))
	require.NoError(t, repo.RecordOrder(ctx, mk("a", 1, domain.Pending, 10)))
	require.NoError(t, repo.RecordOrder(ctx, mk("c", 3, domain.Filled, 0)))
	require.NoError(t, repo.RecordOrder(ctx, mk("d", 4, domain.Cancelled, 10)))

	open, err := repo.LoadOpenOrders(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "a", open[0].ID)
	assert.Equal(t, "b", open[1].ID)

	_, err = repo.LoadOrder(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestMemoryRepo_PriceKeepsNewest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	now := time.Now()

	require.NoError(t, repo.UpdateInstrumentPrice(ctx, "ART", decimal.NewFromInt(11), decimal.Zero, now))
	require.NoError(t, repo.UpdateInstrumentPrice(ctx, "ART", decimal.NewFromInt(9), decimal.Zero, now.Add(-time.Second)))

	p, ok := repo.Price("ART")
	require.True(t, ok)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(11)))
}
