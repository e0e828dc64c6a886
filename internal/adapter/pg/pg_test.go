package pg

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepo connects to the database named by POSTGRES_TEST_DSN and skips
// the test when it is unset.
func newTestRepo(t *testing.T) *PgRepo {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	repo, err := NewPgRepo(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx))
	t.Cleanup(func() { repo.Close(ctx) })
	return repo
}

func newOrder(instrument, owner string, side domain.Side, seq uint64) *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Order{
		ID:           uuid.NewString(),
		OwnerID:      owner,
		InstrumentID: instrument,
		Side:         side,
		Type:         domain.Limit,
		Price:        decimal.RequireFromString("5.25"),
		Quantity:     decimal.NewFromInt(10),
		Remaining:    decimal.NewFromInt(10),
		Status:       domain.Pending,
		Sequence:     seq,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPgRepo_OrderRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	o := newOrder("ART-"+uuid.NewString(), "alice", domain.Buy, 1)

	require.NoError(t, repo.RecordOrder(ctx, o))
	got, err := repo.LoadOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(o.Price))
	assert.Equal(t, domain.Pending, got.Status)

	o.Status = domain.Cancelled
	require.NoError(t, repo.RecordOrder(ctx, o))
	o.Status = domain.Pending
	require.NoError(t, repo.RecordOrder(ctx, o))

	got, err = repo.LoadOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Cancelled, got.Status, "terminal rows are not reopened")

	_, err = repo.LoadOrder(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestPgRepo_RecordTradeUpdatesPositionsOnce(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	instrument := "ART-" + uuid.NewString()
	buy := newOrder(instrument, "alice", domain.Buy, 1)
	sell := newOrder(instrument, "bob", domain.Sell, 2)
	require.NoError(t, repo.RecordOrder(ctx, buy))
	require.NoError(t, repo.RecordOrder(ctx, sell))

	tr := &domain.Trade{
		ID:           uuid.NewString(),
		InstrumentID: instrument,
		BuyOrderID:   buy.ID,
		SellOrderID:  sell.ID,
		BuyOwnerID:   "alice",
		SellOwnerID:  "bob",
		Price:        decimal.RequireFromString("5.25"),
		Quantity:     decimal.NewFromInt(4),
		ExecutedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.RecordTrade(ctx, tr))
	require.NoError(t, repo.RecordTrade(ctx, tr))

	pos, err := repo.LoadPosition(ctx, "alice", instrument)
	require.NoError(t, err)
	assert.True(t, pos.Equal(decimal.NewFromInt(4)), pos.String())
	pos, err = repo.LoadPosition(ctx, "bob", instrument)
	require.NoError(t, err)
	assert.True(t, pos.Equal(decimal.NewFromInt(-4)), pos.String())

	trades, err := repo.LoadTrades(ctx, sell.ID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, tr.ID, trades[0].ID)
	assert.Equal(t, buy.ID, trades[0].CounterOrderID(sell.ID))
	assert.True(t, trades[0].Quantity.Equal(decimal.NewFromInt(4)))

	require.NoError(t, repo.UpdateInstrumentPrice(ctx, instrument, tr.Price, decimal.Zero, tr.ExecutedAt))
}
