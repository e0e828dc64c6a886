package fanout

import (
	"context"
	"testing"

	"github.com/olyamironova/artist-exchange/internal/adapter/in_memory"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failing struct {
	*in_memory.Recorder
	err error
}

func (f failing) PublishTrade(ctx context.Context, userID string, fill domain.Fill) error {
	return f.err
}

func TestNotifier_DeliversToAll(t *testing.T) {
	a, b := in_memory.NewRecorder(), in_memory.NewRecorder()
	n := New(a, nil, b)

	require.NoError(t, n.PublishPriceTick(context.Background(), domain.PriceTick{InstrumentID: "ART"}))

	assert.Len(t, n, 2)
	assert.Len(t, a.Ticks(), 1)
	assert.Len(t, b.Ticks(), 1)
}

func TestNotifier_CombinesErrors(t *testing.T) {
	errA := errors.New("redis down")
	errB := errors.New("kafka down")
	ok := in_memory.NewRecorder()
	n := New(
		failing{Recorder: in_memory.NewRecorder(), err: errA},
		ok,
		failing{Recorder: in_memory.NewRecorder(), err: errB},
	)

	err := n.PublishTrade(context.Background(), "alice", domain.Fill{TradeID: "t1"})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, ok.Trades(), 1)
}
