package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducer_KeysByChannel(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}
	ctx := context.Background()

	require.NoError(t, p.PublishPriceTick(ctx, domain.PriceTick{InstrumentID: "ART", Price: decimal.NewFromInt(7)}))
	require.NoError(t, p.PublishTrade(ctx, "alice", domain.Fill{TradeID: "t1"}))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, "price:ART", string(w.msgs[0].Key))
	assert.Equal(t, "user:alice", string(w.msgs[1].Key))
	assert.Equal(t, "trade", string(w.msgs[1].Headers[0].Value))

	var ev struct {
		Type domain.EventType `json:"type"`
		Data domain.PriceTick `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, domain.EventPriceTick, ev.Type)
	assert.True(t, ev.Data.Price.Equal(decimal.NewFromInt(7)))
}

func TestProducer_WriteError(t *testing.T) {
	broken := errors.New("broker down")
	p := &Producer{writer: &fakeWriter{err: broken}}

	err := p.PublishOrderbookDelta(context.Background(), "ART", domain.OrderbookDelta{})
	assert.ErrorIs(t, err, broken)
}

func TestNewWriter_FlushesPromptly(t *testing.T) {
	w := newWriter([]string{"localhost:9092"}, "market-events")
	defer w.Close()

	assert.Equal(t, "market-events", w.Topic)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
}
