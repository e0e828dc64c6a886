package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/port"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

var _ port.NotificationGateway = (*Producer)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes market events to one Kafka topic. Messages are keyed by
// channel so events for one book or one user stay on one partition.
type Producer struct {
	writer messageWriter
}

// batchTimeout bounds how long a synchronous write waits for its batch to
// fill. kafka-go defaults to one second.
const batchTimeout = 10 * time.Millisecond

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: newWriter(brokers, topic)}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

func (p *Producer) write(ctx context.Context, typ domain.EventType, channel string, data any) error {
	b, err := json.Marshal(domain.Event{Type: typ, Channel: channel, Data: data})
	if err != nil {
		return errors.Wrapf(err, "kafka: encode %s", typ)
	}
	msg := kafka.Message{
		Key:   []byte(channel),
		Value: b,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(typ)},
		},
	}
	return errors.Wrapf(p.writer.WriteMessages(ctx, msg), "kafka: write %s", typ)
}

func (p *Producer) PublishOrderbookDelta(ctx context.Context, instrumentID string, delta domain.OrderbookDelta) error {
	return p.write(ctx, domain.EventOrderbookDelta, domain.OrderbookChannel(instrumentID), delta)
}

func (p *Producer) PublishTrade(ctx context.Context, userID string, fill domain.Fill) error {
	return p.write(ctx, domain.EventTrade, domain.UserChannel(userID), fill)
}

func (p *Producer) PublishPriceTick(ctx context.Context, tick domain.PriceTick) error {
	return p.write(ctx, domain.EventPriceTick, domain.PriceChannel(tick.InstrumentID), tick)
}

func (p *Producer) PublishOrderUpdate(ctx context.Context, userID string, update domain.OrderUpdate) error {
	return p.write(ctx, domain.EventOrderUpdate, domain.UserChannel(userID), update)
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
