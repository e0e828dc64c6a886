package dto

import (
	"time"

	"github.com/olyamironova/artist-exchange/internal/core"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/shopspring/decimal"
)

type OrderType string

const (
	Limit  OrderType = "LIMIT"
	Market OrderType = "MARKET"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type SubmitOrderRequest struct {
	OwnerID      string          `json:"owner_id"`
	InstrumentID string          `json:"instrument_id" binding:"required"`
	Side         Side            `json:"side" binding:"required"`
	Type         OrderType       `json:"type" binding:"required"`
	Price        decimal.Decimal `json:"price"` // for limit orders
	Quantity     decimal.Decimal `json:"quantity"`
}

type SubmitOrderResponse struct {
	Order  Order   `json:"order"`
	Trades []Trade `json:"trades"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	OwnerID string `json:"owner_id"`
}

type CancelOrderResponse struct {
	OrderID   string `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
	Order     Order  `json:"order"`
}

type GetOrderResponse struct {
	Order Order `json:"order"`
}

type GetOrderTradesResponse struct {
	OrderID string  `json:"order_id"`
	Trades  []Trade `json:"trades"`
}

type PositionResponse struct {
	OwnerID      string          `json:"owner_id"`
	InstrumentID string          `json:"instrument_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type GetOrderbookResponse struct {
	InstrumentID string      `json:"instrument_id"`
	Bids         []BookLevel `json:"bids"`
	Asks         []BookLevel `json:"asks"`
	Version      uint64      `json:"version"`
	Timestamp    time.Time   `json:"timestamp"`
}

type TopOfBookResponse struct {
	InstrumentID string           `json:"instrument_id"`
	BestBid      *BookLevel       `json:"best_bid"`
	BestAsk      *BookLevel       `json:"best_ask"`
	LastPrice    *decimal.Decimal `json:"last_price"`
	Change24h    *decimal.Decimal `json:"change_24h"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type BookLevel struct {
	Price         decimal.Decimal `json:"price"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

type Order struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	InstrumentID string          `json:"instrument_id"`
	Side         Side            `json:"side"`
	Type         OrderType       `json:"type"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	Remaining    decimal.Decimal `json:"remaining"`
	Filled       decimal.Decimal `json:"filled"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Trade is an execution seen from one order's side.
type Trade struct {
	ID             string          `json:"id"`
	CounterOrderID string          `json:"counter_order_id"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	ExecutedAt     time.Time       `json:"executed_at"`
}

// ToOrderRequest maps the body onto an engine request. ownerID overrides the
// body when the caller is identified by header.
func (r SubmitOrderRequest) ToOrderRequest(ownerID string) core.OrderRequest {
	if ownerID == "" {
		ownerID = r.OwnerID
	}
	return core.OrderRequest{
		InstrumentID: r.InstrumentID,
		OwnerID:      ownerID,
		Side:         domain.Side(r.Side),
		Type:         domain.OrderType(r.Type),
		Price:        r.Price,
		Quantity:     r.Quantity,
	}
}

func FromOrder(o domain.Order) Order {
	return Order{
		ID:           o.ID,
		OwnerID:      o.OwnerID,
		InstrumentID: o.InstrumentID,
		Side:         Side(o.Side),
		Type:         OrderType(o.Type),
		Price:        o.Price,
		Quantity:     o.Quantity,
		Remaining:    o.Remaining,
		Filled:       o.FilledQuantity(),
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// FromTrades renders trades from the point of view of orderID.
func FromTrades(trades []domain.Trade, orderID string) []Trade {
	res := make([]Trade, len(trades))
	for i, t := range trades {
		res[i] = Trade{
			ID:             t.ID,
			CounterOrderID: t.CounterOrderID(orderID),
			Price:          t.Price,
			Quantity:       t.Quantity,
			ExecutedAt:     t.ExecutedAt,
		}
	}
	return res
}

func FromLevels(levels []domain.BookLevel) []BookLevel {
	res := make([]BookLevel, len(levels))
	for i, l := range levels {
		res[i] = BookLevel{Price: l.Price, TotalQuantity: l.Quantity}
	}
	return res
}

func FromSnapshot(s domain.OrderbookSnapshot) GetOrderbookResponse {
	return GetOrderbookResponse{
		InstrumentID: s.InstrumentID,
		Bids:         FromLevels(s.Bids),
		Asks:         FromLevels(s.Asks),
		Version:      s.Version,
		Timestamp:    s.Timestamp,
	}
}
