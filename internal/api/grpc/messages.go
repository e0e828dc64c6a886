package grpc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Decimal values travel as strings to keep their exact scale.

type SubmitOrderRequest struct {
	OwnerID      string `json:"owner_id"`
	InstrumentID string `json:"instrument_id"`
	Side         string `json:"side"`
	Type         string `json:"type"`
	Price        string `json:"price,omitempty"`
	Quantity     string `json:"quantity"`
}

type SubmitOrderResponse struct {
	Order  *Order   `json:"order"`
	Trades []*Trade `json:"trades"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id"`
	OwnerID string `json:"owner_id,omitempty"`
}

type CancelOrderResponse struct {
	OrderID   string `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
	Order     *Order `json:"order"`
}

type GetOrderbookRequest struct {
	InstrumentID string `json:"instrument_id"`
	Depth        int32  `json:"depth"`
}

type GetOrderbookResponse struct {
	InstrumentID string                 `json:"instrument_id"`
	Bids         []*Level               `json:"bids"`
	Asks         []*Level               `json:"asks"`
	Version      uint64                 `json:"version"`
	Timestamp    *timestamppb.Timestamp `json:"timestamp"`
}

type Level struct {
	Price         string `json:"price"`
	TotalQuantity string `json:"total_quantity"`
}

type Order struct {
	ID           string                 `json:"id"`
	OwnerID      string                 `json:"owner_id"`
	InstrumentID string                 `json:"instrument_id"`
	Side         string                 `json:"side"`
	Type         string                 `json:"type"`
	Price        string                 `json:"price"`
	Quantity     string                 `json:"quantity"`
	Remaining    string                 `json:"remaining"`
	Filled       string                 `json:"filled"`
	Status       string                 `json:"status"`
	CreatedAt    *timestamppb.Timestamp `json:"created_at"`
}

type Trade struct {
	ID             string                 `json:"id"`
	CounterOrderID string                 `json:"counter_order_id"`
	Price          string                 `json:"price"`
	Quantity       string                 `json:"quantity"`
	ExecutedAt     *timestamppb.Timestamp `json:"executed_at"`
}
