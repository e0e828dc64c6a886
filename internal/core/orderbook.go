package core

import (
	"time"

	"github.com/google/btree"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/shopspring/decimal"
)

const levelsDegree = 32

// OrderBook holds the resting orders of one instrument. Each side keeps its
// levels in a B-tree ordered best-first, so Min is always the top of book.
// OrderBook is not safe for concurrent use; the engine serializes access.
type OrderBook struct {
	InstrumentID string
	bids         *btree.BTreeG[*PriceLevel]
	asks         *btree.BTreeG[*PriceLevel]
	index        map[string]*domain.Order
}

func NewOrderBook(instrumentID string) *OrderBook {
	return &OrderBook{
		InstrumentID: instrumentID,
		bids: btree.NewG(levelsDegree, func(a, b *PriceLevel) bool {
			return a.Price.GreaterThan(b.Price)
		}),
		asks: btree.NewG(levelsDegree, func(a, b *PriceLevel) bool {
			return a.Price.LessThan(b.Price)
		}),
		index: make(map[string]*domain.Order),
	}
}

func (ob *OrderBook) levels(side domain.Side) *btree.BTreeG[*PriceLevel] {
	if side == domain.Buy {
		return ob.bids
	}
	return ob.asks
}

func pivot(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{Price: price}
}

// Add rests o at the tail of its price level, creating the level if needed.
func (ob *OrderBook) Add(o *domain.Order) error {
	if o == nil {
		return domain.NewValidationError("order", "required")
	}
	if !o.Remaining.IsPositive() {
		return domain.NewValidationError("quantity", "must be > 0")
	}
	if o.Type != domain.Limit || !o.Price.IsPositive() {
		return domain.NewValidationError("price", "only LIMIT orders with a positive price can rest")
	}
	if _, exists := ob.index[o.ID]; exists {
		return domain.ErrDuplicateOrder
	}

	levels := ob.levels(o.Side)
	lvl, ok := levels.Get(pivot(o.Price))
	if !ok {
		lvl = NewPriceLevel(o.Price)
		levels.ReplaceOrInsert(lvl)
	}
	lvl.Push(o)
	ob.index[o.ID] = o
	return nil
}

// Remove takes a resting order out of the book. Empty levels are dropped.
func (ob *OrderBook) Remove(orderID string) (*domain.Order, bool) {
	o, ok := ob.index[orderID]
	if !ok {
		return nil, false
	}
	levels := ob.levels(o.Side)
	if lvl, found := levels.Get(pivot(o.Price)); found {
		lvl.Remove(orderID)
		if lvl.Empty() {
			levels.Delete(lvl)
		}
	}
	delete(ob.index, orderID)
	return o, true
}

// Lookup returns the resting order with orderID.
func (ob *OrderBook) Lookup(orderID string) (*domain.Order, bool) {
	o, ok := ob.index[orderID]
	return o, ok
}

// Best returns the top level of side, or nil if the side is empty.
func (ob *OrderBook) Best(side domain.Side) *PriceLevel {
	lvl, ok := ob.levels(side).Min()
	if !ok {
		return nil
	}
	return lvl
}

func (ob *OrderBook) BestBid() (domain.BookLevel, bool) {
	return ob.top(domain.Buy)
}

func (ob *OrderBook) BestAsk() (domain.BookLevel, bool) {
	return ob.top(domain.Sell)
}

func (ob *OrderBook) top(side domain.Side) (domain.BookLevel, bool) {
	lvl := ob.Best(side)
	if lvl == nil {
		return domain.BookLevel{}, false
	}
	return lvl.level(), true
}

// LevelQuantity returns the aggregate at price on side, zero if no level.
func (ob *OrderBook) LevelQuantity(side domain.Side, price decimal.Decimal) decimal.Decimal {
	lvl, ok := ob.levels(side).Get(pivot(price))
	if !ok {
		return decimal.Zero
	}
	return lvl.TotalQuantity()
}

// Snapshot returns up to depth levels per side, best first. A depth of zero
// or less returns every level.
func (ob *OrderBook) Snapshot(depth int) (bids, asks []domain.BookLevel) {
	return collect(ob.bids, depth), collect(ob.asks, depth)
}

func collect(levels *btree.BTreeG[*PriceLevel], depth int) []domain.BookLevel {
	n := levels.Len()
	if depth > 0 && depth < n {
		n = depth
	}
	out := make([]domain.BookLevel, 0, n)
	levels.Ascend(func(lvl *PriceLevel) bool {
		out = append(out, lvl.level())
		return len(out) < n
	})
	return out
}

// Fill executes qty against the oldest order of lvl, which must be the best
// level of its side. A resting order that reaches zero leaves the book, and
// so does a level that becomes empty.
func (ob *OrderBook) Fill(lvl *PriceLevel, qty decimal.Decimal, at time.Time) *domain.Order {
	resting := lvl.Front()
	resting.Fill(qty, at)
	lvl.reduce(qty)
	if resting.Remaining.IsZero() {
		lvl.PopFront()
		delete(ob.index, resting.ID)
		if lvl.Empty() {
			ob.levels(resting.Side).Delete(lvl)
		}
	}
	return resting
}

// Crossed reports whether the best bid is at or above the best ask.
func (ob *OrderBook) Crossed() bool {
	bid, okBid := ob.BestBid()
	ask, okAsk := ob.BestAsk()
	return okBid && okAsk && bid.Price.GreaterThanOrEqual(ask.Price)
}

// Len is the number of resting orders.
func (ob *OrderBook) Len() int { return len(ob.index) }

// Orders returns all resting orders, bids then asks, in priority order.
func (ob *OrderBook) Orders() []*domain.Order {
	out := make([]*domain.Order, 0, len(ob.index))
	for _, levels := range []*btree.BTreeG[*PriceLevel]{ob.bids, ob.asks} {
		levels.Ascend(func(lvl *PriceLevel) bool {
			out = append(out, lvl.Orders()...)
			return true
		})
	}
	return out
}
