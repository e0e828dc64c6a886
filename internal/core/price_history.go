package core

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type pricePoint struct {
	at    time.Time
	price decimal.Decimal
}

// priceHistory keeps the trade prices needed to compute the change over a
// trailing window: every point inside the window plus the newest point at or
// before its start, which is the base.
type priceHistory struct {
	window time.Duration
	points []pricePoint
}

func newPriceHistory(window time.Duration) *priceHistory {
	return &priceHistory{window: window}
}

// record adds a trade price and returns the percentage change against the
// base, rounded to 4 places. Without a base the change is zero.
func (h *priceHistory) record(at time.Time, price decimal.Decimal) decimal.Decimal {
	h.points = append(h.points, pricePoint{at: at, price: price})
	return h.change(at, price)
}

func (h *priceHistory) change(now time.Time, price decimal.Decimal) decimal.Decimal {
	cutoff := now.Add(-h.window)
	base := -1
	for i, p := range h.points {
		if p.at.After(cutoff) {
			break
		}
		base = i
	}
	if base < 0 {
		return decimal.Zero
	}
	h.points = h.points[base:]
	b := h.points[0].price
	if b.IsZero() {
		return decimal.Zero
	}
	return price.Sub(b).Div(b).Mul(hundred).Round(4)
}
