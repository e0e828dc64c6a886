package domain

type EventType string

const (
	EventOrderbookDelta EventType = "orderbook_delta"
	EventTrade          EventType = "trade"
	EventPriceTick      EventType = "price_tick"
	EventOrderUpdate    EventType = "order_update"
)

// Event is the envelope every notifier puts on the wire. Channel names the
// audience: one instrument's book or price, or one user.
type Event struct {
	Type    EventType `json:"type"`
	Channel string    `json:"channel"`
	Data    any       `json:"data"`
}

func OrderbookChannel(instrumentID string) string { return "orderbook:" + instrumentID }

func PriceChannel(instrumentID string) string { return "price:" + instrumentID }

func UserChannel(userID string) string { return "user:" + userID }
