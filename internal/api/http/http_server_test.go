package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olyamironova/artist-exchange/internal/adapter/in_memory"
	"github.com/olyamironova/artist-exchange/internal/api/dto"
	"github.com/olyamironova/artist-exchange/internal/core"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *HTTPServer {
	return newTestServerWith(t, Options{DefaultDepth: 10})
}

func newTestServerWith(t *testing.T, opts Options) *HTTPServer {
	t.Helper()
	repo := in_memory.NewMemoryRepo()
	eng := core.NewEngine(repo, in_memory.NewRecorder(), repo, logger.Nop())
	t.Cleanup(func() { _ = eng.Close(context.Background()) })
	return NewHTTPServer(eng, logger.Nop(), opts)
}

type cachedPrices map[string]domain.PriceTick

func (p cachedPrices) GetPrice(ctx context.Context, instrumentID string) (domain.PriceTick, bool, error) {
	tick, ok := p[instrumentID]
	return tick, ok, nil
}

func do(t *testing.T, s *HTTPServer, method, path string, body any, owner string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set("X-Owner-ID", owner)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func submit(t *testing.T, s *HTTPServer, owner string, side dto.Side, typ dto.OrderType, price, qty string) (*httptest.ResponseRecorder, dto.SubmitOrderResponse) {
	t.Helper()
	req := dto.SubmitOrderRequest{
		InstrumentID: "ART",
		Side:         side,
		Type:         typ,
		Quantity:     decimal.RequireFromString(qty),
	}
	if price != "" {
		req.Price = decimal.RequireFromString(price)
	}
	w := do(t, s, http.MethodPost, "/orders", req, owner)
	var resp dto.SubmitOrderResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHTTP_SubmitAndMatch(t *testing.T) {
	s := newTestServer(t)

	w, resting := submit(t, s, "bob", dto.Sell, dto.Limit, "5.00", "10")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "PENDING", resting.Order.Status)
	assert.Equal(t, "bob", resting.Order.OwnerID)

	w, exec := submit(t, s, "alice", dto.Buy, dto.Limit, "5.00", "15")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, exec.Trades, 1)
	assert.True(t, exec.Trades[0].Quantity.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, resting.Order.ID, exec.Trades[0].CounterOrderID)
	assert.Contains(t, w.Body.String(), `"counter_order_id"`)
	assert.NotContains(t, w.Body.String(), `"sell_order_id"`)
	assert.True(t, exec.Order.Filled.Equal(decimal.NewFromInt(10)))

	w = do(t, s, http.MethodGet, "/instruments/ART/orderbook?depth=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var book dto.GetOrderbookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	require.Len(t, book.Bids, 1)
	assert.True(t, book.Bids[0].TotalQuantity.Equal(decimal.NewFromInt(5)))
	assert.Empty(t, book.Asks)
	assert.Contains(t, w.Body.String(), `"total_quantity"`)

	w = do(t, s, http.MethodGet, "/instruments/ART/top", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var top dto.TopOfBookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	require.NotNil(t, top.BestBid)
	assert.Nil(t, top.BestAsk)
	require.NotNil(t, top.LastPrice)
	assert.True(t, top.LastPrice.Equal(decimal.NewFromInt(5)))
}

func TestHTTP_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	w, _ := submit(t, s, "alice", dto.Buy, dto.Limit, "5", "0")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Equal(t, "quantity", e.Field)

	w, _ = submit(t, s, "", dto.Buy, dto.Limit, "5", "1")
	assert.Equal(t, http.StatusBadRequest, w.Code, "owner is required")

	w, _ = submit(t, s, "alice", "HOLD", dto.Limit, "5", "1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/orders", map[string]any{"side": "BUY"}, "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodGet, "/instruments/ART/orderbook?depth=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_Cancel(t *testing.T) {
	s := newTestServer(t)
	_, resting := submit(t, s, "bob", dto.Sell, dto.Limit, "6.00", "10")
	id := resting.Order.ID

	w := do(t, s, http.MethodDelete, "/orders/"+id, nil, "mallory")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodPost, "/orders/cancel", dto.CancelOrderRequest{OrderID: id}, "bob")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.CancelOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Cancelled)
	assert.Equal(t, "CANCELLED", resp.Order.Status)

	w = do(t, s, http.MethodDelete, "/orders/"+id, nil, "bob")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, s, http.MethodDelete, "/orders/unknown", nil, "bob")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/instruments/ART/orderbook", nil, "")
	var book dto.GetOrderbookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
	assert.Empty(t, book.Bids)
	assert.Empty(t, book.Asks)
}

func TestHTTP_GetOrder(t *testing.T) {
	s := newTestServer(t)
	_, resting := submit(t, s, "bob", dto.Buy, dto.Limit, "4", "2")

	w := do(t, s, http.MethodGet, "/orders/"+resting.Order.ID, nil, "bob")
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.GetOrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, resting.Order.ID, resp.Order.ID)

	w = do(t, s, http.MethodGet, "/orders/"+resting.Order.ID, nil, "alice")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHTTP_MarketRemainderCancelled(t *testing.T) {
	s := newTestServer(t)
	submit(t, s, "bob", dto.Sell, dto.Limit, "4.90", "5")
	submit(t, s, "bob", dto.Sell, dto.Limit, "5.00", "5")

	w, exec := submit(t, s, "alice", dto.Buy, dto.Market, "", "12")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, exec.Trades, 2)
	assert.Equal(t, "CANCELLED", exec.Order.Status)
	assert.True(t, exec.Order.Remaining.Equal(decimal.NewFromInt(2)))
}

func TestHTTP_OrderTradesAndPosition(t *testing.T) {
	s := newTestServer(t)
	_, sell := submit(t, s, "bob", dto.Sell, dto.Limit, "5", "10")
	_, buy := submit(t, s, "alice", dto.Buy, dto.Limit, "5", "4")
	require.Len(t, buy.Trades, 1)

	var resp dto.GetOrderTradesResponse
	require.Eventually(t, func() bool {
		w := do(t, s, http.MethodGet, "/orders/"+sell.Order.ID+"/trades", nil, "bob")
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &resp) != nil {
			return false
		}
		return len(resp.Trades) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, sell.Order.ID, resp.OrderID)
	assert.Equal(t, buy.Order.ID, resp.Trades[0].CounterOrderID)
	assert.True(t, resp.Trades[0].Quantity.Equal(decimal.NewFromInt(4)))

	w := do(t, s, http.MethodGet, "/orders/"+sell.Order.ID+"/trades", nil, "alice")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var pos dto.PositionResponse
	require.Eventually(t, func() bool {
		w := do(t, s, http.MethodGet, "/instruments/ART/position", nil, "alice")
		if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &pos) != nil {
			return false
		}
		return pos.Quantity.Equal(decimal.NewFromInt(4))
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "alice", pos.OwnerID)

	w = do(t, s, http.MethodGet, "/instruments/ART/position", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHTTP_TopFallsBackToCachedPrice(t *testing.T) {
	s := newTestServerWith(t, Options{Prices: cachedPrices{
		"ART": {InstrumentID: "ART", Price: decimal.RequireFromString("7.5"), Change24h: decimal.NewFromInt(3)},
	}})

	w := do(t, s, http.MethodGet, "/instruments/ART/top", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var top dto.TopOfBookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	require.NotNil(t, top.LastPrice)
	assert.True(t, top.LastPrice.Equal(decimal.RequireFromString("7.5")))

	submit(t, s, "bob", dto.Sell, dto.Limit, "5", "1")
	submit(t, s, "alice", dto.Buy, dto.Market, "", "1")
	w = do(t, s, http.MethodGet, "/instruments/ART/top", nil, "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &top))
	require.NotNil(t, top.LastPrice)
	assert.True(t, top.LastPrice.Equal(decimal.NewFromInt(5)))

	w = do(t, s, http.MethodGet, "/instruments/OTHER/top", nil, "")
	var empty dto.TopOfBookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &empty))
	assert.Nil(t, empty.LastPrice)
}
