package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olyamironova/artist-exchange/internal/api/dto"
	"github.com/olyamironova/artist-exchange/internal/core"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/logger"
	"github.com/olyamironova/artist-exchange/internal/middleware"
	"github.com/pkg/errors"
)

// PriceReader serves last prices that the engine does not hold, such as
// those cached before a restart.
type PriceReader interface {
	GetPrice(ctx context.Context, instrumentID string) (domain.PriceTick, bool, error)
}

type Options struct {
	RateLimit    time.Duration
	DefaultDepth int
	// Stream serves GET /ws when set.
	Stream http.Handler
	Prices PriceReader
}

type HTTPServer struct {
	Eng    *core.Engine
	log    *logger.Logger
	opts   Options
	router *gin.Engine
	srv    *http.Server
}

func NewHTTPServer(eng *core.Engine, log *logger.Logger, opts Options) *HTTPServer {
	if opts.DefaultDepth <= 0 {
		opts.DefaultDepth = 10
	}
	s := &HTTPServer{Eng: eng, log: log, opts: opts}
	s.router = s.routes()
	return s
}

func (s *HTTPServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(s.log))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if s.opts.Stream != nil {
		r.GET("/ws", gin.WrapH(s.opts.Stream))
	}

	rl := middleware.NewRateLimiter(s.opts.RateLimit)
	api := r.Group("/", rl.Middleware())
	api.POST("/orders", s.submitOrder)
	api.POST("/orders/cancel", s.cancelOrder)
	api.DELETE("/orders/:id", s.deleteOrder)
	api.GET("/orders/:id", s.getOrder)
	api.GET("/orders/:id/trades", s.getOrderTrades)
	api.GET("/instruments/:id/orderbook", s.getOrderbook)
	api.GET("/instruments/:id/top", s.getTop)
	api.GET("/instruments/:id/position", s.getPosition)
	return r
}

// Handler exposes the router, mostly for tests.
func (s *HTTPServer) Handler() http.Handler { return s.router }

func (s *HTTPServer) Run(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http: serve")
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// writeError maps engine errors onto status codes.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyTerminal), errors.Is(err, domain.ErrDuplicateOrder):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEngineClosed):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	default:
		s.log.ErrorContext(c.Request.Context(), err, logger.NewField("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func (s *HTTPServer) submitOrder(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	exec, err := s.Eng.ProcessOrder(c.Request.Context(), req.ToOrderRequest(c.GetHeader(middleware.OwnerHeader)))
	if err != nil {
		s.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if len(exec.Trades) > 0 {
		status = http.StatusOK
	}
	c.JSON(status, dto.SubmitOrderResponse{
		Order:  dto.FromOrder(exec.Order),
		Trades: dto.FromTrades(exec.Trades, exec.Order.ID),
	})
}

func (s *HTTPServer) cancelOrder(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	owner := c.GetHeader(middleware.OwnerHeader)
	if owner == "" {
		owner = req.OwnerID
	}
	s.cancel(c, req.OrderID, owner)
}

func (s *HTTPServer) deleteOrder(c *gin.Context) {
	s.cancel(c, c.Param("id"), c.GetHeader(middleware.OwnerHeader))
}

func (s *HTTPServer) cancel(c *gin.Context, orderID, owner string) {
	o, err := s.Eng.CancelOrder(c.Request.Context(), orderID, owner)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CancelOrderResponse{
		OrderID:   o.ID,
		Cancelled: true,
		Order:     dto.FromOrder(*o),
	})
}

// ownedOrder loads the order named in the path and hides it from other
// owners.
func (s *HTTPServer) ownedOrder(c *gin.Context) (*domain.Order, bool) {
	o, err := s.Eng.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return nil, false
	}
	if owner := c.GetHeader(middleware.OwnerHeader); owner != "" && owner != o.OwnerID {
		s.writeError(c, domain.ErrOrderNotFound)
		return nil, false
	}
	return o, true
}

func (s *HTTPServer) getOrder(c *gin.Context) {
	o, ok := s.ownedOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderResponse{Order: dto.FromOrder(*o)})
}

func (s *HTTPServer) getOrderTrades(c *gin.Context) {
	o, ok := s.ownedOrder(c)
	if !ok {
		return
	}
	trades, err := s.Eng.TradesForOrder(c.Request.Context(), o.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderTradesResponse{OrderID: o.ID, Trades: dto.FromTrades(trades, o.ID)})
}

func (s *HTTPServer) getPosition(c *gin.Context) {
	owner := c.GetHeader(middleware.OwnerHeader)
	if owner == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: middleware.OwnerHeader + " header is required", Field: "owner_id"})
		return
	}
	id := c.Param("id")
	qty, err := s.Eng.Position(c.Request.Context(), owner, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PositionResponse{OwnerID: owner, InstrumentID: id, Quantity: qty})
}

func (s *HTTPServer) getOrderbook(c *gin.Context) {
	depth := s.opts.DefaultDepth
	if raw := c.Query("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "depth must be a non-negative integer", Field: "depth"})
			return
		}
		depth = n
	}
	c.JSON(http.StatusOK, dto.FromSnapshot(s.Eng.Snapshot(c.Param("id"), depth)))
}

func (s *HTTPServer) getTop(c *gin.Context) {
	id := c.Param("id")
	resp := dto.TopOfBookResponse{InstrumentID: id}
	if bid, ok := s.Eng.BestBid(id); ok {
		resp.BestBid = &dto.BookLevel{Price: bid.Price, TotalQuantity: bid.Quantity}
	}
	if ask, ok := s.Eng.BestAsk(id); ok {
		resp.BestAsk = &dto.BookLevel{Price: ask.Price, TotalQuantity: ask.Quantity}
	}
	tick, ok := s.Eng.ReferencePrice(id)
	if !ok && s.opts.Prices != nil {
		var err error
		if tick, ok, err = s.opts.Prices.GetPrice(c.Request.Context(), id); err != nil {
			s.log.WarnContext(c.Request.Context(), "cached price lookup failed",
				logger.NewField("instrument_id", id),
				logger.NewField("error", err.Error()),
			)
		}
	}
	if ok {
		resp.LastPrice = &tick.Price
		resp.Change24h = &tick.Change24h
	}
	c.JSON(http.StatusOK, resp)
}
