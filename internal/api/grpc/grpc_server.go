package grpc

import (
	"context"
	"net"
	"time"

	"github.com/olyamironova/artist-exchange/internal/core"
	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/logger"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var _ ExchangeServer = (*GRPCServer)(nil)

type GRPCServer struct {
	Eng          *core.Engine
	log          *logger.Logger
	defaultDepth int
	srv          *gogrpc.Server
}

func NewGRPCServer(eng *core.Engine, log *logger.Logger, defaultDepth int) *GRPCServer {
	if defaultDepth <= 0 {
		defaultDepth = 10
	}
	s := &GRPCServer{Eng: eng, log: log, defaultDepth: defaultDepth}
	s.srv = gogrpc.NewServer(
		gogrpc.ForceServerCodec(Codec()),
		gogrpc.ChainUnaryInterceptor(s.requestID, s.accessLog),
	)
	s.srv.RegisterService(&ServiceDesc, s)
	return s
}

func (s *GRPCServer) Serve(lis net.Listener) error {
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, gogrpc.ErrServerStopped) {
		return errors.Wrap(err, "grpc: serve")
	}
	return nil
}

func (s *GRPCServer) Run(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "grpc: listen")
	}
	return s.Serve(lis)
}

// Shutdown waits for in-flight calls until ctx ends, then stops hard.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.srv.Stop()
	}
}

func (s *GRPCServer) requestID(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get("x-request-id"); len(ids) > 0 {
			ctx = logger.ContextWithRequestID(ctx, ids[0])
		}
	}
	return handler(ctx, req)
}

func (s *GRPCServer) accessLog(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.log.InfoContext(ctx, "rpc",
		logger.NewField("method", info.FullMethod),
		logger.NewField("code", status.Code(err).String()),
		logger.NewField("latency", time.Since(start).String()),
	)
	return resp, err
}

// toStatus maps engine errors onto gRPC codes.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrDuplicateOrder):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrEngineClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		s.log.ErrorContext(ctx, err)
		return status.Error(codes.Internal, "internal error")
	}
}

func parseDecimal(field, raw string, optional bool) (decimal.Decimal, error) {
	if raw == "" && optional {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid %s: %v", field, err)
	}
	return d, nil
}

func (s *GRPCServer) SubmitOrder(ctx context.Context, req *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	price, err := parseDecimal("price", req.Price, true)
	if err != nil {
		return nil, err
	}
	quantity, err := parseDecimal("quantity", req.Quantity, false)
	if err != nil {
		return nil, err
	}

	exec, err := s.Eng.ProcessOrder(ctx, core.OrderRequest{
		InstrumentID: req.InstrumentID,
		OwnerID:      req.OwnerID,
		Side:         domain.Side(req.Side),
		Type:         domain.OrderType(req.Type),
		Price:        price,
		Quantity:     quantity,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	trades := make([]*Trade, 0, len(exec.Trades))
	for _, t := range exec.Trades {
		trades = append(trades, &Trade{
			ID:             t.ID,
			CounterOrderID: t.CounterOrderID(exec.Order.ID),
			Price:          t.Price.String(),
			Quantity:       t.Quantity.String(),
			ExecutedAt:     timestamppb.New(t.ExecutedAt),
		})
	}
	return &SubmitOrderResponse{Order: toOrder(exec.Order), Trades: trades}, nil
}

func (s *GRPCServer) CancelOrder(ctx context.Context, req *CancelOrderRequest) (*CancelOrderResponse, error) {
	o, err := s.Eng.CancelOrder(ctx, req.OrderID, req.OwnerID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &CancelOrderResponse{OrderID: o.ID, Cancelled: true, Order: toOrder(*o)}, nil
}

func (s *GRPCServer) GetOrderbook(ctx context.Context, req *GetOrderbookRequest) (*GetOrderbookResponse, error) {
	if req.InstrumentID == "" {
		return nil, status.Error(codes.InvalidArgument, "instrument_id is required")
	}
	depth := int(req.Depth)
	if depth <= 0 {
		depth = s.defaultDepth
	}
	snap := s.Eng.Snapshot(req.InstrumentID, depth)
	return &GetOrderbookResponse{
		InstrumentID: snap.InstrumentID,
		Bids:         toLevels(snap.Bids),
		Asks:         toLevels(snap.Asks),
		Version:      snap.Version,
		Timestamp:    timestamppb.New(snap.Timestamp),
	}, nil
}

func toOrder(o domain.Order) *Order {
	return &Order{
		ID:           o.ID,
		OwnerID:      o.OwnerID,
		InstrumentID: o.InstrumentID,
		Side:         string(o.Side),
		Type:         string(o.Type),
		Price:        o.Price.String(),
		Quantity:     o.Quantity.String(),
		Remaining:    o.Remaining.String(),
		Filled:       o.FilledQuantity().String(),
		Status:       string(o.Status),
		CreatedAt:    timestamppb.New(o.CreatedAt),
	}
}

func toLevels(levels []domain.BookLevel) []*Level {
	out := make([]*Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, &Level{Price: l.Price.String(), TotalQuantity: l.Quantity.String()})
	}
	return out
}
