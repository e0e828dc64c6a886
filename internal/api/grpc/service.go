package grpc

import (
	"context"
	"encoding/json"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const serviceName = "exchange.v1.Exchange"

// ExchangeServer is the server API of the exchange.v1.Exchange service.
type ExchangeServer interface {
	SubmitOrder(context.Context, *SubmitOrderRequest) (*SubmitOrderResponse, error)
	CancelOrder(context.Context, *CancelOrderRequest) (*CancelOrderResponse, error)
	GetOrderbook(context.Context, *GetOrderbookRequest) (*GetOrderbookResponse, error)
}

// jsonCodec carries the service messages as JSON instead of protobuf wire
// format.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

// Codec returns the codec both ends of the service must use.
func Codec() encoding.Codec { return jsonCodec{} }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

var ServiceDesc = gogrpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ExchangeServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{
			MethodName: "SubmitOrder",
			Handler: unary("SubmitOrder", func(srv ExchangeServer, ctx context.Context, in *SubmitOrderRequest) (any, error) {
				return srv.SubmitOrder(ctx, in)
			}),
		},
		{
			MethodName: "CancelOrder",
			Handler: unary("CancelOrder", func(srv ExchangeServer, ctx context.Context, in *CancelOrderRequest) (any, error) {
				return srv.CancelOrder(ctx, in)
			}),
		},
		{
			MethodName: "GetOrderbook",
			Handler: unary("GetOrderbook", func(srv ExchangeServer, ctx context.Context, in *GetOrderbookRequest) (any, error) {
				return srv.GetOrderbook(ctx, in)
			}),
		},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "internal/api/grpc/messages.go",
}

type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error)

func unary[Req any](method string, call func(ExchangeServer, context.Context, *Req) (any, error)) methodHandler {
	fullMethod := "/" + serviceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ExchangeServer), ctx, in)
		}
		info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ExchangeServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls the exchange.v1.Exchange service.
type Client struct {
	cc gogrpc.ClientConnInterface
}

func NewClient(cc gogrpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...gogrpc.CallOption) error {
	opts = append([]gogrpc.CallOption{gogrpc.ForceCodec(Codec())}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}

func (c *Client) SubmitOrder(ctx context.Context, in *SubmitOrderRequest, opts ...gogrpc.CallOption) (*SubmitOrderResponse, error) {
	out := new(SubmitOrderResponse)
	if err := c.invoke(ctx, "SubmitOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelOrder(ctx context.Context, in *CancelOrderRequest, opts ...gogrpc.CallOption) (*CancelOrderResponse, error) {
	out := new(CancelOrderResponse)
	if err := c.invoke(ctx, "CancelOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrderbook(ctx context.Context, in *GetOrderbookRequest, opts ...gogrpc.CallOption) (*GetOrderbookResponse, error) {
	out := new(GetOrderbookResponse)
	if err := c.invoke(ctx, "GetOrderbook", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
