package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// The status service is registered by hand; its messages are well-known
// protobuf types, so no generated code is needed on either side.
const (
	serviceName        = "backlight.v1.Status"
	getStatusMethod    = "/" + serviceName + "/GetStatus"
	getHistoryMethod   = "/" + serviceName + "/GetHistory"
	startTimeField     = "start_time"
	endTimeField       = "end_time"
	defaultHistorySpan = 24 * time.Hour
)

// StatusServer is the server API for the backlight.v1.Status service
type StatusServer interface {
	// GetStatus reports the backlight range, live readings and the last ramp
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)

	// GetHistory reports ramps started in [start_time, end_time) with counts per outcome
	GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// StatusServiceDesc describes backlight.v1.Status for grpc.Server
var StatusServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*StatusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStatus", Handler: getStatusHandler},
		{MethodName: "GetHistory", Handler: getHistoryHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterStatusServer registers srv on s
func RegisterStatusServer(s grpc.ServiceRegistrar, srv StatusServer) {
	s.RegisterService(&StatusServiceDesc, srv)
}

func getStatusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).GetStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStatusMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServer).GetStatus(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StatusServer).GetHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getHistoryMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StatusServer).GetHistory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// StatusClient calls backlight.v1.Status
type StatusClient struct {
	cc grpc.ClientConnInterface
}

// NewStatusClient creates a client on an existing connection
func NewStatusClient(cc grpc.ClientConnInterface) *StatusClient {
	return &StatusClient{cc: cc}
}

// GetStatus calls backlight.v1.Status/GetStatus
func (c *StatusClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getStatusMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetHistory calls backlight.v1.Status/GetHistory for ramps started in [start, end)
func (c *StatusClient) GetHistory(ctx context.Context, start, end time.Time, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{
		startTimeField: structpb.NewNumberValue(float64(start.Unix())),
		endTimeField:   structpb.NewNumberValue(float64(end.Unix())),
	}}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getHistoryMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
