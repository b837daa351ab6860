package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "valuation.v1.ValuationService"

const (
	methodEvaluate      = "/" + ServiceName + "/Evaluate"
	methodSubmit        = "/" + ServiceName + "/Submit"
	methodResubmit      = "/" + ServiceName + "/Resubmit"
	methodGetAssessment = "/" + ServiceName + "/GetAssessment"
	methodListVersions  = "/" + ServiceName + "/ListVersions"
)

// ValuationServer is the server API for the valuation service. Documents
// travel as google.protobuf.Struct; ids as google.protobuf.StringValue.
type ValuationServer interface {
	Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Submit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Resubmit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetAssessment(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	ListVersions(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
}

// ServiceDesc describes ValuationServer for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValuationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: unaryHandler(methodEvaluate, ValuationServer.Evaluate)},
		{MethodName: "Submit", Handler: unaryHandler(methodSubmit, ValuationServer.Submit)},
		{MethodName: "Resubmit", Handler: unaryHandler(methodResubmit, ValuationServer.Resubmit)},
		{MethodName: "GetAssessment", Handler: unaryHandler(methodGetAssessment, ValuationServer.GetAssessment)},
		{MethodName: "ListVersions", Handler: unaryHandler(methodListVersions, ValuationServer.ListVersions)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "valuation/v1/valuation.proto",
}

// RegisterValuationServer registers srv on s.
func RegisterValuationServer(s grpc.ServiceRegistrar, srv ValuationServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unaryHandler[Req any, PReq interface {
	*Req
	proto.Message
}](fullMethod string, call func(ValuationServer, context.Context, PReq) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ValuationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ValuationServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ValuationClient is the client API for the valuation service.
type ValuationClient struct {
	cc grpc.ClientConnInterface
}

func NewValuationClient(cc grpc.ClientConnInterface) *ValuationClient {
	return &ValuationClient{cc: cc}
}

func (c *ValuationClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, methodEvaluate, in, opts)
}

func (c *ValuationClient) Submit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, methodSubmit, in, opts)
}

func (c *ValuationClient) Resubmit(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, methodResubmit, in, opts)
}

func (c *ValuationClient) GetAssessment(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, methodGetAssessment, in, opts)
}

func (c *ValuationClient) ListVersions(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, methodListVersions, in, opts)
}

func invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, in proto.Message, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
