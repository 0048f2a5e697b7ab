package grpc

import (
	"context"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const SessionServiceName = "mentor.auth.v1.SessionService"

const (
	validateTokenMethod          = "/" + SessionServiceName + "/ValidateToken"
	rotateTokenMethod            = "/" + SessionServiceName + "/RotateToken"
	validateInternalAccessMethod = "/" + SessionServiceName + "/ValidateInternalAccess"
)

// SessionServiceServer lets sibling services check access tokens and rotate refresh tokens.
// Messages are protobuf well-known types so no generated code is needed.
type SessionServiceServer interface {
	ValidateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	RotateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ValidateInternalAccess(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterSessionServiceServer(s gogrpc.ServiceRegistrar, srv SessionServiceServer) {
	s.RegisterService(&SessionServiceDesc, srv)
}

var SessionServiceDesc = gogrpc.ServiceDesc{
	ServiceName: SessionServiceName,
	HandlerType: (*SessionServiceServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "ValidateToken", Handler: validateTokenHandler},
		{MethodName: "RotateToken", Handler: rotateTokenHandler},
		{MethodName: "ValidateInternalAccess", Handler: validateInternalAccessHandler},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "mentor/auth/v1/session.proto",
}

type sessionMethod func(SessionServiceServer, context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call sessionMethod) func(any, context.Context, func(any) error, gogrpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor gogrpc.UnaryServerInterceptor) (any, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SessionServiceServer), ctx, in)
		}
		info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SessionServiceServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	validateTokenHandler = unaryHandler(validateTokenMethod, func(s SessionServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
		return s.ValidateToken(ctx, in)
	})
	rotateTokenHandler = unaryHandler(rotateTokenMethod, func(s SessionServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
		return s.RotateToken(ctx, in)
	})
	validateInternalAccessHandler = unaryHandler(validateInternalAccessMethod, func(s SessionServiceServer, ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
		return s.ValidateInternalAccess(ctx, in)
	})
)

type SessionServiceClient struct {
	cc gogrpc.ClientConnInterface
}

func NewSessionServiceClient(cc gogrpc.ClientConnInterface) *SessionServiceClient {
	return &SessionServiceClient{cc: cc}
}

func (c *SessionServiceClient) ValidateToken(ctx context.Context, accessToken string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, validateTokenMethod, accessToken, opts...)
}

func (c *SessionServiceClient) RotateToken(ctx context.Context, refreshToken string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, rotateTokenMethod, refreshToken, opts...)
}

func (c *SessionServiceClient) ValidateInternalAccess(ctx context.Context, apiKey string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, validateInternalAccessMethod, apiKey, opts...)
}

func (c *SessionServiceClient) invoke(ctx context.Context, method, value string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, wrapperspb.String(value), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
