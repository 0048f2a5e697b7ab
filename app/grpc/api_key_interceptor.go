package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type callerServiceKey struct{}

// CallerService returns the name of the service whose api key authorized the call.
func CallerService(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(callerServiceKey{}).(string)
	return name, ok
}

func APIKeyUnaryInterceptor(authService service.InternalAuthService) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (any, error) {
		serviceName, err := validateIncomingAPIKey(ctx, authService)
		if err != nil {
			logrus.WithField("method", info.FullMethod).Debug("Rejected grpc call without valid api key")
			return nil, err
		}

		return handler(context.WithValue(ctx, callerServiceKey{}, serviceName), req)
	}
}

func APIKeyStreamInterceptor(authService service.InternalAuthService) gogrpc.StreamServerInterceptor {
	return func(srv any, ss gogrpc.ServerStream, _ *gogrpc.StreamServerInfo, handler gogrpc.StreamHandler) error {
		serviceName, err := validateIncomingAPIKey(ss.Context(), authService)
		if err != nil {
			return err
		}

		ctx := context.WithValue(ss.Context(), callerServiceKey{}, serviceName)
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

func validateIncomingAPIKey(ctx context.Context, authService service.InternalAuthService) (string, error) {
	apiKey := incomingAPIKeyFromMetadata(ctx)
	if apiKey == "" {
		return "", status.Error(codes.Unauthenticated, "unauthorized")
	}

	serviceName, err := authService.ValidateInternalAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInternalAPIKey) {
			return "", status.Error(codes.Unauthenticated, "unauthorized")
		}
		logrus.WithError(err).Error("API key validation failed (grpc)")
		return "", status.Error(codes.Internal, "internal server error")
	}

	return serviceName, nil
}

func incomingAPIKeyFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("x-api-key")
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

type wrappedServerStream struct {
	gogrpc.ServerStream
	ctx context.Context
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
