package grpc_test

import (
	"context"
	"errors"
	"testing"

	authgrpc "github.com/vibast-solutions/ms-go-mentor-auth/app/grpc"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type failingInternalAuth struct{}

func (failingInternalAuth) ValidateInternalAPIKey(context.Context, string) (string, error) {
	return "", errors.New("key store unavailable")
}

func incomingWithKey(key string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-api-key", key))
}

func TestAPIKeyUnaryInterceptor_MissingKey(t *testing.T) {
	interceptor := authgrpc.APIKeyUnaryInterceptor(service.NewInternalAuthService([]string{testAPIKey}))
	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAPIKeyUnaryInterceptor_InvalidKey(t *testing.T) {
	interceptor := authgrpc.APIKeyUnaryInterceptor(service.NewInternalAuthService([]string{testAPIKey}))
	called := false
	_, err := interceptor(incomingWithKey("nope"), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		called = true
		return "ok", nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	if called {
		t.Fatalf("handler must not run with an invalid key")
	}
}

func TestAPIKeyUnaryInterceptor_ValidKeySetsCaller(t *testing.T) {
	interceptor := authgrpc.APIKeyUnaryInterceptor(service.NewInternalAuthService([]string{"mentoring=" + testAPIKey}))

	var caller string
	res, err := interceptor(incomingWithKey(testAPIKey), "req", &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		caller, _ = authgrpc.CallerService(ctx)
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != "ok" || caller != "mentoring" {
		t.Fatalf("unexpected result %v caller %q", res, caller)
	}
}

func TestAPIKeyUnaryInterceptor_InternalError(t *testing.T) {
	interceptor := authgrpc.APIKeyUnaryInterceptor(failingInternalAuth{})
	_, err := interceptor(incomingWithKey(testAPIKey), nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	if status.Code(err) != codes.Internal {
		t.Fatalf("expected internal, got %v", err)
	}
}

type fakeServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeServerStream) Context() context.Context {
	return f.ctx
}

func TestAPIKeyStreamInterceptor(t *testing.T) {
	interceptor := authgrpc.APIKeyStreamInterceptor(service.NewInternalAuthService([]string{testAPIKey}))

	var caller string
	err := interceptor(nil, &fakeServerStream{ctx: incomingWithKey(testAPIKey)}, &grpc.StreamServerInfo{}, func(_ any, ss grpc.ServerStream) error {
		caller, _ = authgrpc.CallerService(ss.Context())
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if caller != "internal" {
		t.Fatalf("expected default service name, got %q", caller)
	}

	err = interceptor(nil, &fakeServerStream{ctx: context.Background()}, &grpc.StreamServerInfo{}, func(any, grpc.ServerStream) error {
		return nil
	})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
