package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type sessionService interface {
	ValidateAccessToken(tokenString string) (*service.Claims, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenPair, error)
}

type SessionServer struct {
	sessions            sessionService
	internalAuthService service.InternalAuthService
}

func NewSessionServer(sessions sessionService, internalAuthService service.InternalAuthService) *SessionServer {
	return &SessionServer{
		sessions:            sessions,
		internalAuthService: internalAuthService,
	}
}

func (s *SessionServer) ValidateToken(_ context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	token := strings.TrimSpace(req.GetValue())
	if token == "" {
		logrus.Debug("Validate token validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, "access token is required")
	}

	invalid := &structpb.Struct{Fields: map[string]*structpb.Value{"valid": structpb.NewBoolValue(false)}}
	claims, err := s.sessions.ValidateAccessToken(token)
	if err != nil {
		logrus.WithError(err).Debug("Validate token failed (grpc)")
		return invalid, nil
	}
	accountID, err := claims.AccountID()
	if err != nil {
		logrus.WithError(err).Debug("Validate token failed: bad subject (grpc)")
		return invalid, nil
	}

	fields := map[string]any{
		"valid":      true,
		"account_id": accountID,
		"kind":       string(claims.Kind),
	}
	if claims.ExpiresAt != nil {
		fields["expires_at"] = claims.ExpiresAt.Time.Unix()
	}
	res, err := structpb.NewStruct(fields)
	if err != nil {
		logrus.WithError(err).Error("Validate token failed to encode response (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	logrus.WithField("account_id", accountID).Debug("Validate token succeeded (grpc)")
	return res, nil
}

func (s *SessionServer) RotateToken(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	token := strings.TrimSpace(req.GetValue())
	if token == "" {
		logrus.Debug("Rotate token validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, "refresh token is required")
	}

	logrus.Info("Rotate token request received (grpc)")
	pair, err := s.sessions.Refresh(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRevoked):
			logrus.Warn("Rotate token failed: token revoked (grpc)")
			return nil, status.Error(codes.Unauthenticated, "refresh token has been revoked")
		case errors.Is(err, service.ErrExpired):
			logrus.Info("Rotate token failed: token expired (grpc)")
			return nil, status.Error(codes.Unauthenticated, "refresh token has expired")
		case errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrMalformed):
			logrus.WithError(err).Warn("Rotate token failed: invalid token (grpc)")
			return nil, status.Error(codes.Unauthenticated, "invalid refresh token")
		case errors.Is(err, service.ErrSigningKeyUnavailable):
			logrus.Warn("Rotate token failed: running in verify-only mode (grpc)")
			return nil, status.Error(codes.FailedPrecondition, "token signing is not available")
		}
		logrus.WithError(err).Error("Rotate token failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	res, err := structpb.NewStruct(map[string]any{
		"access_token":       pair.AccessToken,
		"refresh_token":      pair.RefreshToken,
		"expires_in":         pair.AccessExpiresIn,
		"refresh_expires_in": pair.RefreshExpiresIn,
	})
	if err != nil {
		logrus.WithError(err).Error("Rotate token failed to encode response (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	logrus.Info("Rotate token succeeded (grpc)")
	return res, nil
}

// ValidateInternalAccess resolves another service's api key to the service name it was issued for.
func (s *SessionServer) ValidateInternalAccess(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	apiKey := strings.TrimSpace(req.GetValue())
	if apiKey == "" {
		logrus.Debug("Validate internal access validation failed (grpc)")
		return nil, status.Error(codes.InvalidArgument, "api key is required")
	}

	serviceName, err := s.internalAuthService.ValidateInternalAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInternalAPIKey) {
			logrus.Debug("Validate internal access failed: inspected api key not found (grpc)")
			return nil, status.Error(codes.NotFound, "api key not found")
		}
		logrus.WithError(err).Error("Validate internal access failed (grpc)")
		return nil, status.Error(codes.Internal, "internal server error")
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"service_name": structpb.NewStringValue(serviceName),
	}}, nil
}
