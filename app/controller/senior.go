package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/vibast-solutions/ms-go-mentor-auth/app/dto"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/service"
	"github.com/vibast-solutions/ms-go-mentor-auth/app/types"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type seniorService interface {
	RegisterSenior(ctx context.Context, req *types.RegisterSeniorRequest) (*dto.RegisterResult, error)
	RequestVerificationByEmail(ctx context.Context, email string) error
	ConfirmVerification(ctx context.Context, seniorID uint64, code string) error
}

type SeniorController struct {
	seniorService seniorService
}

func NewSeniorController(seniorService seniorService) *SeniorController {
	return &SeniorController{seniorService: seniorService}
}

func (c *SeniorController) Register(ctx echo.Context) error {
	req, err := types.NewRegisterSeniorRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind senior registration request")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Senior registration validation failed")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	logger := logrus.WithField("email", req.Email)
	logger.Info("Senior registration request received")
	result, err := c.seniorService.RegisterSenior(ctx.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			logger.Info("Senior registration failed: user already exists")
			return ctx.JSON(http.StatusConflict, types.ErrorResponse{Error: "user already exists"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			logger.Info("Senior registration failed: weak password")
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
		}
		logger.WithError(err).Error("Senior registration failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	logger.WithField("senior_id", result.Senior.ID).Info("Senior registration succeeded")
	return ctx.JSON(http.StatusCreated, types.RegisterSeniorResponse{
		UserID:  result.Senior.ID,
		Email:   result.Senior.Email,
		Message: "registration successful, a verification code was sent to your email",
	})
}

func (c *SeniorController) RequestVerification(ctx echo.Context) error {
	req, err := types.NewRequestVerificationRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind verification request")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Verification request validation failed")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	logger := logrus.WithField("email", req.Email)
	logger.Info("Verification code request received")
	// Unknown and already verified addresses get the same answer as a successful resend.
	resent := types.MessageResponse{Message: "if the address belongs to an unverified account, a new code was sent"}
	if err = c.seniorService.RequestVerificationByEmail(ctx.Request().Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Info("Verification code request ignored: user not found")
			return ctx.JSON(http.StatusOK, resent)
		}
		if errors.Is(err, service.ErrAlreadyVerified) {
			logger.Info("Verification code request ignored: already verified")
			return ctx.JSON(http.StatusOK, resent)
		}
		logger.WithError(err).Error("Verification code request failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	logger.Info("Verification code issued")
	return ctx.JSON(http.StatusOK, resent)
}

func (c *SeniorController) ConfirmVerification(ctx echo.Context) error {
	req, err := types.NewConfirmVerificationRequestFromContext(ctx)
	if err != nil {
		logrus.WithError(err).Debug("Failed to bind verification confirmation")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
	}

	if err = req.Validate(); err != nil {
		logrus.Debug("Verification confirmation validation failed")
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
	}

	logger := logrus.WithField("senior_id", req.SeniorID)
	logger.Info("Verification confirmation received")
	if err = c.seniorService.ConfirmVerification(ctx.Request().Context(), req.SeniorID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrNoPendingVerification):
			logger.Info("Verification confirmation failed: nothing pending")
			return ctx.JSON(http.StatusNotFound, types.ErrorResponse{Error: "no pending verification"})
		case errors.Is(err, service.ErrCodeMismatch):
			logger.Warn("Verification confirmation failed: code mismatch")
			return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "verification code does not match"})
		case errors.Is(err, service.ErrVerificationExpired):
			logger.Info("Verification confirmation failed: code expired")
			return ctx.JSON(http.StatusGone, types.ErrorResponse{Error: "verification code has expired"})
		}
		logger.WithError(err).Error("Verification confirmation failed")
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
	}

	logger.Info("Email address verified")
	return ctx.JSON(http.StatusOK, types.MessageResponse{Message: "email address verified"})
}
