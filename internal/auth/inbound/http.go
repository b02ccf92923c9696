package inbound

import (
	"context"

	"github.com/otavioph/otpbank/internal/auth/usecase"
	"github.com/otavioph/otpbank/internal/pkg/router"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	ValidateOTP(ctx context.Context, in usecase.ValidateOTPInput) (*usecase.ValidateOTPOutput, error)
	Register(ctx context.Context, in usecase.RegisterInput) error
	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/validate-otp", end.ValidateOTP)
	r.GET("/api/v1/auth/profile", end.Profile)
}
