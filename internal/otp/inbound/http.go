package inbound

import (
	"context"

	"github.com/otavioph/otpbank/internal/otp/usecase"
	"github.com/otavioph/otpbank/internal/pkg/router"
)

type uc interface {
	Create(ctx context.Context, in usecase.CreateInput) (*usecase.CreateOutput, error)
	Validate(ctx context.Context, in usecase.ValidateInput) (*usecase.ValidateOutput, error)
	Status(ctx context.Context, in usecase.StatusInput) (*usecase.StatusOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/otp", end.Create)
	r.POST("/api/v1/otp/validate", end.Validate)
	r.GET("/api/v1/otp/:hash/status", end.Status)
}
