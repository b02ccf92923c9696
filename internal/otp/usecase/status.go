package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/otavioph/otpbank/internal/otp/entity"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
)

type StatusInput struct {
	Hash string `validate:"required"`
}

type StatusOutput struct {
	Found     bool
	Status    entity.Status
	ExpiresAt time.Time
}

// Status reports the current state of an OTP by hash.
//
// Absence is not an error here: the caller gets a not-found sentinel instead,
// so polling a hash never produces a 4xx.
func (s *Usecase) Status(ctx context.Context, in StatusInput) (*StatusOutput, error) {
	ctx, span := s.startSpan(ctx, "Status")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	record, err := s.repoDB.GetOtpByHash(ctx, in.Hash)
	if errors.Is(err, goerror.ErrNotFound) {
		return &StatusOutput{Found: false}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp by hash", "hash", in.Hash, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &StatusOutput{
		Found:     true,
		Status:    record.Status,
		ExpiresAt: record.ExpiresAt,
	}, nil
}
