package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/otavioph/otpbank/internal/otp/entity"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
)

type ValidateInput struct {
	Hash string `validate:"required"`
	Code string `validate:"required,numeric"`
}

type ValidateOutput struct {
	Identifier string
	Purpose    entity.Purpose
}

// Validate consumes an OTP.
//
// Failure checks run in a fixed order: unknown hash, already used, expired,
// attempt budget exhausted, wrong code. Expiry is checked before the attempt
// budget so an expired record always reports expiry regardless of its
// attempt count. Every failure surfaces the same unauthorized status so a
// prober cannot distinguish which condition fired.
func (s *Usecase) Validate(ctx context.Context, in ValidateInput) (*ValidateOutput, error) {
	ctx, span := s.startSpan(ctx, "Validate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	record, err := s.repoDB.GetOtpByHash(ctx, in.Hash)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp not found", "hash", in.Hash)
		s.countOutcome(ctx, "not_found")
		return nil, goerror.NewBusiness("invalid OTP", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp by hash", "hash", in.Hash, "error", err)
		return nil, goerror.NewServer(err)
	}

	if record.Status != entity.StatusPending {
		slog.WarnContext(ctx, "otp already settled", "hash", in.Hash, "status", record.Status.String())
		s.countOutcome(ctx, "used")
		return nil, goerror.NewBusiness("OTP has already been used", goerror.CodeUnauthorized)
	}

	if record.Expired(s.clock.Now()) {
		if err := s.repoDB.UpdateOtpStatus(ctx, record.ID, entity.StatusExpired); err != nil {
			slog.ErrorContext(ctx, "failed to repo mark otp expired", "hash", in.Hash, "error", err)
			return nil, goerror.NewServer(err)
		}
		slog.WarnContext(ctx, "otp expired", "hash", in.Hash)
		s.countOutcome(ctx, "expired")
		return nil, goerror.NewBusiness("OTP has expired", goerror.CodeUnauthorized)
	}

	if record.Attempts >= s.maxAttempts() {
		if err := s.repoDB.UpdateOtpStatus(ctx, record.ID, entity.StatusFailed); err != nil {
			slog.ErrorContext(ctx, "failed to repo mark otp failed", "hash", in.Hash, "error", err)
			return nil, goerror.NewServer(err)
		}
		slog.WarnContext(ctx, "otp attempt budget exhausted", "hash", in.Hash, "attempts", record.Attempts)
		s.countOutcome(ctx, "max_attempts")
		return nil, goerror.NewBusiness("maximum OTP attempts exceeded", goerror.CodeUnauthorized)
	}

	if record.Code != in.Code {
		if err := s.repoDB.IncrementOtpAttempts(ctx, record.ID); err != nil {
			slog.ErrorContext(ctx, "failed to repo increment otp attempts", "hash", in.Hash, "error", err)
			return nil, goerror.NewServer(err)
		}
		slog.WarnContext(ctx, "otp code mismatch", "hash", in.Hash, "attempts", record.Attempts+1)
		s.countOutcome(ctx, "wrong_code")
		return nil, goerror.NewBusiness("invalid OTP code", goerror.CodeUnauthorized)
	}

	if err := s.repoDB.UpdateOtpStatus(ctx, record.ID, entity.StatusValidated); err != nil {
		slog.ErrorContext(ctx, "failed to repo mark otp validated", "hash", in.Hash, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.countOutcome(ctx, "validated")

	return &ValidateOutput{
		Identifier: record.Identifier,
		Purpose:    record.Purpose,
	}, nil
}
