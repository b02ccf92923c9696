package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/otavioph/otpbank/internal/otp/entity"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
)

type CreateInput struct {
	Identifier string `validate:"required,max=255"`
	Purpose    string `validate:"omitempty,oneof=general verification login reset registration"`
}

type CreateOutput struct {
	Hash       string
	Code       string
	Identifier string
	Purpose    entity.Purpose
	ExpiresAt  time.Time
}

// Create issues a new OTP for an identifier.
//
// At most one active OTP may exist per identifier at a time: an unexpired,
// not-yet-validated record blocks creation. Stale pending records for the
// same identifier and purpose are bulk-expired before the new one is written.
func (s *Usecase) Create(ctx context.Context, in CreateInput) (*CreateOutput, error) {
	ctx, span := s.startSpan(ctx, "Create")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	identifier := strings.TrimSpace(in.Identifier)
	purpose := entity.PurposeFromString(in.Purpose)
	now := s.clock.Now()

	active, err := s.repoDB.GetActiveOtpByIdentifier(ctx, identifier)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get active otp", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}
	if active != nil && active.Active(now) {
		slog.WarnContext(ctx, "active otp already exists", "identifier", identifier, "hash", active.Hash)
		return nil, goerror.NewBusiness("an active OTP already exists for this identifier", goerror.CodeConflict)
	}

	if err := s.repoDB.ExpireOldOtps(ctx, identifier, purpose); err != nil {
		slog.ErrorContext(ctx, "failed to repo expire old otps", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	code, err := s.code.Generate(s.cfg.GetInt("modules.otp.code_length"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	record := entity.Otp{
		Hash:       s.oid.Generate(),
		Code:       code,
		Identifier: identifier,
		Purpose:    purpose,
		Status:     entity.StatusPending,
		Attempts:   0,
		ExpiresAt:  now.Add(s.ttl()),
	}

	if _, err := s.repoDB.CreateOtp(ctx, record); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "otp insert conflicted", "identifier", identifier)
			return nil, goerror.NewBusiness("an active OTP already exists for this identifier", goerror.CodeConflict)
		}
		slog.ErrorContext(ctx, "failed to repo create otp", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &CreateOutput{
		Hash:       record.Hash,
		Code:       record.Code,
		Identifier: record.Identifier,
		Purpose:    record.Purpose,
		ExpiresAt:  record.ExpiresAt,
	}, nil
}
