package usecase

import (
	"context"
	"log/slog"
	"strconv"

	otpusecase "github.com/otavioph/otpbank/internal/otp/usecase"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
	"github.com/otavioph/otpbank/internal/pkg/jwt"
)

type ValidateOTPInput struct {
	OtpCode string `validate:"required,numeric"`
}

type ValidateOTPOutput struct {
	AccessToken string
}

// ValidateOTP completes a pending login challenge.
//
// The caller holds an OTP-scoped token, so subject, email and hash come from
// trusted claims. The session-cache entry is re-checked first: a token whose
// session was revoked by a later login is rejected even though its signature
// is still valid. OTP engine failures propagate verbatim.
func (s *Usecase) ValidateOTP(ctx context.Context, in ValidateOTPInput) (*ValidateOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "ValidateOTP")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cached, err := s.session.Get(ctx, clm.UserID, clm.Hash)
	if err != nil || cached != strconv.FormatInt(clm.UserID, 10) {
		slog.WarnContext(ctx, "challenge session missing or revoked", "user_id", clm.UserID, "hash", clm.Hash)
		return nil, goerror.NewBusiness("invalid credentials", goerror.CodeUnauthorized)
	}

	if _, err := s.otp.Validate(ctx, otpusecase.ValidateInput{
		Hash: clm.Hash,
		Code: in.OtpCode,
	}); err != nil {
		return nil, err
	}

	if err := s.session.Delete(ctx, clm.UserID, clm.Hash); err != nil {
		slog.ErrorContext(ctx, "failed to delete challenge session", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	accessToken, err := s.accessJWT.Generate(clm.UserID, clm.UserEmail, clm.Hash)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access jwt token", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	accessTTL, err := config.ParseTTL(s.cfg.GetString("modules.auth.access_ttl"))
	if err != nil {
		slog.ErrorContext(ctx, "invalid access token ttl config", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.session.Set(ctx, clm.UserID, clm.Hash, accessTTL); err != nil {
		slog.ErrorContext(ctx, "failed to write access session", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ValidateOTPOutput{AccessToken: accessToken}, nil
}
