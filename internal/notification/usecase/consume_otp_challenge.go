package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/otavioph/otpbank/internal/pkg/idempotency"
	"github.com/otavioph/otpbank/internal/pkg/mail"
)

const otpChallengeEmailTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Your one-time passcode</h2>
  <p>Hi {{.full_name}},</p>
  <p>Use the passcode below to finish signing in. It expires at {{.expires_at}}.</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.code}}</p>
  <p>If you did not try to sign in, you can ignore this email.</p>
  <p>{{.company_name}} &middot; {{.year}} &middot; {{.support_email}}</p>
</body>
</html>`

type ConsumeOtpChallengeInput struct {
	UserID    int64     `validate:"required,gt=0"`
	Email     string    `validate:"required,email"`
	FullName  string    `validate:"required"`
	Code      string    `validate:"required,numeric"`
	Hash      string    `validate:"required"`
	ExpiresAt time.Time `validate:"required"`
}

// ConsumeOtpChallenge delivers the passcode email for a login challenge.
//
// Broker redelivery is expected, so the send is deduplicated on the challenge
// hash: each OTP produces at most one email. Malformed payloads are dropped
// without error because redelivering them can never succeed.
func (s *Usecase) ConsumeOtpChallenge(ctx context.Context, in ConsumeOtpChallengeInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOtpChallenge")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "invalid otp challenge payload", "user_id", in.UserID, "error", err)
		return nil
	}

	stateTTL := in.ExpiresAt.Sub(s.clock.Now())
	if stateTTL <= 0 {
		slog.WarnContext(ctx, "otp challenge already expired, skipping email", "user_id", in.UserID, "hash", in.Hash)
		return nil
	}

	err := s.idempotency.Exec(ctx, "otp_challenge:"+in.Hash, func(ctx context.Context) error {
		return s.sendOtpChallengeEmail(ctx, in)
	}, idempotency.WithStateTTL(stateTTL))

	if errors.Is(err, idempotency.ErrAlreadyCompleted) || errors.Is(err, idempotency.ErrAlreadyInProgress) {
		slog.InfoContext(ctx, "otp challenge email already handled", "user_id", in.UserID, "hash", in.Hash)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp challenge email", "user_id", in.UserID, "hash", in.Hash, "error", err)
		return err
	}

	return nil
}

func (s *Usecase) sendOtpChallengeEmail(ctx context.Context, in ConsumeOtpChallengeInput) error {
	data := s.baseEmailTemplateData()
	data["full_name"] = in.FullName
	data["code"] = in.Code
	data["expires_at"] = in.ExpiresAt.Format(time.RFC1123)

	body, err := s.renderTemplate("otp_challenge_email", otpChallengeEmailTemplate, data)
	if err != nil {
		return err
	}

	return s.repoMail.Send(ctx, mail.Message{
		To:       []string{in.Email},
		Subject:  "Your OTPBank sign-in passcode",
		HTMLBody: body,
	})
}
