package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/otavioph/otpbank/internal/otp/entity"
	otpusecase "github.com/otavioph/otpbank/internal/otp/usecase"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
)

// TaskTypeOtpChallenger names the pending second-factor task returned by
// Login. Clients use it to route the user into the OTP entry flow.
const TaskTypeOtpChallenger = "OTP_CHALLENGER"

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	Message       string
	TaskType      string
	AccessToken   string
	ValidationURL string
}

// Login verifies credentials and opens an OTP challenge.
//
// Success does not authenticate the user yet: the returned token is
// OTP-scoped and only unlocks the second-factor validation endpoint. Any
// earlier session for the user is revoked before the new challenge starts.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	// Same normalization as Register, so mixed-case input finds the account.
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	email := in.Email
	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user account not found", "email", email)
		return nil, goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.bcrypt.Verify(user.Password, in.Password) {
		slog.WarnContext(ctx, "password user account not match", "user_id", user.ID)
		return nil, goerror.NewBusiness("invalid email or password", goerror.CodeUnauthorized)
	}

	challenge, err := s.otp.Create(ctx, otpusecase.CreateInput{
		Identifier: email,
		Purpose:    entity.PurposeLogin.String(),
	})
	if err != nil {
		return nil, err
	}

	if err := s.session.Invalidate(ctx, user.ID); err != nil {
		slog.ErrorContext(ctx, "failed to invalidate user sessions", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := challenge.ExpiresAt.Sub(s.clock.Now())
	if err := s.session.Set(ctx, user.ID, challenge.Hash, ttl); err != nil {
		slog.ErrorContext(ctx, "failed to write challenge session", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	otpToken, err := s.otpJWT.Generate(user.ID, user.Email, challenge.Hash)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp jwt token", "user_id", user.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	// Email delivery is fire-and-forget: a broken broker must not block the
	// login response.
	evt := OtpChallengeEvent{
		UserID:    user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Code:      challenge.Code,
		Hash:      challenge.Hash,
		ExpiresAt: challenge.ExpiresAt,
	}
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOtpChallenge(ctx, evt); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp challenge event", "user_id", evt.UserID, "error", err)
		}
		return nil
	})

	return &LoginOutput{
		Message:       "OTP sent to your email",
		TaskType:      TaskTypeOtpChallenger,
		AccessToken:   otpToken,
		ValidationURL: s.cfg.GetString("modules.auth.validation_url"),
	}, nil
}
