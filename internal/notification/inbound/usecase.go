package inbound

import (
	"context"

	"github.com/otavioph/otpbank/internal/notification/usecase"
)

type uc interface {
	ConsumeOtpChallenge(ctx context.Context, in usecase.ConsumeOtpChallengeInput) error
}
