package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/idempotency"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/mail"
	"github.com/otavioph/otpbank/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMail struct {
	sent []mail.Message
	err  error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

func newTestUsecase(t *testing.T, sender *fakeMail, now time.Time) *Usecase {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  notification:
    support_email: support@otpbank.com
`))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return NewNotification(Dependency{
		Config:      cfg,
		Clock:       fakeClock{now: now},
		Validator:   v,
		RepoMail:    sender,
		Idempotency: idempotency.New(client),
		Instrument:  instrument.NewNoop(),
	})
}

func TestConsumeOtpChallenge(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	input := func() ConsumeOtpChallengeInput {
		return ConsumeOtpChallengeInput{
			UserID:    42,
			Email:     "user@example.com",
			FullName:  "Test Person",
			Code:      "482913",
			Hash:      "challenge-hash",
			ExpiresAt: now.Add(5 * time.Minute),
		}
	}

	t.Run("SendsPasscodeEmail", func(t *testing.T) {
		sender := &fakeMail{}
		uc := newTestUsecase(t, sender, now)

		require.NoError(t, uc.ConsumeOtpChallenge(ctx, input()))

		require.Len(t, sender.sent, 1)
		msg := sender.sent[0]
		assert.Equal(t, []string{"user@example.com"}, msg.To)
		assert.Contains(t, msg.HTMLBody, "482913")
		assert.Contains(t, msg.HTMLBody, "Test Person")
	})

	t.Run("RedeliveryIsDeduplicated", func(t *testing.T) {
		sender := &fakeMail{}
		uc := newTestUsecase(t, sender, now)

		require.NoError(t, uc.ConsumeOtpChallenge(ctx, input()))
		require.NoError(t, uc.ConsumeOtpChallenge(ctx, input()))

		assert.Len(t, sender.sent, 1)
	})

	t.Run("ExpiredChallengeSkipped", func(t *testing.T) {
		sender := &fakeMail{}
		uc := newTestUsecase(t, sender, now)

		in := input()
		in.ExpiresAt = now.Add(-time.Minute)

		require.NoError(t, uc.ConsumeOtpChallenge(ctx, in))
		assert.Empty(t, sender.sent)
	})

	t.Run("MalformedPayloadDropped", func(t *testing.T) {
		sender := &fakeMail{}
		uc := newTestUsecase(t, sender, now)

		in := input()
		in.Email = "not-an-email"

		require.NoError(t, uc.ConsumeOtpChallenge(ctx, in))
		assert.Empty(t, sender.sent)
	})

	t.Run("SendFailurePropagates", func(t *testing.T) {
		sender := &fakeMail{err: errors.New("smtp down")}
		uc := newTestUsecase(t, sender, now)

		require.Error(t, uc.ConsumeOtpChallenge(ctx, input()))
	})
}
