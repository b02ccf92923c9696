package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/otavioph/otpbank/internal/otp/entity"
	"github.com/otavioph/otpbank/internal/pkg/config"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	createOtp        func(ctx context.Context, in entity.Otp) (int64, error)
	getByHash        func(ctx context.Context, hash string) (*entity.Otp, error)
	getActive        func(ctx context.Context, identifier string) (*entity.Otp, error)
	updateStatus     func(ctx context.Context, id int64, status entity.Status) error
	incrementAttempt func(ctx context.Context, id int64) error
	expireOld        func(ctx context.Context, identifier string, purpose entity.Purpose) error
	deleteExpired    func(ctx context.Context, olderThan time.Time) (int64, error)
}

func (f *fakeRepo) CreateOtp(ctx context.Context, in entity.Otp) (int64, error) {
	return f.createOtp(ctx, in)
}

func (f *fakeRepo) GetOtpByHash(ctx context.Context, hash string) (*entity.Otp, error) {
	return f.getByHash(ctx, hash)
}

func (f *fakeRepo) GetActiveOtpByIdentifier(ctx context.Context, identifier string) (*entity.Otp, error) {
	return f.getActive(ctx, identifier)
}

func (f *fakeRepo) UpdateOtpStatus(ctx context.Context, id int64, status entity.Status) error {
	return f.updateStatus(ctx, id, status)
}

func (f *fakeRepo) IncrementOtpAttempts(ctx context.Context, id int64) error {
	return f.incrementAttempt(ctx, id)
}

func (f *fakeRepo) ExpireOldOtps(ctx context.Context, identifier string, purpose entity.Purpose) error {
	return f.expireOld(ctx, identifier, purpose)
}

func (f *fakeRepo) DeleteExpiredOtps(ctx context.Context, olderThan time.Time) (int64, error) {
	return f.deleteExpired(ctx, olderThan)
}

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type fakeStringID struct{ id string }

func (f fakeStringID) Generate() string { return f.id }

type fakeCode struct{ code string }

func (f fakeCode) Generate(int) (string, error) { return f.code, nil }

const testConfigYAML = `
modules:
  otp:
    code_length: 6
    ttl_minutes: 5
    max_attempts: 3
    retention_days: 30
`

func newTestUsecase(t *testing.T, repo *fakeRepo, now time.Time) *Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return New(Dependency{
		RepoDB:     repo,
		Validator:  v,
		Config:     cfg,
		Code:       fakeCode{code: "482913"},
		OID:        fakeStringID{id: "hash-1"},
		Clock:      fakeClock{now: now},
		Instrument: instrument.NewNoop(),
	})
}

func requireBusinessCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, code, gerr.Code())
}

func TestChallengeTTL(t *testing.T) {
	tests := []struct {
		name    string
		minutes string
		want    time.Duration
	}{
		{name: "ConfiguredValue", minutes: "5", want: 5 * time.Minute},
		{name: "ClampedToFloor", minutes: "0", want: time.Minute},
		{name: "ClampedToCeiling", minutes: "20", want: 10 * time.Minute},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			yaml := "modules:\n  otp:\n    ttl_minutes: " + tc.minutes + "\n"
			cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
			require.NoError(t, err)

			assert.Equal(t, tc.want, ChallengeTTL(cfg))
		})
	}
}

func TestCreate(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepo{
			getActive: func(context.Context, string) (*entity.Otp, error) {
				return nil, goerror.ErrNotFound
			},
			expireOld: func(context.Context, string, entity.Purpose) error { return nil },
			createOtp: func(_ context.Context, in entity.Otp) (int64, error) {
				assert.Equal(t, entity.StatusPending, in.Status)
				assert.Equal(t, int32(0), in.Attempts)
				return 1, nil
			},
		}

		out, err := newTestUsecase(t, repo, now).Create(ctx, CreateInput{Identifier: "user@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "hash-1", out.Hash)
		assert.Equal(t, "482913", out.Code)
		assert.Equal(t, "user@example.com", out.Identifier)
		assert.Equal(t, entity.PurposeGeneral, out.Purpose)
		assert.Equal(t, now.Add(5*time.Minute), out.ExpiresAt)
	})

	t.Run("ActiveOtpConflict", func(t *testing.T) {
		repo := &fakeRepo{
			getActive: func(context.Context, string) (*entity.Otp, error) {
				return &entity.Otp{
					Status:    entity.StatusPending,
					ExpiresAt: now.Add(time.Minute),
				}, nil
			},
		}

		_, err := newTestUsecase(t, repo, now).Create(ctx, CreateInput{Identifier: "user@example.com"})
		requireBusinessCode(t, err, goerror.CodeConflict)
	})

	t.Run("ExpiredRecordDoesNotBlock", func(t *testing.T) {
		repo := &fakeRepo{
			getActive: func(context.Context, string) (*entity.Otp, error) {
				return &entity.Otp{
					Status:    entity.StatusPending,
					ExpiresAt: now.Add(-time.Minute),
				}, nil
			},
			expireOld: func(context.Context, string, entity.Purpose) error { return nil },
			createOtp: func(context.Context, entity.Otp) (int64, error) { return 1, nil },
		}

		_, err := newTestUsecase(t, repo, now).Create(ctx, CreateInput{Identifier: "user@example.com"})
		require.NoError(t, err)
	})

	t.Run("InsertConflict", func(t *testing.T) {
		repo := &fakeRepo{
			getActive: func(context.Context, string) (*entity.Otp, error) {
				return nil, goerror.ErrNotFound
			},
			expireOld: func(context.Context, string, entity.Purpose) error { return nil },
			createOtp: func(context.Context, entity.Otp) (int64, error) {
				return 0, goerror.ErrConflict
			},
		}

		_, err := newTestUsecase(t, repo, now).Create(ctx, CreateInput{Identifier: "user@example.com"})
		requireBusinessCode(t, err, goerror.CodeConflict)
	})

	t.Run("InvalidPurpose", func(t *testing.T) {
		_, err := newTestUsecase(t, &fakeRepo{}, now).Create(ctx, CreateInput{
			Identifier: "user@example.com",
			Purpose:    "bogus",
		})
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	pending := func() *entity.Otp {
		return &entity.Otp{
			ID:         7,
			Hash:       "hash-1",
			Code:       "482913",
			Identifier: "user@example.com",
			Purpose:    entity.PurposeLogin,
			Status:     entity.StatusPending,
			ExpiresAt:  now.Add(time.Minute),
		}
	}

	t.Run("NotFound", func(t *testing.T) {
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) {
				return nil, goerror.ErrNotFound
			},
		}

		_, err := newTestUsecase(t, repo, now).Validate(ctx, ValidateInput{Hash: "nope", Code: "482913"})
		requireBusinessCode(t, err, goerror.CodeUnauthorized)
		assert.Contains(t, err.Error(), "invalid OTP")
	})

	t.Run("AlreadyUsed", func(t *testing.T) {
		record := pending()
		record.Status = entity.StatusValidated
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) { return record, nil },
		}

		_, err := newTestUsecase(t, repo, now).Validate(ctx, ValidateInput{Hash: "hash-1", Code: "482913"})
		requireBusinessCode(t, err, goerror.CodeUnauthorized)
		assert.Contains(t, err.Error(), "already been used")
	})

	t.Run("ExpiredMarksExpired", func(t *testing.T) {
		record := pending()
		record.ExpiresAt = now.Add(-time.Second)
		var marked entity.Status
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) { return record, nil },
			updateStatus: func(_ context.Context, _ int64, status entity.Status) error {
				marked = status
				return nil
			},
		}

		_, err := newTestUsecase(t, repo, now).Validate(ctx, ValidateInput{Hash: "hash-1", Code: "482913"})
		requireBusinessCode(t, err, goerror.CodeUnauthorized)
		assert.Contains(t, err.Error(), "expired")
		assert.Equal(t, entity.StatusExpired, marked)
	})

	t.Run("ExpiryWinsOverAttemptBudget", func(t *testing.T) {
		record := pending()
		record.ExpiresAt = now.Add(-time.Second)
		record.Attempts = 9
		var marked entity.Status
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) { return record, nil },
			updateStatus: func(_ context.Context, _ int64, status entity.Status) error {
				marked = status
				return nil
			},
		}

		_, err := newTestUsecase(t, repo, now).Validate(ctx, ValidateInput{Hash: "hash-1", Code: "482913"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
		assert.Equal(t, entity.StatusExpired, marked)
	})

	t.Run("AttemptBudgetExhaustedMarksFailed", func(t *testing.T) {
		record := pending()
		record.Attempts = 3
		var marked entity.Status
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) { return record, nil },
			updateStatus: func(_ context.Context, _ int64, status entity.Status) error {
				marked = status
				return nil
			},
		}

		// Even the correct code is rejected once the budget is gone.
		_, err := newTestUsecase(t, repo, now).Validate(ctx, ValidateInput{Hash: "hash-1", Code: "482913"})
		requireBusinessCode(t, err, goerror.CodeUnauthorized)
		assert.Contains(t, err.Error(), "maximum OTP attempts")
		assert.Equal(t, entity.StatusFailed, marked)
	})

	t.Run("WrongCodeIncrementsAttempts", func(t *testing.T) {
		record := pending()
		incremented := false
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) { return record, nil },
			incrementAttempt: func(context.Context, int64) error {
				incremented = true
				return nil
			},
		}

		_, err := newTestUsecase(t, repo, now).Validate(ctx, ValidateInput{Hash: "hash-1", Code: "000000"})
		requireBusinessCode(t, err, goerror.CodeUnauthorized)
		assert.Contains(t, err.Error(), "invalid OTP code")
		assert.True(t, incremented)
	})

	t.Run("SuccessMarksValidated", func(t *testing.T) {
		record := pending()
		var marked entity.Status
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) { return record, nil },
			updateStatus: func(_ context.Context, _ int64, status entity.Status) error {
				marked = status
				return nil
			},
		}

		out, err := newTestUsecase(t, repo, now).Validate(ctx, ValidateInput{Hash: "hash-1", Code: "482913"})
		require.NoError(t, err)
		assert.Equal(t, entity.StatusValidated, marked)
		assert.Equal(t, "user@example.com", out.Identifier)
		assert.Equal(t, entity.PurposeLogin, out.Purpose)
	})
}

func TestStatus(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	t.Run("NotFoundIsNotAnError", func(t *testing.T) {
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) {
				return nil, goerror.ErrNotFound
			},
		}

		out, err := newTestUsecase(t, repo, now).Status(ctx, StatusInput{Hash: "nope"})
		require.NoError(t, err)
		assert.False(t, out.Found)
	})

	t.Run("Found", func(t *testing.T) {
		expires := now.Add(time.Minute)
		repo := &fakeRepo{
			getByHash: func(context.Context, string) (*entity.Otp, error) {
				return &entity.Otp{Status: entity.StatusPending, ExpiresAt: expires}, nil
			},
		}

		out, err := newTestUsecase(t, repo, now).Status(ctx, StatusInput{Hash: "hash-1"})
		require.NoError(t, err)
		assert.True(t, out.Found)
		assert.Equal(t, entity.StatusPending, out.Status)
		assert.Equal(t, expires, out.ExpiresAt)
	})
}

func TestSweep(t *testing.T) {
	now := time.Now()
	ctx := context.Background()

	t.Run("UsesRetentionCutoff", func(t *testing.T) {
		var gotCutoff time.Time
		repo := &fakeRepo{
			deleteExpired: func(_ context.Context, olderThan time.Time) (int64, error) {
				gotCutoff = olderThan
				return 3, nil
			},
		}

		require.NoError(t, newTestUsecase(t, repo, now).Sweep(ctx))
		assert.Equal(t, now.AddDate(0, 0, -30), gotCutoff)
	})

	t.Run("PropagatesRepoError", func(t *testing.T) {
		repo := &fakeRepo{
			deleteExpired: func(context.Context, time.Time) (int64, error) {
				return 0, errors.New("boom")
			},
		}

		require.Error(t, newTestUsecase(t, repo, now).Sweep(ctx))
	})
}
