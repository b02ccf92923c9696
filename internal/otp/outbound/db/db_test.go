package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/otavioph/otpbank/internal/otp/entity"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schemaOtps = `
CREATE TABLE otps (
	id           BIGINT PRIMARY KEY,
	hash         TEXT NOT NULL UNIQUE,
	code         TEXT NOT NULL,
	identifier   TEXT NOT NULL,
	purpose      TEXT NOT NULL,
	status       SMALLINT NOT NULL,
	attempts     INT NOT NULL DEFAULT 0,
	expires_at   TIMESTAMPTZ NOT NULL,
	validated_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)
`

type seqID struct{ next int64 }

func (s *seqID) Generate() int64 {
	s.next++
	return s.next
}

func newTestDB(t *testing.T) *DB {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION=1 to run postgres integration tests")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("otpbank"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, schemaOtps)
	require.NoError(t, err)

	return NewDB(pool, &seqID{}, instrument.NewNoop())
}

func TestOtpStore(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	record := entity.Otp{
		Hash:       "hash-1",
		Code:       "482913",
		Identifier: "user@example.com",
		Purpose:    entity.PurposeLogin,
		Status:     entity.StatusPending,
		ExpiresAt:  time.Now().Add(5 * time.Minute),
	}

	id, err := store.CreateOtp(ctx, record)
	require.NoError(t, err)
	require.NotZero(t, id)

	t.Run("DuplicateHashConflicts", func(t *testing.T) {
		_, err := store.CreateOtp(ctx, record)
		assert.True(t, errors.Is(err, goerror.ErrConflict))
	})

	t.Run("GetByHash", func(t *testing.T) {
		got, err := store.GetOtpByHash(ctx, "hash-1")
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "482913", got.Code)
		assert.Equal(t, entity.PurposeLogin, got.Purpose)
		assert.Equal(t, entity.StatusPending, got.Status)
		assert.Nil(t, got.ValidatedAt)
	})

	t.Run("GetByHashNotFound", func(t *testing.T) {
		_, err := store.GetOtpByHash(ctx, "missing")
		assert.True(t, errors.Is(err, goerror.ErrNotFound))
	})

	t.Run("GetActiveByIdentifier", func(t *testing.T) {
		got, err := store.GetActiveOtpByIdentifier(ctx, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hash-1", got.Hash)
	})

	t.Run("IncrementAttempts", func(t *testing.T) {
		require.NoError(t, store.IncrementOtpAttempts(ctx, id))

		got, err := store.GetOtpByHash(ctx, "hash-1")
		require.NoError(t, err)
		assert.Equal(t, int32(1), got.Attempts)
	})

	t.Run("ValidatedStatusSetsValidatedAt", func(t *testing.T) {
		require.NoError(t, store.UpdateOtpStatus(ctx, id, entity.StatusValidated))

		got, err := store.GetOtpByHash(ctx, "hash-1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusValidated, got.Status)
		require.NotNil(t, got.ValidatedAt)
	})

	t.Run("ValidatedRecordNoLongerActive", func(t *testing.T) {
		_, err := store.GetActiveOtpByIdentifier(ctx, "user@example.com")
		assert.True(t, errors.Is(err, goerror.ErrNotFound))
	})

	t.Run("ExpireOldOtps", func(t *testing.T) {
		stale := record
		stale.Hash = "hash-2"
		staleID, err := store.CreateOtp(ctx, stale)
		require.NoError(t, err)

		require.NoError(t, store.ExpireOldOtps(ctx, "user@example.com", entity.PurposeLogin))

		got, err := store.GetOtpByHash(ctx, "hash-2")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusExpired, got.Status)
		assert.Equal(t, staleID, got.ID)
	})

	t.Run("DeleteExpiredOtps", func(t *testing.T) {
		deleted, err := store.DeleteExpiredOtps(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = store.GetOtpByHash(ctx, "hash-2")
		assert.True(t, errors.Is(err, goerror.ErrNotFound))
	})
}
