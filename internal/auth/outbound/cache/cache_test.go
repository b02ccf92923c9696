package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/otavioph/otpbank/internal/pkg/goerror"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewSession(client, instrument.NewNoop()), mr
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("SetWritesExpectedKey", func(t *testing.T) {
		s, mr := newTestSession(t)

		require.NoError(t, s.Set(ctx, 42, "abc123", time.Minute))

		val, err := mr.Get("otp_session:42:abc123")
		require.NoError(t, err)
		assert.Equal(t, "42", val)
		assert.Equal(t, time.Minute, mr.TTL("otp_session:42:abc123"))
	})

	t.Run("GetMissingIsNotFound", func(t *testing.T) {
		s, _ := newTestSession(t)

		_, err := s.Get(ctx, 42, "nope")
		assert.True(t, errors.Is(err, goerror.ErrNotFound))
	})

	t.Run("DeleteRemovesEntry", func(t *testing.T) {
		s, mr := newTestSession(t)
		require.NoError(t, s.Set(ctx, 42, "abc123", time.Minute))

		require.NoError(t, s.Delete(ctx, 42, "abc123"))
		assert.False(t, mr.Exists("otp_session:42:abc123"))
	})

	t.Run("InvalidateSweepsOnlyTheSubject", func(t *testing.T) {
		s, mr := newTestSession(t)
		require.NoError(t, s.Set(ctx, 42, "aaa", time.Minute))
		require.NoError(t, s.Set(ctx, 42, "bbb", time.Minute))
		require.NoError(t, s.Set(ctx, 99, "ccc", time.Minute))

		require.NoError(t, s.Invalidate(ctx, 42))

		assert.False(t, mr.Exists("otp_session:42:aaa"))
		assert.False(t, mr.Exists("otp_session:42:bbb"))
		assert.True(t, mr.Exists("otp_session:99:ccc"))
	})

	t.Run("Active", func(t *testing.T) {
		s, mr := newTestSession(t)
		require.NoError(t, s.Set(ctx, 42, "abc123", time.Minute))

		assert.True(t, s.Active(ctx, 42, "abc123"))
		assert.False(t, s.Active(ctx, 42, "other"))

		// A tampered value is treated as inactive.
		mr.Set("otp_session:42:abc123", "999")
		assert.False(t, s.Active(ctx, 42, "abc123"))
	})
}
