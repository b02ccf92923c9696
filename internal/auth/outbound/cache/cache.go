package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/otavioph/otpbank/internal/pkg/goerror"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// keyPrefix is a stable wire format: other tooling sweeps and inspects these
// keys, so the layout must not change.
const keyPrefix = "otp_session"

// Session stores challenge and access sessions in redis.
//
// One entry exists per user and OTP hash; its value is the user id rendered
// as a string. Deleting the entry revokes the matching token immediately.
type Session struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func NewSession(client *redis.Client, ins instrument.Instrumentation) *Session {
	return &Session{client: client, ins: ins}
}

func sessionKey(subjectID int64, hash string) string {
	return fmt.Sprintf("%s:%d:%s", keyPrefix, subjectID, hash)
}

func (s *Session) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.outbound.cache").Start(ctx, name)
}

func (s *Session) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Set writes the session entry with the given TTL.
func (s *Session) Set(ctx context.Context, subjectID int64, hash string, ttl time.Duration) (err error) {
	ctx, span := s.startSpan(ctx, "Set")
	defer func() { s.endSpan(span, err) }()

	err = s.client.Set(ctx, sessionKey(subjectID, hash), fmt.Sprintf("%d", subjectID), ttl).Err()
	return err
}

// Get reads the session entry value. Missing entries map to goerror.ErrNotFound.
func (s *Session) Get(ctx context.Context, subjectID int64, hash string) (val string, err error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer func() { s.endSpan(span, err) }()

	val, err = s.client.Get(ctx, sessionKey(subjectID, hash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", goerror.ErrNotFound
	}
	return val, err
}

// Delete removes one session entry.
func (s *Session) Delete(ctx context.Context, subjectID int64, hash string) (err error) {
	ctx, span := s.startSpan(ctx, "Delete")
	defer func() { s.endSpan(span, err) }()

	err = s.client.Del(ctx, sessionKey(subjectID, hash)).Err()
	return err
}

// Invalidate removes every session entry for the subject using a SCAN sweep
// over the otp_session:{subjectID}:* pattern.
func (s *Session) Invalidate(ctx context.Context, subjectID int64) (err error) {
	ctx, span := s.startSpan(ctx, "Invalidate")
	defer func() { s.endSpan(span, err) }()

	pattern := fmt.Sprintf("%s:%d:*", keyPrefix, subjectID)

	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err = s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	err = iter.Err()
	return err
}

// Active implements the router session check: the entry must exist and its
// value must equal the subject id string.
func (s *Session) Active(ctx context.Context, subjectID int64, hash string) bool {
	val, err := s.Get(ctx, subjectID, hash)
	if err != nil {
		return false
	}
	return val == fmt.Sprintf("%d", subjectID)
}
