package db

import (
	"context"

	"github.com/otavioph/otpbank/internal/otp/entity"
)

const queryUpdateOtpStatus = `
UPDATE otps
SET status = $2,
    validated_at = CASE WHEN $2 = $3 THEN now() ELSE validated_at END,
    updated_at = now()
WHERE id = $1
`

func (s *DB) UpdateOtpStatus(ctx context.Context, id int64, status entity.Status) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateOtpStatus")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryUpdateOtpStatus, id, int16(status), int16(entity.StatusValidated))
	return s.mapError(err)
}

const queryIncrementOtpAttempts = `
UPDATE otps
SET attempts = attempts + 1, updated_at = now()
WHERE id = $1
`

func (s *DB) IncrementOtpAttempts(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "IncrementOtpAttempts")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryIncrementOtpAttempts, id)
	return s.mapError(err)
}

const queryExpireOldOtps = `
UPDATE otps
SET status = $3, updated_at = now()
WHERE identifier = $1 AND purpose = $2 AND status = $4
`

func (s *DB) ExpireOldOtps(ctx context.Context, identifier string, purpose entity.Purpose) (err error) {
	ctx, span := s.startSpan(ctx, "ExpireOldOtps")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, queryExpireOldOtps,
		identifier,
		purpose.String(),
		int16(entity.StatusExpired),
		int16(entity.StatusPending),
	)
	return s.mapError(err)
}
