package db

import (
	"context"

	"github.com/otavioph/otpbank/internal/otp/entity"
)

const queryGetOtpByHash = `
SELECT id, hash, code, identifier, purpose, status, attempts, expires_at, validated_at, created_at, updated_at
FROM otps
WHERE hash = $1
`

func (s *DB) GetOtpByHash(ctx context.Context, hash string) (out *entity.Otp, err error) {
	ctx, span := s.startSpan(ctx, "GetOtpByHash")
	defer func() { s.endSpan(span, err) }()

	var o entity.Otp
	var purpose string
	var status int16

	err = s.conn.QueryRow(ctx, queryGetOtpByHash, hash).Scan(
		&o.ID,
		&o.Hash,
		&o.Code,
		&o.Identifier,
		&purpose,
		&status,
		&o.Attempts,
		&o.ExpiresAt,
		&o.ValidatedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	o.Purpose = entity.Purpose(purpose)
	o.Status = entity.Status(status)

	return &o, nil
}

const queryGetActiveOtpByIdentifier = `
SELECT id, hash, code, identifier, purpose, status, attempts, expires_at, validated_at, created_at, updated_at
FROM otps
WHERE identifier = $1 AND status != $2
ORDER BY expires_at DESC
LIMIT 1
`

func (s *DB) GetActiveOtpByIdentifier(ctx context.Context, identifier string) (out *entity.Otp, err error) {
	ctx, span := s.startSpan(ctx, "GetActiveOtpByIdentifier")
	defer func() { s.endSpan(span, err) }()

	var o entity.Otp
	var purpose string
	var status int16

	err = s.conn.QueryRow(ctx, queryGetActiveOtpByIdentifier, identifier, int16(entity.StatusValidated)).Scan(
		&o.ID,
		&o.Hash,
		&o.Code,
		&o.Identifier,
		&purpose,
		&status,
		&o.Attempts,
		&o.ExpiresAt,
		&o.ValidatedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	o.Purpose = entity.Purpose(purpose)
	o.Status = entity.Status(status)

	return &o, nil
}
