package db

import (
	"context"

	"github.com/otavioph/otpbank/internal/otp/entity"
)

const queryCreateOtp = `
INSERT INTO otps (id, hash, code, identifier, purpose, status, attempts, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (s *DB) CreateOtp(ctx context.Context, in entity.Otp) (id int64, err error) {
	ctx, span := s.startSpan(ctx, "CreateOtp")
	defer func() { s.endSpan(span, err) }()

	id = s.uid.Generate()

	_, err = s.conn.Exec(ctx, queryCreateOtp,
		id,
		in.Hash,
		in.Code,
		in.Identifier,
		in.Purpose.String(),
		int16(in.Status),
		in.Attempts,
		in.ExpiresAt,
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	return id, nil
}
