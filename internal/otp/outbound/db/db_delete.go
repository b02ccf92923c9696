package db

import (
	"context"
	"time"

	"github.com/otavioph/otpbank/internal/otp/entity"
)

const queryDeleteExpiredOtps = `
DELETE FROM otps
WHERE status IN ($1, $2) AND updated_at < $3
`

func (s *DB) DeleteExpiredOtps(ctx context.Context, olderThan time.Time) (deleted int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpiredOtps")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, queryDeleteExpiredOtps,
		int16(entity.StatusExpired),
		int16(entity.StatusFailed),
		olderThan,
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
