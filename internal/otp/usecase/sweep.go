package usecase

import (
	"context"
	"log/slog"
)

// Sweep deletes settled OTP records older than the configured retention
// window. It runs on a timer outside the request path.
func (s *Usecase) Sweep(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	days := s.cfg.GetInt64("modules.otp.retention_days")
	if days < 1 {
		days = 30
	}

	cutoff := s.clock.Now().AddDate(0, 0, -int(days))

	deleted, err := s.repoDB.DeleteExpiredOtps(ctx, cutoff)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired otps", "cutoff", cutoff, "error", err)
		return err
	}

	if deleted > 0 {
		slog.InfoContext(ctx, "otp retention sweep completed", "deleted", deleted, "cutoff", cutoff)
	}

	return nil
}
