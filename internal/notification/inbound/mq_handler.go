package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/otavioph/otpbank/internal/notification/usecase"
	"github.com/otavioph/otpbank/internal/pkg/instrument"
	"github.com/otavioph/otpbank/internal/pkg/messaging"
	"github.com/otavioph/otpbank/internal/pkg/uid"
	"github.com/otavioph/otpbank/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	for i := range headers {
		if headers[i].Key == keyOfCorrelationID {
			return instrument.SetCorrelationID(ctx, string(headers[i].Value))
		}
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) OtpChallengeNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "OtpChallengeNotification")
	defer span.End()

	body := msg.Body()
	slog.InfoContext(ctx, "consume: otp challenge notification")

	var payload event.OtpChallengeMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp challenge notification", "error", err)
		return nil
	}

	if err := h.uc.ConsumeOtpChallenge(ctx, usecase.ConsumeOtpChallengeInput{
		UserID:    payload.UserID,
		Email:     payload.Email,
		FullName:  payload.FullName,
		Code:      payload.Code,
		Hash:      payload.Hash,
		ExpiresAt: payload.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp challenge", "error", err)
		return err
	}

	return nil
}
