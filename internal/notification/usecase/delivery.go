package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/ogerihealth/healthrecord/internal/notification/entity"
	"github.com/ogerihealth/healthrecord/internal/pkg/mail"
)

// sendTracked delivers one email with a delivery log row around the attempt:
// queued before the send, then sent or failed with the provider response and
// a retry hint. Log writes never block the delivery itself.
func (s *Usecase) sendTracked(ctx context.Context, to, subject, htmlBody string) error {
	dl := entity.DeliveryLog{
		ID:        s.uid.Generate(),
		Recipient: to,
		Subject:   subject,
		Status:    entity.DeliveryStatusQueued,
	}

	if err := s.repoDB.CreateDeliveryLog(ctx, dl); err != nil {
		slog.WarnContext(ctx, "failed to repo create delivery log", "recipient", to, "error", err)
	}

	sendErr := s.repoMail.Send(ctx, mail.Message{
		From:     s.cfg.GetString("modules.notification.sender"),
		To:       []string{to},
		Subject:  subject,
		HTMLBody: htmlBody,
	})

	if sendErr != nil {
		retryAt := s.clock.Now().Add(15 * time.Minute)
		dl.Status = entity.DeliveryStatusFailed
		dl.ProviderResponse = sendErr.Error()
		dl.NextRetryAt = &retryAt
	} else {
		dl.Status = entity.DeliveryStatusSent
	}

	if err := s.repoDB.UpdateDeliveryLog(ctx, dl); err != nil {
		slog.WarnContext(ctx, "failed to repo update delivery log", "delivery_log_id", dl.ID, "error", err)
	}

	return sendErr
}
