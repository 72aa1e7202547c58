package deliver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"world-digest/internal/config"
	"world-digest/internal/domain/entity"
	"world-digest/internal/observability/metrics"
	"world-digest/internal/repository"
)

// Service sends formatted digests through every enabled channel and records
// delivery state.
type Service struct {
	cfg       *config.Config
	channels  []Channel
	digests   repository.DigestRepository
	formatter *Formatter
	logger    *slog.Logger
}

// NewService creates a delivery Service.
func NewService(cfg *config.Config, channels []Channel, digests repository.DigestRepository, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		channels:  channels,
		digests:   digests,
		formatter: NewFormatter(cfg),
		logger:    logger,
	}
}

// Deliver sends the global digest first, then regional digests in configured
// region order, pausing between messages. Digests that reach at least one
// channel are marked sent. A failing digest does not stop the rest; the first
// error is returned after all sends are attempted.
func (s *Service) Deliver(ctx context.Context, global *entity.Digest, regional map[string]*entity.Digest) error {
	ordered := make([]*entity.Digest, 0, len(regional)+1)
	if global != nil {
		ordered = append(ordered, global)
	}
	for _, region := range s.cfg.Regions {
		if d, ok := regional[region]; ok && d != nil {
			ordered = append(ordered, d)
		}
	}
	if len(ordered) == 0 {
		return ErrNothingToDeliver
	}

	var firstErr error
	for i, d := range ordered {
		if i > 0 {
			select {
			case <-time.After(s.cfg.Telegram.SendDelay()):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := s.DeliverDigest(ctx, d); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("digest delivery failed",
				slog.String("region", d.Region),
				slog.String("digest_id", d.ID),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// DeliverDigest sends one digest through every enabled channel and marks it
// sent when at least one channel accepted it.
func (s *Service) DeliverDigest(ctx context.Context, d *entity.Digest) error {
	message := s.formatter.Format(d)

	sent := false
	var firstErr error
	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}

		err := ch.Send(ctx, message)
		metrics.RecordDigestSent(ch.Name(), err == nil)
		if err != nil {
			s.logger.Error("channel send failed",
				slog.String("channel", ch.Name()),
				slog.String("region", d.Region),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = fmt.Errorf("send via %s: %w", ch.Name(), err)
			}
			continue
		}

		sent = true
		s.logger.Info("digest delivered",
			slog.String("channel", ch.Name()),
			slog.String("region", d.Region),
			slog.String("digest_id", d.ID))
	}

	if !sent {
		if firstErr != nil {
			return firstErr
		}
		return fmt.Errorf("digest %s: no enabled channels", d.ID)
	}

	if err := s.digests.MarkSent(ctx, d.ID); err != nil {
		return fmt.Errorf("mark digest %s sent: %w", d.ID, err)
	}
	return nil
}
