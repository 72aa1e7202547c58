package deliver

import (
	"context"
	"log/slog"

	"world-digest/internal/infra/notifier"
)

// broadcaster is the slice of the Telegram notifier the channel needs.
type broadcaster interface {
	Broadcast(ctx context.Context, message string) error
}

// TelegramChannel adapts the Telegram notifier to the Channel interface.
type TelegramChannel struct {
	notifier broadcaster
	enabled  bool
}

// NewTelegramChannel creates a Telegram delivery channel. When the
// configuration is disabled a no-op notifier backs the channel so the
// Channel contract holds without nil checks.
func NewTelegramChannel(config notifier.TelegramConfig, logger *slog.Logger) *TelegramChannel {
	var n broadcaster
	if config.Enabled {
		n = notifier.NewTelegramNotifier(config, logger)
	} else {
		n = notifier.NewNoOpNotifier()
	}
	return &TelegramChannel{notifier: n, enabled: config.Enabled}
}

// Name returns the channel identifier "telegram".
func (c *TelegramChannel) Name() string {
	return "telegram"
}

// IsEnabled reports whether Telegram delivery is configured.
func (c *TelegramChannel) IsEnabled() bool {
	return c.enabled
}

// Send broadcasts the message to every configured Telegram chat.
func (c *TelegramChannel) Send(ctx context.Context, message string) error {
	if !c.enabled {
		return ErrChannelDisabled
	}
	return c.notifier.Broadcast(ctx, message)
}
