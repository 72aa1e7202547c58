package notifier

import "context"

// NoOpNotifier is a no-operation delivery client used when Telegram delivery
// is disabled. Null Object pattern: callers never need nil checks.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// Broadcast does nothing and returns nil immediately.
func (n *NoOpNotifier) Broadcast(_ context.Context, _ string) error {
	return nil
}

// SendMessage does nothing and returns nil immediately.
func (n *NoOpNotifier) SendMessage(_ context.Context, _, _ string) error {
	return nil
}
